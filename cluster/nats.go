// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cluster

import (
	"context"
	"errors"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	"github.com/tochemey/echo/log"
)

// Nats carries the collaborator channels over a NATS server.
// NATS does not report the number of receivers of a message, so Publish always returns zero.
type Nats struct {
	mu            sync.Mutex
	url           string
	conn          *nats.Conn
	logger        log.Logger
	retry         RetryPolicy
	connected     *atomic.Bool
	subscriptions map[string]*natsSubscription
}

type natsSubscription struct {
	sub  *nats.Subscription
	done chan struct{}
}

var _ Channels = (*Nats)(nil)

// NewNats creates the NATS channels for the server at url
func NewNats(url string, logger log.Logger) *Nats {
	return &Nats{
		url:           url,
		logger:        logger,
		retry:         DefaultRetryPolicy(),
		connected:     atomic.NewBool(false),
		subscriptions: make(map[string]*natsSubscription),
	}
}

// Connect connects to the NATS server
func (n *Nats) Connect(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.connected.Load() {
		return nil
	}

	var conn *nats.Conn
	if err := n.retry.Run(ctx, func(context.Context) (err error) {
		conn, err = nats.Connect(n.url, nats.Name("echo"))
		return err
	}, nil); err != nil {
		n.logger.Errorf("failed to connect to nats at %s: %v", n.url, err)
		return err
	}

	n.conn = conn
	n.connected.Store(true)
	n.logger.Infof("connected to nats at %s", n.url)
	return nil
}

// Disconnect drops every subscription and closes the connection
func (n *Nats) Disconnect(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.connected.Load() {
		return nil
	}

	var err error
	for channel, sub := range n.subscriptions {
		err = errors.Join(err, sub.close())
		delete(n.subscriptions, channel)
	}
	n.conn.Close()
	n.connected.Store(false)
	return err
}

// Connected reports whether the connection is up
func (n *Nats) Connected() bool {
	return n.connected.Load() && n.conn.IsConnected()
}

// Publish implements Channels
func (n *Nats) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	if !n.connected.Load() {
		return 0, ErrNotConnected
	}
	return 0, n.retry.Run(ctx, func(context.Context) error {
		return n.conn.Publish(channel, payload)
	}, func(err error) bool {
		return errors.Is(err, nats.ErrBadSubject) || errors.Is(err, nats.ErrMaxPayload)
	})
}

// Subscribe implements Channels
func (n *Nats) Subscribe(_ context.Context, channel string) (<-chan []byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.connected.Load() {
		return nil, ErrNotConnected
	}
	if _, ok := n.subscriptions[channel]; ok {
		return nil, ErrAlreadySubscribed
	}

	msgs := make(chan *nats.Msg, 256)
	sub, err := n.conn.ChanSubscribe(channel, msgs)
	if err != nil {
		return nil, err
	}
	// make sure the server registered the interest before returning
	if err := n.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}

	out := make(chan []byte, 256)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-msgs:
				select {
				case out <- msg.Data:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	n.subscriptions[channel] = &natsSubscription{sub: sub, done: done}
	return out, nil
}

// Unsubscribe implements Channels
func (n *Nats) Unsubscribe(_ context.Context, channel string) error {
	n.mu.Lock()
	sub, ok := n.subscriptions[channel]
	delete(n.subscriptions, channel)
	n.mu.Unlock()
	if !ok {
		return nil
	}
	return sub.close()
}

func (s *natsSubscription) close() error {
	err := s.sub.Unsubscribe()
	close(s.done)
	return err
}

// natsChannels overrides the channels of a Cluster with NATS
type natsChannels struct {
	Cluster
	nats *Nats
}

// WithNatsChannels returns a Cluster that keeps the storage of store and
// carries pub/sub over the given NATS channels
func WithNatsChannels(store Cluster, channels *Nats) Cluster {
	return &natsChannels{Cluster: store, nats: channels}
}

func (c *natsChannels) Connect(ctx context.Context) error {
	if err := c.Cluster.Connect(ctx); err != nil {
		return err
	}
	return c.nats.Connect(ctx)
}

func (c *natsChannels) Disconnect(ctx context.Context) error {
	return errors.Join(c.nats.Disconnect(ctx), c.Cluster.Disconnect(ctx))
}

func (c *natsChannels) Connected() bool {
	return c.Cluster.Connected() && c.nats.Connected()
}

func (c *natsChannels) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	return c.nats.Publish(ctx, channel, payload)
}

func (c *natsChannels) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return c.nats.Subscribe(ctx, channel)
}

func (c *natsChannels) Unsubscribe(ctx context.Context, channel string) error {
	return c.nats.Unsubscribe(ctx, channel)
}
