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

package actor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/cluster"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/eventstream"
	"github.com/tochemey/echo/internal/ticker"
	"github.com/tochemey/echo/internal/xsync"
	"github.com/tochemey/echo/log"
	"github.com/tochemey/echo/message"
)

const keyPrefix = "echo:"

func inboxKey(system address.SystemName) string {
	return keyPrefix + system.String() + ":inbox"
}

func notifyChannel(system address.SystemName) string {
	return keyPrefix + system.String() + ":inbox-notify"
}

func aliveKey(system address.SystemName) string {
	return keyPrefix + system.String() + ":alive"
}

func publishChannel(pid address.ProcessID) string {
	return keyPrefix + pid.System().String() + ":pubsub:" + pid.Path()
}

func stateChannel(pid address.ProcessID) string {
	return keyPrefix + pid.System().String() + ":state-changes:" + pid.Path()
}

func registeredKey(name address.ProcessName) string {
	return keyPrefix + "registered:" + name.String()
}

// publication is the wire form of a value mirrored on a cluster channel
type publication struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// remoting connects a system to the cluster. Every system owns an inbox
// list that peers push encoded envelopes to, a notification channel that
// wakes the owner up and a liveness key refreshed by a heartbeat. The
// heartbeat also polls the inbox so a missed notification only delays delivery.
type remoting struct {
	system  *ActorSystem
	cluster cluster.Cluster
	logger  log.Logger

	heartbeat *ticker.Ticker
	pollMu    sync.Mutex
	wg        sync.WaitGroup
	peers     *atomic.Int64

	dedupMu sync.Mutex
	seen    mapset.Set[string]
	window  []string

	streamsMu sync.Mutex
	streams   *xsync.Map[string, *eventstream.Stream]
}

func newRemoting(system *ActorSystem) *remoting {
	return &remoting{
		system:  system,
		cluster: system.cluster,
		logger:  system.logger,
		peers:   atomic.NewInt64(0),
		seen:    mapset.NewThreadUnsafeSet[string](),
		streams: xsync.NewStringMap[*eventstream.Stream](),
	}
}

func (r *remoting) start(ctx context.Context) error {
	name := r.system.name
	if err := r.cluster.Connect(ctx); err != nil {
		return err
	}

	notifications, err := r.cluster.Subscribe(ctx, notifyChannel(name))
	if err != nil {
		return err
	}

	if err := r.beat(ctx); err != nil {
		return err
	}

	r.wg.Add(1)
	go r.listen(notifications)

	r.heartbeat = ticker.New(r.system.heartbeatInterval, func(time.Time) {
		if err := r.beat(r.system.ctx); err != nil {
			r.logger.Warnf("heartbeat failed: %v", err)
		}
		r.poll(r.system.ctx)
	})
	r.heartbeat.Start()

	// deliver what peers pushed before the system came up
	r.poll(ctx)
	r.logger.Infof("remoting started on %s", inboxKey(name))
	return nil
}

func (r *remoting) stop(ctx context.Context) error {
	if r.heartbeat != nil {
		r.heartbeat.Stop()
	}
	err := r.cluster.Delete(ctx, aliveKey(r.system.name))
	if e := r.cluster.Disconnect(ctx); e != nil {
		err = errors.Join(err, e)
	}

	r.wg.Wait()
	r.streams.Range(func(_ string, stream *eventstream.Stream) {
		stream.Close()
	})
	r.streams.Reset()
	return err
}

// beat refreshes the liveness key and counts the live peers
func (r *remoting) beat(ctx context.Context) error {
	if err := r.cluster.Set(ctx, aliveKey(r.system.name), []byte(time.Now().UTC().Format(time.RFC3339)), r.system.heartbeatTTL); err != nil {
		return err
	}
	if systems, err := r.systems(ctx); err == nil {
		r.peers.Store(int64(len(systems) - 1))
	}
	return nil
}

func (r *remoting) listen(notifications <-chan []byte) {
	defer r.wg.Done()
	for range notifications {
		r.poll(r.system.ctx)
	}
}

// poll drains the inbox. Polls never overlap so that envelopes keep their push order.
func (r *remoting) poll(ctx context.Context) {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	for {
		data, err := r.cluster.ListPop(ctx, inboxKey(r.system.name))
		if err != nil {
			if !errors.Is(err, cluster.ErrKeyNotFound) && ctx.Err() == nil {
				r.logger.Warnf("failed to read inbox: %v", err)
			}
			return
		}
		r.receive(data)
	}
}

// receive hands a remote envelope to its local recipient
func (r *remoting) receive(data []byte) {
	remote, err := message.DecodeRemoteMessage(data)
	if err != nil {
		r.logger.Warnf("dropping malformed envelope: %v", err)
		return
	}
	if !r.firstSeen(remote.MessageID) {
		r.logger.Debugf("dropping duplicate envelope %s", remote.MessageID)
		return
	}

	x := r.system
	to := x.qualify(remote.To)
	msg, err := remote.ToMessage(x.serializer)
	if err != nil {
		if remote.Type == message.RemoteAsk {
			request := &message.Request{
				Header:    message.Header{Sender: remote.Sender, ReplyTo: remote.ReplyTo, ConversationID: remote.ConversationID, SessionID: remote.SessionID},
				RequestID: remote.RequestID,
			}
			_ = x.respond(to, request, nil, err)
		}
		x.deadLetter(remote.Sender, to, remote.ContentType, err, "")
		return
	}

	switch m := msg.(type) {
	case *message.Request:
		if err := x.deliver(to, m); err != nil {
			_ = x.respond(to, m, nil, err)
		}
	case *message.User, *message.Response:
		_ = x.deliver(to, m)
	case *message.Watch:
		if err := x.sendSystem(to, m); err != nil {
			x.notify(m.Watcher, &message.Terminated{ID: to})
		}
	default:
		x.notify(to, m)
	}
}

// firstSeen reports whether id was not received within the de-duplication window
func (r *remoting) firstSeen(id string) bool {
	r.dedupMu.Lock()
	defer r.dedupMu.Unlock()
	if !r.seen.Add(id) {
		return false
	}
	r.window = append(r.window, id)
	if len(r.window) > DefaultDedupWindow {
		r.seen.Remove(r.window[0])
		r.window = r.window[1:]
	}
	return true
}

// send pushes msg to the inbox of the system owning to
func (r *remoting) send(ctx context.Context, to address.ProcessID, msg message.Message) error {
	system := to.System()
	if !r.alive(ctx, system) {
		return gerrors.NewErrProcessDoesNotExist(to.String())
	}

	remote, err := message.ToRemote(msg, to, r.system.serializer)
	if err != nil {
		return err
	}
	data, err := remote.Encode()
	if err != nil {
		return err
	}

	if err := r.cluster.ListPush(ctx, inboxKey(system), data); err != nil {
		return err
	}
	if _, err := r.cluster.Publish(ctx, notifyChannel(system), []byte(remote.MessageID)); err != nil {
		r.logger.Debugf("failed to notify %s: %v", system, err)
	}
	return nil
}

func (r *remoting) alive(ctx context.Context, system address.SystemName) bool {
	ok, err := r.cluster.Exists(ctx, aliveKey(system))
	return err == nil && ok
}

// systems lists the systems whose liveness key is set
func (r *remoting) systems(ctx context.Context) ([]address.SystemName, error) {
	keys, err := r.cluster.Keys(ctx, keyPrefix+"*:alive")
	if err != nil {
		return nil, err
	}
	names := make([]address.SystemName, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), ":alive")
		names = append(names, address.SystemName(name))
	}
	return names, nil
}

// publish mirrors value on a cluster channel
func (r *remoting) publish(channel string, value any) {
	contentType, data, err := r.system.serializer.Marshal(value)
	if err != nil {
		r.logger.Warnf("cannot mirror %T on %s: %v", value, channel, err)
		return
	}
	payload, err := json.Marshal(publication{ContentType: contentType, Data: data})
	if err != nil {
		r.logger.Warnf("cannot mirror %T on %s: %v", value, channel, err)
		return
	}
	if _, err := r.cluster.Publish(r.system.ctx, channel, payload); err != nil {
		r.logger.Warnf("failed to publish on %s: %v", channel, err)
	}
}

// stream returns a local stream fed by a cluster channel. One cluster
// subscription serves every local subscriber of the channel.
func (r *remoting) stream(ctx context.Context, channel string) (*eventstream.Stream, error) {
	r.streamsMu.Lock()
	defer r.streamsMu.Unlock()

	if stream, ok := r.streams.Get(channel); ok && !stream.Closed() {
		return stream, nil
	}

	payloads, err := r.cluster.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	stream := eventstream.New()
	r.streams.Set(channel, stream)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer stream.Close()
		for payload := range payloads {
			var pub publication
			if err := json.Unmarshal(payload, &pub); err != nil {
				r.logger.Warnf("dropping malformed publication on %s: %v", channel, err)
				continue
			}
			value, err := r.system.serializer.Unmarshal(pub.ContentType, pub.Data)
			if err != nil {
				r.logger.Warnf("dropping publication on %s: %v", channel, err)
				continue
			}
			stream.Publish(value)
		}
	}()
	return stream, nil
}

// RemoteSystems lists the systems reachable through the cluster, this one included
func (x *ActorSystem) RemoteSystems(ctx context.Context) ([]address.SystemName, error) {
	if x.remoting == nil {
		return nil, gerrors.ErrClusterNotConfigured
	}
	return x.remoting.systems(ctx)
}
