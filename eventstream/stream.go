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

// Package eventstream implements the broadcast streams attached to every
// process: the publish stream and the state-change stream.
//
// Publishing never blocks on a slow observer. Each subscription owns an
// unbounded queue drained by at most one goroutine at a time, so values
// reach a given observer in publish order and observer callbacks for the
// same subscription never overlap.
package eventstream

import (
	"sync"

	"github.com/google/uuid"
)

// Stream broadcasts values to its subscriptions
type Stream struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	closed        bool
}

// New creates an open Stream
func New() *Stream {
	return &Stream{subscriptions: make(map[string]*Subscription)}
}

// Subscribe registers onNext for every value published from now on.
// Subscribing to a closed stream returns a subscription that is already complete.
func (s *Stream) Subscribe(onNext func(any), opts ...Option) *Subscription {
	sub := newSubscription(uuid.NewString(), onNext, opts...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.terminate(true)
		return sub
	}
	s.subscriptions[sub.id] = sub
	sub.detach = func() { s.remove(sub.id) }
	s.mu.Unlock()

	return sub
}

// Publish hands value to every current subscription. Publishing on a closed stream is a no-op.
func (s *Stream) Publish(value any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	for _, sub := range s.subscriptions {
		sub.deliver(value)
	}
}

// Close completes every subscription once its pending values are delivered.
// Closing twice is a no-op.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subscriptions
	s.subscriptions = make(map[string]*Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.terminate(true)
	}
}

// Closed reports whether the stream was closed
func (s *Stream) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// SubscribersCount returns the number of live subscriptions
func (s *Stream) SubscribersCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscriptions)
}

func (s *Stream) remove(id string) {
	s.mu.Lock()
	delete(s.subscriptions, id)
	s.mu.Unlock()
}
