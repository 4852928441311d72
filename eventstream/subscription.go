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

package eventstream

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/echo/internal/queue"
)

const (
	idle int32 = iota
	busy
)

// Option configures a Subscription
type Option func(*Subscription)

// WithOnComplete sets the callback invoked when the stream closes
func WithOnComplete(fn func()) Option {
	return func(s *Subscription) { s.onComplete = fn }
}

// WithOnError sets the callback invoked when onNext panics. Without it the panic is swallowed.
func WithOnError(fn func(error)) Option {
	return func(s *Subscription) { s.onError = fn }
}

type item struct {
	value    any
	terminal bool
	complete bool
}

// Subscription is a registered observer of a Stream
type Subscription struct {
	id         string
	onNext     func(any)
	onComplete func()
	onError    func(error)
	detach     func()

	items     *queue.Mpsc[item]
	state     *atomic.Int32
	cancelled *atomic.Bool
	ended     *atomic.Bool
	done      chan struct{}
	endOnce   sync.Once
}

func newSubscription(id string, onNext func(any), opts ...Option) *Subscription {
	sub := &Subscription{
		id:        id,
		onNext:    onNext,
		items:     queue.NewMpsc[item](),
		state:     atomic.NewInt32(idle),
		cancelled: atomic.NewBool(false),
		ended:     atomic.NewBool(false),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sub)
	}
	return sub
}

// ID returns the subscription identifier
func (s *Subscription) ID() string {
	return s.id
}

// Done is closed once the subscription stopped delivering
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops delivery. Values still queued are dropped and onComplete is not called.
func (s *Subscription) Unsubscribe() {
	if s.cancelled.CompareAndSwap(false, true) {
		if s.detach != nil {
			s.detach()
		}
		s.terminate(false)
	}
}

func (s *Subscription) deliver(value any) {
	if s.ended.Load() {
		return
	}
	s.items.Push(item{value: value})
	s.schedule()
}

func (s *Subscription) terminate(complete bool) {
	if s.ended.CompareAndSwap(false, true) {
		s.items.Push(item{terminal: true, complete: complete})
		s.schedule()
	}
}

func (s *Subscription) schedule() {
	if s.state.CompareAndSwap(idle, busy) {
		go s.drain()
	}
}

func (s *Subscription) drain() {
	for {
		for {
			next, ok := s.items.Pop()
			if !ok {
				break
			}

			if next.terminal {
				if next.complete && !s.cancelled.Load() && s.onComplete != nil {
					s.call(s.onComplete)
				}
				s.endOnce.Do(func() { close(s.done) })
				continue
			}

			if !s.cancelled.Load() && s.onNext != nil {
				value := next.value
				s.call(func() { s.onNext(value) })
			}
		}

		s.state.Store(idle)
		if s.items.IsEmpty() || !s.state.CompareAndSwap(idle, busy) {
			return
		}
	}
}

func (s *Subscription) call(fn func()) {
	defer func() {
		if r := recover(); r != nil && s.onError != nil {
			s.onError(fmt.Errorf("subscriber %s panicked: %v", s.id, r))
		}
	}()
	fn()
}
