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
	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/eventstream"
)

// Subscription is a live subscription to the stream of a process
type Subscription = eventstream.Subscription

// SubscribeOption configures a subscription
type SubscribeOption = eventstream.Option

// OnError sets the callback invoked when the subscriber panics.
// The subscription stays live and the next values are still delivered.
func OnError(fn func(error)) SubscribeOption {
	return eventstream.WithOnError(fn)
}

// OnComplete sets the callback invoked once the observed process stopped
func OnComplete(fn func()) SubscribeOption {
	return eventstream.WithOnComplete(fn)
}

// Subscribe observes the values a process publishes. Values of another
// type than T are skipped. Values published by a remote process arrive
// decoded, so T must be the type registered with WithMessageTypes.
func Subscribe[T any](system *ActorSystem, pid address.ProcessID, onNext func(T), opts ...SubscribeOption) (*Subscription, error) {
	stream, err := system.stream(pid, false)
	if err != nil {
		return nil, err
	}
	return stream.Subscribe(typed(onNext), opts...), nil
}

// ObserveState observes the state of a process after every message it handled
func ObserveState[T any](system *ActorSystem, pid address.ProcessID, onNext func(T), opts ...SubscribeOption) (*Subscription, error) {
	stream, err := system.stream(pid, true)
	if err != nil {
		return nil, err
	}
	return stream.Subscribe(typed(onNext), opts...), nil
}

func typed[T any](onNext func(T)) func(any) {
	return func(value any) {
		if v, ok := value.(T); ok {
			onNext(v)
		}
	}
}

// publishStream returns the publish stream of pid
func (x *ActorSystem) publishStream(pid address.ProcessID) (*eventstream.Stream, error) {
	return x.stream(pid, false)
}

func (x *ActorSystem) stream(pid address.ProcessID, state bool) (*eventstream.Stream, error) {
	pid = x.qualify(x.resolve(pid))
	switch d := x.dispatcher(pid).(type) {
	case *localDispatcher:
		if state {
			return d.process.stateStream, nil
		}
		return d.process.publishStream, nil
	case *remoteDispatcher:
		if !d.exists() {
			return nil, gerrors.NewErrProcessDoesNotExist(pid.String())
		}
		if state {
			return x.remoting.stream(x.ctx, stateChannel(pid))
		}
		return x.remoting.stream(x.ctx, publishChannel(pid))
	default:
		return nil, gerrors.NewErrProcessDoesNotExist(pid.String())
	}
}
