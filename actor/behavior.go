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
	"fmt"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/message"
)

// SetupFunc produces the initial state of a process. It runs at spawn and on every restart.
type SetupFunc[S any] func(ctx *Context) (S, error)

// HandlerFunc handles one message and returns the next state.
// Returning an error, or panicking, hands the failure to supervision.
type HandlerFunc[S any] func(ctx *Context, state S, msg any) (S, error)

// TerminatedFunc handles the termination of a watched process
type TerminatedFunc[S any] func(ctx *Context, state S, pid address.ProcessID) (S, error)

// ShutdownFunc runs when the process shuts down, after its children are gone
type ShutdownFunc[S any] func(ctx *Context, state S) error

// behavior is the state-type erased view of a process implementation.
// Every method is called from the drain loop of the owning process only.
type behavior interface {
	setup(ctx *Context) error
	handle(ctx *Context, msg any) error
	terminated(ctx *Context, pid address.ProcessID) error
	shutdown(ctx *Context) error
	state() any
	restore(value any) error
	zero() any
}

type typedBehavior[S any] struct {
	current      S
	setupFn      SetupFunc[S]
	handler      HandlerFunc[S]
	terminatedFn TerminatedFunc[S]
	shutdownFn   ShutdownFunc[S]
}

var _ behavior = (*typedBehavior[int])(nil)

func newTypedBehavior[S any](setup SetupFunc[S], handler HandlerFunc[S], config *spawnConfig) (*typedBehavior[S], error) {
	b := &typedBehavior[S]{setupFn: setup, handler: handler}

	if config.terminated != nil {
		fn, ok := config.terminated.(TerminatedFunc[S])
		if !ok {
			return nil, fmt.Errorf("terminated handler %T does not match state type %T", config.terminated, b.current)
		}
		b.terminatedFn = fn
	}

	if config.shutdown != nil {
		fn, ok := config.shutdown.(ShutdownFunc[S])
		if !ok {
			return nil, fmt.Errorf("shutdown handler %T does not match state type %T", config.shutdown, b.current)
		}
		b.shutdownFn = fn
	}

	return b, nil
}

func (b *typedBehavior[S]) setup(ctx *Context) error {
	if b.setupFn == nil {
		var zero S
		b.current = zero
		return nil
	}
	state, err := b.setupFn(ctx)
	if err != nil {
		return err
	}
	b.current = state
	return nil
}

func (b *typedBehavior[S]) handle(ctx *Context, msg any) error {
	state, err := b.handler(ctx, b.current, msg)
	if err != nil {
		return err
	}
	b.current = state
	return nil
}

func (b *typedBehavior[S]) terminated(ctx *Context, pid address.ProcessID) error {
	if b.terminatedFn == nil {
		return b.handle(ctx, &message.Terminated{ID: pid})
	}
	state, err := b.terminatedFn(ctx, b.current, pid)
	if err != nil {
		return err
	}
	b.current = state
	return nil
}

func (b *typedBehavior[S]) shutdown(ctx *Context) error {
	if b.shutdownFn == nil {
		return nil
	}
	return b.shutdownFn(ctx, b.current)
}

func (b *typedBehavior[S]) state() any {
	return b.current
}

func (b *typedBehavior[S]) restore(value any) error {
	state, ok := value.(S)
	if !ok {
		return fmt.Errorf("persisted state %T does not match state type %T", value, b.current)
	}
	b.current = state
	return nil
}

func (b *typedBehavior[S]) zero() any {
	var zero S
	return zero
}
