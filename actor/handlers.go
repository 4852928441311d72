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
	"reflect"

	"github.com/tochemey/echo/address"
)

const unhandledReason = "unhandled message"

// Handlers dispatches messages to typed handler functions by message type
type Handlers[S any] struct {
	exact      map[reflect.Type]HandlerFunc[S]
	interfaces []interfaceHandler[S]
	types      []any
	otherwise  HandlerFunc[S]
}

type interfaceHandler[S any] struct {
	iface   reflect.Type
	handler HandlerFunc[S]
}

// NewHandlers creates an empty handler table
func NewHandlers[S any]() *Handlers[S] {
	return &Handlers[S]{exact: make(map[reflect.Type]HandlerFunc[S])}
}

// On registers fn for messages of type M. M may be an interface type, in
// which case every message implementing it matches. Exact matches win.
func On[S, M any](h *Handlers[S], fn func(ctx *Context, state S, msg M) (S, error)) *Handlers[S] {
	handler := func(ctx *Context, state S, msg any) (S, error) {
		return fn(ctx, state, msg.(M))
	}

	rtype := reflect.TypeFor[M]()
	if rtype.Kind() == reflect.Interface {
		h.interfaces = append(h.interfaces, interfaceHandler[S]{iface: rtype, handler: handler})
		h.types = append(h.types, reflect.PointerTo(rtype))
		return h
	}

	h.exact[rtype] = handler
	h.types = append(h.types, rtype)
	return h
}

// Otherwise sets the handler of messages no other handler matches
func (h *Handlers[S]) Otherwise(fn HandlerFunc[S]) *Handlers[S] {
	h.otherwise = fn
	return h
}

// Handle implements HandlerFunc. Messages without a handler are dead-lettered.
func (h *Handlers[S]) Handle(ctx *Context, state S, msg any) (S, error) {
	rtype := reflect.TypeOf(msg)
	if handler, ok := h.exact[rtype]; ok {
		return handler(ctx, state, msg)
	}

	if rtype != nil {
		for _, candidate := range h.interfaces {
			if rtype.Implements(candidate.iface) {
				return candidate.handler(ctx, state, msg)
			}
		}
	}

	if h.otherwise != nil {
		return h.otherwise(ctx, state, msg)
	}

	ctx.system.deadLetter(ctx.Sender(), ctx.Self(), msg, nil, unhandledReason)
	return state, nil
}

// Types returns the message types with a handler, in the form WithAcceptedTypes expects
func (h *Handlers[S]) Types() []any {
	types := make([]any, len(h.types))
	copy(types, h.types)
	return types
}

// SpawnHandlers spawns a process driven by a handler table. Unless an
// Otherwise handler is set, the process only accepts the types of the table.
func SpawnHandlers[S any](spawner Spawner, name string, setup SetupFunc[S], h *Handlers[S], opts ...SpawnOption) (address.ProcessID, error) {
	if h.otherwise == nil && len(h.types) > 0 {
		opts = append([]SpawnOption{WithAcceptedTypes(h.Types()...)}, opts...)
	}
	return Spawn(spawner, name, setup, h.Handle, opts...)
}
