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

// Package bench measures the throughput of the process runtime
package bench

import (
	"sync"

	"github.com/tochemey/echo/actor"
)

// Send is the payload of tell benchmarks
type Send struct{}

// Request is the payload of ask benchmarks
type Request struct{}

// Benchmarker counts the messages it handled
type Benchmarker struct {
	Wg sync.WaitGroup
}

// Handle implements actor.HandlerFunc
func (x *Benchmarker) Handle(ctx *actor.Context, count int, msg any) (int, error) {
	switch msg.(type) {
	case Send:
		x.Wg.Done()
		return count + 1, nil
	case Request:
		return count + 1, ctx.Reply(count + 1)
	}
	return count, nil
}
