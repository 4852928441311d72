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

// Package future provides a single-assignment value that can be awaited.
//
// The process runtime uses it to correlate an ask with its response: the
// asker awaits the future while the response path completes it. Only the
// first completion wins; later ones are ignored, which makes late responses
// arriving after a timeout harmless.
package future

import (
	"context"
	"sync"
)

// Future is a value of type T that becomes available later, or an error
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New creates a pending Future
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs task in its own goroutine and completes the returned Future with its outcome
func Go[T any](task func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		value, err := task()
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(value)
	}()
	return f
}

// Complete sets the value. It returns false when the Future was already completed.
func (f *Future[T]) Complete(value T) bool {
	return f.settle(value, nil)
}

// Fail sets the error. It returns false when the Future was already completed.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.settle(zero, err)
}

// Done is closed once the Future is completed
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future is completed or ctx ends.
// Ending ctx does not complete the Future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) settle(value T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}
