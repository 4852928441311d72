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

package chain

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Chain runs a sequence of steps in insertion order.
// In run-all mode every step runs even when a previous one failed or
// panicked, and all the failures are combined.
type Chain struct {
	failFast bool
	ctx      context.Context
	runners  []func(context.Context) error
}

// Option configures a Chain
type Option func(*Chain)

// WithFailFast stops at the first failing step
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// WithRunAll runs every step regardless of failures
func WithRunAll() Option {
	return func(c *Chain) { c.failFast = false }
}

// WithContext sets the context handed to context runners
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}

// New creates a Chain. Run-all is the default.
func New(opts ...Option) *Chain {
	chain := &Chain{ctx: context.Background()}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// AddRunner appends a step
func (c *Chain) AddRunner(fn func() error) *Chain {
	return c.AddContextRunner(func(context.Context) error { return fn() })
}

// AddContextRunner appends a step that receives the chain context
func (c *Chain) AddContextRunner(fn func(ctx context.Context) error) *Chain {
	c.runners = append(c.runners, fn)
	return c
}

// AddContextRunnerIf appends the step only when condition holds
func (c *Chain) AddContextRunnerIf(condition bool, fn func(ctx context.Context) error) *Chain {
	if condition {
		c.runners = append(c.runners, fn)
	}
	return c
}

// Run executes the steps
func (c *Chain) Run() error {
	var err error
	for _, runner := range c.runners {
		if stepErr := safeRun(c.ctx, runner); stepErr != nil {
			if c.failFast {
				return stepErr
			}
			err = multierr.Append(err, stepErr)
		}
	}
	return err
}

func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chain step panicked: %v", r)
		}
	}()
	return fn(ctx)
}
