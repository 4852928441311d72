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
	"time"

	"github.com/flowchartsman/retry"

	gerrors "github.com/tochemey/echo/errors"
)

const (
	// DefaultMaxRetries is the number of attempts before a connectivity failure is surfaced
	DefaultMaxRetries = 5
	// DefaultMinBackoff is the delay before the first retry
	DefaultMinBackoff = 100 * time.Millisecond
	// DefaultMaxBackoff bounds the exponential backoff
	DefaultMaxBackoff = 3 * time.Second
)

// RetryPolicy bounds the retries of transient failures
type RetryPolicy struct {
	MaxRetries int
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// DefaultRetryPolicy returns the default RetryPolicy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		MinBackoff: DefaultMinBackoff,
		MaxBackoff: DefaultMaxBackoff,
	}
}

// Run executes fn until it succeeds, returns a permanent error or the attempts are exhausted.
// Exhausted attempts are reported as ErrClientDisconnected wrapping the last failure.
func (p RetryPolicy) Run(ctx context.Context, fn func(ctx context.Context) error, permanent func(error) bool) error {
	var last error
	retrier := retry.NewRetrier(p.MaxRetries, p.MinBackoff, p.MaxBackoff)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			last = err
			return retry.Stop(err)
		}
		return err
	})

	switch {
	case err == nil:
		return nil
	case last != nil:
		return last
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return gerrors.NewErrClientDisconnected(err)
	}
}
