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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
)

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{MaxRetries: 3, MinBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	t.Run("With a transient failure", func(t *testing.T) {
		attempts := 0
		err := policy.Run(ctx, func(context.Context) error {
			attempts++
			if attempts < 2 {
				return errors.New("connection refused")
			}
			return nil
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("With exhausted attempts", func(t *testing.T) {
		attempts := 0
		err := policy.Run(ctx, func(context.Context) error {
			attempts++
			return errors.New("connection refused")
		}, nil)
		require.ErrorIs(t, err, gerrors.ErrClientDisconnected)
		assert.Greater(t, attempts, 1)
		assert.LessOrEqual(t, attempts, 4)
	})

	t.Run("With a permanent failure", func(t *testing.T) {
		attempts := 0
		err := policy.Run(ctx, func(context.Context) error {
			attempts++
			return ErrKeyNotFound
		}, func(err error) bool { return errors.Is(err, ErrKeyNotFound) })
		require.ErrorIs(t, err, ErrKeyNotFound)
		assert.Equal(t, 1, attempts)
	})
}
