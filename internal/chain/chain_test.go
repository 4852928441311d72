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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestChain(t *testing.T) {
	t.Run("With FailFast", func(t *testing.T) {
		var calls []int
		err := New(WithFailFast()).
			AddRunner(func() error { calls = append(calls, 1); return errors.New("err1") }).
			AddRunner(func() error { calls = append(calls, 2); return errors.New("err2") }).
			Run()

		require.EqualError(t, err, "err1")
		assert.Equal(t, []int{1}, calls)
	})

	t.Run("With RunAll", func(t *testing.T) {
		var calls []int
		err := New(WithRunAll()).
			AddRunner(func() error { calls = append(calls, 1); return errors.New("err1") }).
			AddRunner(func() error { calls = append(calls, 2); return nil }).
			AddRunner(func() error { calls = append(calls, 3); return errors.New("err3") }).
			Run()

		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		assert.Equal(t, []int{1, 2, 3}, calls)
	})

	t.Run("With a panicking step the next ones still run", func(t *testing.T) {
		ran := false
		err := New().
			AddRunner(func() error { panic("boom") }).
			AddRunner(func() error { ran = true; return nil }).
			Run()

		require.ErrorContains(t, err, "boom")
		assert.True(t, ran)
	})

	t.Run("With context runners", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "value")
		var seen []any
		err := New(WithContext(ctx)).
			AddContextRunner(func(ctx context.Context) error { seen = append(seen, ctx.Value(key{})); return nil }).
			AddContextRunnerIf(false, func(context.Context) error { return errors.New("skipped") }).
			AddContextRunnerIf(true, func(ctx context.Context) error { seen = append(seen, ctx.Value(key{})); return nil }).
			Run()

		require.NoError(t, err)
		assert.Equal(t, []any{"value", "value"}, seen)
	})
}
