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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
)

func TestSchedule(t *testing.T) {
	t.Run("After a delay", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)

		handle, err := system.Schedule(pid, increment{By: 2}, After(50*time.Millisecond))
		require.NoError(t, err)
		require.NotNil(t, handle)

		require.Eventually(t, func() bool { return peek(system, pid) == 2 }, waitFor, tick)
		assert.False(t, handle.Cancel())
	})
	t.Run("Immediately", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)

		handle, err := system.Schedule(pid, increment{By: 1}, Immediately())
		require.NoError(t, err)
		assert.Equal(t, 1, countOf(t, system, pid))
		assert.False(t, handle.Cancel())
	})
	t.Run("At a time in the past", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)

		_, err := system.Schedule(pid, increment{By: 1}, At(time.Now().Add(-time.Second)))
		require.NoError(t, err)
		assert.Equal(t, 1, countOf(t, system, pid))
	})
	t.Run("Cancelled before delivery", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)

		handle, err := system.Schedule(pid, increment{By: 1}, After(200*time.Millisecond))
		require.NoError(t, err)
		assert.True(t, handle.Cancel())
		assert.False(t, handle.Cancel())

		time.Sleep(400 * time.Millisecond)
		assert.Equal(t, 0, countOf(t, system, pid))
		assert.Zero(t, system.scheduler.Pending())
	})
	t.Run("From a handler to itself", func(t *testing.T) {
		system := startSystem(t)
		pid, err := Spawn(system, "ticker", startingAt(0), func(ctx *Context, state int, msg any) (int, error) {
			if _, ok := msg.(ping); ok {
				_, err := ctx.Schedule(ctx.Self(), increment{By: 3}, After(20*time.Millisecond))
				return state, err
			}
			return counter(ctx, state, msg)
		})
		require.NoError(t, err)

		require.NoError(t, system.Tell(pid, ping{}))
		require.Eventually(t, func() bool { return peek(system, pid) == 3 }, waitFor, tick)
	})
	t.Run("After the system stopped", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)
		require.NoError(t, system.Stop(context.Background()))

		_, err := system.Schedule(pid, increment{By: 1}, After(time.Second))
		require.ErrorIs(t, err, gerrors.ErrProcessSystemNotFound)
	})
}
