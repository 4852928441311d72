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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
)

func TestRegister(t *testing.T) {
	t.Run("Find a registered process", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 4)

		alias, err := system.Register("accounts", pid)
		require.NoError(t, err)
		assert.Equal(t, system.registeredPID.Child("accounts"), alias)

		found, err := system.Find("accounts")
		require.NoError(t, err)
		assert.Equal(t, alias, found)
		assert.Equal(t, 4, countOf(t, system, found))
	})
	t.Run("Unknown name", func(t *testing.T) {
		system := startSystem(t)
		_, err := system.Find("nobody")
		require.ErrorIs(t, err, gerrors.ErrNameNotRegistered)
		require.ErrorIs(t, system.DeregisterByName("nobody"), gerrors.ErrNameNotRegistered)
	})
	t.Run("Invalid name", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)
		_, err := system.Register("", pid)
		require.Error(t, err)
	})
	t.Run("Unknown process", func(t *testing.T) {
		system := startSystem(t)
		_, err := system.Register("ghost", system.User().Child("ghost"))
		require.ErrorIs(t, err, gerrors.ErrProcessDoesNotExist)
	})
	t.Run("Tell reaches every registrant and ask the first", func(t *testing.T) {
		system := startSystem(t)
		first := spawnCounter(t, system, "first", 10)
		second := spawnCounter(t, system, "second", 20)

		alias, err := system.Register("pool", first)
		require.NoError(t, err)
		_, err = system.Register("pool", second)
		require.NoError(t, err)
		_, err = system.Register("pool", first)
		require.NoError(t, err)

		require.NoError(t, system.Tell(alias, increment{By: 1}))
		assert.Equal(t, 11, countOf(t, system, first))
		assert.Equal(t, 21, countOf(t, system, second))
		assert.Equal(t, 11, countOf(t, system, alias))
	})
	t.Run("Deregister by id", func(t *testing.T) {
		system := startSystem(t)
		first := spawnCounter(t, system, "first", 1)
		second := spawnCounter(t, system, "second", 2)

		alias, err := system.Register("pool", first)
		require.NoError(t, err)
		_, err = system.Register("pool", second)
		require.NoError(t, err)

		require.NoError(t, system.DeregisterByID(first))
		assert.Equal(t, 2, countOf(t, system, alias))

		require.NoError(t, system.DeregisterByID(second))
		_, err = system.Find("pool")
		require.ErrorIs(t, err, gerrors.ErrNameNotRegistered)
	})
	t.Run("Deregister by name", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0)
		_, err := system.Register("pool", pid)
		require.NoError(t, err)

		require.NoError(t, system.DeregisterByName("pool"))
		_, err = system.Find("pool")
		require.ErrorIs(t, err, gerrors.ErrNameNotRegistered)
		assert.True(t, system.Exists(pid))
	})
	t.Run("Stopped processes are deregistered", func(t *testing.T) {
		system := startSystem(t)
		pid := spawnCounter(t, system, "counter", 0, WithRegisteredName("solo"))

		alias, err := system.Find("solo")
		require.NoError(t, err)
		assert.Equal(t, 0, countOf(t, system, alias))

		require.NoError(t, system.Shutdown(context.Background(), pid))
		_, err = system.Find("solo")
		require.ErrorIs(t, err, gerrors.ErrNameNotRegistered)
	})
	t.Run("Register from a handler", func(t *testing.T) {
		system := startSystem(t)
		pid, err := Spawn(system, "self-registered", func(ctx *Context) (int, error) {
			_, err := ctx.Register("me")
			return 7, err
		}, counter)
		require.NoError(t, err)

		alias, err := system.Find("me")
		require.NoError(t, err)
		assert.Equal(t, countOf(t, system, pid), countOf(t, system, alias))
	})
}
