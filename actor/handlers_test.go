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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
)

type label string

func (l label) String() string { return string(l) }

type tag struct {
	Name string `json:"name"`
}

func (t tag) String() string { return "#" + t.Name }

type tally struct {
	Count  int
	Labels []string
}

func tallyHandlers() *Handlers[tally] {
	h := NewHandlers[tally]()
	On(h, func(_ *Context, state tally, msg increment) (tally, error) {
		state.Count += msg.By
		return state, nil
	})
	On(h, func(_ *Context, state tally, msg label) (tally, error) {
		state.Labels = append(state.Labels, "label:"+string(msg))
		return state, nil
	})
	On(h, func(_ *Context, state tally, msg fmt.Stringer) (tally, error) {
		state.Labels = append(state.Labels, "stringer:"+msg.String())
		return state, nil
	})
	On(h, func(ctx *Context, state tally, _ get) (tally, error) {
		return state, ctx.Reply(state)
	})
	return h
}

func TestHandlers(t *testing.T) {
	t.Run("Exact and interface handlers", func(t *testing.T) {
		system := startSystem(t)
		pid, err := SpawnHandlers(system, "tally", nil, tallyHandlers())
		require.NoError(t, err)

		require.NoError(t, system.Tell(pid, increment{By: 2}))
		require.NoError(t, system.Tell(pid, label("a")))
		require.NoError(t, system.Tell(pid, tag{Name: "b"}))

		state, err := Ask[tally](system, pid, get{})
		require.NoError(t, err)
		assert.Equal(t, 2, state.Count)
		assert.Equal(t, []string{"label:a", "stringer:#b"}, state.Labels)
	})
	t.Run("Only the table types are accepted", func(t *testing.T) {
		system := startSystem(t)
		pid, err := SpawnHandlers(system, "tally", nil, tallyHandlers())
		require.NoError(t, err)

		assert.True(t, system.CanAccept(pid, increment{}))
		assert.True(t, system.CanAccept(pid, tag{}))
		assert.False(t, system.CanAccept(pid, "text"))
		require.ErrorIs(t, system.Tell(pid, "text"), gerrors.ErrInvalidMessageType)
	})
	t.Run("Otherwise catches the rest", func(t *testing.T) {
		system := startSystem(t)
		h := tallyHandlers().Otherwise(func(_ *Context, state tally, msg any) (tally, error) {
			state.Labels = append(state.Labels, fmt.Sprintf("other:%v", msg))
			return state, nil
		})
		pid, err := SpawnHandlers(system, "tally", nil, h)
		require.NoError(t, err)

		require.NoError(t, system.Tell(pid, 42))
		state, err := Ask[tally](system, pid, get{})
		require.NoError(t, err)
		assert.Equal(t, []string{"other:42"}, state.Labels)
	})
	t.Run("Unhandled messages are dead-lettered", func(t *testing.T) {
		system := startSystem(t)
		pid, err := Spawn(system, "tally", nil, tallyHandlers().Handle)
		require.NoError(t, err)

		before := system.DeadLettersCount()
		require.NoError(t, system.Tell(pid, 42))
		require.Eventually(t, func() bool {
			return system.DeadLettersCount() == before+1
		}, waitFor, tick)
	})
	t.Run("Types lists every handled type", func(t *testing.T) {
		assert.Len(t, tallyHandlers().Types(), 4)
	})
}
