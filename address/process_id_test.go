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

package address

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
)

func TestNames(t *testing.T) {
	t.Run("With valid names", func(t *testing.T) {
		for _, name := range []string{"worker", "dead-letters", "__special__", "a.b", "node$1", "x@y"} {
			n, err := NewProcessName(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, n.String())
		}
	})

	t.Run("With invalid names", func(t *testing.T) {
		for _, name := range []string{"", "a/b", "a b", "..", ".", "é", strings.Repeat("a", 256)} {
			_, err := NewProcessName(name)
			require.ErrorIs(t, err, gerrors.ErrInvalidProcessName, name)
		}
	})

	t.Run("With system names", func(t *testing.T) {
		sys, err := NewSystemName("orders")
		require.NoError(t, err)
		assert.Equal(t, "orders", sys.String())

		_, err = NewSystemName("or ders")
		require.ErrorIs(t, err, gerrors.ErrInvalidSystemName)
	})

	t.Run("MustProcessName panics on bad input", func(t *testing.T) {
		assert.Panics(t, func() { MustProcessName("a/b") })
	})
}

func TestProcessID(t *testing.T) {
	t.Run("Parse with system", func(t *testing.T) {
		pid, err := Parse("//orders/root/user/worker")
		require.NoError(t, err)
		assert.Equal(t, SystemName("orders"), pid.System())
		assert.Equal(t, "/root/user/worker", pid.Path())
		assert.Equal(t, ProcessName("worker"), pid.Name())
		assert.Equal(t, 3, pid.Count())
		assert.Equal(t, "//orders/root/user/worker", pid.String())
		assert.Equal(t, []ProcessName{"root", "user", "worker"}, pid.Segments())
	})

	t.Run("Parse without system", func(t *testing.T) {
		pid, err := Parse("/root/user")
		require.NoError(t, err)
		assert.Empty(t, pid.System())
		assert.Equal(t, "/root/user", pid.String())
	})

	t.Run("Parse rejects malformed text", func(t *testing.T) {
		for _, text := range []string{"", "root", "/", "/root//user", "//orders", "///root", "/root/a b"} {
			_, err := Parse(text)
			require.Error(t, err, text)
		}
	})

	t.Run("Child and Parent are inverse", func(t *testing.T) {
		user := MustParse("//orders/root/user")
		child := user.Child("worker")
		assert.Equal(t, MustParse("//orders/root/user/worker"), child)
		assert.Equal(t, user, child.Parent())
		assert.True(t, child.IsDescendantOf(user))
		assert.True(t, child.IsDescendantOf(MustParse("//orders/root")))
		assert.False(t, user.IsDescendantOf(child))
		assert.False(t, MustParse("//orders/root/userx").IsDescendantOf(user))
		assert.Equal(t, NoSender, MustParse("/root").Parent())
	})

	t.Run("WithSystem returns a new value", func(t *testing.T) {
		pid := MustParse("/root/user")
		other := pid.WithSystem("billing")
		assert.Empty(t, pid.System())
		assert.Equal(t, "//billing/root/user", other.String())
		assert.NotEqual(t, pid, other)
	})

	t.Run("New builds from names", func(t *testing.T) {
		assert.Equal(t, "//s/a/b", New("s", "a", "b").String())
		assert.True(t, New("s").IsZero())
	})

	t.Run("Special paths", func(t *testing.T) {
		for _, pid := range []ProcessID{Self, Sender, Parent, User, DeadLetters, Root, Errors} {
			assert.True(t, pid.IsSpecial(), pid.String())
			assert.NoError(t, pid.Validate())
		}
		assert.Equal(t, "/__special__/self", Self.String())
		assert.False(t, MustParse("/root/user").IsSpecial())
	})

	t.Run("NoSender", func(t *testing.T) {
		assert.True(t, NoSender.IsZero())
		assert.Empty(t, NoSender.String())
		assert.Nil(t, NoSender.Segments())
		assert.ErrorIs(t, NoSender.Validate(), gerrors.ErrInvalidProcessID)
	})

	t.Run("Usable as map key", func(t *testing.T) {
		set := map[ProcessID]int{MustParse("//s/root/a"): 1}
		set[MustParse("//s/root/a")]++
		assert.Len(t, set, 1)
		assert.Equal(t, 2, set[MustParse("//s/root/a")])
	})

	t.Run("JSON round trip keeps the system", func(t *testing.T) {
		type envelope struct {
			To     ProcessID `json:"to"`
			Sender ProcessID `json:"sender"`
		}

		bytes, err := json.Marshal(envelope{To: MustParse("//s/root/user/a")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"to":"//s/root/user/a","sender":""}`, string(bytes))

		var decoded envelope
		require.NoError(t, json.Unmarshal(bytes, &decoded))
		assert.Equal(t, MustParse("//s/root/user/a"), decoded.To)
		assert.True(t, decoded.Sender.IsZero())
	})
}
