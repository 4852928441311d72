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

package xsync

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("With basic operations", func(t *testing.T) {
		m := NewStringMap[int]()
		m.Set("a", 1)
		m.Set("b", 2)

		v, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, v)
		assert.Equal(t, 2, m.Len())
		assert.ElementsMatch(t, []string{"a", "b"}, m.Keys())
		assert.ElementsMatch(t, []int{1, 2}, m.Values())

		assert.False(t, m.SetIfAbsent("a", 10))
		assert.True(t, m.SetIfAbsent("c", 3))

		v, ok = m.Pop("c")
		require.True(t, ok)
		assert.Equal(t, 3, v)
		_, ok = m.Pop("c")
		assert.False(t, ok)

		m.Delete("a")
		m.Delete("missing")
		_, ok = m.Get("a")
		assert.False(t, ok)

		m.Reset()
		assert.Zero(t, m.Len())
	})

	t.Run("With custom keys", func(t *testing.T) {
		type key struct{ a, b string }
		m := NewMap[key, bool](func(k key) string { return k.a + "/" + k.b })
		m.Set(key{"x", "y"}, true)
		v, ok := m.Get(key{"x", "y"})
		assert.True(t, ok)
		assert.True(t, v)
	})

	t.Run("With concurrent writers", func(t *testing.T) {
		m := NewStringMap[int]()
		wg := sync.WaitGroup{}
		for i := range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Set(strconv.Itoa(i), i)
			}()
		}
		wg.Wait()
		assert.Equal(t, 100, m.Len())
	})
}
