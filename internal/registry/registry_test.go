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

package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct{ ID string }

func TestRegistry(t *testing.T) {
	r := New()
	r.Register(event{})
	r.Register(new(event))
	r.Register(reflect.TypeOf(0))

	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Exists(event{ID: "x"}))
	assert.True(t, r.Exists(&event{}))
	assert.True(t, r.Exists(42))
	assert.False(t, r.Exists("text"))

	rtype, ok := r.Lookup("github.com/tochemey/echo/internal/registry.event")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(event{}), rtype)

	rtype, ok = r.Lookup("*github.com/tochemey/echo/internal/registry.event")
	require.True(t, ok)
	assert.Equal(t, reflect.Pointer, rtype.Kind())

	r.Deregister(event{})
	assert.False(t, r.Exists(event{}))
}

func TestName(t *testing.T) {
	assert.Equal(t, "int", NameOf(1))
	assert.Equal(t, "string", NameOf("a"))
	assert.Equal(t, "[]uint8", NameOf([]byte{}))
	assert.Equal(t, "<nil>", Name(nil))
	assert.Equal(t, "<nil>", NameOf(nil))
}
