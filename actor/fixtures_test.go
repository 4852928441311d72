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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/log"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type increment struct {
	By int `json:"by"`
}

type get struct{}

type block struct {
	Started chan struct{} `json:"-"`
	Release chan struct{} `json:"-"`
}

var errBoom = errors.New("boom")

// counter is the behavior shared by most tests
func counter(ctx *Context, state int, msg any) (int, error) {
	switch m := msg.(type) {
	case increment:
		return state + m.By, nil
	case get:
		return state, ctx.Reply(state)
	case string:
		if m == "boom" {
			return state, errBoom
		}
		if m == "panic" {
			panic("kaboom")
		}
	case *block:
		close(m.Started)
		<-m.Release
	}
	return state, nil
}

func startingAt(value int) SetupFunc[int] {
	return func(*Context) (int, error) {
		return value, nil
	}
}

var systemSeq = atomic.NewInt64(0)

// startSystem starts a system with a unique name stopped when the test ends
func startSystem(t *testing.T, opts ...Option) *ActorSystem {
	t.Helper()
	name := fmt.Sprintf("test-%d", systemSeq.Inc())
	system, err := StartSystem(context.Background(), name, append([]Option{WithLogger(log.DiscardLogger)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = system.Stop(context.Background())
	})
	return system
}

func spawnCounter(t *testing.T, spawner Spawner, name string, initial int, opts ...SpawnOption) address.ProcessID {
	t.Helper()
	pid, err := Spawn(spawner, name, startingAt(initial), counter, opts...)
	require.NoError(t, err)
	return pid
}

func countOf(t *testing.T, asker Asker, pid address.ProcessID) int {
	t.Helper()
	value, err := Ask[int](asker, pid, get{})
	require.NoError(t, err)
	return value
}

// peek returns the count of pid or -1 when the ask failed
func peek(asker Asker, pid address.ProcessID) int {
	value, err := Ask[int](asker, pid, get{})
	if err != nil {
		return -1
	}
	return value
}

// recorder collects the Terminated notices its process receives
type recorder struct {
	terminated chan address.ProcessID
}

func newRecorder() *recorder {
	return &recorder{terminated: make(chan address.ProcessID, 16)}
}

func (r *recorder) handle(_ *Context, state struct{}, _ any) (struct{}, error) {
	return state, nil
}

func (r *recorder) onTerminated(_ *Context, state struct{}, pid address.ProcessID) (struct{}, error) {
	r.terminated <- pid
	return state, nil
}

func (r *recorder) spawn(t *testing.T, spawner Spawner, name string) address.ProcessID {
	t.Helper()
	pid, err := Spawn(spawner, name, nil, r.handle, WithTerminated(r.onTerminated))
	require.NoError(t, err)
	return pid
}
