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

package testkit

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/atomic"

	"github.com/tochemey/echo/actor"
	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/log"
)

var kits = atomic.NewInt64(0)

// TestKit runs a dedicated process-system for a test
type TestKit struct {
	system        *actor.ActorSystem
	kt            *testing.T
	logger        log.Logger
	systemOptions []actor.Option
	probes        *atomic.Int64
}

// New creates an instance of TestKit
func New(ctx context.Context, t *testing.T, opts ...Option) *TestKit {
	testkit := &TestKit{
		kt:     t,
		logger: log.DiscardLogger,
		probes: atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt.Apply(testkit)
	}

	name := fmt.Sprintf("testkit-%d", kits.Inc())
	options := append([]actor.Option{actor.WithLogger(testkit.logger)}, testkit.systemOptions...)
	system, err := actor.StartSystem(ctx, name, options...)
	if err != nil {
		t.Fatal(err.Error())
	}

	testkit.system = system
	return testkit
}

// System returns the process-system under test
func (k *TestKit) System() *actor.ActorSystem {
	return k.system
}

// Spawn creates a top-level process and fails the test when it cannot
func Spawn[S any](k *TestKit, name string, setup actor.SetupFunc[S], handler actor.HandlerFunc[S], opts ...actor.SpawnOption) address.ProcessID {
	pid, err := actor.Spawn(k.system, name, setup, handler, opts...)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	return pid
}

// NewProbe creates a test probe
func (k *TestKit) NewProbe() *Probe {
	name := fmt.Sprintf("probe-%d", k.probes.Inc())
	testProbe, err := newProbe(k.system, name, k.kt)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	return testProbe
}

// Shutdown stops the test kit
func (k *TestKit) Shutdown(ctx context.Context) {
	if err := k.system.Stop(ctx); err != nil {
		k.kt.Fatal(err.Error())
	}
}
