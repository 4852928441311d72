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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/cluster"
	"github.com/tochemey/echo/log"
	"github.com/tochemey/echo/persistence"
	"github.com/tochemey/echo/supervisor"
)

// Option is the interface that applies a configuration option to an ActorSystem
type Option interface {
	// Apply sets the Option value of a config.
	Apply(system *ActorSystem)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(system *ActorSystem)

// Apply applies the option
func (f OptionFunc) Apply(system *ActorSystem) {
	f(system)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.logger = logger
	})
}

// WithAskTimeout sets the default ask timeout
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.askTimeout = timeout
	})
}

// WithShutdownTimeout bounds the shutdown of a process tree
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.shutdownTimeout = timeout
	})
}

// WithCluster sets the cluster collaborator used to reach remote systems
func WithCluster(cl cluster.Cluster) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.cluster = cl
	})
}

// WithHeartbeat sets the liveness refresh interval and TTL of a clustered system
func WithHeartbeat(interval, ttl time.Duration) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.heartbeatInterval = interval
		system.heartbeatTTL = ttl
	})
}

// WithStateStore sets the store used by processes spawned with PersistState
func WithStateStore(store persistence.StateStore) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.stateStore = store
	})
}

// WithMessageTypes registers the payload types that can be decoded after crossing a node boundary
func WithMessageTypes(types ...any) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.jsonSerializer.Register(types...)
	})
}

// WithMeterProvider sets the MeterProvider of the system instruments
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.meterProvider = provider
	})
}

// WithDefaultSupervisor sets the supervisor of processes spawned without one
func WithDefaultSupervisor(s *supervisor.Supervisor) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.defaultSupervisor = s
	})
}

// WithPreShutdown runs hook before the process tree is disposed.
// Returning ErrShutdownCancelled keeps the system running.
func WithPreShutdown(hook func(ctx context.Context, system *ActorSystem) error) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.preShutdown = hook
	})
}

// WithPostShutdown runs hook once the system was removed from the registry
func WithPostShutdown(hook func(ctx context.Context, system *ActorSystem) error) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.postShutdown = hook
	})
}

// AsDefault makes the system the default one
func AsDefault() Option {
	return OptionFunc(func(system *ActorSystem) {
		system.asDefault = true
	})
}

// SpawnOption configures a process at spawn time
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOptionFunc(nil)

type spawnOptionFunc func(config *spawnConfig)

func (f spawnOptionFunc) Apply(config *spawnConfig) {
	f(config)
}

type spawnConfig struct {
	flags          Flags
	supervisor     *supervisor.Supervisor
	maxMailboxSize int
	acceptedTypes  []any
	terminated     any
	shutdown       any
	register       string
}

func newSpawnConfig(system *ActorSystem) *spawnConfig {
	return &spawnConfig{supervisor: system.defaultSupervisor}
}

// WithFlags sets the process flags
func WithFlags(flags Flags) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.flags = flags
	})
}

// WithSupervisor sets the supervisor consulted when the process fails
func WithSupervisor(s *supervisor.Supervisor) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.supervisor = s
	})
}

// WithMaxMailboxSize bounds the mailbox. Zero or less means unbounded.
func WithMaxMailboxSize(size int) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.maxMailboxSize = size
	})
}

// WithAcceptedTypes restricts the payload types the process accepts.
// Interface types are given as a nil pointer to the interface, e.g. (*fmt.Stringer)(nil).
func WithAcceptedTypes(types ...any) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.acceptedTypes = append(config.acceptedTypes, types...)
	})
}

// WithTerminated sets the handler of Terminated notifications of watched processes.
// S must be the state type of the spawned process.
func WithTerminated[S any](fn TerminatedFunc[S]) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.terminated = fn
	})
}

// WithShutdown sets the function run when the process shuts down.
// S must be the state type of the spawned process.
func WithShutdown[S any](fn ShutdownFunc[S]) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.shutdown = fn
	})
}

// WithRegisteredName registers the process under name once spawned
func WithRegisteredName(name string) SpawnOption {
	return spawnOptionFunc(func(config *spawnConfig) {
		config.register = name
	})
}

// SendOption configures a single tell or ask
type SendOption func(config *sendConfig)

type sendConfig struct {
	sender    *address.ProcessID
	sessionID string
	timeout   time.Duration
}

func newSendConfig(opts ...SendOption) *sendConfig {
	config := new(sendConfig)
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithSender sets the sender of the message. Inside a handler the sender defaults to the current process.
func WithSender(sender address.ProcessID) SendOption {
	return func(config *sendConfig) {
		config.sender = &sender
	}
}

// WithSession sets the session id carried by the message
func WithSession(sessionID string) SendOption {
	return func(config *sendConfig) {
		config.sessionID = sessionID
	}
}

// WithTimeout sets the wait of an ask
func WithTimeout(timeout time.Duration) SendOption {
	return func(config *sendConfig) {
		config.timeout = timeout
	}
}
