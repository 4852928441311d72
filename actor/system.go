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
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/cluster"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/future"
	"github.com/tochemey/echo/internal/chain"
	"github.com/tochemey/echo/internal/xsync"
	"github.com/tochemey/echo/log"
	"github.com/tochemey/echo/message"
	"github.com/tochemey/echo/persistence"
	"github.com/tochemey/echo/scheduler"
	"github.com/tochemey/echo/supervisor"
)

// ActorSystem hosts a tree of processes:
//
//	/root
//	/root/user         parent of the processes spawned from the system
//	/root/registered   aliases of the processes registered under a name
//	/root/errors       publishes every handler failure
//	/root/dead-letters publishes every undeliverable message
//
// Systems are created with StartSystem and are reachable by name from the
// whole program. Given a cluster, they also reach systems of other nodes.
type ActorSystem struct {
	name   address.SystemName
	logger log.Logger

	askTimeout        time.Duration
	shutdownTimeout   time.Duration
	cluster           cluster.Cluster
	heartbeatInterval time.Duration
	heartbeatTTL      time.Duration
	stateStore        persistence.StateStore
	jsonSerializer    *message.JSONSerializer
	serializer        message.Serializers
	meterProvider     metric.MeterProvider
	defaultSupervisor *supervisor.Supervisor
	preShutdown       func(ctx context.Context, system *ActorSystem) error
	postShutdown      func(ctx context.Context, system *ActorSystem) error
	asDefault         bool

	table     *xsync.Map[address.ProcessID, *process]
	asks      *xsync.Map[int64, *future.Future[*message.Response]]
	scheduler *scheduler.Scheduler
	remoting  *remoting
	metrics   metric.Registration

	registeredMu sync.Mutex
	registered   map[address.ProcessName][]address.ProcessID

	requestIDs       *atomic.Int64
	conversations    *atomic.Int64
	deadLettersCount *atomic.Int64
	processedCount   *atomic.Int64
	failureCount     *atomic.Int64
	restartCount     *atomic.Int64

	running  *atomic.Bool
	stopping *atomic.Bool
	started  time.Time
	ctx      context.Context
	cancel   context.CancelFunc

	rootPID        address.ProcessID
	userPID        address.ProcessID
	registeredPID  address.ProcessID
	errorsPID      address.ProcessID
	deadLettersPID address.ProcessID
	askPID         address.ProcessID
}

func newActorSystem(name address.SystemName, opts ...Option) *ActorSystem {
	system := &ActorSystem{
		name:              name,
		logger:            log.DefaultLogger,
		askTimeout:        DefaultAskTimeout,
		shutdownTimeout:   DefaultShutdownTimeout,
		heartbeatInterval: DefaultHeartbeatInterval,
		heartbeatTTL:      DefaultHeartbeatTTL,
		jsonSerializer:    message.NewJSONSerializer([]address.ProcessID{}, address.ProcessID{}, new(message.GetChildren)),
		defaultSupervisor: supervisor.DefaultSupervisor,
		table:             xsync.NewMap[address.ProcessID, *process](pidKey),
		asks:              xsync.NewMap[int64, *future.Future[*message.Response]](requestKey),
		registered:        make(map[address.ProcessName][]address.ProcessID),
		requestIDs:        atomic.NewInt64(0),
		conversations:     atomic.NewInt64(0),
		deadLettersCount:  atomic.NewInt64(0),
		processedCount:    atomic.NewInt64(0),
		failureCount:      atomic.NewInt64(0),
		restartCount:      atomic.NewInt64(0),
		running:           atomic.NewBool(false),
		stopping:          atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	system.serializer = message.Serializers{message.ProtoSerializer{}, system.jsonSerializer}
	system.logger = system.logger.With("system", name.String())
	system.scheduler = scheduler.New(system.logger, system.shutdownTimeout)

	system.rootPID = address.New(name, rootName)
	system.userPID = system.rootPID.Child(userName)
	system.registeredPID = system.rootPID.Child(registeredName)
	system.errorsPID = system.rootPID.Child(errorsName)
	system.deadLettersPID = system.rootPID.Child(deadLettersName)
	system.askPID = system.rootPID.Child(askName)
	return system
}

func requestKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (x *ActorSystem) validate() error {
	if x.askTimeout <= 0 || x.shutdownTimeout <= 0 {
		return gerrors.ErrInvalidTimeout
	}
	if x.cluster != nil && (x.heartbeatInterval <= 0 || x.heartbeatTTL <= x.heartbeatInterval) {
		return fmt.Errorf("heartbeat ttl must exceed its interval: %w", gerrors.ErrInvalidTimeout)
	}
	return nil
}

// start brings the collaborators up then spawns the system tree
func (x *ActorSystem) start(ctx context.Context) error {
	if err := x.validate(); err != nil {
		return err
	}

	x.ctx, x.cancel = context.WithCancel(context.Background())
	x.started = time.Now()

	if err := chain.New(chain.WithFailFast(), chain.WithContext(ctx)).
		AddRunner(func() error {
			// the scheduler lives as long as the system, not the start call
			x.scheduler.Start(x.ctx)
			return nil
		}).
		AddContextRunnerIf(x.stateStore != nil, func(ctx context.Context) error {
			return x.stateStore.Connect(ctx)
		}).
		AddRunner(x.spawnTree).
		AddContextRunnerIf(x.cluster != nil, func(ctx context.Context) error {
			x.remoting = newRemoting(x)
			return x.remoting.start(ctx)
		}).
		AddRunner(x.registerMetrics).
		Run(); err != nil {
		x.logger.Errorf("failed to start: %v", err)
		_ = x.dispose(context.Background(), false)
		return err
	}

	x.running.Store(true)
	x.logger.Info("process-system started")
	return nil
}

func (x *ActorSystem) spawnTree() error {
	drop := func(ctx *Context, state struct{}, msg any) (struct{}, error) {
		if _, ok := msg.(*message.Terminated); !ok {
			x.deadLetter(ctx.Sender(), ctx.Self(), msg, nil, unhandledReason)
		}
		return state, nil
	}

	if _, err := x.spawnNode(address.NoSender, rootName, drop); err != nil {
		return err
	}

	nodes := []struct {
		name    address.ProcessName
		handler HandlerFunc[struct{}]
	}{
		{userName, drop},
		{registeredName, drop},
		{errorsName, x.handleFailure},
		{deadLettersName, x.handleDeadLetter},
	}

	for _, node := range nodes {
		if _, err := x.spawnNode(x.rootPID, node.name, node.handler); err != nil {
			return err
		}
	}
	return nil
}

// dispose tears the system down. Every step runs even when a previous one failed.
func (x *ActorSystem) dispose(ctx context.Context, maintainState bool) error {
	x.running.Store(false)
	err := chain.New(chain.WithRunAll(), chain.WithContext(ctx)).
		AddContextRunner(func(ctx context.Context) error {
			return x.disposeTree(ctx, maintainState)
		}).
		AddContextRunner(func(ctx context.Context) error {
			x.scheduler.Stop(ctx)
			return nil
		}).
		AddContextRunnerIf(x.remoting != nil, func(ctx context.Context) error {
			return x.remoting.stop(ctx)
		}).
		AddContextRunnerIf(x.stateStore != nil, func(ctx context.Context) error {
			return x.stateStore.Disconnect(ctx)
		}).
		AddRunner(x.unregisterMetrics).
		Run()

	if x.cancel != nil {
		x.cancel()
	}
	return err
}

// disposeTree stops the user processes first so that their dead letters and
// failures are still observed, then the system processes
func (x *ActorSystem) disposeTree(ctx context.Context, maintainState bool) error {
	var err error
	for _, pid := range []address.ProcessID{x.userPID, x.registeredPID, x.errorsPID, x.deadLettersPID, x.rootPID} {
		if p, ok := x.table.Get(pid); ok {
			err = multierr.Append(err, p.shutdownAndWait(ctx, maintainState))
		}
	}
	return err
}

// Stop shuts the system down. The pre-shutdown hook can cancel it by
// returning ErrShutdownCancelled. The system is removed from the registry
// before the post-shutdown hook runs.
func (x *ActorSystem) Stop(ctx context.Context) error {
	if x.preShutdown != nil {
		if err := x.preShutdown(ctx, x); err != nil {
			if errors.Is(err, gerrors.ErrShutdownCancelled) {
				x.logger.Info("process-system shutdown cancelled")
				return err
			}
			x.logger.Warnf("pre-shutdown hook failed: %v", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !x.stopping.CompareAndSwap(false, true) {
		return nil
	}

	err := chain.New(chain.WithRunAll(), chain.WithContext(ctx)).
		AddContextRunner(func(ctx context.Context) error {
			return x.dispose(ctx, true)
		}).
		AddRunner(func() error {
			removeSystem(x)
			return nil
		}).
		AddContextRunnerIf(x.postShutdown != nil, func(ctx context.Context) error {
			return x.postShutdown(ctx, x)
		}).
		Run()

	x.logger.Info("process-system stopped")
	_ = x.logger.Flush()
	return err
}

// Name returns the system name
func (x *ActorSystem) Name() address.SystemName {
	return x.name
}

// Logger returns the system logger
func (x *ActorSystem) Logger() log.Logger {
	return x.logger
}

// Running reports whether the system accepts new processes
func (x *ActorSystem) Running() bool {
	return x.running.Load()
}

// Uptime returns how long the system has been running
func (x *ActorSystem) Uptime() time.Duration {
	if !x.running.Load() {
		return 0
	}
	return time.Since(x.started)
}

// Root returns the address of the root process
func (x *ActorSystem) Root() address.ProcessID { return x.rootPID }

// User returns the address of the parent of top-level processes
func (x *ActorSystem) User() address.ProcessID { return x.userPID }

// DeadLetters returns the address of the dead-letters process
func (x *ActorSystem) DeadLetters() address.ProcessID { return x.deadLettersPID }

// Errors returns the address of the errors process
func (x *ActorSystem) Errors() address.ProcessID { return x.errorsPID }

// Tell sends msg to a process without waiting for an answer.
// The message is dead-lettered when it cannot be delivered.
func (x *ActorSystem) Tell(to address.ProcessID, msg any, opts ...SendOption) error {
	return x.tell(nil, to, msg, opts...)
}

// Ask sends msg to a process and waits for the correlated response
func (x *ActorSystem) Ask(to address.ProcessID, msg any, opts ...SendOption) (any, error) {
	return x.ask(nil, to, msg, opts...)
}

// Kill stops a process and its descendants, drops its persisted state
// and waits until it is gone
func (x *ActorSystem) Kill(ctx context.Context, pid address.ProcessID) error {
	return x.stopProcess(ctx, pid, false)
}

// Shutdown stops a process and its descendants, keeps its persisted state
// and waits until it is gone
func (x *ActorSystem) Shutdown(ctx context.Context, pid address.ProcessID) error {
	return x.stopProcess(ctx, pid, true)
}

func (x *ActorSystem) stopProcess(ctx context.Context, pid address.ProcessID, maintainState bool) error {
	pid = x.qualify(x.resolve(pid))
	p, ok := x.table.Get(pid)
	if !ok {
		if _, remote := x.dispatcher(pid).(*remoteDispatcher); remote {
			return x.sendSystem(pid, &message.Shutdown{MaintainState: maintainState})
		}
		return gerrors.NewErrProcessDoesNotExist(pid.String())
	}
	if p.treeNode {
		return fmt.Errorf("(process=%s) system processes stop with the system: %w", pid, gerrors.ErrInvalidProcessID)
	}
	return p.shutdownAndWait(ctx, maintainState)
}

// Restart re-runs the Setup of a process. Its address and mailbox are kept.
func (x *ActorSystem) Restart(pid address.ProcessID) error {
	return x.sendSystem(x.qualify(x.resolve(pid)), &message.Restart{})
}

// Watch makes watcher receive a Terminated message when target stops
func (x *ActorSystem) Watch(watcher, target address.ProcessID) error {
	return x.sendSystem(x.qualify(x.resolve(watcher)), &message.DispatchWatch{Target: x.qualify(x.resolve(target))})
}

// Unwatch cancels a watch
func (x *ActorSystem) Unwatch(watcher, target address.ProcessID) error {
	return x.sendSystem(x.qualify(x.resolve(watcher)), &message.DispatchUnwatch{Target: x.qualify(x.resolve(target))})
}

// Link ties the lifetimes of two processes: when one stops, the other is shut down
func (x *ActorSystem) Link(first, second address.ProcessID) error {
	first, second = x.qualify(x.resolve(first)), x.qualify(x.resolve(second))
	return multierr.Combine(
		x.sendSystem(first, &message.Link{ID: second}),
		x.sendSystem(second, &message.Link{ID: first}),
	)
}

// Unlink removes the link between two processes
func (x *ActorSystem) Unlink(first, second address.ProcessID) error {
	first, second = x.qualify(x.resolve(first)), x.qualify(x.resolve(second))
	return multierr.Combine(
		x.sendSystem(first, &message.Unlink{ID: second}),
		x.sendSystem(second, &message.Unlink{ID: first}),
	)
}

// Children returns the live children of a process. Remote processes are asked.
func (x *ActorSystem) Children(pid address.ProcessID) ([]address.ProcessID, error) {
	pid = x.qualify(x.resolve(pid))
	switch d := x.dispatcher(pid).(type) {
	case *localDispatcher:
		return d.process.Children(), nil
	case *remoteDispatcher:
		return Ask[[]address.ProcessID](x, pid, new(message.GetChildren))
	default:
		return nil, gerrors.NewErrProcessDoesNotExist(pid.String())
	}
}

// InboxCount returns the number of user messages waiting in the mailbox of a process
func (x *ActorSystem) InboxCount(pid address.ProcessID) (int64, error) {
	d := x.dispatcher(pid)
	if !d.exists() {
		return 0, gerrors.NewErrProcessDoesNotExist(x.qualify(pid).String())
	}
	return d.inboxCount(), nil
}

// CanAccept reports whether a process exists and accepts the type of msg
func (x *ActorSystem) CanAccept(pid address.ProcessID, msg any) bool {
	d := x.dispatcher(pid)
	return d.exists() && d.accepts(msg)
}

// Exists reports whether pid addresses a live process
func (x *ActorSystem) Exists(pid address.ProcessID) bool {
	return x.dispatcher(pid).exists()
}

// ProcessCount returns the number of live processes, system processes included
func (x *ActorSystem) ProcessCount() int {
	return x.table.Len()
}

// DeadLettersCount returns the number of messages that could not be delivered
func (x *ActorSystem) DeadLettersCount() int64 {
	return x.deadLettersCount.Load()
}

// deadLetter records an undeliverable message. Dead letters are never dead-lettered themselves.
func (x *ActorSystem) deadLetter(sender, recipient address.ProcessID, content any, err error, reason string) {
	x.deadLettersCount.Inc()
	letter := message.DeadLetter{
		Sender:    sender,
		Recipient: recipient,
		Err:       err,
		Reason:    reason,
		Message:   content,
		Time:      time.Now(),
	}
	x.logger.Debug(letter.String())
	if p, ok := x.table.Get(x.deadLettersPID); ok {
		_ = p.enqueue(&message.User{Header: message.Header{Sender: sender}, Content: letter})
	}
}

// reportFailure forwards a failure to the errors process
func (x *ActorSystem) reportFailure(failure message.Failure) {
	x.failureCount.Inc()
	if p, ok := x.table.Get(x.errorsPID); ok {
		_ = p.enqueue(&message.User{Header: message.Header{Sender: failure.Process}, Content: failure})
	}
}

func (x *ActorSystem) handleDeadLetter(ctx *Context, state struct{}, msg any) (struct{}, error) {
	letter, ok := msg.(message.DeadLetter)
	if !ok {
		letter = message.DeadLetter{Sender: ctx.Sender(), Recipient: ctx.Self(), Message: msg, Time: time.Now()}
	}
	ctx.Publish(letter)
	return state, nil
}

func (x *ActorSystem) handleFailure(ctx *Context, state struct{}, msg any) (struct{}, error) {
	if failure, ok := msg.(message.Failure); ok {
		ctx.Publish(failure)
	}
	return state, nil
}

// deregisterProcess forgets every name pid was registered under
func (x *ActorSystem) deregisterProcess(pid address.ProcessID) {
	_ = x.DeregisterByID(pid)
}
