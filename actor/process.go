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
	"reflect"
	"runtime"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/eventstream"
	"github.com/tochemey/echo/internal/queue"
	"github.com/tochemey/echo/internal/registry"
	"github.com/tochemey/echo/internal/xsync"
	"github.com/tochemey/echo/log"
	"github.com/tochemey/echo/message"
	"github.com/tochemey/echo/persistence"
	"github.com/tochemey/echo/supervisor"
)

// process is the runtime record of a spawned process. It is owned by the
// process table of its system; relatives are referenced by ProcessID only.
//
// The behavior and the failure history are only touched by the drain loop,
// which runs on at most one goroutine at a time: ownership is taken by
// switching processing from idle to busy.
type process struct {
	id         address.ProcessID
	parent     address.ProcessID
	system     *ActorSystem
	behavior   behavior
	flags      Flags
	supervisor *supervisor.Supervisor
	history    supervisor.FailureHistory
	logger     log.Logger
	treeNode   bool

	systemQueue    *queue.Mpsc[message.Message]
	mailbox        Mailbox
	maxMailboxSize int

	processing *atomic.Int32
	status     *atomic.Int32
	suspended  *atomic.Bool
	// gate orders enqueues against the transition to stopping
	gate sync.RWMutex
	done chan struct{}

	children      mapset.Set[address.ProcessID]
	watchers      mapset.Set[address.ProcessID]
	watching      mapset.Set[address.ProcessID]
	links         mapset.Set[address.ProcessID]
	subscriptions *xsync.Map[address.ProcessID, *eventstream.Subscription]

	publishStream *eventstream.Stream
	stateStream   *eventstream.Stream

	accepted           *registry.Registry
	acceptedInterfaces []reflect.Type

	processedCount *atomic.Int64
	restartCount   *atomic.Int64
}

func newProcess(system *ActorSystem, id, parent address.ProcessID, b behavior, config *spawnConfig) *process {
	p := &process{
		id:             id,
		parent:         parent,
		system:         system,
		behavior:       b,
		flags:          config.flags,
		supervisor:     config.supervisor,
		logger:         system.logger.With("process", id.String()),
		systemQueue:    queue.NewMpsc[message.Message](),
		maxMailboxSize: config.maxMailboxSize,
		processing:     atomic.NewInt32(busy),
		status:         atomic.NewInt32(starting),
		suspended:      atomic.NewBool(false),
		done:           make(chan struct{}),
		children:       mapset.NewSet[address.ProcessID](),
		watchers:       mapset.NewSet[address.ProcessID](),
		watching:       mapset.NewSet[address.ProcessID](),
		links:          mapset.NewSet[address.ProcessID](),
		subscriptions:  xsync.NewMap[address.ProcessID, *eventstream.Subscription](pidKey),
		publishStream:  eventstream.New(),
		stateStream:    eventstream.New(),
		processedCount: atomic.NewInt64(0),
		restartCount:   atomic.NewInt64(0),
	}

	if p.supervisor == nil {
		p.supervisor = supervisor.DefaultSupervisor
	}

	p.mailbox = NewUnboundedMailbox()
	if config.maxMailboxSize > 0 {
		p.mailbox = NewBoundedMailbox(config.maxMailboxSize)
	}

	if len(config.acceptedTypes) > 0 {
		p.accepted = registry.New()
		for _, t := range config.acceptedTypes {
			rtype := registry.TypeOf(t)
			if rtype == nil {
				continue
			}
			if rtype.Kind() == reflect.Pointer && rtype.Elem().Kind() == reflect.Interface {
				p.acceptedInterfaces = append(p.acceptedInterfaces, rtype.Elem())
				continue
			}
			p.accepted.Register(rtype)
		}
	}

	return p
}

func pidKey(pid address.ProcessID) string {
	return pid.String()
}

// enqueue hands msg to the process without blocking
func (p *process) enqueue(msg message.Message) error {
	p.gate.RLock()
	if p.status.Load() >= stopping {
		p.gate.RUnlock()
		return gerrors.NewErrProcessShutdown(p.id.String())
	}

	var err error
	if msg.Tag() == message.SystemTag {
		p.systemQueue.Push(msg)
	} else if err = p.mailbox.Enqueue(msg); errors.Is(err, gerrors.ErrProcessInboxFull) {
		err = &gerrors.InboxFullError{
			Process: p.id.String(),
			MaxSize: p.maxMailboxSize,
			Type:    registry.NameOf(contentOf(msg)),
		}
	}
	p.gate.RUnlock()

	if err != nil {
		return err
	}
	p.schedule()
	return nil
}

// schedule starts a drain loop unless one is already running
func (p *process) schedule() {
	if p.processing.CompareAndSwap(idle, busy) {
		go p.drain()
	}
}

// release gives up drain ownership taken at spawn
func (p *process) release() {
	p.processing.Store(idle)
	if p.hasWork() {
		p.schedule()
	}
}

func (p *process) hasWork() bool {
	return !p.systemQueue.IsEmpty() || (!p.suspended.Load() && !p.mailbox.IsEmpty())
}

func (p *process) next() message.Message {
	if msg, ok := p.systemQueue.Pop(); ok {
		return msg
	}
	if p.suspended.Load() {
		return nil
	}
	return p.mailbox.Dequeue()
}

func (p *process) drain() {
	for {
		for msg := p.next(); msg != nil; msg = p.next() {
			p.receive(msg)
			if p.status.Load() == stopped {
				// a stopped process keeps ownership forever
				return
			}
		}

		p.processing.Store(idle)
		if p.hasWork() && p.processing.CompareAndSwap(idle, busy) {
			continue
		}
		return
	}
}

func (p *process) receive(msg message.Message) {
	switch m := msg.(type) {
	case *message.Shutdown:
		p.stop(m.MaintainState)
	case *message.Restart:
		p.restart()
	case *message.Watch:
		p.watchers.Add(m.Watcher)
	case *message.Unwatch:
		p.watchers.Remove(m.Watcher)
	case *message.Link:
		p.links.Add(m.ID)
	case *message.Unlink:
		p.links.Remove(m.ID)
	case *message.DispatchWatch:
		p.watch(m.Target)
	case *message.DispatchUnwatch:
		p.unwatch(m.Target)
	case *message.Escalation:
		p.supervise(m.Child, nil, m.Err)
	case *message.Terminated:
		p.watching.Remove(m.ID)
		ctx := newContext(p, message.Header{Sender: m.ID}, nil, m)
		if err := p.safely(func() error { return p.behavior.terminated(ctx, m.ID) }); err != nil {
			p.fail(m.ID, m, nil, false, err)
			return
		}
		p.publishState()
	case *message.Null:
	case *message.GetChildren:
	case *message.User:
		p.invoke(m.Header, m.Content, nil)
	case *message.Request:
		if _, ok := m.Content.(*message.GetChildren); ok {
			p.system.respond(p.id, m, p.Children(), nil)
			return
		}
		p.invoke(m.Header, m.Content, m)
	case *message.Response:
		p.invoke(m.Header, m, nil)
	default:
		p.logger.Warnf("unhandled message %T", msg)
	}
}

// invoke runs the handler for one message
func (p *process) invoke(header message.Header, content any, request *message.Request) {
	ctx := newContext(p, header, request, content)
	err := p.safely(func() error { return p.behavior.handle(ctx, content) })
	ctx.close()

	p.processedCount.Inc()
	p.system.processedCount.Inc()

	if err == nil {
		p.publishState()
		return
	}
	p.fail(header.Sender, content, request, ctx.replied, err)
}

// safely runs fn and turns a panic into an error carrying the call site
func (p *process) safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, _ := runtime.Caller(2)
			caller := fmt.Sprintf("%s[%s:%d]", runtime.FuncForPC(pc).Name(), file, line)
			err = gerrors.NewProcessSystemError(p.id.String(), caller, gerrors.NewPanicError(r))
		}
	}()

	if err := fn(); err != nil {
		if errors.Is(err, gerrors.ErrProcessKill) {
			return err
		}
		return gerrors.NewProcessSystemError(p.id.String(), "", err)
	}
	return nil
}

func (p *process) fail(sender address.ProcessID, content any, request *message.Request, replied bool, err error) {
	if errors.Is(err, gerrors.ErrProcessKill) {
		p.stop(false)
		return
	}

	// the asker fails fast instead of waiting for its timeout
	if request != nil && !replied {
		p.system.respond(p.id, request, nil, err)
	}
	p.supervise(sender, content, err)
}

// supervise applies the decision of the supervisor to a failure
func (p *process) supervise(sender address.ProcessID, content any, err error) {
	now := time.Now()
	decision := p.supervisor.Decide(p.history, err, now)
	p.history = decision.History

	failure := message.Failure{
		Process:   p.id,
		Sender:    sender,
		Message:   content,
		Err:       err,
		Directive: decision.Directive,
		Time:      now,
	}
	p.logger.Error(failure.String())
	p.system.reportFailure(failure)

	switch decision.Directive {
	case supervisor.ResumeDirective:
	case supervisor.RestartDirective:
		if decision.Strategy == supervisor.OneForAllStrategy {
			p.siblingsDo(func(sibling *process) { _ = sibling.enqueue(&message.Restart{}) })
		}
		p.restartAfter(decision.Delay)
	case supervisor.StopDirective:
		if content != nil {
			p.system.deadLetter(sender, p.id, content, err, "")
		}
		if decision.Strategy == supervisor.OneForAllStrategy {
			p.siblingsDo(func(sibling *process) { _ = sibling.enqueue(&message.Shutdown{}) })
		}
		p.stop(false)
	case supervisor.EscalateDirective:
		p.escalate(err)
	}
}

func (p *process) siblingsDo(fn func(sibling *process)) {
	parent, ok := p.system.table.Get(p.parent)
	if !ok {
		return
	}
	for _, id := range parent.children.ToSlice() {
		if id == p.id {
			continue
		}
		if sibling, ok := p.system.table.Get(id); ok {
			fn(sibling)
		}
	}
}

// escalate hands the failure to the parent. Tree nodes cannot take a
// failure, so a top-level process is stopped instead.
func (p *process) escalate(err error) {
	parent, ok := p.system.table.Get(p.parent)
	if !ok || parent.treeNode {
		p.logger.Warnf("failure escalated to %s, stopping", p.parent)
		p.stop(false)
		return
	}
	if e := parent.enqueue(&message.Escalation{Child: p.id, Err: err}); e != nil {
		p.stop(false)
	}
}

// restartAfter restarts now or holds user messages back until the backoff elapsed
func (p *process) restartAfter(delay time.Duration) {
	if delay <= 0 {
		p.restart()
		return
	}
	p.suspended.Store(true)
	time.AfterFunc(delay, func() {
		if err := p.enqueue(&message.Restart{}); err != nil {
			p.suspended.Store(false)
		}
	})
}

// restart rebuilds the state with Setup. The address and the mailbox are kept.
func (p *process) restart() {
	p.suspended.Store(false)
	ctx := newContext(p, message.Header{}, nil, nil)
	if err := p.safely(func() error { return p.behavior.setup(ctx) }); err != nil {
		p.logger.Error(p.setupError(err))
		p.stop(false)
		return
	}
	p.restartCount.Inc()
	p.system.restartCount.Inc()
	p.logger.Debug("process restarted")
}

// initialize produces the first state: resurrected from the state store or built by Setup
func (p *process) initialize(ctx context.Context) error {
	if p.flags.Has(PersistState) && p.system.stateStore != nil {
		restored, err := p.resurrect(ctx)
		if err != nil {
			return err
		}
		if restored {
			p.logger.Debug("process state restored")
			return nil
		}
	}

	setupCtx := newContext(p, message.Header{}, nil, nil)
	return p.safely(func() error { return p.behavior.setup(setupCtx) })
}

// setupError reports a failed Setup without the process prefix added by safely
func (p *process) setupError(err error) *gerrors.ProcessSetupError {
	var sysErr *gerrors.ProcessSystemError
	if errors.As(err, &sysErr) {
		err = sysErr.Unwrap()
		if sysErr.Caller != "" {
			err = fmt.Errorf("%w at %s", err, sysErr.Caller)
		}
	}
	return gerrors.NewProcessSetupError(p.id.String(), err)
}

func (p *process) resurrect(ctx context.Context) (bool, error) {
	var snapshot *persistence.Snapshot
	retrier := retry.NewRetrier(3, 10*time.Millisecond, 100*time.Millisecond)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var err error
		snapshot, err = p.system.stateStore.Load(ctx, p.id)
		if errors.Is(err, gerrors.ErrStateNotFound) {
			snapshot = nil
			return nil
		}
		return err
	})
	if err != nil || snapshot == nil {
		return false, err
	}

	value, err := p.system.serializer.Unmarshal(snapshot.ContentType, snapshot.Data)
	if err != nil {
		return false, err
	}
	return true, p.behavior.restore(value)
}

func (p *process) persist(ctx context.Context, maintainState bool) {
	store := p.system.stateStore
	if store == nil || !p.flags.Has(PersistState) {
		return
	}

	if !maintainState {
		if err := store.Delete(ctx, p.id); err != nil {
			p.logger.Warnf("failed to delete persisted state: %v", err)
		}
		return
	}

	contentType, data, err := p.system.serializer.Marshal(p.behavior.state())
	if err != nil {
		p.logger.Errorf("failed to encode state: %v", err)
		return
	}
	if err := store.Save(ctx, &persistence.Snapshot{
		ProcessID:   p.id,
		ContentType: contentType,
		Data:        data,
	}); err != nil {
		p.logger.Errorf("failed to persist state: %v", err)
	}
}

// stop terminates the process from its own drain loop: children first,
// then the shutdown function, then watchers, then the queues and streams.
func (p *process) stop(maintainState bool) {
	p.gate.Lock()
	if p.status.Load() >= stopping {
		p.gate.Unlock()
		return
	}
	p.status.Store(stopping)
	p.gate.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.system.shutdownTimeout)
	defer cancel()

	p.stopChildren(ctx, maintainState)

	shutdownCtx := newContext(p, message.Header{}, nil, nil)
	if err := p.safely(func() error { return p.behavior.shutdown(shutdownCtx) }); err != nil {
		p.logger.Warnf("shutdown function failed: %v", err)
	}
	p.persist(ctx, maintainState)

	p.system.table.Delete(p.id)
	if parent, ok := p.system.table.Get(p.parent); ok {
		parent.children.Remove(p.id)
	}
	p.system.deregisterProcess(p.id)

	p.subscriptions.Range(func(_ address.ProcessID, sub *eventstream.Subscription) {
		sub.Unsubscribe()
	})
	p.subscriptions.Reset()

	for _, target := range p.watching.ToSlice() {
		_ = p.system.sendSystem(target, &message.Unwatch{Watcher: p.id})
	}
	for _, watcher := range p.watchers.ToSlice() {
		p.system.notify(watcher, &message.Terminated{ID: p.id})
	}
	p.watchers.Clear()
	for _, linked := range p.links.ToSlice() {
		_ = p.system.sendSystem(linked, &message.Shutdown{})
	}

	p.publishStream.Close()
	p.stateStream.Close()
	p.drainLeftovers()

	p.status.Store(stopped)
	close(p.done)
	p.logger.Debug("process stopped")
}

// abort settles a process that never finished spawning. The caller still
// owns the drain loop and keeps it, so nothing queued is ever handled.
func (p *process) abort() {
	p.gate.Lock()
	p.status.Store(stopped)
	p.gate.Unlock()

	// children spawned by Setup before it failed
	ctx, cancel := context.WithTimeout(context.Background(), p.system.shutdownTimeout)
	defer cancel()
	p.stopChildren(ctx, false)

	p.system.deregisterProcess(p.id)
	p.subscriptions.Range(func(_ address.ProcessID, sub *eventstream.Subscription) {
		sub.Unsubscribe()
	})
	p.subscriptions.Reset()
	for _, target := range p.watching.ToSlice() {
		_ = p.system.sendSystem(target, &message.Unwatch{Watcher: p.id})
	}

	p.publishStream.Close()
	p.stateStream.Close()
	p.drainLeftovers()
	close(p.done)
	p.logger.Debug("process aborted")
}

func (p *process) stopChildren(ctx context.Context, maintainState bool) {
	var g errgroup.Group
	for _, id := range p.children.ToSlice() {
		child, ok := p.system.table.Get(id)
		if !ok {
			continue
		}
		g.Go(func() error {
			return child.shutdownAndWait(ctx, maintainState)
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warnf("children shutdown incomplete: %v", err)
	}
}

// shutdownAndWait asks the process to stop and waits until it did
func (p *process) shutdownAndWait(ctx context.Context, maintainState bool) error {
	// a process already stopping rejects the command, waiting is enough
	_ = p.enqueue(&message.Shutdown{MaintainState: maintainState})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("(process=%s) shutdown: %w", p.id, ctx.Err())
	}
}

// drainLeftovers settles what is still queued once no enqueue can happen anymore
func (p *process) drainLeftovers() {
	for msg, ok := p.systemQueue.Pop(); ok; msg, ok = p.systemQueue.Pop() {
		if watch, isWatch := msg.(*message.Watch); isWatch {
			p.system.notify(watch.Watcher, &message.Terminated{ID: p.id})
		}
	}

	for msg := p.mailbox.Dequeue(); msg != nil; msg = p.mailbox.Dequeue() {
		switch m := msg.(type) {
		case *message.Request:
			p.system.respond(p.id, m, nil, gerrors.NewErrProcessShutdown(p.id.String()))
			p.system.deadLetter(m.Sender, p.id, m.Content, nil, shutdownReason)
		case *message.User:
			p.system.deadLetter(m.Sender, p.id, m.Content, nil, shutdownReason)
		}
	}
	p.mailbox.Dispose()
}

// watch registers the process as a watcher of target
func (p *process) watch(target address.ProcessID) {
	target = p.system.qualify(target)
	if target == p.id || p.watching.Contains(target) {
		return
	}
	p.watching.Add(target)
	if err := p.system.sendSystem(target, &message.Watch{Watcher: p.id}); err != nil {
		// target is gone already
		p.watching.Remove(target)
		_ = p.enqueue(&message.Terminated{ID: target})
	}
}

func (p *process) unwatch(target address.ProcessID) {
	target = p.system.qualify(target)
	if p.watching.Contains(target) {
		p.watching.Remove(target)
		_ = p.system.sendSystem(target, &message.Unwatch{Watcher: p.id})
	}
}

func (p *process) publish(value any) {
	p.publishStream.Publish(value)
	if p.flags.Has(RemotePublish) && p.system.remoting != nil {
		p.system.remoting.publish(publishChannel(p.id), value)
	}
}

func (p *process) publishState() {
	if p.stateStream.SubscribersCount() > 0 {
		p.stateStream.Publish(p.behavior.state())
	}
	if p.flags.Has(RemoteStatePublish) && p.system.remoting != nil {
		p.system.remoting.publish(stateChannel(p.id), p.behavior.state())
	}
}

// accepts reports whether content passes the accepted types of the process
func (p *process) accepts(content any) bool {
	if p.accepted == nil && len(p.acceptedInterfaces) == 0 {
		return true
	}
	if p.accepted != nil && p.accepted.Exists(content) {
		return true
	}
	rtype := reflect.TypeOf(content)
	if rtype == nil {
		return false
	}
	for _, iface := range p.acceptedInterfaces {
		if rtype.Implements(iface) {
			return true
		}
	}
	return false
}

// Children returns the addresses of the live children
func (p *process) Children() []address.ProcessID {
	return p.children.ToSlice()
}

func (p *process) isRunning() bool {
	return p.status.Load() < stopping
}

// contentOf returns the payload carried by msg
func contentOf(msg message.Message) any {
	switch m := msg.(type) {
	case *message.User:
		return m.Content
	case *message.Request:
		return m.Content
	case *message.Response:
		return m.Content
	default:
		return msg
	}
}
