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

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/supervisor"
)

// Spawner is where new processes are attached. Spawning from an
// ActorSystem creates top-level processes under the user root; spawning
// from a Context creates children of the current process.
type Spawner interface {
	spawnParent() (*ActorSystem, address.ProcessID)
}

var (
	_ Spawner = (*ActorSystem)(nil)
	_ Spawner = (*Context)(nil)
)

// Spawn starts a process named name under spawner. setup builds the
// initial state and handler processes every message.
//
// Spawn returns once Setup completed; a failing Setup leaves nothing behind
// and returns a ProcessSetupError.
func Spawn[S any](spawner Spawner, name string, setup SetupFunc[S], handler HandlerFunc[S], opts ...SpawnOption) (address.ProcessID, error) {
	system, parent := spawner.spawnParent()
	config := newSpawnConfig(system)
	for _, opt := range opts {
		opt.Apply(config)
	}

	b, err := newTypedBehavior(setup, handler, config)
	if err != nil {
		return address.NoSender, err
	}

	if config.flags.Has(PersistState) {
		if zero := b.zero(); zero != nil {
			system.jsonSerializer.Register(zero)
		}
	}

	return system.spawn(parent, name, b, config)
}

// spawn attaches a new process to the table and runs its initialization
func (x *ActorSystem) spawn(parentID address.ProcessID, name string, b behavior, config *spawnConfig) (address.ProcessID, error) {
	if !x.running.Load() {
		return address.NoSender, gerrors.NewErrProcessSystemNotFound(x.name.String())
	}

	processName, err := address.NewProcessName(name)
	if err != nil {
		return address.NoSender, err
	}

	parent, ok := x.table.Get(parentID)
	if !ok || !parent.isRunning() {
		return address.NoSender, gerrors.NewErrProcessDoesNotExist(parentID.String())
	}

	id := parentID.Child(processName)
	p := newProcess(x, id, parentID, b, config)
	if !x.table.SetIfAbsent(id, p) {
		return address.NoSender, gerrors.NewErrNamedProcessAlreadyExists(id.String())
	}

	parent.children.Add(id)
	// the parent may have started stopping before it saw the new child
	if !parent.isRunning() {
		x.rollback(parent, p)
		return address.NoSender, gerrors.NewErrProcessShutdown(parentID.String())
	}

	ctx, cancel := context.WithTimeout(x.ctx, x.shutdownTimeout)
	defer cancel()

	if err := p.initialize(ctx); err != nil {
		x.rollback(parent, p)
		return address.NoSender, p.setupError(err)
	}

	p.status.Store(running)
	p.release()

	if config.register != "" {
		if _, err := x.Register(config.register, id); err != nil {
			p.logger.Warnf("failed to register as %s: %v", config.register, err)
		}
	}

	p.logger.Debug("process spawned")
	return id, nil
}

// rollback removes a process that failed to spawn and releases its waiters
func (x *ActorSystem) rollback(parent *process, p *process) {
	parent.children.Remove(p.id)
	x.table.Delete(p.id)
	p.abort()
}

// spawnNode starts one of the processes of the system tree
func (x *ActorSystem) spawnNode(parentID address.ProcessID, name address.ProcessName, handler HandlerFunc[struct{}]) (*process, error) {
	config := newSpawnConfig(x)
	config.supervisor = supervisor.NewSupervisor(supervisor.WithAnyErrorDirective(supervisor.ResumeDirective))
	b, err := newTypedBehavior(nil, handler, config)
	if err != nil {
		return nil, err
	}

	id := address.New(x.name, name)
	if !parentID.IsZero() {
		id = parentID.Child(name)
	}

	p := newProcess(x, id, parentID, b, config)
	p.treeNode = true
	if !x.table.SetIfAbsent(id, p) {
		return nil, gerrors.NewErrNamedProcessAlreadyExists(id.String())
	}
	if parent, ok := x.table.Get(parentID); ok {
		parent.children.Add(id)
	}

	p.status.Store(running)
	p.release()
	return p, nil
}

// spawnParent implements Spawner: processes spawned from the system are top-level
func (x *ActorSystem) spawnParent() (*ActorSystem, address.ProcessID) {
	return x, x.userPID
}
