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
	"sort"

	"go.uber.org/atomic"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
)

// systems is the immutable view of the running systems. Updates swap the
// whole view so readers never lock.
type systems struct {
	byName      map[address.SystemName]*ActorSystem
	defaultName address.SystemName
}

var liveSystems = atomic.NewPointer(&systems{byName: map[address.SystemName]*ActorSystem{}})

// update applies fn to a copy of the current view until the swap wins
func update(fn func(next *systems) bool) bool {
	for {
		current := liveSystems.Load()
		next := &systems{
			byName:      make(map[address.SystemName]*ActorSystem, len(current.byName)+1),
			defaultName: current.defaultName,
		}
		for name, system := range current.byName {
			next.byName[name] = system
		}
		if !fn(next) {
			return false
		}
		if liveSystems.CompareAndSwap(current, next) {
			return true
		}
	}
}

// StartSystem starts a system and makes it reachable by name. The first
// system started becomes the default one unless another asks for it with AsDefault.
func StartSystem(ctx context.Context, name string, opts ...Option) (*ActorSystem, error) {
	systemName, err := address.NewSystemName(name)
	if err != nil {
		return nil, err
	}
	if _, ok := findSystem(systemName); ok {
		return nil, gerrors.NewErrProcessSystemAlreadyStarted(name)
	}

	system := newActorSystem(systemName, opts...)
	if err := system.start(ctx); err != nil {
		return nil, err
	}

	added := update(func(next *systems) bool {
		if _, exists := next.byName[systemName]; exists {
			return false
		}
		next.byName[systemName] = system
		if system.asDefault || next.defaultName == "" {
			next.defaultName = systemName
		}
		return true
	})

	if !added {
		// lost a race against a system with the same name
		_ = system.dispose(context.Background(), false)
		return nil, gerrors.NewErrProcessSystemAlreadyStarted(name)
	}
	return system, nil
}

// StopSystem stops the system with the given name
func StopSystem(ctx context.Context, name string) error {
	system, err := FindSystem(name)
	if err != nil {
		return err
	}
	return system.Stop(ctx)
}

// FindSystem returns the running system with the given name
func FindSystem(name string) (*ActorSystem, error) {
	system, ok := findSystem(address.SystemName(name))
	if !ok {
		return nil, gerrors.NewErrProcessSystemNotFound(name)
	}
	return system, nil
}

// SystemExists reports whether a system with the given name is running
func SystemExists(name string) bool {
	_, ok := findSystem(address.SystemName(name))
	return ok
}

// DefaultSystem returns the default system
func DefaultSystem() (*ActorSystem, error) {
	view := liveSystems.Load()
	if system, ok := view.byName[view.defaultName]; ok {
		return system, nil
	}
	return nil, gerrors.ErrNoDefaultSystem
}

// SetDefaultSystem makes the running system with the given name the default one
func SetDefaultSystem(name string) error {
	systemName := address.SystemName(name)
	if !update(func(next *systems) bool {
		if _, ok := next.byName[systemName]; !ok {
			return false
		}
		next.defaultName = systemName
		return true
	}) {
		return gerrors.NewErrProcessSystemNotFound(name)
	}
	return nil
}

// Systems returns the names of the running systems, sorted
func Systems() []address.SystemName {
	view := liveSystems.Load()
	names := make([]address.SystemName, 0, len(view.byName))
	for name := range view.byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func findSystem(name address.SystemName) (*ActorSystem, bool) {
	system, ok := liveSystems.Load().byName[name]
	return system, ok
}

// removeSystem drops system from the registry. It is a no-op when already removed.
func removeSystem(system *ActorSystem) {
	update(func(next *systems) bool {
		if next.byName[system.name] != system {
			return false
		}
		delete(next.byName, system.name)
		if next.defaultName == system.name {
			next.defaultName = ""
		}
		return true
	})
}
