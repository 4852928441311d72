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
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
)

// Register publishes pid under name and returns the alias address
// /root/registered/<name>. Several processes can share a name: a tell to the
// alias reaches all of them, an ask reaches the first one registered.
// With a cluster the name is visible to every system.
func (x *ActorSystem) Register(name string, pid address.ProcessID) (address.ProcessID, error) {
	processName, err := address.NewProcessName(name)
	if err != nil {
		return address.NoSender, err
	}

	pid = x.qualify(x.resolve(pid))
	if !x.dispatcher(pid).exists() {
		return address.NoSender, gerrors.NewErrProcessDoesNotExist(pid.String())
	}

	x.registeredMu.Lock()
	if !slices.Contains(x.registered[processName], pid) {
		x.registered[processName] = append(x.registered[processName], pid)
	}
	x.registeredMu.Unlock()

	if x.remoting != nil {
		if err := x.cluster.SetAdd(x.ctx, registeredKey(processName), pid.String()); err != nil {
			return address.NoSender, err
		}
	}

	return x.registeredPID.Child(processName), nil
}

// DeregisterByID removes pid from every name it was registered under
func (x *ActorSystem) DeregisterByID(pid address.ProcessID) error {
	pid = x.qualify(x.resolve(pid))

	var names []address.ProcessName
	x.registeredMu.Lock()
	for name, members := range x.registered {
		idx := slices.Index(members, pid)
		if idx < 0 {
			continue
		}
		members = slices.Delete(members, idx, idx+1)
		if len(members) == 0 {
			delete(x.registered, name)
		} else {
			x.registered[name] = members
		}
		names = append(names, name)
	}
	x.registeredMu.Unlock()

	if x.remoting == nil {
		return nil
	}
	for _, name := range names {
		if err := x.cluster.SetRemove(x.ctx, registeredKey(name), pid.String()); err != nil {
			return err
		}
	}
	return nil
}

// DeregisterByName removes the name altogether
func (x *ActorSystem) DeregisterByName(name string) error {
	processName, err := address.NewProcessName(name)
	if err != nil {
		return err
	}

	x.registeredMu.Lock()
	members, ok := x.registered[processName]
	delete(x.registered, processName)
	x.registeredMu.Unlock()

	registered := ok && len(members) > 0
	if x.remoting != nil {
		key := registeredKey(processName)
		remote, err := x.cluster.SetMembers(x.ctx, key)
		if err != nil {
			return err
		}
		if len(remote) > 0 {
			registered = true
		}
		if err := x.cluster.Delete(x.ctx, key); err != nil {
			return err
		}
	}
	if !registered {
		return gerrors.NewErrNameNotRegistered(name)
	}
	return nil
}

// Find returns the alias address of name or ErrNameNotRegistered
func (x *ActorSystem) Find(name string) (address.ProcessID, error) {
	processName, err := address.NewProcessName(name)
	if err != nil {
		return address.NoSender, err
	}
	if len(x.registrants(processName)) == 0 {
		return address.NoSender, gerrors.NewErrNameNotRegistered(name)
	}
	return x.registeredPID.Child(processName), nil
}

// registrants returns the processes registered under name, local ones first
func (x *ActorSystem) registrants(name address.ProcessName) []address.ProcessID {
	var targets []address.ProcessID
	x.registeredMu.Lock()
	targets = slices.Clone(x.registered[name])
	x.registeredMu.Unlock()

	if x.remoting == nil {
		return targets
	}

	members, err := x.cluster.SetMembers(x.ctx, registeredKey(name))
	if err != nil {
		x.logger.Warnf("failed to read registrants of %s: %v", name, err)
		return targets
	}

	seen := mapset.NewThreadUnsafeSet(targets...)
	for _, member := range members {
		pid, err := address.Parse(member)
		if err != nil || !seen.Add(pid) {
			continue
		}
		targets = append(targets, pid)
	}
	return targets
}
