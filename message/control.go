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

package message

import (
	"github.com/tochemey/echo/address"
)

// Shutdown stops a process and its descendants. MaintainState asks for the
// final state to be persisted rather than discarded.
type Shutdown struct {
	MaintainState bool
}

// Restart re-runs the process Setup in place
type Restart struct{}

// Watch registers Watcher to receive a Terminated message when the target stops
type Watch struct {
	Watcher address.ProcessID
}

// Unwatch removes a watch
type Unwatch struct {
	Watcher address.ProcessID
}

// Link ties the lifetime of the target to ID: when either stops, the other is shut down
type Link struct {
	ID address.ProcessID
}

// Unlink removes a link
type Unlink struct {
	ID address.ProcessID
}

// DispatchWatch asks the receiving process to start watching Target
type DispatchWatch struct {
	Target address.ProcessID
}

// DispatchUnwatch asks the receiving process to stop watching Target
type DispatchUnwatch struct {
	Target address.ProcessID
}

// Escalation hands a child failure to its parent
type Escalation struct {
	Child address.ProcessID
	Err   error
}

func (*Shutdown) Tag() Tag        { return SystemTag }
func (*Restart) Tag() Tag         { return SystemTag }
func (*Watch) Tag() Tag           { return SystemTag }
func (*Unwatch) Tag() Tag         { return SystemTag }
func (*Link) Tag() Tag            { return SystemTag }
func (*Unlink) Tag() Tag          { return SystemTag }
func (*DispatchWatch) Tag() Tag   { return SystemTag }
func (*DispatchUnwatch) Tag() Tag { return SystemTag }
func (*Escalation) Tag() Tag      { return SystemTag }

// GetChildren asks a process for the ids of its children
type GetChildren struct{}

// Terminated notifies a watcher that ID stopped
type Terminated struct {
	ID address.ProcessID
}

// Null is a no-op used to wake a process up
type Null struct{}

func (*GetChildren) Tag() Tag { return UserControlTag }
func (*Terminated) Tag() Tag  { return UserControlTag }
func (*Null) Tag() Tag        { return UserControlTag }
