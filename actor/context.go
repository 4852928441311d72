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

	"go.uber.org/atomic"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/eventstream"
	"github.com/tochemey/echo/log"
	"github.com/tochemey/echo/message"
)

// Context is handed to a process for the duration of a single turn: the
// handling of one message, Setup, a termination notice or Shutdown.
// It must not be retained once the turn returns.
type Context struct {
	process *process
	system  *ActorSystem
	header  message.Header
	request *message.Request
	content any
	replied bool
	closed  *atomic.Bool
}

func newContext(p *process, header message.Header, request *message.Request, content any) *Context {
	return &Context{
		process: p,
		system:  p.system,
		header:  header,
		request: request,
		content: content,
		closed:  atomic.NewBool(false),
	}
}

func (c *Context) close() {
	c.closed.Store(true)
}

// Context returns a context.Context bound to the lifetime of the system
func (c *Context) Context() context.Context {
	return c.system.ctx
}

// System returns the owning system
func (c *Context) System() *ActorSystem {
	return c.system
}

// Self returns the address of the current process
func (c *Context) Self() address.ProcessID {
	return c.process.id
}

// Sender returns the sender of the current message. It is NoSender outside of a message turn.
func (c *Context) Sender() address.ProcessID {
	return c.header.Sender
}

// Parent returns the address of the parent process
func (c *Context) Parent() address.ProcessID {
	return c.process.parent
}

// SessionID returns the session id of the current message
func (c *Context) SessionID() string {
	return c.header.SessionID
}

// ConversationID returns the conversation id of the current message
func (c *Context) ConversationID() int64 {
	return c.header.ConversationID
}

// IsRequest reports whether the current message awaits a response
func (c *Context) IsRequest() bool {
	return c.request != nil
}

// Logger returns the logger of the current process
func (c *Context) Logger() log.Logger {
	return c.process.logger
}

// Resolve turns a contextual placeholder into a concrete address
func (c *Context) Resolve(pid address.ProcessID) address.ProcessID {
	switch pid {
	case address.Self:
		return c.process.id
	case address.Sender:
		return c.header.Sender
	case address.Parent:
		return c.process.parent
	default:
		return c.system.resolve(pid)
	}
}

// Tell sends msg to a process without waiting for an answer.
// The message is dead-lettered when it cannot be delivered.
func (c *Context) Tell(to address.ProcessID, msg any, opts ...SendOption) error {
	return c.system.tell(c, to, msg, opts...)
}

// Ask sends msg to a process and waits for the correlated response
func (c *Context) Ask(to address.ProcessID, msg any, opts ...SendOption) (any, error) {
	return c.system.ask(c, to, msg, opts...)
}

// Reply answers the current request. It returns ErrNotInRequest when the
// current message is not a request or the turn is over.
func (c *Context) Reply(value any) error {
	if c.request == nil || c.closed.Load() {
		return gerrors.ErrNotInRequest
	}
	c.replied = true
	return c.system.respond(c.process.id, c.request, value, nil)
}

// Forward hands the current message to another process. A forwarded
// request is answered by the new recipient directly to the original asker.
func (c *Context) Forward(to address.ProcessID) error {
	to = c.system.qualify(c.Resolve(to))
	if c.request != nil {
		if err := c.system.deliver(to, c.request); err != nil {
			return err
		}
		c.replied = true
		return nil
	}
	return c.system.deliver(to, &message.User{Header: c.header, Content: c.content})
}

// TellSelf sends msg to the current process
func (c *Context) TellSelf(msg any, opts ...SendOption) error {
	return c.Tell(c.process.id, msg, opts...)
}

// TellParent sends msg to the parent process
func (c *Context) TellParent(msg any, opts ...SendOption) error {
	return c.Tell(c.process.parent, msg, opts...)
}

// TellChild sends msg to the child with the given name
func (c *Context) TellChild(name address.ProcessName, msg any, opts ...SendOption) error {
	return c.Tell(c.process.id.Child(name), msg, opts...)
}

// TellChildren sends msg to every live child
func (c *Context) TellChildren(msg any, opts ...SendOption) error {
	children := c.process.Children()
	if len(children) == 0 {
		return gerrors.ErrNoChildProcesses
	}
	for _, child := range children {
		// a child stopping meanwhile is dead-lettered by tell
		_ = c.Tell(child, msg, opts...)
	}
	return nil
}

// Children returns the addresses of the live children
func (c *Context) Children() []address.ProcessID {
	return c.process.Children()
}

// Publish emits value on the publish stream of the current process
func (c *Context) Publish(value any) {
	c.process.publish(value)
}

// Watch registers the current process to receive a Terminated message when target stops.
// Watching a process that already stopped delivers Terminated at once.
func (c *Context) Watch(target address.ProcessID) {
	c.process.watch(c.Resolve(target))
}

// Unwatch cancels a watch
func (c *Context) Unwatch(target address.ProcessID) {
	c.process.unwatch(c.Resolve(target))
}

// Link ties the lifetime of the current process and target: when one of them stops, the other is shut down
func (c *Context) Link(target address.ProcessID) error {
	target = c.system.qualify(c.Resolve(target))
	if err := c.system.sendSystem(target, &message.Link{ID: c.process.id}); err != nil {
		return err
	}
	c.process.links.Add(target)
	return nil
}

// Unlink removes a link
func (c *Context) Unlink(target address.ProcessID) error {
	target = c.system.qualify(c.Resolve(target))
	c.process.links.Remove(target)
	return c.system.sendSystem(target, &message.Unlink{ID: c.process.id})
}

// Kill stops a process and drops its persisted state. It does not wait.
func (c *Context) Kill(pid address.ProcessID) error {
	return c.system.sendSystem(c.system.qualify(c.Resolve(pid)), &message.Shutdown{})
}

// Shutdown stops a process and keeps its persisted state. It does not wait.
func (c *Context) Shutdown(pid address.ProcessID) error {
	return c.system.sendSystem(c.system.qualify(c.Resolve(pid)), &message.Shutdown{MaintainState: true})
}

// Schedule delivers msg to a process at the given schedule
func (c *Context) Schedule(to address.ProcessID, msg any, schedule Schedule, opts ...SendOption) (*ScheduleHandle, error) {
	return c.system.schedule(c, to, msg, schedule, opts...)
}

// Register publishes the current process under name
func (c *Context) Register(name string) (address.ProcessID, error) {
	return c.system.Register(name, c.process.id)
}

// Subscribe bridges the publish stream of pid into the mailbox of the
// current process. Published values arrive as regular messages sent by pid.
func (c *Context) Subscribe(pid address.ProcessID) error {
	pid = c.system.qualify(c.Resolve(pid))
	stream, err := c.system.publishStream(pid)
	if err != nil {
		return err
	}

	self := c.process
	system := c.system
	sub := stream.Subscribe(func(value any) {
		header := message.Header{Sender: pid, ReplyTo: pid, ConversationID: system.conversations.Inc()}
		_ = system.deliver(self.id, &message.User{Header: header, Content: value})
	}, eventstream.WithOnComplete(func() {
		self.subscriptions.Delete(pid)
	}))

	if previous, ok := self.subscriptions.Pop(pid); ok {
		previous.Unsubscribe()
	}
	self.subscriptions.Set(pid, sub)
	return nil
}

// Unsubscribe removes a subscription made with Subscribe
func (c *Context) Unsubscribe(pid address.ProcessID) {
	pid = c.system.qualify(c.Resolve(pid))
	if sub, ok := c.process.subscriptions.Pop(pid); ok {
		sub.Unsubscribe()
	}
}

// spawnParent implements Spawner: children of a Context belong to the current process
func (c *Context) spawnParent() (*ActorSystem, address.ProcessID) {
	return c.system, c.process.id
}
