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

	"go.uber.org/multierr"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/internal/registry"
	"github.com/tochemey/echo/message"
)

// dispatcher is the delivery strategy bound to an address.
// It is chosen by the system, never by the caller.
type dispatcher interface {
	tell(msg message.Message) error
	exists() bool
	accepts(content any) bool
	inboxCount() int64
}

// localDispatcher delivers to a process of the table
type localDispatcher struct {
	process *process
}

func (d *localDispatcher) tell(msg message.Message) error {
	switch msg.(type) {
	case *message.User, *message.Request:
		content := contentOf(msg)
		if _, control := content.(*message.GetChildren); !control && !d.process.accepts(content) {
			return gerrors.NewErrInvalidMessageType(d.process.id.String(), registry.NameOf(content))
		}
	}
	return d.process.enqueue(msg)
}

func (d *localDispatcher) exists() bool {
	return d.process.isRunning()
}

func (d *localDispatcher) accepts(content any) bool {
	return d.process.accepts(content)
}

func (d *localDispatcher) inboxCount() int64 {
	return d.process.mailbox.Len()
}

// remoteDispatcher delivers through the cluster to another node
type remoteDispatcher struct {
	remoting *remoting
	to       address.ProcessID
}

func (d *remoteDispatcher) tell(msg message.Message) error {
	return d.remoting.send(context.Background(), d.to, msg)
}

func (d *remoteDispatcher) exists() bool {
	return d.remoting.alive(context.Background(), d.to.System())
}

func (d *remoteDispatcher) accepts(any) bool {
	return true
}

func (d *remoteDispatcher) inboxCount() int64 {
	return 0
}

// aliasDispatcher delivers to the processes registered under a name.
// Tells are broadcast; requests go to the first registrant only.
type aliasDispatcher struct {
	system  *ActorSystem
	targets []address.ProcessID
}

func (d *aliasDispatcher) tell(msg message.Message) error {
	if len(d.targets) == 0 {
		return gerrors.ErrNameNotRegistered
	}
	if _, ok := msg.(*message.Request); ok {
		return d.system.dispatcher(d.targets[0]).tell(msg)
	}

	var err error
	for _, target := range d.targets {
		err = multierr.Append(err, d.system.dispatcher(target).tell(msg))
	}
	return err
}

func (d *aliasDispatcher) exists() bool {
	return len(d.targets) > 0
}

func (d *aliasDispatcher) accepts(content any) bool {
	for _, target := range d.targets {
		if !d.system.dispatcher(target).accepts(content) {
			return false
		}
	}
	return len(d.targets) > 0
}

func (d *aliasDispatcher) inboxCount() int64 {
	var count int64
	for _, target := range d.targets {
		count += d.system.dispatcher(target).inboxCount()
	}
	return count
}

// askDispatcher completes pending asks with their response
type askDispatcher struct {
	system *ActorSystem
}

func (d *askDispatcher) tell(msg message.Message) error {
	response, ok := msg.(*message.Response)
	if !ok {
		return nil
	}
	pending, ok := d.system.asks.Pop(response.RequestID)
	if !ok {
		d.system.logger.Debugf("dropping late response to request %d from %s", response.RequestID, response.Sender)
		return nil
	}
	pending.Complete(response)
	return nil
}

func (*askDispatcher) exists() bool      { return true }
func (*askDispatcher) accepts(any) bool  { return true }
func (*askDispatcher) inboxCount() int64 { return 0 }

// nullDispatcher stands for an address nothing answers to
type nullDispatcher struct {
	to address.ProcessID
}

func (d *nullDispatcher) tell(message.Message) error {
	return gerrors.NewErrProcessDoesNotExist(d.to.String())
}

func (*nullDispatcher) exists() bool      { return false }
func (*nullDispatcher) accepts(any) bool  { return false }
func (*nullDispatcher) inboxCount() int64 { return 0 }

// dispatcher returns the delivery strategy for pid
func (x *ActorSystem) dispatcher(pid address.ProcessID) dispatcher {
	pid = x.resolve(pid)
	system := pid.System()
	if system == "" || system == x.name {
		local := pid.WithSystem(x.name)
		switch {
		case local == x.askPID:
			return &askDispatcher{system: x}
		case local.Parent() == x.registeredPID:
			return &aliasDispatcher{system: x, targets: x.registrants(local.Name())}
		}
		if p, ok := x.table.Get(local); ok {
			return &localDispatcher{process: p}
		}
		return &nullDispatcher{to: local}
	}

	if other, ok := findSystem(system); ok {
		return other.dispatcher(pid)
	}
	if x.remoting != nil {
		return &remoteDispatcher{remoting: x.remoting, to: pid}
	}
	return &nullDispatcher{to: pid}
}

// deliver hands an envelope to its dispatcher. Payloads that cannot be
// delivered are dead-lettered; lifecycle commands are not.
func (x *ActorSystem) deliver(to address.ProcessID, msg message.Message) error {
	err := x.dispatcher(to).tell(msg)
	if err == nil {
		return nil
	}

	var sender address.ProcessID
	switch m := msg.(type) {
	case *message.User:
		sender = m.Sender
	case *message.Request:
		sender = m.Sender
	case *message.Response:
		sender = m.Sender
	default:
		return err
	}

	reason := ""
	if errors.Is(err, gerrors.ErrInvalidMessageType) {
		reason = typeMismatchReason
	}
	x.deadLetter(sender, to, contentOf(msg), err, reason)
	return err
}

// sendSystem delivers a lifecycle command or a runtime notification
func (x *ActorSystem) sendSystem(to address.ProcessID, msg message.Message) error {
	return x.dispatcher(to).tell(msg)
}

// notify delivers a runtime notification, ignoring unreachable recipients
func (x *ActorSystem) notify(to address.ProcessID, msg message.Message) {
	if err := x.sendSystem(to, msg); err != nil {
		x.logger.Debugf("notification %T to %s dropped: %v", msg, to, err)
	}
}

// envelope wraps content into a User envelope stamped with the routing header
func (x *ActorSystem) envelope(c *Context, config *sendConfig, content any) message.Message {
	switch m := content.(type) {
	case *message.User, *message.Request, *message.Response:
		return m.(message.Message)
	case message.Message:
		if m.Tag() == message.SystemTag || m.Tag() == message.UserControlTag {
			return m
		}
	}
	return &message.User{Header: x.header(c, config), Content: content}
}

// header builds the routing metadata of an outgoing payload
func (x *ActorSystem) header(c *Context, config *sendConfig) message.Header {
	header := message.Header{SessionID: config.sessionID}
	if c != nil {
		header.Sender = c.process.id
		header.ConversationID = c.header.ConversationID
		if header.SessionID == "" {
			header.SessionID = c.header.SessionID
		}
	}
	if config.sender != nil {
		header.Sender = x.qualify(*config.sender)
	}
	if header.ConversationID == 0 {
		header.ConversationID = x.conversations.Inc()
	}
	header.ReplyTo = header.Sender
	return header
}

// tell sends content to a process on behalf of c, which may be nil
func (x *ActorSystem) tell(c *Context, to address.ProcessID, content any, opts ...SendOption) error {
	config := newSendConfig(opts...)
	to = x.resolveFrom(c, to)
	msg := x.envelope(c, config, content)
	if to.IsZero() {
		x.deadLetter(x.header(c, config).Sender, to, content, gerrors.NewErrProcessDoesNotExist(to.String()), "")
		return gerrors.NewErrProcessDoesNotExist(to.String())
	}
	return x.deliver(to, msg)
}

// respond answers request on behalf of from
func (x *ActorSystem) respond(from address.ProcessID, request *message.Request, value any, err error) error {
	response := &message.Response{
		Header: message.Header{
			Sender:         from,
			ReplyTo:        from,
			ConversationID: request.ConversationID,
			SessionID:      request.SessionID,
		},
		RequestID: request.RequestID,
		Content:   value,
		Err:       err,
	}
	return x.deliver(request.ReplyTo, response)
}

// resolveFrom resolves placeholders against c, or the system when c is nil
func (x *ActorSystem) resolveFrom(c *Context, pid address.ProcessID) address.ProcessID {
	if c != nil {
		pid = c.Resolve(pid)
	}
	return x.qualify(x.resolve(pid))
}

// resolve turns placeholders into addresses without a request context
func (x *ActorSystem) resolve(pid address.ProcessID) address.ProcessID {
	if !pid.IsSpecial() {
		return pid
	}
	switch pid {
	case address.Self, address.User:
		return x.userPID
	case address.Parent, address.Root:
		return x.rootPID
	case address.DeadLetters:
		return x.deadLettersPID
	case address.Errors:
		return x.errorsPID
	default:
		return address.NoSender
	}
}

// qualify binds an address without system to this system
func (x *ActorSystem) qualify(pid address.ProcessID) address.ProcessID {
	if pid.IsZero() || pid.System() != "" {
		return pid
	}
	return pid.WithSystem(x.name)
}
