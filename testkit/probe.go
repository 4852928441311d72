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
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tochemey/echo/actor"
	"github.com/tochemey/echo/address"
)

const (
	MessagesQueueMax int           = 1000
	DefaultTimeout   time.Duration = 3 * time.Second
)

type envelope struct {
	sender  address.ProcessID
	payload any
}

// Probe is a process recording every message it receives so that a test
// can assert on what the processes under test sent
type Probe struct {
	pt *testing.T

	system         *actor.ActorSystem
	pid            address.ProcessID
	lastMessage    any
	lastSender     address.ProcessID
	messages       chan envelope
	terminated     chan address.ProcessID
	defaultTimeout time.Duration
}

func newProbe(system *actor.ActorSystem, name string, t *testing.T) (*Probe, error) {
	probe := &Probe{
		pt:             t,
		system:         system,
		messages:       make(chan envelope, MessagesQueueMax),
		terminated:     make(chan address.ProcessID, MessagesQueueMax),
		defaultTimeout: DefaultTimeout,
	}

	pid, err := actor.Spawn(system, name, nil, probe.receive, actor.WithTerminated(probe.onTerminated))
	if err != nil {
		return nil, err
	}
	probe.pid = pid
	return probe, nil
}

func (x *Probe) receive(ctx *actor.Context, state struct{}, msg any) (struct{}, error) {
	x.messages <- envelope{sender: ctx.Sender(), payload: msg}
	return state, nil
}

func (x *Probe) onTerminated(_ *actor.Context, state struct{}, pid address.ProcessID) (struct{}, error) {
	x.terminated <- pid
	return state, nil
}

// ExpectMessage asserts that the next message received is the expected one
func (x *Probe) ExpectMessage(message any) {
	x.expectMessage(x.defaultTimeout, message)
}

// ExpectMessageWithin asserts that the expected message arrives within duration
func (x *Probe) ExpectMessageWithin(duration time.Duration, message any) {
	x.expectMessage(duration, message)
}

// ExpectNoMessage asserts that no message arrives within a short window
func (x *Probe) ExpectNoMessage() {
	x.expectNoMessage(100 * time.Millisecond)
}

// ExpectAnyMessage waits for the next message and returns it
func (x *Probe) ExpectAnyMessage() any {
	return x.expectAnyMessage(x.defaultTimeout)
}

// ExpectAnyMessageWithin waits for the next message within duration and returns it
func (x *Probe) ExpectAnyMessageWithin(duration time.Duration) any {
	return x.expectAnyMessage(duration)
}

// ExpectTerminated asserts that the probe is notified of the termination of pid.
// The probe must watch pid first.
func (x *Probe) ExpectTerminated(pid address.ProcessID) {
	select {
	case terminated := <-x.terminated:
		require.Equal(x.pt, pid.String(), terminated.String(), "unexpected terminated process")
	case <-time.After(x.defaultTimeout):
		require.Fail(x.pt, fmt.Sprintf("timeout (%v) while waiting for %s to terminate", x.defaultTimeout, pid))
	}
}

// ExpectMessageOfType waits for the next message and asserts it is a T
func ExpectMessageOfType[T any](x *Probe) T {
	received := x.expectAnyMessage(x.defaultTimeout)
	value, ok := received.(T)
	require.True(x.pt, ok, fmt.Sprintf("expected %v, found %T", reflect.TypeFor[T](), received))
	return value
}

// Watch registers the probe as a watcher of pid
func (x *Probe) Watch(pid address.ProcessID) {
	require.NoError(x.pt, x.system.Watch(x.pid, pid))
}

// Send tells msg to the process under test with the probe as sender
func (x *Probe) Send(to address.ProcessID, message any) {
	require.NoError(x.pt, x.system.Tell(to, message, actor.WithSender(x.pid)))
}

// SendSync asks the process under test and queues the response on the probe
// as if the process had sent it
func (x *Probe) SendSync(to address.ProcessID, message any, timeout time.Duration) {
	response, err := x.system.Ask(to, message, actor.WithTimeout(timeout))
	require.NoError(x.pt, err)
	x.messages <- envelope{sender: to, payload: response}
}

// Sender returns the sender of the last received message
func (x *Probe) Sender() address.ProcessID {
	return x.lastSender
}

// LastMessage returns the last received message
func (x *Probe) LastMessage() any {
	return x.lastMessage
}

// PID returns the address of the probe
func (x *Probe) PID() address.ProcessID {
	return x.pid
}

// Stop stops the probe
func (x *Probe) Stop() {
	_ = x.system.Kill(context.Background(), x.pid)
}

func (x *Probe) receiveOne(max time.Duration) any {
	timer := time.NewTimer(max)
	defer timer.Stop()

	select {
	case m := <-x.messages:
		x.lastMessage = m.payload
		x.lastSender = m.sender
		return m.payload
	case <-timer.C:
		return nil
	}
}

func (x *Probe) expectMessage(max time.Duration, message any) {
	received := x.receiveOne(max)
	require.NotNil(x.pt, received, fmt.Sprintf("timeout (%v) during expectMessage while waiting for %v", max, message))
	require.Equal(x.pt, message, received, fmt.Sprintf("expected %v, found %v", message, received))
}

func (x *Probe) expectNoMessage(max time.Duration) {
	received := x.receiveOne(max)
	require.Nil(x.pt, received, fmt.Sprintf("received unexpected message %v", received))
}

func (x *Probe) expectAnyMessage(max time.Duration) any {
	received := x.receiveOne(max)
	require.NotNil(x.pt, received, fmt.Sprintf("timeout (%v) during expectAnyMessage", max))
	return received
}
