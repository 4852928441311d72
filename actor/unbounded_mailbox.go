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
	"github.com/tochemey/echo/internal/queue"
	"github.com/tochemey/echo/message"
)

// UnboundedMailbox is a lock-free multi-producer single-consumer FIFO queue
type UnboundedMailbox struct {
	underlying *queue.Mpsc[message.Message]
}

var _ Mailbox = (*UnboundedMailbox)(nil)

// NewUnboundedMailbox creates an instance of UnboundedMailbox
func NewUnboundedMailbox() *UnboundedMailbox {
	return &UnboundedMailbox{underlying: queue.NewMpsc[message.Message]()}
}

// Enqueue implements Mailbox. It never fails.
func (m *UnboundedMailbox) Enqueue(msg message.Message) error {
	m.underlying.Push(msg)
	return nil
}

// Dequeue implements Mailbox
func (m *UnboundedMailbox) Dequeue() message.Message {
	msg, ok := m.underlying.Pop()
	if !ok {
		return nil
	}
	return msg
}

// IsEmpty implements Mailbox
func (m *UnboundedMailbox) IsEmpty() bool {
	return m.underlying.IsEmpty()
}

// Len implements Mailbox
func (m *UnboundedMailbox) Len() int64 {
	return m.underlying.Len()
}

// Dispose implements Mailbox
func (m *UnboundedMailbox) Dispose() {
	for !m.underlying.IsEmpty() {
		m.underlying.Pop()
	}
}
