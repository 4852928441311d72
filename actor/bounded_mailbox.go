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
	gods "github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/message"
)

// BoundedMailbox is a bounded FIFO queue backed by a ring buffer.
// Enqueue fails immediately when the mailbox holds capacity messages.
type BoundedMailbox struct {
	underlying *gods.RingBuffer
	capacity   int64
	size       *atomic.Int64
}

var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a BoundedMailbox. Capacity must be positive.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	return &BoundedMailbox{
		// the ring buffer rounds its size up to a power of two; size enforces the exact capacity
		underlying: gods.NewRingBuffer(uint64(capacity)),
		capacity:   int64(capacity),
		size:       atomic.NewInt64(0),
	}
}

// Enqueue implements Mailbox
func (m *BoundedMailbox) Enqueue(msg message.Message) error {
	for {
		current := m.size.Load()
		if current >= m.capacity {
			return gerrors.ErrProcessInboxFull
		}
		if m.size.CompareAndSwap(current, current+1) {
			break
		}
	}

	ok, err := m.underlying.Offer(msg)
	if err != nil || !ok {
		m.size.Dec()
		if err != nil {
			return err
		}
		return gerrors.ErrProcessInboxFull
	}
	return nil
}

// Dequeue implements Mailbox
func (m *BoundedMailbox) Dequeue() message.Message {
	if m.underlying.Len() == 0 {
		return nil
	}
	item, err := m.underlying.Get()
	if err != nil {
		return nil
	}
	m.size.Dec()
	msg, _ := item.(message.Message)
	return msg
}

// IsEmpty implements Mailbox
func (m *BoundedMailbox) IsEmpty() bool {
	return m.underlying.Len() == 0
}

// Len implements Mailbox
func (m *BoundedMailbox) Len() int64 {
	return int64(m.underlying.Len())
}

// Capacity returns the maximum number of messages
func (m *BoundedMailbox) Capacity() int64 {
	return m.capacity
}

// Dispose implements Mailbox
func (m *BoundedMailbox) Dispose() {
	m.underlying.Dispose()
}
