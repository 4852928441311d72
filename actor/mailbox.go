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

import "github.com/tochemey/echo/message"

// Mailbox is the user queue of a process.
//
// Enqueue is called by any number of producers and never blocks: a bounded
// implementation returns an error when full. Dequeue is only called by the
// drain loop of the owning process and returns nil when the queue is empty.
type Mailbox interface {
	// Enqueue pushes a message into the mailbox
	Enqueue(msg message.Message) error
	// Dequeue fetches the next message or nil when empty
	Dequeue() message.Message
	// IsEmpty reports whether the mailbox has no messages. It is a snapshot.
	IsEmpty() bool
	// Len returns a snapshot of the number of messages
	Len() int64
	// Dispose releases the resources held by the mailbox
	Dispose()
}
