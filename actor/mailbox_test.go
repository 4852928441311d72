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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/message"
)

func userMessage(value int) message.Message {
	return &message.User{Content: value}
}

func drainAll(t *testing.T, mailbox Mailbox) []int {
	t.Helper()
	var values []int
	for msg := mailbox.Dequeue(); msg != nil; msg = mailbox.Dequeue() {
		values = append(values, msg.(*message.User).Content.(int))
	}
	return values
}

func TestUnboundedMailbox(t *testing.T) {
	t.Run("FIFO", func(t *testing.T) {
		mailbox := NewUnboundedMailbox()
		assert.True(t, mailbox.IsEmpty())
		assert.Nil(t, mailbox.Dequeue())

		for i := range 5 {
			require.NoError(t, mailbox.Enqueue(userMessage(i)))
		}
		assert.EqualValues(t, 5, mailbox.Len())
		assert.False(t, mailbox.IsEmpty())
		assert.Equal(t, []int{0, 1, 2, 3, 4}, drainAll(t, mailbox))
		assert.True(t, mailbox.IsEmpty())
		mailbox.Dispose()
	})
	t.Run("Concurrent producers", func(t *testing.T) {
		mailbox := NewUnboundedMailbox()
		const producers, each = 8, 100

		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range each {
					_ = mailbox.Enqueue(userMessage(p*each + i))
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, producers*each, mailbox.Len())
		assert.Len(t, drainAll(t, mailbox), producers*each)
	})
}

func TestBoundedMailbox(t *testing.T) {
	t.Run("FIFO within capacity", func(t *testing.T) {
		mailbox := NewBoundedMailbox(3)
		assert.EqualValues(t, 3, mailbox.Capacity())
		assert.Nil(t, mailbox.Dequeue())

		for i := range 3 {
			require.NoError(t, mailbox.Enqueue(userMessage(i)))
		}
		require.ErrorIs(t, mailbox.Enqueue(userMessage(3)), gerrors.ErrProcessInboxFull)
		assert.EqualValues(t, 3, mailbox.Len())

		assert.Equal(t, []int{0, 1, 2}, drainAll(t, mailbox))
		require.NoError(t, mailbox.Enqueue(userMessage(4)))
		assert.Equal(t, []int{4}, drainAll(t, mailbox))
		mailbox.Dispose()
	})
	t.Run("Capacity is exact", func(t *testing.T) {
		mailbox := NewBoundedMailbox(5)
		accepted := 0
		for i := range 16 {
			if mailbox.Enqueue(userMessage(i)) == nil {
				accepted++
			}
		}
		assert.Equal(t, 5, accepted)
	})
}
