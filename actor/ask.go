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
	"fmt"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/future"
	"github.com/tochemey/echo/message"
)

// Asker sends a request and waits for the correlated response.
// ActorSystem and Context implement it.
type Asker interface {
	Ask(to address.ProcessID, msg any, opts ...SendOption) (any, error)
}

var (
	_ Asker = (*ActorSystem)(nil)
	_ Asker = (*Context)(nil)
)

// Ask sends msg to a process and returns its response as R
func Ask[R any](asker Asker, to address.ProcessID, msg any, opts ...SendOption) (R, error) {
	var zero R
	response, err := asker.Ask(to, msg, opts...)
	if err != nil {
		return zero, err
	}
	if response == nil {
		return zero, nil
	}
	typed, ok := response.(R)
	if !ok {
		return zero, fmt.Errorf("unexpected response type %T: %w", response, gerrors.ErrInvalidMessageType)
	}
	return typed, nil
}

// ask sends a request on behalf of c, which may be nil, and waits for the response
func (x *ActorSystem) ask(c *Context, to address.ProcessID, content any, opts ...SendOption) (any, error) {
	config := newSendConfig(opts...)
	timeout := config.timeout
	if timeout == 0 {
		timeout = x.askTimeout
	}
	if timeout < 0 {
		return nil, gerrors.ErrInvalidTimeout
	}

	to = x.resolveFrom(c, to)
	header := x.header(c, config)

	var waiting []address.ProcessID
	if c != nil {
		// the caller blocks its own drain loop: asking itself or a process
		// already waiting on it could never complete
		if to == c.process.id || (c.request != nil && c.request.IsWaiting(to)) {
			return nil, fmt.Errorf("(process=%s) asking %s: %w", c.process.id, to, gerrors.ErrAskCycle)
		}
		waiting = append(waiting, c.process.id)
		if c.request != nil {
			waiting = append(waiting, c.request.Waiting...)
		}
	}

	target := x.dispatcher(to)
	if !target.exists() {
		err := gerrors.NewErrProcessDoesNotExist(to.String())
		x.deadLetter(header.Sender, to, content, err, "")
		return nil, err
	}

	requestID := x.requestIDs.Inc()
	pending := future.New[*message.Response]()
	x.asks.Set(requestID, pending)
	defer x.asks.Delete(requestID)

	header.ReplyTo = x.askPID
	request := &message.Request{
		Header:    header,
		RequestID: requestID,
		Content:   content,
		Waiting:   waiting,
	}

	if err := x.deliver(to, request); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(x.ctx, timeout)
	defer cancel()

	response, err := pending.Await(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("(process=%s, request=%d) %w", to, requestID, gerrors.ErrAskTimeout)
		}
		return nil, err
	}

	if response.IsFaulted() {
		return nil, gerrors.NewAskError(to.String(), response.Err)
	}
	return response.Content, nil
}
