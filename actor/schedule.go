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
	"time"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/message"
	"github.com/tochemey/echo/scheduler"
)

// Schedule tells when a scheduled message is delivered
type Schedule struct {
	delay time.Duration
	at    time.Time
}

// Immediately delivers the message right away
func Immediately() Schedule {
	return Schedule{}
}

// After delivers the message once delay elapsed
func After(delay time.Duration) Schedule {
	return Schedule{delay: delay}
}

// At delivers the message at the given time. A time in the past means now.
func At(at time.Time) Schedule {
	return Schedule{at: at}
}

func (s Schedule) wait(now time.Time) time.Duration {
	if !s.at.IsZero() {
		return s.at.Sub(now)
	}
	return s.delay
}

// ScheduleHandle cancels a scheduled message
type ScheduleHandle struct {
	key       string
	scheduler *scheduler.Scheduler
}

// Cancel stops the delivery. It returns false when the message was already delivered.
func (h *ScheduleHandle) Cancel() bool {
	if h == nil || h.key == "" {
		return false
	}
	return h.scheduler.Cancel(h.key) == nil
}

// Schedule delivers msg to a process at the given schedule
func (x *ActorSystem) Schedule(to address.ProcessID, msg any, schedule Schedule, opts ...SendOption) (*ScheduleHandle, error) {
	return x.schedule(nil, to, msg, schedule, opts...)
}

func (x *ActorSystem) schedule(c *Context, to address.ProcessID, content any, schedule Schedule, opts ...SendOption) (*ScheduleHandle, error) {
	now := time.Now()
	wait := schedule.wait(now)
	if wait <= 0 {
		return &ScheduleHandle{}, x.tell(c, to, content, opts...)
	}

	config := newSendConfig(opts...)
	to = x.resolveFrom(c, to)
	msg := x.envelope(c, config, content)
	if user, ok := msg.(*message.User); ok {
		user.Due = now.Add(wait)
	}

	key, err := x.scheduler.ScheduleOnce(wait, func(context.Context) error {
		return x.deliver(to, msg)
	})
	if err != nil {
		if errors.Is(err, gerrors.ErrSchedulerNotStarted) {
			return nil, gerrors.NewErrProcessSystemNotFound(x.name.String())
		}
		return nil, err
	}
	return &ScheduleHandle{key: key, scheduler: x.scheduler}, nil
}
