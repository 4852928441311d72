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

// Package scheduler is the timer facility behind delayed deliveries.
//
// It wraps a quartz scheduler with run-once triggers. Each scheduled task
// gets a key; cancelling a key before its trigger fires guarantees the task
// never runs, and cancelling after it fired reports ErrScheduleNotFound.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/internal/xsync"
	"github.com/tochemey/echo/log"
)

// Task is the work run once a schedule is due
type Task func(ctx context.Context) error

// Scheduler runs tasks after a delay
type Scheduler struct {
	mu          sync.Mutex
	quartz      quartz.Scheduler
	started     *atomic.Bool
	pending     *xsync.Map[string, struct{}]
	logger      log.Logger
	stopTimeout time.Duration
}

// New creates an instance of Scheduler
func New(logger log.Logger, stopTimeout time.Duration) *Scheduler {
	// quartz logs are turned off, failures are reported through our own logger
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &Scheduler{
		quartz:      quartzScheduler,
		started:     atomic.NewBool(false),
		pending:     xsync.NewStringMap[struct{}](),
		logger:      logger,
		stopTimeout: stopTimeout,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return
	}
	s.quartz.Start(ctx)
	s.started.Store(s.quartz.IsStarted())
	s.logger.Debug("messages scheduler started")
}

// Stop drops every pending task and stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return
	}

	s.pending.Reset()
	_ = s.quartz.Clear()
	s.quartz.Stop()
	s.started.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.stopTimeout)
	defer cancel()
	s.quartz.Wait(ctx)
	s.logger.Debug("messages scheduler stopped")
}

// Started reports whether the scheduler accepts tasks
func (s *Scheduler) Started() bool {
	return s.started.Load()
}

// ScheduleOnce runs task once after delay and returns the key to cancel it with
func (s *Scheduler) ScheduleOnce(delay time.Duration, task Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return "", gerrors.ErrSchedulerNotStarted
	}

	if delay < 0 {
		delay = 0
	}

	key := uuid.NewString()
	fn := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		if _, ok := s.pending.Pop(key); !ok {
			return false, nil
		}
		if err := task(ctx); err != nil {
			s.logger.Warnf("scheduled task %s failed: %v", key, err)
			return false, err
		}
		return true, nil
	})

	s.pending.Set(key, struct{}{})
	detail := quartz.NewJobDetail(fn, quartz.NewJobKey(key))
	if err := s.quartz.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay)); err != nil {
		s.pending.Delete(key)
		return "", err
	}
	return key, nil
}

// Cancel removes a pending task. It fails with ErrScheduleNotFound when the
// task already ran or was cancelled.
func (s *Scheduler) Cancel(key string) error {
	if _, ok := s.pending.Pop(key); !ok {
		return gerrors.ErrScheduleNotFound
	}
	// the job may already be dequeued by quartz; the pending map decides
	_ = s.quartz.DeleteJob(quartz.NewJobKey(key))
	return nil
}

// Pending returns the number of tasks waiting to run
func (s *Scheduler) Pending() int {
	return s.pending.Len()
}
