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

package supervisor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/echo/errors"
)

type valueError struct{}

func (valueError) Error() string { return "value error" }

type pointerError struct{}

func (*pointerError) Error() string { return "pointer error" }

var errSentinel = errors.New("sentinel")

func TestStrategyString(t *testing.T) {
	require.Equal(t, "OneForOne", OneForOneStrategy.String())
	require.Equal(t, "OneForAll", OneForAllStrategy.String())
	require.Equal(t, "", Strategy(42).String())
}

func TestDirectiveString(t *testing.T) {
	require.Equal(t, "Stop", StopDirective.String())
	require.Equal(t, "Resume", ResumeDirective.String())
	require.Equal(t, "Restart", RestartDirective.String())
	require.Equal(t, "Escalate", EscalateDirective.String())
	require.Equal(t, "", Directive(42).String())
}

func TestDirective(t *testing.T) {
	t.Run("With defaults every failure restarts", func(t *testing.T) {
		s := NewSupervisor()
		assert.Equal(t, OneForOneStrategy, s.Strategy())
		assert.Equal(t, RestartDirective, s.Directive(errors.New("any")))
		assert.Equal(t, RestartDirective, s.Directive(gerrors.NewPanicError("boom")))
	})

	t.Run("With type rules", func(t *testing.T) {
		s := NewSupervisor(
			WithDirective(valueError{}, ResumeDirective),
			WithDirective(&pointerError{}, EscalateDirective),
			WithDefaultDirective(StopDirective),
		)
		assert.Equal(t, ResumeDirective, s.Directive(valueError{}))
		assert.Equal(t, EscalateDirective, s.Directive(&pointerError{}))
		assert.Equal(t, StopDirective, s.Directive(errors.New("other")))
	})

	t.Run("With a wrapped error the chain is walked", func(t *testing.T) {
		s := NewSupervisor(WithDirective(valueError{}, ResumeDirective))
		wrapped := gerrors.NewProcessSystemError("/root/user/a", "", fmt.Errorf("context: %w", valueError{}))
		assert.Equal(t, ResumeDirective, s.Directive(wrapped))
	})

	t.Run("With sentinel rules", func(t *testing.T) {
		s := NewSupervisor(WithErrorDirective(errSentinel, StopDirective))
		assert.Equal(t, StopDirective, s.Directive(fmt.Errorf("wrapped: %w", errSentinel)))
		assert.Equal(t, RestartDirective, s.Directive(errors.New("sentinel")))
	})

	t.Run("With any error rule overriding the rest", func(t *testing.T) {
		s := NewSupervisor(
			WithDirective(valueError{}, ResumeDirective),
			WithAnyErrorDirective(StopDirective),
		)
		assert.Equal(t, StopDirective, s.Directive(valueError{}))
	})
}

func TestDecide(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	t.Run("Restart within the attempt bound", func(t *testing.T) {
		s := NewSupervisor(WithRetry(1, time.Minute))
		decision := s.Decide(FailureHistory{}, boom, start)
		assert.Equal(t, RestartDirective, decision.Directive)
		assert.EqualValues(t, 1, decision.History.Attempts)
		assert.Equal(t, start, decision.History.FirstFailure)
	})

	t.Run("Restart turns into Stop past the bound", func(t *testing.T) {
		s := NewSupervisor(WithRetry(1, time.Minute))
		first := s.Decide(FailureHistory{}, boom, start)
		second := s.Decide(first.History, boom, start.Add(time.Second))
		assert.Equal(t, StopDirective, second.Directive)
		assert.EqualValues(t, 2, second.History.Attempts)
	})

	t.Run("Attempts reset once the window elapsed", func(t *testing.T) {
		s := NewSupervisor(WithRetry(1, time.Minute))
		first := s.Decide(FailureHistory{}, boom, start)
		later := s.Decide(first.History, boom, start.Add(2*time.Minute))
		assert.Equal(t, RestartDirective, later.Directive)
		assert.EqualValues(t, 1, later.History.Attempts)
		assert.Equal(t, start.Add(2*time.Minute), later.History.FirstFailure)
	})

	t.Run("Unbounded when no retry is set", func(t *testing.T) {
		s := NewSupervisor()
		history := FailureHistory{}
		for range 10 {
			decision := s.Decide(history, boom, start)
			require.Equal(t, RestartDirective, decision.Directive)
			history = decision.History
		}
		assert.EqualValues(t, 10, history.Attempts)
	})

	t.Run("Backoff grows and is capped", func(t *testing.T) {
		s := NewSupervisor(WithBackoff(10*time.Millisecond, 50*time.Millisecond, 2))
		history := FailureHistory{}
		var delays []time.Duration
		for range 4 {
			decision := s.Decide(history, boom, start)
			delays = append(delays, decision.Delay)
			history = decision.History
		}
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 50 * time.Millisecond}, delays)
	})

	t.Run("Non restart directives carry no delay", func(t *testing.T) {
		s := NewSupervisor(
			WithAnyErrorDirective(ResumeDirective),
			WithBackoff(time.Second, time.Second, 1),
			WithStrategy(OneForAllStrategy),
		)
		decision := s.Decide(FailureHistory{}, boom, start)
		assert.Equal(t, ResumeDirective, decision.Directive)
		assert.Equal(t, OneForAllStrategy, decision.Strategy)
		assert.Zero(t, decision.Delay)
	})
}
