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
	"math"
	"reflect"
	"time"
)

// Strategy defines which processes a decision applies to
type Strategy int

const (
	// OneForOneStrategy applies the decision to the failing process only
	OneForOneStrategy Strategy = iota
	// OneForAllStrategy applies the decision to the failing process and all its siblings
	OneForAllStrategy
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case OneForOneStrategy:
		return "OneForOne"
	case OneForAllStrategy:
		return "OneForAll"
	default:
		return ""
	}
}

// Directive is the action taken on a failing process
type Directive int

const (
	// StopDirective terminates the process and its descendants
	StopDirective Directive = iota
	// ResumeDirective keeps the current state and drops the failing message
	ResumeDirective
	// RestartDirective re-runs Setup and drops the failing message
	RestartDirective
	// EscalateDirective hands the failure to the parent as if the parent had failed
	EscalateDirective
)

// String returns the string representation of the directive
func (d Directive) String() string {
	switch d {
	case StopDirective:
		return "Stop"
	case ResumeDirective:
		return "Resume"
	case RestartDirective:
		return "Restart"
	case EscalateDirective:
		return "Escalate"
	default:
		return ""
	}
}

// FailureHistory is the supervision state of a single process.
// The zero value means the process never failed.
type FailureHistory struct {
	Attempts     uint32
	FirstFailure time.Time
	LastFailure  time.Time
}

// Decision is the outcome of evaluating a failure
type Decision struct {
	Directive Directive
	Strategy  Strategy
	// Delay is how long to wait before restarting
	Delay time.Duration
	// History is the failure history to keep for the next evaluation
	History FailureHistory
}

// Option configures a Supervisor
type Option func(*Supervisor)

// WithStrategy sets the supervisor strategy
func WithStrategy(strategy Strategy) Option {
	return func(s *Supervisor) {
		s.strategy = strategy
	}
}

// WithDirective maps the concrete type of err to a directive.
// Any error in the failure chain with the same type matches.
func WithDirective(err error, directive Directive) Option {
	return func(s *Supervisor) {
		s.typeRules[errorType(err)] = directive
	}
}

// WithErrorDirective maps a sentinel error to a directive. Matching uses errors.Is.
func WithErrorDirective(target error, directive Directive) Option {
	return func(s *Supervisor) {
		s.valueRules = append(s.valueRules, valueRule{target: target, directive: directive})
	}
}

// WithAnyErrorDirective applies directive to every error, overriding other rules
func WithAnyErrorDirective(directive Directive) Option {
	return func(s *Supervisor) {
		s.anyDirective = &directive
	}
}

// WithDefaultDirective sets the directive used when no rule matches. It is Restart unless set.
func WithDefaultDirective(directive Directive) Option {
	return func(s *Supervisor) {
		s.fallback = directive
	}
}

// WithRetry bounds restarts: more than maxRetries failures within window turn
// a Restart into a Stop. A zero maxRetries means unbounded and a zero window
// means the attempts never reset.
func WithRetry(maxRetries uint32, window time.Duration) Option {
	return func(s *Supervisor) {
		s.maxRetries = maxRetries
		s.window = window
	}
}

// WithBackoff delays restarts by min(max, min * scalar^(attempt-1))
func WithBackoff(min, max time.Duration, scalar float64) Option {
	return func(s *Supervisor) {
		s.backoff = &backoff{min: min, max: max, scalar: scalar}
	}
}

type valueRule struct {
	target    error
	directive Directive
}

type backoff struct {
	min    time.Duration
	max    time.Duration
	scalar float64
}

func (b *backoff) delay(attempt uint32) time.Duration {
	if b == nil || attempt == 0 {
		return 0
	}
	value := float64(b.min) * math.Pow(b.scalar, float64(attempt-1))
	if value > float64(b.max) || math.IsInf(value, 0) || math.IsNaN(value) {
		return b.max
	}
	return time.Duration(value)
}

// Supervisor holds a supervision policy. It is immutable once built and
// safe for concurrent use.
type Supervisor struct {
	strategy     Strategy
	maxRetries   uint32
	window       time.Duration
	backoff      *backoff
	typeRules    map[string]Directive
	valueRules   []valueRule
	anyDirective *Directive
	fallback     Directive
}

// NewSupervisor creates a Supervisor. Without options every failure restarts the
// failing process only, with no attempt bound.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		strategy:  OneForOneStrategy,
		typeRules: make(map[string]Directive),
		fallback:  RestartDirective,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultSupervisor restarts on every failure
var DefaultSupervisor = NewSupervisor()

// Strategy returns the configured strategy
func (s *Supervisor) Strategy() Strategy {
	return s.strategy
}

// MaxRetries returns the attempt bound
func (s *Supervisor) MaxRetries() uint32 {
	return s.maxRetries
}

// Window returns the attempt window
func (s *Supervisor) Window() time.Duration {
	return s.window
}

// Directive returns the directive configured for err
func (s *Supervisor) Directive(err error) Directive {
	if s.anyDirective != nil {
		return *s.anyDirective
	}

	for _, rule := range s.valueRules {
		if errors.Is(err, rule.target) {
			return rule.directive
		}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if directive, ok := s.typeRules[errorType(e)]; ok {
			return directive
		}
	}

	return s.fallback
}

// Decide evaluates a failure against the history of the failing process.
// It has no side effects: the caller stores the returned history.
func (s *Supervisor) Decide(history FailureHistory, err error, now time.Time) Decision {
	if s.window > 0 && history.Attempts > 0 && now.Sub(history.FirstFailure) > s.window {
		history = FailureHistory{}
	}

	if history.Attempts == 0 {
		history.FirstFailure = now
	}
	history.Attempts++
	history.LastFailure = now

	decision := Decision{
		Directive: s.Directive(err),
		Strategy:  s.strategy,
		History:   history,
	}

	if decision.Directive == RestartDirective {
		if s.maxRetries > 0 && history.Attempts > s.maxRetries {
			decision.Directive = StopDirective
			return decision
		}
		decision.Delay = s.backoff.delay(history.Attempts)
	}

	return decision
}

func errorType(err error) string {
	if err == nil {
		return ""
	}
	rtype := reflect.TypeOf(err)
	if rtype.Kind() == reflect.Pointer {
		return "*" + rtype.Elem().PkgPath() + "." + rtype.Elem().Name()
	}
	return rtype.PkgPath() + "." + rtype.Name()
}
