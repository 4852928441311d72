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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProcessName is returned when a process name is empty, too long or
	// carries characters outside of [a-zA-Z0-9_\-.$~#@]
	ErrInvalidProcessName = errors.New("invalid process name")
	// ErrInvalidSystemName is returned when a system name is malformed
	ErrInvalidSystemName = errors.New("invalid process-system name")
	// ErrInvalidProcessID is returned when a process path cannot be parsed
	ErrInvalidProcessID = errors.New("invalid process id")

	// ErrNamedProcessAlreadyExists is returned when spawning a process whose name is used by a live sibling
	ErrNamedProcessAlreadyExists = errors.New("named process already exists")
	// ErrProcessDoesNotExist is returned when a message is dispatched to an unresolvable address
	ErrProcessDoesNotExist = errors.New("process does not exist")
	// ErrProcessInboxFull is matched by InboxFullError
	ErrProcessInboxFull = errors.New("process inbox is full")
	// ErrProcessShutdown is returned when an operation targets a process that is shutting down
	ErrProcessShutdown = errors.New("process is shutting down")
	// ErrProcessKill can be returned by a handler to shut its own process down without supervision
	ErrProcessKill = errors.New("process kill requested")
	// ErrNoChildProcesses is returned when a child lookup is made on a process without children
	ErrNoChildProcesses = errors.New("no child processes")
	// ErrInvalidMessageType is returned when a process does not accept the type of message sent to it
	ErrInvalidMessageType = errors.New("invalid message type")

	// ErrAskTimeout is returned when no correlated response arrived in time
	ErrAskTimeout = errors.New("ask timed out")
	// ErrAskCycle is returned when a process asks itself or a process already waiting on it
	ErrAskCycle = errors.New("ask would deadlock: target is waiting on the caller")
	// ErrNotInRequest is returned when replying outside of a request
	ErrNotInRequest = errors.New("no request to reply to")
	// ErrInvalidTimeout is returned when a zero or negative timeout is given
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrProcessSystemNotFound is returned when no running system has the given name
	ErrProcessSystemNotFound = errors.New("process-system not found")
	// ErrProcessSystemAlreadyStarted is returned when starting a system whose name is taken
	ErrProcessSystemAlreadyStarted = errors.New("process-system already started")
	// ErrShutdownCancelled is returned by a pre-shutdown hook to keep the system running
	ErrShutdownCancelled = errors.New("process-system shutdown cancelled")
	// ErrNoDefaultSystem is returned when no default system is set
	ErrNoDefaultSystem = errors.New("no default process-system")

	// ErrNameNotRegistered is returned by find when no process is registered under the name
	ErrNameNotRegistered = errors.New("name is not registered")

	// ErrSchedulerNotStarted is returned when the scheduler is used before start or after stop
	ErrSchedulerNotStarted = errors.New("scheduler has not started")
	// ErrScheduleNotFound is returned when cancelling an unknown schedule
	ErrScheduleNotFound = errors.New("scheduled message not found")

	// ErrQueueFull is surfaced by the cluster collaborator when a remote queue rejects an item
	ErrQueueFull = errors.New("queue is full")
	// ErrClientDisconnected is surfaced when the cluster collaborator cannot reach its store
	ErrClientDisconnected = errors.New("cluster client disconnected")
	// ErrClusterNotConfigured is returned by remote operations on a system without a cluster
	ErrClusterNotConfigured = errors.New("cluster is not configured")
	// ErrRemoteNotSupported is returned by operations that cannot cross node boundaries
	ErrRemoteNotSupported = errors.New("operation not supported on a remote process")

	// ErrUnknownContentType is returned when a payload cannot be decoded
	ErrUnknownContentType = errors.New("unknown content type")
	// ErrStateNotFound is returned by state stores when nothing was persisted for a process
	ErrStateNotFound = errors.New("state not found")
)

// NewErrInvalidProcessName wraps ErrInvalidProcessName with the offending name
func NewErrInvalidProcessName(name string) error {
	return fmt.Errorf("(name=%q) %w", name, ErrInvalidProcessName)
}

// NewErrInvalidSystemName wraps ErrInvalidSystemName with the offending name
func NewErrInvalidSystemName(name string) error {
	return fmt.Errorf("(system=%q) %w", name, ErrInvalidSystemName)
}

// NewErrInvalidProcessID wraps ErrInvalidProcessID with the offending path
func NewErrInvalidProcessID(path string) error {
	return fmt.Errorf("(path=%q) %w", path, ErrInvalidProcessID)
}

// NewErrNamedProcessAlreadyExists wraps ErrNamedProcessAlreadyExists
func NewErrNamedProcessAlreadyExists(pid string) error {
	return fmt.Errorf("(process=%s) %w", pid, ErrNamedProcessAlreadyExists)
}

// NewErrProcessDoesNotExist wraps ErrProcessDoesNotExist
func NewErrProcessDoesNotExist(pid string) error {
	return fmt.Errorf("(process=%s) %w", pid, ErrProcessDoesNotExist)
}

// NewErrProcessShutdown wraps ErrProcessShutdown
func NewErrProcessShutdown(pid string) error {
	return fmt.Errorf("(process=%s) %w", pid, ErrProcessShutdown)
}

// NewErrInvalidMessageType wraps ErrInvalidMessageType
func NewErrInvalidMessageType(pid, messageType string) error {
	return fmt.Errorf("(process=%s, type=%s) %w", pid, messageType, ErrInvalidMessageType)
}

// NewErrProcessSystemNotFound wraps ErrProcessSystemNotFound
func NewErrProcessSystemNotFound(system string) error {
	return fmt.Errorf("(system=%s) %w", system, ErrProcessSystemNotFound)
}

// NewErrProcessSystemAlreadyStarted wraps ErrProcessSystemAlreadyStarted
func NewErrProcessSystemAlreadyStarted(system string) error {
	return fmt.Errorf("(system=%s) %w", system, ErrProcessSystemAlreadyStarted)
}

// NewErrNameNotRegistered wraps ErrNameNotRegistered
func NewErrNameNotRegistered(name string) error {
	return fmt.Errorf("(name=%s) %w", name, ErrNameNotRegistered)
}

// NewErrClientDisconnected wraps the last connectivity error after retries were exhausted
func NewErrClientDisconnected(err error) error {
	return errors.Join(ErrClientDisconnected, err)
}

// InboxFullError is returned when a bounded mailbox is saturated
type InboxFullError struct {
	Process string
	MaxSize int
	Type    string
}

var _ error = (*InboxFullError)(nil)

// Error implements the standard error interface
func (e *InboxFullError) Error() string {
	return fmt.Sprintf("(process=%s, max=%d, type=%s) %v", e.Process, e.MaxSize, e.Type, ErrProcessInboxFull)
}

// Is reports whether target is ErrProcessInboxFull
func (e *InboxFullError) Is(target error) bool {
	return target == ErrProcessInboxFull
}

// ProcessSetupError is returned when a process Setup function fails during spawn or restart
type ProcessSetupError struct {
	Process string
	err     error
}

var _ error = (*ProcessSetupError)(nil)

// NewProcessSetupError creates an instance of ProcessSetupError
func NewProcessSetupError(pid string, err error) *ProcessSetupError {
	return &ProcessSetupError{Process: pid, err: err}
}

// Error implements the standard error interface
func (e *ProcessSetupError) Error() string {
	return fmt.Sprintf("(process=%s) setup failed: %v", e.Process, e.err)
}

// Unwrap returns the setup failure
func (e *ProcessSetupError) Unwrap() error {
	return e.err
}

// ProcessSystemError wraps a failure raised by a message handler together
// with the call site it was captured at.
type ProcessSystemError struct {
	Process string
	Caller  string
	err     error
}

var _ error = (*ProcessSystemError)(nil)

// NewProcessSystemError creates an instance of ProcessSystemError
func NewProcessSystemError(pid, caller string, err error) *ProcessSystemError {
	return &ProcessSystemError{Process: pid, Caller: caller, err: err}
}

// Error implements the standard error interface
func (e *ProcessSystemError) Error() string {
	if e.Caller == "" {
		return fmt.Sprintf("(process=%s) %v", e.Process, e.err)
	}
	return fmt.Sprintf("(process=%s) %v at %s", e.Process, e.err, e.Caller)
}

// Unwrap returns the handler failure
func (e *ProcessSystemError) Unwrap() error {
	return e.err
}

// PanicError wraps a recovered panic value
type PanicError struct {
	value any
}

var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(value any) *PanicError {
	return &PanicError{value: value}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Unwrap returns the panic value when it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// AskError is returned by ask when the target replied with a failure
type AskError struct {
	Process string
	err     error
}

var _ error = (*AskError)(nil)

// NewAskError creates an instance of AskError
func NewAskError(pid string, err error) *AskError {
	return &AskError{Process: pid, err: err}
}

// Error implements the standard error interface
func (e *AskError) Error() string {
	return fmt.Sprintf("(process=%s) ask failed: %v", e.Process, e.err)
}

// Unwrap returns the failure reported by the target
func (e *AskError) Unwrap() error {
	return e.err
}

// RemoteError carries a failure that crossed a node boundary as text
type RemoteError struct {
	Message string
}

// Error implements the standard error interface
func (e *RemoteError) Error() string {
	return e.Message
}
