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

// Package address provides the hierarchical addressing used to reach processes.
//
// A ProcessID is an immutable path of validated process names plus the name
// of the process-system that owns it. Its canonical text form is
//
//	//<system>/<segment>/.../<name>
//
// and, when the owning system is implied by the caller,
//
//	/<segment>/.../<name>
//
// The zero ProcessID is the "no sender" sentinel. Paths under /__special__
// are placeholders (self, sender, parent, ...) that are resolved against the
// active request context and are never used as real addresses.
package address

import (
	"strings"

	gerrors "github.com/tochemey/echo/errors"
)

const (
	separator   = "/"
	specialRoot = "/__special__"
)

var (
	// NoSender is the absence of a sender
	NoSender = ProcessID{}

	// Self resolves to the current process, or to the user root outside of a handler
	Self = special("self")
	// Sender resolves to the sender of the current message, or NoSender outside of a handler
	Sender = special("sender")
	// Parent resolves to the parent of the current process, or to the user root outside of a handler
	Parent = special("parent")
	// User resolves to the user root of the system
	User = special("user")
	// DeadLetters resolves to the dead-letters process of the system
	DeadLetters = special("dead-letters")
	// Root resolves to the root process of the system
	Root = special("root")
	// Errors resolves to the errors process of the system
	Errors = special("errors")
)

// ProcessID addresses a process. It is a comparable value and can be used as a map key.
type ProcessID struct {
	system SystemName
	path   string
}

// New builds a ProcessID from already validated names
func New(system SystemName, names ...ProcessName) ProcessID {
	if len(names) == 0 {
		return ProcessID{system: system}
	}

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(separator)
		sb.WriteString(string(name))
	}
	return ProcessID{system: system, path: sb.String()}
}

// Parse reads a ProcessID from its text form
func Parse(text string) (ProcessID, error) {
	if text == "" || !strings.HasPrefix(text, separator) {
		return NoSender, gerrors.NewErrInvalidProcessID(text)
	}

	var system SystemName
	rest := text
	if strings.HasPrefix(text, "//") {
		rest = text[2:]
		idx := strings.Index(rest, separator)
		if idx <= 0 {
			return NoSender, gerrors.NewErrInvalidProcessID(text)
		}

		name, err := NewSystemName(rest[:idx])
		if err != nil {
			return NoSender, err
		}

		system = name
		rest = rest[idx:]
	}

	segments := strings.Split(rest[1:], separator)
	names := make([]ProcessName, 0, len(segments))
	for _, segment := range segments {
		name, err := NewProcessName(segment)
		if err != nil {
			return NoSender, gerrors.NewErrInvalidProcessID(text)
		}
		names = append(names, name)
	}

	return New(system, names...), nil
}

// MustParse is like Parse but panics on malformed input
func MustParse(text string) ProcessID {
	pid, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return pid
}

// System returns the owning system name. It is empty when implied.
func (x ProcessID) System() SystemName {
	return x.system
}

// Path returns the path without the system part
func (x ProcessID) Path() string {
	return x.path
}

// IsZero reports whether x is NoSender
func (x ProcessID) IsZero() bool {
	return x.path == ""
}

// IsSpecial reports whether x is one of the contextual placeholders
func (x ProcessID) IsSpecial() bool {
	return strings.HasPrefix(x.path, specialRoot+separator)
}

// Name returns the last segment of the path
func (x ProcessID) Name() ProcessName {
	idx := strings.LastIndex(x.path, separator)
	if idx < 0 {
		return ""
	}
	return ProcessName(x.path[idx+1:])
}

// Child returns the address of a child called name
func (x ProcessID) Child(name ProcessName) ProcessID {
	return ProcessID{system: x.system, path: x.path + separator + string(name)}
}

// Parent returns the address one level up. The parent of a top-level path is NoSender.
func (x ProcessID) Parent() ProcessID {
	idx := strings.LastIndex(x.path, separator)
	if idx <= 0 {
		return NoSender
	}
	return ProcessID{system: x.system, path: x.path[:idx]}
}

// Segments returns the names that make up the path
func (x ProcessID) Segments() []ProcessName {
	if x.IsZero() {
		return nil
	}
	parts := strings.Split(x.path[1:], separator)
	names := make([]ProcessName, len(parts))
	for i, part := range parts {
		names[i] = ProcessName(part)
	}
	return names
}

// Count returns the depth of the path
func (x ProcessID) Count() int {
	return strings.Count(x.path, separator)
}

// WithSystem returns a copy of x owned by system
func (x ProcessID) WithSystem(system SystemName) ProcessID {
	return ProcessID{system: system, path: x.path}
}

// IsDescendantOf reports whether x sits strictly below other in the same system
func (x ProcessID) IsDescendantOf(other ProcessID) bool {
	if x.system != other.system || other.IsZero() {
		return false
	}
	return strings.HasPrefix(x.path, other.path+separator)
}

// String returns the canonical text form
func (x ProcessID) String() string {
	if x.system == "" {
		return x.path
	}
	return "//" + string(x.system) + x.path
}

// Validate checks that x can be used as a destination address
func (x ProcessID) Validate() error {
	if x.IsZero() {
		return gerrors.NewErrInvalidProcessID("")
	}
	_, err := Parse(x.String())
	return err
}

// MarshalText implements encoding.TextMarshaler
func (x ProcessID) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text decodes to NoSender.
func (x *ProcessID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*x = NoSender
		return nil
	}
	pid, err := Parse(string(text))
	if err != nil {
		return err
	}
	*x = pid
	return nil
}

func special(name string) ProcessID {
	return ProcessID{path: specialRoot + separator + name}
}
