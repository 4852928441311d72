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

package address

import (
	"regexp"

	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/internal/validation"
)

const maxNameLength = 255

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.$~#@]+$`)

// ProcessName is a single validated segment of a process path
type ProcessName string

// NewProcessName validates name and returns it as a ProcessName
func NewProcessName(name string) (ProcessName, error) {
	if err := validateName(name, gerrors.NewErrInvalidProcessName(name)); err != nil {
		return "", err
	}
	return ProcessName(name), nil
}

// MustProcessName is like NewProcessName but panics on a malformed name
func MustProcessName(name string) ProcessName {
	n, err := NewProcessName(name)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the name as text
func (n ProcessName) String() string {
	return string(n)
}

// SystemName names a process-system. It follows the same rules as ProcessName.
type SystemName string

// NewSystemName validates name and returns it as a SystemName
func NewSystemName(name string) (SystemName, error) {
	if err := validateName(name, gerrors.NewErrInvalidSystemName(name)); err != nil {
		return "", err
	}
	return SystemName(name), nil
}

// String returns the name as text
func (n SystemName) String() string {
	return string(n)
}

func validateName(name string, err error) error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewLengthValidator(name, maxNameLength, err)).
		AddValidator(validation.NewPatternValidator(namePattern, name, err)).
		AddAssertion(name != "." && name != "..", err).
		Validate()
}
