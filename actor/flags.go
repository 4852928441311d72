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

import "strings"

// Flags tune the behavior of a process
type Flags int

const (
	// PersistState persists the final state on Shutdown and restores it on the next spawn
	PersistState Flags = 1 << iota
	// RemotePublish mirrors published values on the cluster so remote systems can subscribe
	RemotePublish
	// RemoteStatePublish mirrors state changes on the cluster
	RemoteStatePublish
)

// NoFlags is the default
const NoFlags Flags = 0

// Has reports whether flag is set
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// String returns the string representation of the flags
func (f Flags) String() string {
	var names []string
	if f.Has(PersistState) {
		names = append(names, "PersistState")
	}
	if f.Has(RemotePublish) {
		names = append(names, "RemotePublish")
	}
	if f.Has(RemoteStatePublish) {
		names = append(names, "RemoteStatePublish")
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "|")
}
