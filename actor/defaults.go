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
	"time"

	"github.com/tochemey/echo/address"
)

const (
	// DefaultAskTimeout bounds the wait of an ask without an explicit timeout
	DefaultAskTimeout = 5 * time.Second
	// DefaultShutdownTimeout bounds the shutdown of a process and its descendants
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultHeartbeatInterval is how often a clustered system refreshes its liveness key
	DefaultHeartbeatInterval = 5 * time.Second
	// DefaultHeartbeatTTL is how long the liveness key survives without refresh
	DefaultHeartbeatTTL = 15 * time.Second
	// DefaultDedupWindow is the number of remote message ids remembered for de-duplication
	DefaultDedupWindow = 4096

	// shutdownReason is recorded on messages left in a mailbox at shutdown
	shutdownReason = "process shutdown"
	// typeMismatchReason is recorded on messages whose type the target does not accept
	typeMismatchReason = "message type mismatch"
)

// names of the system tree
var (
	rootName        = address.MustProcessName("root")
	userName        = address.MustProcessName("user")
	deadLettersName = address.MustProcessName("dead-letters")
	errorsName      = address.MustProcessName("errors")
	registeredName  = address.MustProcessName("registered")
	askName         = address.MustProcessName("ask")
)

const (
	idle int32 = iota
	busy
)

const (
	starting int32 = iota
	running
	stopping
	stopped
)
