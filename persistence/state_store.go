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

// Package persistence keeps the final state of processes shut down with
// maintainState so they can be resurrected under the same address.
package persistence

import (
	"context"
	"time"

	"github.com/tochemey/echo/address"
)

// Snapshot is the persisted state of a process
type Snapshot struct {
	// ProcessID is the address of the process owning the state
	ProcessID address.ProcessID `json:"processId"`
	// ContentType identifies the payload serializer
	ContentType string `json:"contentType"`
	// Data is the serialized state
	Data []byte `json:"data"`
	// Version is incremented on every Save
	Version int64 `json:"version"`
	// Timestamp is the time of the last Save in unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// StateStore persists process snapshots.
// Implementations must be safe for concurrent use.
type StateStore interface {
	// Connect opens the store
	Connect(ctx context.Context) error
	// Disconnect closes the store
	Disconnect(ctx context.Context) error
	// Load returns the snapshot of pid or ErrStateNotFound
	Load(ctx context.Context, pid address.ProcessID) (*Snapshot, error)
	// Save inserts or replaces the snapshot and sets its version and timestamp
	Save(ctx context.Context, snapshot *Snapshot) error
	// Delete removes the snapshot of pid. Deleting a missing snapshot is a no-op.
	Delete(ctx context.Context, pid address.ProcessID) error
	// Exists reports whether pid has a snapshot
	Exists(ctx context.Context, pid address.ProcessID) (bool, error)
}

func stamp(snapshot *Snapshot, previous int64) {
	snapshot.Version = previous + 1
	snapshot.Timestamp = time.Now().UnixMilli()
}
