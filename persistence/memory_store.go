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

package persistence

import (
	"context"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/internal/xsync"
)

// MemoryStore keeps snapshots in memory
type MemoryStore struct {
	snapshots *xsync.Map[address.ProcessID, *Snapshot]
}

var _ StateStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new instance of MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: xsync.NewMap[address.ProcessID, *Snapshot](func(pid address.ProcessID) string {
			return pid.String()
		}),
	}
}

// Connect implements StateStore
func (s *MemoryStore) Connect(context.Context) error {
	return nil
}

// Disconnect implements StateStore
func (s *MemoryStore) Disconnect(context.Context) error {
	s.snapshots.Reset()
	return nil
}

// Load implements StateStore
func (s *MemoryStore) Load(_ context.Context, pid address.ProcessID) (*Snapshot, error) {
	snapshot, ok := s.snapshots.Get(pid)
	if !ok {
		return nil, gerrors.ErrStateNotFound
	}
	clone := *snapshot
	return &clone, nil
}

// Save implements StateStore
func (s *MemoryStore) Save(_ context.Context, snapshot *Snapshot) error {
	var previous int64
	if existing, ok := s.snapshots.Get(snapshot.ProcessID); ok {
		previous = existing.Version
	}
	stamp(snapshot, previous)
	clone := *snapshot
	s.snapshots.Set(snapshot.ProcessID, &clone)
	return nil
}

// Delete implements StateStore
func (s *MemoryStore) Delete(_ context.Context, pid address.ProcessID) error {
	s.snapshots.Delete(pid)
	return nil
}

// Exists implements StateStore
func (s *MemoryStore) Exists(_ context.Context, pid address.ProcessID) (bool, error) {
	_, ok := s.snapshots.Get(pid)
	return ok, nil
}
