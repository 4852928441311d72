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
	"encoding/json"
	"errors"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/cluster"
	gerrors "github.com/tochemey/echo/errors"
)

// ClusterStore keeps snapshots in the cluster collaborator so that a
// process can be resurrected on any node sharing the store.
// The collaborator connection is owned by the caller.
type ClusterStore struct {
	cluster cluster.Store
}

var _ StateStore = (*ClusterStore)(nil)

// NewClusterStore creates a ClusterStore
func NewClusterStore(store cluster.Store) *ClusterStore {
	return &ClusterStore{cluster: store}
}

// Connect implements StateStore
func (s *ClusterStore) Connect(context.Context) error {
	return nil
}

// Disconnect implements StateStore
func (s *ClusterStore) Disconnect(context.Context) error {
	return nil
}

// Load implements StateStore
func (s *ClusterStore) Load(ctx context.Context, pid address.ProcessID) (*Snapshot, error) {
	bytea, err := s.cluster.Get(ctx, stateKey(pid))
	if err != nil {
		if errors.Is(err, cluster.ErrKeyNotFound) {
			return nil, gerrors.ErrStateNotFound
		}
		return nil, err
	}
	snapshot := new(Snapshot)
	if err := json.Unmarshal(bytea, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Save implements StateStore
func (s *ClusterStore) Save(ctx context.Context, snapshot *Snapshot) error {
	var previous int64
	existing, err := s.Load(ctx, snapshot.ProcessID)
	switch {
	case err == nil:
		previous = existing.Version
	case !errors.Is(err, gerrors.ErrStateNotFound):
		return err
	}

	stamp(snapshot, previous)
	bytea, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.cluster.Set(ctx, stateKey(snapshot.ProcessID), bytea, 0)
}

// Delete implements StateStore
func (s *ClusterStore) Delete(ctx context.Context, pid address.ProcessID) error {
	return s.cluster.Delete(ctx, stateKey(pid))
}

// Exists implements StateStore
func (s *ClusterStore) Exists(ctx context.Context, pid address.ProcessID) (bool, error) {
	return s.cluster.Exists(ctx, stateKey(pid))
}

func stateKey(pid address.ProcessID) string {
	return "echo:" + pid.System().String() + ":state:" + pid.Path()
}
