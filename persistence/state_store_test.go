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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/cluster"
	gerrors "github.com/tochemey/echo/errors"
)

type stateStoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) StateStore
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &stateStoreSuite{newStore: func(*testing.T) StateStore {
		return NewMemoryStore()
	}})
}

func TestBoltStore(t *testing.T) {
	suite.Run(t, &stateStoreSuite{newStore: func(t *testing.T) StateStore {
		return NewBoltStore(filepath.Join(t.TempDir(), "state.db"))
	}})
}

func TestClusterStore(t *testing.T) {
	suite.Run(t, &stateStoreSuite{newStore: func(t *testing.T) StateStore {
		client := cluster.NewMemory().Client()
		require.NoError(t, client.Connect(context.Background()))
		return NewClusterStore(client)
	}})
}

func (s *stateStoreSuite) TestSaveAndLoad() {
	ctx := context.Background()
	store := s.newStore(s.T())
	s.Require().NoError(store.Connect(ctx))
	defer func() { s.Require().NoError(store.Disconnect(ctx)) }()

	pid := address.MustParse("//sys/user/counter")
	_, err := store.Load(ctx, pid)
	s.Require().ErrorIs(err, gerrors.ErrStateNotFound)

	s.Require().NoError(store.Save(ctx, &Snapshot{ProcessID: pid, ContentType: "json:int", Data: []byte("5")}))
	snapshot, err := store.Load(ctx, pid)
	s.Require().NoError(err)
	s.Assert().Equal(pid, snapshot.ProcessID)
	s.Assert().Equal("json:int", snapshot.ContentType)
	s.Assert().Equal([]byte("5"), snapshot.Data)
	s.Assert().EqualValues(1, snapshot.Version)
	s.Assert().NotZero(snapshot.Timestamp)

	s.Require().NoError(store.Save(ctx, &Snapshot{ProcessID: pid, ContentType: "json:int", Data: []byte("8")}))
	snapshot, err = store.Load(ctx, pid)
	s.Require().NoError(err)
	s.Assert().Equal([]byte("8"), snapshot.Data)
	s.Assert().EqualValues(2, snapshot.Version)
}

func (s *stateStoreSuite) TestDelete() {
	ctx := context.Background()
	store := s.newStore(s.T())
	s.Require().NoError(store.Connect(ctx))
	defer func() { s.Require().NoError(store.Disconnect(ctx)) }()

	pid := address.MustParse("//sys/user/counter")
	s.Require().NoError(store.Delete(ctx, pid))

	s.Require().NoError(store.Save(ctx, &Snapshot{ProcessID: pid, Data: []byte("1")}))
	exists, err := store.Exists(ctx, pid)
	s.Require().NoError(err)
	s.Assert().True(exists)

	s.Require().NoError(store.Delete(ctx, pid))
	exists, err = store.Exists(ctx, pid)
	s.Require().NoError(err)
	s.Assert().False(exists)
}

func TestBoltStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	pid := address.MustParse("//sys/user/counter")

	store := NewBoltStore(path)
	require.NoError(t, store.Connect(ctx))
	require.NoError(t, store.Save(ctx, &Snapshot{ProcessID: pid, Data: []byte("42")}))
	require.NoError(t, store.Disconnect(ctx))

	_, err := store.Load(ctx, pid)
	require.Error(t, err)

	reopened := NewBoltStore(path)
	require.NoError(t, reopened.Connect(ctx))
	defer func() { require.NoError(t, reopened.Disconnect(ctx)) }()
	snapshot, err := reopened.Load(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), snapshot.Data)
}
