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
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
	"go.uber.org/atomic"

	"github.com/tochemey/echo/address"
	gerrors "github.com/tochemey/echo/errors"
)

var snapshotsBucket = []byte("snapshots")

// errNotConnected is returned when the store is used before Connect
var errNotConnected = errors.New("state store is not connected")

// BoltStore persists snapshots in a bbolt file. Records are zstd compressed.
type BoltStore struct {
	mu        sync.RWMutex
	path      string
	db        *bbolt.DB
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	connected *atomic.Bool
}

var _ StateStore = (*BoltStore)(nil)

// NewBoltStore creates a BoltStore writing to the file at path
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{
		path:      path,
		connected: atomic.NewBool(false),
	}
}

// Connect opens the database file
func (s *BoltStore) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected.Load() {
		return nil
	}

	db, err := bbolt.Open(s.path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotsBucket)
		return err
	}); err != nil {
		return errors.Join(err, db.Close())
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return errors.Join(err, db.Close())
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return errors.Join(err, encoder.Close(), db.Close())
	}

	s.db = db
	s.encoder = encoder
	s.decoder = decoder
	s.connected.Store(true)
	return nil
}

// Disconnect closes the database file
func (s *BoltStore) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected.Load() {
		return nil
	}

	s.decoder.Close()
	err := errors.Join(s.encoder.Close(), s.db.Close())
	s.connected.Store(false)
	return err
}

// Load implements StateStore
func (s *BoltStore) Load(_ context.Context, pid address.ProcessID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected.Load() {
		return nil, errNotConnected
	}

	var raw []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(snapshotsBucket).Get([]byte(pid.String()))
		if value == nil {
			return gerrors.ErrStateNotFound
		}
		// bbolt values are only valid inside the transaction
		raw = append([]byte(nil), value...)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.decode(raw)
}

// Save implements StateStore
func (s *BoltStore) Save(_ context.Context, snapshot *Snapshot) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected.Load() {
		return errNotConnected
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(snapshotsBucket)
		key := []byte(snapshot.ProcessID.String())

		var previous int64
		if existing := bucket.Get(key); existing != nil {
			decoded, err := s.decode(existing)
			if err != nil {
				return err
			}
			previous = decoded.Version
		}

		stamp(snapshot, previous)
		bytea, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		return bucket.Put(key, s.encoder.EncodeAll(bytea, nil))
	})
}

// Delete implements StateStore
func (s *BoltStore) Delete(_ context.Context, pid address.ProcessID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected.Load() {
		return errNotConnected
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Delete([]byte(pid.String()))
	})
}

// Exists implements StateStore
func (s *BoltStore) Exists(_ context.Context, pid address.ProcessID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected.Load() {
		return false, errNotConnected
	}

	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(snapshotsBucket).Get([]byte(pid.String())) != nil
		return nil
	})
	return exists, err
}

func (s *BoltStore) decode(raw []byte) (*Snapshot, error) {
	bytea, err := s.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, err
	}
	snapshot := new(Snapshot)
	if err := json.Unmarshal(bytea, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
