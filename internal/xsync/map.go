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

package xsync

import (
	"sync"

	"github.com/zeebo/xxh3"
)

const defaultShards = 32

type shard[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// Map is a concurrency-safe map split into shards so that writers on
// different keys seldom contend. Shards are picked by an xxh3 hash of
// the key's text form.
type Map[K comparable, V any] struct {
	shards []*shard[K, V]
	keyFn  func(K) string
}

// NewMap creates a Map. keyFn returns the text used to hash a key.
func NewMap[K comparable, V any](keyFn func(K) string) *Map[K, V] {
	shards := make([]*shard[K, V], defaultShards)
	for i := range shards {
		shards[i] = &shard[K, V]{data: make(map[K]V)}
	}
	return &Map[K, V]{shards: shards, keyFn: keyFn}
}

// NewStringMap creates a Map keyed by strings
func NewStringMap[V any]() *Map[string, V] {
	return NewMap[string, V](func(s string) string { return s })
}

func (m *Map[K, V]) shardOf(k K) *shard[K, V] {
	return m.shards[xxh3.HashString(m.keyFn(k))%uint64(len(m.shards))]
}

// Set stores v under k
func (m *Map[K, V]) Set(k K, v V) {
	s := m.shardOf(k)
	s.mu.Lock()
	s.data[k] = v
	s.mu.Unlock()
}

// SetIfAbsent stores v under k only when k is not present.
// It returns true when v was stored.
func (m *Map[K, V]) SetIfAbsent(k K, v V) bool {
	s := m.shardOf(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[k]; ok {
		return false
	}
	s.data[k] = v
	return true
}

// Get returns the value stored under k
func (m *Map[K, V]) Get(k K) (V, bool) {
	s := m.shardOf(k)
	s.mu.RLock()
	v, ok := s.data[k]
	s.mu.RUnlock()
	return v, ok
}

// Delete removes k. Deleting a missing key is a no-op.
func (m *Map[K, V]) Delete(k K) {
	s := m.shardOf(k)
	s.mu.Lock()
	delete(s.data, k)
	s.mu.Unlock()
}

// Pop removes k and returns the value it held
func (m *Map[K, V]) Pop(k K) (V, bool) {
	s := m.shardOf(k)
	s.mu.Lock()
	v, ok := s.data[k]
	delete(s.data, k)
	s.mu.Unlock()
	return v, ok
}

// Len returns the number of entries
func (m *Map[K, V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.data)
		s.mu.RUnlock()
	}
	return n
}

// Range calls f for every entry. f must not write to the map.
func (m *Map[K, V]) Range(f func(K, V)) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.data {
			f(k, v)
		}
		s.mu.RUnlock()
	}
}

// Values returns a snapshot of the values
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, m.Len())
	m.Range(func(_ K, v V) { out = append(out, v) })
	return out
}

// Keys returns a snapshot of the keys
func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, m.Len())
	m.Range(func(k K, _ V) { out = append(out, k) })
	return out
}

// Reset empties the map
func (m *Map[K, V]) Reset() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.data = make(map[K]V)
		s.mu.Unlock()
	}
}
