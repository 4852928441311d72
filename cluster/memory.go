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

package cluster

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
)

// Memory is an in-process backend. Every MemoryClient created from the
// same Memory sees the same entries and channels, so actor systems sharing
// one backend reach each other exactly as they would through Redis.
type Memory struct {
	mu          sync.Mutex
	entries     map[string]*entry
	subscribers map[string]map[*MemoryClient]chan []byte
	now         func() time.Time
}

type entry struct {
	value    []byte
	list     [][]byte
	set      mapset.Set[string]
	hash     map[string][]byte
	expireAt time.Time
}

// NewMemory creates an in-process backend
func NewMemory() *Memory {
	return &Memory{
		entries:     make(map[string]*entry),
		subscribers: make(map[string]map[*MemoryClient]chan []byte),
		now:         time.Now,
	}
}

// Client returns a new connection to the backend
func (m *Memory) Client() *MemoryClient {
	return &MemoryClient{Memory: m, connected: atomic.NewBool(false)}
}

// MemoryClient is a Cluster connected to a Memory backend
type MemoryClient struct {
	*Memory
	connected *atomic.Bool
}

var _ Cluster = (*MemoryClient)(nil)

// Connect implements Cluster
func (c *MemoryClient) Connect(context.Context) error {
	c.connected.Store(true)
	return nil
}

// Disconnect implements Cluster. It closes the subscriptions of this client only.
func (c *MemoryClient) Disconnect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for channel, subs := range c.subscribers {
		if sub, ok := subs[c]; ok {
			close(sub)
			delete(subs, c)
		}
		if len(subs) == 0 {
			delete(c.subscribers, channel)
		}
	}
	c.connected.Store(false)
	return nil
}

// Connected implements Cluster
func (c *MemoryClient) Connected() bool {
	return c.connected.Load()
}

// Subscribe implements Channels
func (c *MemoryClient) Subscribe(_ context.Context, channel string) (<-chan []byte, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	subs, ok := c.subscribers[channel]
	if !ok {
		subs = make(map[*MemoryClient]chan []byte)
		c.subscribers[channel] = subs
	}
	if _, ok := subs[c]; ok {
		return nil, ErrAlreadySubscribed
	}
	sub := make(chan []byte, 256)
	subs[c] = sub
	return sub, nil
}

// Unsubscribe implements Channels
func (c *MemoryClient) Unsubscribe(_ context.Context, channel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs := c.subscribers[channel]
	if sub, ok := subs[c]; ok {
		close(sub)
		delete(subs, c)
	}
	if len(subs) == 0 {
		delete(c.subscribers, channel)
	}
	return nil
}

// Publish implements Channels. Slow subscribers whose buffer is full miss the payload.
func (m *Memory) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var receivers int64
	for _, sub := range m.subscribers[channel] {
		select {
		case sub <- payload:
			receivers++
		default:
		}
	}
	return receivers, nil
}

// Get implements Store
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.value == nil {
		return nil, ErrKeyNotFound
	}
	return e.value, nil
}

// Set implements Store
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{value: value}
	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Delete implements Store
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// Exists implements Store
func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok, nil
}

// ListPush implements Store
func (m *Memory) ListPush(_ context.Context, key string, values ...[]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.list = append(e.list, values...)
	return nil
}

// ListPop implements Store
func (m *Memory) ListPop(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || len(e.list) == 0 {
		return nil, ErrKeyNotFound
	}
	head := e.list[0]
	e.list = e.list[1:]
	if len(e.list) == 0 {
		delete(m.entries, key)
	}
	return head, nil
}

// ListPeek implements Store
func (m *Memory) ListPeek(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || len(e.list) == 0 {
		return nil, ErrKeyNotFound
	}
	return e.list[0], nil
}

// ListRange implements Store
func (m *Memory) ListRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		return nil, nil
	}

	size := int64(len(e.list))
	if start < 0 {
		start = max(size+start, 0)
	}
	if stop < 0 {
		stop = size + stop
	}
	stop = min(stop, size-1)
	if start > stop {
		return nil, nil
	}

	out := make([][]byte, stop-start+1)
	copy(out, e.list[start:stop+1])
	return out, nil
}

// SetAdd implements Store
func (m *Memory) SetAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	if e.set == nil {
		e.set = mapset.NewThreadUnsafeSet[string]()
	}
	e.set.Append(members...)
	return nil
}

// SetRemove implements Store
func (m *Memory) SetRemove(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.set == nil {
		return nil
	}
	e.set.RemoveAll(members...)
	if e.set.Cardinality() == 0 {
		delete(m.entries, key)
	}
	return nil
}

// SetContains implements Store
func (m *Memory) SetContains(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.set == nil {
		return false, nil
	}
	return e.set.Contains(member), nil
}

// SetMembers implements Store
func (m *Memory) SetMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.set == nil {
		return nil, nil
	}
	return e.set.ToSlice(), nil
}

// HashGet implements Store
func (m *Memory) HashGet(_ context.Context, key, field string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.hash == nil {
		return nil, ErrKeyNotFound
	}
	value, ok := e.hash[field]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

// HashSet implements Store
func (m *Memory) HashSet(_ context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	if e.hash == nil {
		e.hash = make(map[string][]byte)
	}
	e.hash[field] = value
	return nil
}

// HashSetIfExists implements Store
func (m *Memory) HashSetIfExists(_ context.Context, key, field string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.hash == nil {
		return false, nil
	}
	e.hash[field] = value
	return true, nil
}

// HashDelete implements Store
func (m *Memory) HashDelete(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.hash == nil {
		return nil
	}
	for _, field := range fields {
		delete(e.hash, field)
	}
	if len(e.hash) == 0 {
		delete(m.entries, key)
	}
	return nil
}

// Keys implements Store
func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	matcher, err := globToRegexp(pattern)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.entries {
		if _, ok := m.lookup(key); ok && matcher.MatchString(key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// lookup returns the live entry at key and evicts it when expired
func (m *Memory) lookup(key string) (*entry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expireAt.IsZero() && !m.now().Before(e.expireAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e, true
}

// globToRegexp turns a Redis glob pattern into an anchored regular expression
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
