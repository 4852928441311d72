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

// Package cluster defines the storage and messaging collaborator that lets
// actor systems on different nodes reach each other.
//
// A collaborator exposes pub/sub channels, key/value entries with a TTL,
// lists used as queues, sets, hashes and a key-pattern query. Every
// implementation retries transient connectivity failures with a bounded
// exponential backoff before surfacing ErrClientDisconnected.
package cluster

import (
	"context"
	"time"
)

// Channels is the pub/sub part of the collaborator
type Channels interface {
	// Publish sends payload to every subscriber of channel and returns the number of receivers
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	// Subscribe returns the stream of payloads published on channel.
	// The stream is closed by Unsubscribe or Disconnect.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	// Unsubscribe stops the subscription on channel. Unknown channels are ignored.
	Unsubscribe(ctx context.Context, channel string) error
}

// Store is the storage part of the collaborator
type Store interface {
	// Get returns the value of key or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys
	Delete(ctx context.Context, keys ...string) error
	// Exists reports whether key is set
	Exists(ctx context.Context, key string) (bool, error)

	// ListPush appends values to the tail of the list at key
	ListPush(ctx context.Context, key string, values ...[]byte) error
	// ListPop removes and returns the head of the list at key or ErrKeyNotFound when empty
	ListPop(ctx context.Context, key string) ([]byte, error)
	// ListPeek returns the head of the list at key without removing it or ErrKeyNotFound when empty
	ListPeek(ctx context.Context, key string) ([]byte, error)
	// ListRange returns the elements between start and stop inclusive. Negative indexes count from the tail.
	ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// SetAdd adds members to the set at key
	SetAdd(ctx context.Context, key string, members ...string) error
	// SetRemove removes members from the set at key
	SetRemove(ctx context.Context, key string, members ...string) error
	// SetContains reports whether member belongs to the set at key
	SetContains(ctx context.Context, key, member string) (bool, error)
	// SetMembers returns the members of the set at key
	SetMembers(ctx context.Context, key string) ([]string, error)

	// HashGet returns the value of field in the hash at key or ErrKeyNotFound
	HashGet(ctx context.Context, key, field string) ([]byte, error)
	// HashSet writes field in the hash at key
	HashSet(ctx context.Context, key, field string, value []byte) error
	// HashSetIfExists writes field only when the hash at key exists and reports whether it did
	HashSetIfExists(ctx context.Context, key, field string, value []byte) (bool, error)
	// HashDelete removes fields from the hash at key
	HashDelete(ctx context.Context, key string, fields ...string) error

	// Keys returns every key matching the glob-style pattern
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Cluster is the full collaborator consumed by the actor system
type Cluster interface {
	Channels
	Store
	// Connect opens the connection to the backing store
	Connect(ctx context.Context) error
	// Disconnect closes the connection and every open subscription
	Disconnect(ctx context.Context) error
	// Connected reports whether the collaborator is connected
	Connected() bool
}
