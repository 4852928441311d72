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
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/tochemey/echo/log"
)

// hsetIfExists writes a hash field only when the hash exists
var hsetIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// RedisOption configures the Redis collaborator
type RedisOption interface {
	// Apply sets the option value
	Apply(r *Redis)
}

var _ RedisOption = RedisOptionFunc(nil)

// RedisOptionFunc implements the RedisOption interface
type RedisOptionFunc func(r *Redis)

// Apply applies the option
func (f RedisOptionFunc) Apply(r *Redis) {
	f(r)
}

// WithRedisLogger sets the logger
func WithRedisLogger(logger log.Logger) RedisOption {
	return RedisOptionFunc(func(r *Redis) {
		r.logger = logger
	})
}

// WithRedisRetry sets the retry policy of transient failures
func WithRedisRetry(policy RetryPolicy) RedisOption {
	return RedisOptionFunc(func(r *Redis) {
		r.retry = policy
	})
}

// WithRedisPassword sets the password used to authenticate
func WithRedisPassword(password string) RedisOption {
	return RedisOptionFunc(func(r *Redis) {
		r.options.Password = password
	})
}

// WithRedisDB selects the database
func WithRedisDB(db int) RedisOption {
	return RedisOptionFunc(func(r *Redis) {
		r.options.DB = db
	})
}

// Redis is the Cluster implementation backed by a Redis server
type Redis struct {
	mu            sync.Mutex
	options       *redis.Options
	client        *redis.Client
	logger        log.Logger
	retry         RetryPolicy
	connected     *atomic.Bool
	subscriptions map[string]*redis.PubSub
}

var _ Cluster = (*Redis)(nil)

// NewRedis creates a Redis collaborator for the server at addr
func NewRedis(addr string, opts ...RedisOption) *Redis {
	r := &Redis{
		options:       &redis.Options{Addr: addr},
		logger:        log.DefaultLogger,
		retry:         DefaultRetryPolicy(),
		connected:     atomic.NewBool(false),
		subscriptions: make(map[string]*redis.PubSub),
	}
	for _, opt := range opts {
		opt.Apply(r)
	}
	return r
}

// Connect opens the connection to the Redis server
func (r *Redis) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connected.Load() {
		return nil
	}

	client := redis.NewClient(r.options)
	if err := r.retry.Run(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, nil); err != nil {
		_ = client.Close()
		r.logger.Errorf("failed to connect to redis at %s: %v", r.options.Addr, err)
		return err
	}

	r.client = client
	r.connected.Store(true)
	r.logger.Infof("connected to redis at %s", r.options.Addr)
	return nil
}

// Disconnect closes every subscription and the connection
func (r *Redis) Disconnect(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected.Load() {
		return nil
	}

	var err error
	for channel, sub := range r.subscriptions {
		err = errors.Join(err, sub.Close())
		delete(r.subscriptions, channel)
	}
	err = errors.Join(err, r.client.Close())
	r.connected.Store(false)
	return err
}

// Connected reports whether the client is connected
func (r *Redis) Connected() bool {
	return r.connected.Load()
}

// Publish implements Channels
func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	var receivers int64
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		receivers, err = client.Publish(ctx, channel, payload).Result()
		return err
	})
	return receivers, err
}

// Subscribe implements Channels
func (r *Redis) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected.Load() {
		return nil, ErrNotConnected
	}
	if _, ok := r.subscriptions[channel]; ok {
		return nil, ErrAlreadySubscribed
	}

	sub := r.client.Subscribe(ctx, channel)
	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	r.subscriptions[channel] = sub
	out := make(chan []byte, 256)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- []byte(msg.Payload)
		}
	}()
	return out, nil
}

// Unsubscribe implements Channels
func (r *Redis) Unsubscribe(_ context.Context, channel string) error {
	r.mu.Lock()
	sub, ok := r.subscriptions[channel]
	delete(r.subscriptions, channel)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return sub.Close()
}

// Get implements Store
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		value, err = client.Get(ctx, key).Bytes()
		return err
	})
	return value, err
}

// Set implements Store
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.Set(ctx, key, value, ttl).Err()
	})
}

// Delete implements Store
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.Del(ctx, keys...).Err()
	})
}

// Exists implements Store
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		count, err = client.Exists(ctx, key).Result()
		return err
	})
	return count > 0, err
}

// ListPush implements Store
func (r *Redis) ListPush(ctx context.Context, key string, values ...[]byte) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.RPush(ctx, key, args...).Err()
	})
}

// ListPop implements Store
func (r *Redis) ListPop(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		value, err = client.LPop(ctx, key).Bytes()
		return err
	})
	return value, err
}

// ListPeek implements Store
func (r *Redis) ListPeek(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		value, err = client.LIndex(ctx, key, 0).Bytes()
		return err
	})
	return value, err
}

// ListRange implements Store
func (r *Redis) ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	var values []string
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		values, err = client.LRange(ctx, key, start, stop).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(values))
	for i, value := range values {
		out[i] = []byte(value)
	}
	return out, nil
}

// SetAdd implements Store
func (r *Redis) SetAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.SAdd(ctx, key, toArgs(members)...).Err()
	})
}

// SetRemove implements Store
func (r *Redis) SetRemove(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.SRem(ctx, key, toArgs(members)...).Err()
	})
}

// SetContains implements Store
func (r *Redis) SetContains(ctx context.Context, key, member string) (bool, error) {
	var ok bool
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		ok, err = client.SIsMember(ctx, key, member).Result()
		return err
	})
	return ok, err
}

// SetMembers implements Store
func (r *Redis) SetMembers(ctx context.Context, key string) ([]string, error) {
	var members []string
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		members, err = client.SMembers(ctx, key).Result()
		return err
	})
	return members, err
}

// HashGet implements Store
func (r *Redis) HashGet(ctx context.Context, key, field string) ([]byte, error) {
	var value []byte
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		value, err = client.HGet(ctx, key, field).Bytes()
		return err
	})
	return value, err
}

// HashSet implements Store
func (r *Redis) HashSet(ctx context.Context, key, field string, value []byte) error {
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.HSet(ctx, key, field, value).Err()
	})
}

// HashSetIfExists implements Store
func (r *Redis) HashSetIfExists(ctx context.Context, key, field string, value []byte) (bool, error) {
	var written int64
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) (err error) {
		written, err = hsetIfExists.Run(ctx, client, []string{key}, field, value).Int64()
		return err
	})
	return written == 1, err
}

// HashDelete implements Store
func (r *Redis) HashDelete(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		return client.HDel(ctx, key, fields...).Err()
	})
}

// Keys implements Store
func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	err := r.do(ctx, func(ctx context.Context, client *redis.Client) error {
		keys = keys[:0]
		iter := client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return iter.Err()
	})
	return keys, err
}

// do runs fn with the retry policy. redis.Nil is reported as ErrKeyNotFound without retrying.
func (r *Redis) do(ctx context.Context, fn func(ctx context.Context, client *redis.Client) error) error {
	if !r.connected.Load() {
		return ErrNotConnected
	}
	client := r.client
	err := r.retry.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, client)
	}, func(err error) bool {
		return errors.Is(err, redis.Nil)
	})
	if errors.Is(err, redis.Nil) {
		return ErrKeyNotFound
	}
	return err
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}
	return args
}
