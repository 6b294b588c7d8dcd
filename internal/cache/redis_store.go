package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的缓存实现，带命中计数
type RedisStore struct {
	client *redis.Client
	prefix string

	hits   atomic.Int64
	misses atomic.Int64
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.misses.Add(1)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// 损坏的缓存按未命中处理并清掉
		s.misses.Add(1)
		_ = s.client.Del(ctx, s.key(key)).Err()
		return false, nil
	}
	s.hits.Add(1)
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return s.client.Set(ctx, s.key(key), payload, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}

// Counters reports cache hits and misses since the last reset.
func (s *RedisStore) Counters() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// ResetCounters clears hit/miss counters.
func (s *RedisStore) ResetCounters() {
	s.hits.Store(0)
	s.misses.Store(0)
}
