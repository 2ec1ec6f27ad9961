// Package idempotency remembers which booking an Idempotency-Key produced so
// a retried POST returns the original booking instead of creating another.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"turfbook/internal/apperr"

	"github.com/redis/go-redis/v9"
)

var ErrInProgress = apperr.Conflict("request_in_progress", "a request with this Idempotency-Key is still being processed")

const pending = "pending"

type Store interface {
	// Reserve claims key. When the key already finished, the stored id is
	// returned with reserved=false.
	Reserve(ctx context.Context, key string) (id int64, reserved bool, err error)
	Complete(ctx context.Context, key string, id int64) error
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "idem:booking:"}
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (int64, bool, error) {
	k := s.prefix + key

	ok, err := s.rdb.SetNX(ctx, k, pending, s.ttl).Result()
	if err != nil {
		return 0, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return 0, true, nil
	}

	v, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err = s.rdb.SetNX(ctx, k, pending, s.ttl).Result()
		if err != nil {
			return 0, false, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return 0, true, nil
		}
		return 0, false, ErrInProgress
	}
	if err != nil {
		return 0, false, fmt.Errorf("read idempotency key: %w", err)
	}
	return parse(v)
}

func (s *RedisStore) Complete(ctx context.Context, key string, id int64) error {
	if err := s.rdb.Set(ctx, s.prefix+key, strconv.FormatInt(id, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

func parse(v string) (int64, bool, error) {
	if v == pending {
		return 0, false, ErrInProgress
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value %q: %w", v, err)
	}
	return id, false, nil
}

type entry struct {
	value   string
	expires time.Time
}

// MemoryStore is a single-process Store used when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Reserve(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return parse(e.value)
	}
	s.entries[key] = entry{value: pending, expires: now.Add(s.ttl)}
	return 0, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: strconv.FormatInt(id, 10), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
