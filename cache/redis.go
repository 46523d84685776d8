package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON-encoded values in Redis with a per-key TTL.
type Redis[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr. The connection is lazy; call Ping to check it.
func NewRedis[T any](addr string, ttl time.Duration) *Redis[T] {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Redis[T]{client: rdb, ttl: ttl}
}

// Ping checks that the server is reachable.
func (r *Redis[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	v, err := decodeValue[T](key, raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func decodeValue[T any](key string, raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decode %s: %v", ErrCorruptValue, key, err)
	}
	return v, nil
}

func (r *Redis[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the client's connections.
func (r *Redis[T]) Close() error {
	return r.client.Close()
}
