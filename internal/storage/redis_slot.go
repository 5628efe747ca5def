package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSlot struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisSlot stores slots under "cart:<key>". A zero ttl keeps keys forever;
// otherwise every save refreshes the expiry to ttl plus up to five minutes of jitter.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{
		client:  client,
		baseTTL: ttl,
	}
}

func (r *RedisSlot) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, slotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisSlot) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, slotKey(key), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, slotKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisSlot) ttl() time.Duration {
	if r.baseTTL <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.baseTTL + jitter
}

func slotKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
