package medium

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"folio/internal/folio"
)

// DefaultRedisPrefix namespaces folio keys inside a shared Redis database.
const DefaultRedisPrefix = "folio:"

// RedisMedium stores every key as a plain Redis string under a prefix.
// Documents never expire.
type RedisMedium struct {
	client *redis.Client
	prefix string
}

// NewRedisMedium wraps an existing client. The medium owns the client and
// closes it on Close.
func NewRedisMedium(client *redis.Client, prefix string) *RedisMedium {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisMedium{client: client, prefix: prefix}
}

func (m *RedisMedium) key(key string) string {
	return m.prefix + key
}

func (m *RedisMedium) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.client.Get(ctx, m.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", folio.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (m *RedisMedium) Put(ctx context.Context, key string, value []byte) error {
	if err := m.client.Set(ctx, m.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (m *RedisMedium) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// ValidateSetup pings the server.
func (m *RedisMedium) ValidateSetup(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis not reachable: %w", err)
	}
	return nil
}

func (m *RedisMedium) Close() error {
	return m.client.Close()
}

// Compile-time check that RedisMedium implements folio.Medium interface
var _ folio.Medium = (*RedisMedium)(nil)
