package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps every backend failure reported by a Store.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// Store is an opaque string key/value store. Get reports found=false for a
// missing key. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// BatchStore is implemented by stores that can apply several writes and
// deletes as one unit. Keeper uses it for the login pair write and for clears.
type BatchStore interface {
	Store
	Apply(ctx context.Context, set map[string]string, del []string) error
}

// RedisStore keeps credentials in Redis under "<prefix>:<key>".
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a Redis-backed Store. An empty prefix defaults to "hast".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hast"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Apply writes set and removes del inside one MULTI/EXEC transaction.
func (s *RedisStore) Apply(ctx context.Context, set map[string]string, del []string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range set {
			pipe.Set(ctx, s.key(k), v, 0)
		}
		if len(del) > 0 {
			keys := make([]string, 0, len(del))
			for _, k := range del {
				keys = append(keys, s.key(k))
			}
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
