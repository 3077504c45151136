package storage

import (
	"context"
	"errors"

	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	pkgredis "github.com/brightgoods/storefront-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// Retries for optimistic WATCH transactions before giving up.
const redisUpdateAttempts = 5

// RedisStore persists records in Redis. Update uses WATCH/MULTI so a
// concurrent write to the same key invalidates the transaction instead of
// being silently overwritten.
type RedisStore struct {
	client *pkgredis.Client
}

// NewRedisStore wraps the shared redis client.
func NewRedisStore(client *pkgredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Raw().Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "redis get")
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Raw().Set(ctx, key, value, 0).Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "redis set")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Raw().Del(ctx, key).Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "redis del")
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		exists := true
		if errors.Is(err, redis.Nil) {
			current, exists = "", false
		} else if err != nil {
			return err
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < redisUpdateAttempts; attempt++ {
		err = s.client.Raw().Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, redis.TxFailedErr) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent write detected")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "redis update")
}
