package consentdata

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

const keyPrefix = "xs2gate:aspsp-consent-data:"

// RedisStore persists blobs in Redis so multiple gateway instances share
// adapter state. Entries expire with the configured TTL; the consent
// management system remains the system of record for finished workflows.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps a connected client. A zero TTL keeps entries until
// explicitly cleared.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id domain.BusinessObjectID) (string, error) {
	encoded, err := s.client.Get(ctx, keyPrefix+id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "redis get consent data")
	}
	return encoded, nil
}

func (s *RedisStore) Put(ctx context.Context, id domain.BusinessObjectID, encoded string) error {
	if err := s.client.Set(ctx, keyPrefix+id.String(), encoded, s.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "redis set consent data")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id domain.BusinessObjectID) error {
	deleted, err := s.client.Del(ctx, keyPrefix+id.String()).Result()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "redis delete consent data")
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
