package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationStore keeps revoked token ids in Redis. Each key expires
// together with the token it denies, so the set never outgrows the number
// of live tokens.
type RedisRevocationStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRevocationStore keys revoked token ids under prefix ("revoked" when empty).
func NewRedisRevocationStore(rdb *redis.Client, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RedisRevocationStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisRevocationStore) key(tokenID string) string { return s.prefix + ":" + tokenID }

// Revoke denies tokenID until expiresAt. Tokens already past expiry are
// ignored; verification rejects them anyway.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.key(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether tokenID is on the denylist.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, s.key(tokenID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	}
	return false, err
}
