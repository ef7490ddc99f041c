package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrTokenNotFound = errors.New("refresh token not found")

// TokenStore tracks issued refresh tokens by their jti.
type TokenStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	// Consume deletes the token and returns its owner. A token can be
	// consumed once; later calls return ErrTokenNotFound.
	Consume(ctx context.Context, jti string) (string, error)
}

// RedisTokenStore keeps refresh tokens in Redis with their TTL.
type RedisTokenStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, prefix: "refresh_token:"}
}

func (s *RedisTokenStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, jti string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, s.prefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	return userID, nil
}
