package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
)

// RedisStore is a Redis implementation of the Store interface
type RedisStore struct {
	client      *redis.Client
	noncePrefix string
	tokenPrefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.Store {
	return &RedisStore{
		client:      client,
		noncePrefix: "rinkside:nonce:",
		tokenPrefix: "rinkside:invalidated:",
	}
}

// PutNonce stores the challenge nonce keyed by address with its TTL
func (s *RedisStore) PutNonce(ctx context.Context, challenge *core.Challenge) error {
	key := s.noncePrefix + challenge.Address
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return core.ErrNonceNotFound
	}

	if err := s.client.Set(ctx, key, challenge.Nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}

	return nil
}

// TakeNonce atomically retrieves and removes the nonce for an address
func (s *RedisStore) TakeNonce(ctx context.Context, address string) (*core.Challenge, error) {
	key := s.noncePrefix + address

	nonce, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return nil, core.ErrNonceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve nonce: %w", err)
	}

	// Redis expiry already enforced the TTL; reconstruct the challenge.
	return &core.Challenge{
		Address:   address,
		Nonce:     nonce,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

// InvalidateToken marks a token as invalidated in Redis
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	key := s.tokenPrefix + tokenID

	// Set key with expiration
	if err := s.client.Set(ctx, key, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	key := s.tokenPrefix + tokenID

	// Check if key exists
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}

	return val > 0, nil
}
