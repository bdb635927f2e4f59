package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const checkoutKeyPrefix = "contesthub:checkout:"

// CheckoutStore remembers the checkout URL issued for an Idempotency-Key.
type CheckoutStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCheckoutStore(rdb *redis.Client, ttl time.Duration) *CheckoutStore {
	return &CheckoutStore{rdb: rdb, ttl: ttl}
}

// Get returns the stored URL, or "" when the key is unknown.
func (s *CheckoutStore) Get(ctx context.Context, key string) (string, error) {
	url, err := s.rdb.Get(ctx, checkoutKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("checkout store get: %w", err)
	}
	return url, nil
}

// Put stores url unless another request stored one first, and returns the
// winning URL.
func (s *CheckoutStore) Put(ctx context.Context, key, url string) (string, error) {
	ok, err := s.rdb.SetNX(ctx, checkoutKeyPrefix+key, url, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("checkout store put: %w", err)
	}
	if ok {
		return url, nil
	}
	return s.Get(ctx, key)
}
