package redis

import (
	"context"
	"errors"

	"github.com/recyclify/recyclify-client/internal/domain/session"
)

// TokenStore persists the client storage keys in Redis so several
// terminals share one login.
type TokenStore struct {
	cache  *Cache
	prefix string
}

var _ session.Storage = (*TokenStore)(nil)

// NewTokenStore creates a TokenStore. An empty prefix uses PrefixStorage.
func NewTokenStore(cache *Cache, prefix string) *TokenStore {
	if prefix == "" {
		prefix = PrefixStorage
	}
	return &TokenStore{cache: cache, prefix: prefix}
}

func (s *TokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.cache.GetString(ctx, s.prefix+key)
	if errors.Is(err, ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *TokenStore) Set(ctx context.Context, key, value string) error {
	return s.cache.SetString(ctx, s.prefix+key, value, 0)
}

func (s *TokenStore) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.prefix + k
	}
	return s.cache.Delete(ctx, prefixed...)
}
