package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/backoffice/internal/platform/cache"
)

// RevocationRegistry tracks access tokens that must no longer be honored.
// Entries only need to outlive the token itself.
type RevocationRegistry interface {
	// Revoke marks token as revoked for ttl. It reports whether the token
	// was newly revoked; revoking twice is not an error.
	Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// hashToken keys stores by digest so raw tokens are never kept.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// MemoryRevocations keeps revoked tokens in a TTL cache. go-cache's janitor
// sweeps expired entries.
type MemoryRevocations struct {
	c *gocache.Cache
}

// NewMemoryRevocations constructs an in-memory registry that sweeps expired
// entries every cleanup interval.
func NewMemoryRevocations(cleanup time.Duration) *MemoryRevocations {
	return &MemoryRevocations{c: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if err := m.c.Add(hashToken(token), struct{}{}, positive(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, found := m.c.Get(hashToken(token))
	return found, nil
}

// RedisRevocations shares revocations between processes through Redis.
type RedisRevocations struct {
	client redis.UniversalClient
}

// NewRedisRevocations constructs a Redis-backed registry.
func NewRedisRevocations(client redis.UniversalClient) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, cache.Key("revoked", hashToken(token)), 1, positive(ttl)).Result()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, cache.Key("revoked", hashToken(token))).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// positive keeps entries for at least a second so a token revoked right at
// its expiry is still recorded.
func positive(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

var (
	_ RevocationRegistry = (*MemoryRevocations)(nil)
	_ RevocationRegistry = (*RedisRevocations)(nil)
)
