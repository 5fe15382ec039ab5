package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/backoffice/internal/platform/cache"
)

// RefreshTokenStore records the single current refresh token per subject.
type RefreshTokenStore interface {
	// Save makes token the only valid refresh token for subject.
	Save(ctx context.Context, subject, token string, ttl time.Duration) error
	// IsCurrent reports whether token is exactly the stored value.
	IsCurrent(ctx context.Context, subject, token string) (bool, error)
	// Clear removes the subject's record.
	Clear(ctx context.Context, subject string) error
	// Rotate replaces presented with next only when presented is current.
	// It reports false when another caller consumed presented first.
	Rotate(ctx context.Context, subject, presented, next string, ttl time.Duration) (bool, error)
}

type refreshEntry struct {
	digest    string
	expiresAt time.Time
}

// MemoryRefreshStore keeps refresh records in process memory.
type MemoryRefreshStore struct {
	mu      sync.Mutex
	entries map[string]refreshEntry
	now     func() time.Time
}

// NewMemoryRefreshStore constructs an empty store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{entries: make(map[string]refreshEntry), now: time.Now}
}

func (s *MemoryRefreshStore) Save(ctx context.Context, subject, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[subject] = refreshEntry{digest: hashToken(token), expiresAt: s.now().Add(positive(ttl))}
	return nil
}

func (s *MemoryRefreshStore) IsCurrent(ctx context.Context, subject, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(subject, token), nil
}

func (s *MemoryRefreshStore) Clear(ctx context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, subject)
	return nil
}

func (s *MemoryRefreshStore) Rotate(ctx context.Context, subject, presented, next string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(subject, presented) {
		return false, nil
	}
	s.entries[subject] = refreshEntry{digest: hashToken(next), expiresAt: s.now().Add(positive(ttl))}
	return true, nil
}

func (s *MemoryRefreshStore) currentLocked(subject, token string) bool {
	entry, ok := s.entries[subject]
	if !ok {
		return false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, subject)
		return false
	}
	return entry.digest == hashToken(token)
}

// rotateScript swaps the stored digest only when it still matches.
var rotateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// RedisRefreshStore shares refresh records between processes through Redis.
type RedisRefreshStore struct {
	client redis.UniversalClient
}

// NewRedisRefreshStore constructs a Redis-backed store.
func NewRedisRefreshStore(client redis.UniversalClient) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, subject, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(subject), hashToken(token), positive(ttl)).Err()
}

func (s *RedisRefreshStore) IsCurrent(ctx context.Context, subject, token string) (bool, error) {
	stored, err := s.client.Get(ctx, refreshKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == hashToken(token), nil
}

func (s *RedisRefreshStore) Clear(ctx context.Context, subject string) error {
	return s.client.Del(ctx, refreshKey(subject)).Err()
}

func (s *RedisRefreshStore) Rotate(ctx context.Context, subject, presented, next string, ttl time.Duration) (bool, error) {
	swapped, err := rotateScript.Run(ctx, s.client, []string{refreshKey(subject)},
		hashToken(presented), hashToken(next), positive(ttl).Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return swapped == 1, nil
}

func refreshKey(subject string) string {
	return cache.Key("refresh", subject)
}

var (
	_ RefreshTokenStore = (*MemoryRefreshStore)(nil)
	_ RefreshTokenStore = (*RedisRefreshStore)(nil)
)
