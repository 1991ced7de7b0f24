// Package auth holds the session-store implementations behind the auth
// gateway.  Sessions are ephemeral: only the SHA-256 hash of a refresh
// token is kept, keyed for the token's remaining lifetime.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession signals an unknown, expired or revoked refresh token.
var ErrNoSession = errors.New("auth: no such session")

const sessionKeyPrefix = "sess:"

// RedisSessionStore keeps refresh-token hashes in Redis with a TTL, so
// expiry needs no sweeper and restarts of the API do not drop sessions.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrNoSession
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+tokenHash, userID, ttl).Err()
}

func (s *RedisSessionStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+tokenHash).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	return v, err
}

func (s *RedisSessionStore) Revoke(ctx context.Context, tokenHash string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+tokenHash).Err()
}

// MemorySessionStore is the process-local stand-in used when no Redis
// client could be established at boot, and by tests.  Sessions then live
// only as long as the process, which matches their ephemeral contract.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memorySession
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tokenHash] = memorySession{userID: userID, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tokenHash]
	if !ok {
		return "", ErrNoSession
	}
	if time.Now().UTC().After(e.expiresAt) {
		delete(s.entries, tokenHash)
		return "", ErrNoSession
	}
	return e.userID, nil
}

func (s *MemorySessionStore) Revoke(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, tokenHash)
	return nil
}
