package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("refresh token not found")

// RefreshRecord is what the server remembers about an issued refresh token.
type RefreshRecord struct {
	ClientID string    `json:"client_id"`
	Username string    `json:"username"`
	Scope    []string  `json:"scope"`
	Expires  time.Time `json:"expires"`
}

// TokenStore keeps issued refresh tokens, keyed by their jti.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, jti string, record RefreshRecord) error
	FindRefreshToken(ctx context.Context, jti string) (RefreshRecord, error)
}

type MemoryTokenStore struct {
	mu      sync.Mutex
	records map[string]RefreshRecord
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		records: make(map[string]RefreshRecord),
		now:     time.Now,
	}
}

func (s *MemoryTokenStore) SaveRefreshToken(_ context.Context, jti string, record RefreshRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	s.records[jti] = record
	return nil
}

func (s *MemoryTokenStore) FindRefreshToken(_ context.Context, jti string) (RefreshRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[jti]
	if !ok {
		return RefreshRecord{}, ErrTokenNotFound
	}
	if !s.now().Before(record.Expires) {
		delete(s.records, jti)
		return RefreshRecord{}, ErrTokenNotFound
	}
	return record, nil
}

// evictExpired must be called with mu held.
func (s *MemoryTokenStore) evictExpired() {
	now := s.now()
	for jti, record := range s.records {
		if !now.Before(record.Expires) {
			delete(s.records, jti)
		}
	}
}

const redisKeyPrefix = "oauth:refresh:"

// RedisTokenStore shares refresh tokens between instances. Keys expire with
// the token.
type RedisTokenStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisTokenStore(client redis.Cmdable) *RedisTokenStore {
	return &RedisTokenStore{client: client, now: time.Now}
}

func (s *RedisTokenStore) SaveRefreshToken(ctx context.Context, jti string, record RefreshRecord) error {
	ttl := record.Expires.Sub(s.now())
	if ttl <= 0 {
		return errors.New("save refresh token: already expired")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode refresh token: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+jti, string(payload), ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) FindRefreshToken(ctx context.Context, jti string) (RefreshRecord, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+jti).Bytes()
	if errors.Is(err, redis.Nil) {
		return RefreshRecord{}, ErrTokenNotFound
	}
	if err != nil {
		return RefreshRecord{}, fmt.Errorf("find refresh token: %w", err)
	}

	var record RefreshRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return RefreshRecord{}, fmt.Errorf("decode refresh token: %w", err)
	}
	return record, nil
}
