package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moneyflow/moneyflow/pkg/liff"
)

// defaultKey namespaces the single persisted profile entry.
const defaultKey = "moneyflow:line_profile"

// RedisStore persists the profile in Redis so warm-start hints survive
// process restarts.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey overrides the storage key, e.g. to scope per installation.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithTTL expires cached profiles after ttl. Zero keeps them until cleared.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		key:    defaultKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Save(ctx context.Context, profile liff.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal LINE profile: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save LINE profile: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (liff.Profile, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return liff.Profile{}, ErrNotFound
		}
		return liff.Profile{}, fmt.Errorf("load LINE profile: %w", err)
	}

	var profile liff.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return liff.Profile{}, fmt.Errorf("decode LINE profile: %w", err)
	}
	return profile, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear LINE profile: %w", err)
	}
	return nil
}
