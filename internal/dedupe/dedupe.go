// Package dedupe remembers which provider webhook events were already
// handled so retried deliveries skip the provider round-trip.
package dedupe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard claims event keys. Claim reports true the first time a key is seen
// within the retention window. Release drops a claim so a failed event can
// be processed again on the next delivery.
type Guard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

const keyPrefix = "radar:webhook:"

// Redis stores claims with SETNX so every replica shares them.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+key, time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("releasing %s: %w", key, err)
	}
	return nil
}

// Memory keeps claims in process. Used when Redis is not configured.
type Memory struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	claims map[string]time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:    ttl,
		now:    time.Now,
		claims: make(map[string]time.Time),
	}
}

func (m *Memory) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.claims {
		if !now.Before(exp) {
			delete(m.claims, k)
		}
	}
	if _, seen := m.claims[key]; seen {
		return false, nil
	}
	m.claims[key] = now.Add(m.ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.claims, key)
	m.mu.Unlock()
	return nil
}
