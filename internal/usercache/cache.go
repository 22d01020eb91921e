// Package usercache provides Redis-backed caching for user accounts, so
// read-heavy paths (/points, the poller's verified-user scan) do not hit
// Postgres on every call.
package usercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/aurum-community/aurum-bot/internal/domain"
)

// Cache caches user accounts keyed by Discord ID. All methods are safe on a
// nil receiver or nil client, degrading to cache misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a cache backed by the provided Redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Cache{client: client, ttl: ttl}
}

// Get fetches a cached account if it exists. A miss returns (nil, nil).
func (c *Cache) Get(ctx context.Context, discordID string) (*domain.UserAccount, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(discordID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached user: %w", err)
	}

	var user domain.UserAccount
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}

	return &user, nil
}

// Set stores the account in cache for the configured TTL.
func (c *Cache) Set(ctx context.Context, user *domain.UserAccount) error {
	if c == nil || c.client == nil || user == nil {
		return nil
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user for cache: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(user.DiscordID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached user: %w", err)
	}

	return nil
}

// Invalidate removes the cached account entry if it exists. Called after
// every ledger write so stale balances are never served.
func (c *Cache) Invalidate(ctx context.Context, discordID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(discordID)).Err(); err != nil {
		return fmt.Errorf("delete cached user: %w", err)
	}

	return nil
}

func cacheKey(discordID string) string {
	return "user:" + discordID
}
