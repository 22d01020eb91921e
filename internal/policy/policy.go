// Package policy holds the mutable table of scoring rewards and cutoffs.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
)

// Well-known scoring policy keys. The set is fixed; Set rejects anything else.
const (
	KeyMessagesPerPoint = "messages_per_point"
	KeyDailyCap         = "daily_cap"
	KeyMessageReward    = "message_reward"
	KeyReactionReward   = "reaction_reward"
	KeyVerifyReward     = "verify_reward"
	KeyWalletReward     = "wallet_reward"
	KeyLikeReward       = "like_reward"
	KeyRetweetReward    = "retweet_reward"
)

var defaults = map[string]float64{
	KeyMessagesPerPoint: 5,
	KeyDailyCap:         20,
	KeyMessageReward:    1,
	KeyReactionReward:   1,
	KeyVerifyReward:     10,
	KeyWalletReward:     10,
	KeyLikeReward:       5,
	KeyRetweetReward:    10,
}

// Store persists policy values so they survive restarts.
type Store interface {
	LoadPolicy(ctx context.Context) (map[string]float64, error)
	SavePolicyValue(ctx context.Context, key string, value float64) error
}

// Policy is the scoring policy table. Reads and writes are safe for
// concurrent use; writes go through to the store before the cache mutates.
type Policy struct {
	mu     sync.RWMutex
	values map[string]float64
	store  Store
	log    *slog.Logger
}

// New builds a Policy seeded with defaults. Pass a nil store to keep values
// in memory only (tests).
func New(store Store, log *slog.Logger) *Policy {
	if log == nil {
		log = slog.Default()
	}

	values := make(map[string]float64, len(defaults))
	for key, value := range defaults {
		values[key] = value
	}

	return &Policy{
		values: values,
		store:  store,
		log:    log,
	}
}

// Load overlays persisted values on top of the defaults.
func (p *Policy) Load(ctx context.Context) error {
	if p.store == nil {
		return nil
	}

	stored, err := p.store.LoadPolicy(ctx)
	if err != nil {
		return fmt.Errorf("load scoring policy: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for key, value := range stored {
		if _, known := defaults[key]; !known {
			p.log.Warn("ignoring unknown persisted policy key", slog.String("key", key))
			continue
		}
		p.values[key] = value
	}

	return nil
}

// Get returns the value for key, falling back to the default when the key is
// unknown. Callers use the well-known constants, so the fallback is a guard,
// not an API.
func (p *Policy) Get(key string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if value, ok := p.values[key]; ok {
		return value
	}

	return defaults[key]
}

// GetInt returns the value for key truncated to an integer.
func (p *Policy) GetInt(key string) int64 {
	return int64(p.Get(key))
}

// Set validates and updates a policy value. Unknown keys are rejected with a
// validation error naming the legal keys; nothing is mutated on rejection.
func (p *Policy) Set(ctx context.Context, key string, value float64) error {
	if _, known := defaults[key]; !known {
		return apperrors.NewInvalidConfigError(fmt.Sprintf(
			"unknown scoring key %q, legal keys: %s", key, strings.Join(Keys(), ", "),
		))
	}

	if value < 0 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("scoring key %q must be non-negative", key))
	}

	if p.store != nil {
		if err := p.store.SavePolicyValue(ctx, key, value); err != nil {
			return fmt.Errorf("persist scoring policy value: %w", err)
		}
	}

	p.mu.Lock()
	p.values[key] = value
	p.mu.Unlock()

	return nil
}

// Snapshot returns a copy of all current values.
func (p *Policy) Snapshot() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make(map[string]float64, len(p.values))
	for key, value := range p.values {
		snapshot[key] = value
	}

	return snapshot
}

// Keys lists the legal policy keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
