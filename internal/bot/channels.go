package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aurum-community/aurum-bot/internal/repository"
)

// ReactionChannels keeps the set of channels where reactions earn points.
// The set is loaded from the ledger at startup and mutated through the
// admin commands, so lookups on the hot reaction path never hit the store.
type ReactionChannels struct {
	mu     sync.RWMutex
	ids    map[string]struct{}
	ledger repository.Ledger
	log    *slog.Logger
}

func NewReactionChannels(ledger repository.Ledger, log *slog.Logger) *ReactionChannels {
	if log == nil {
		log = slog.Default()
	}

	return &ReactionChannels{
		ids:    make(map[string]struct{}),
		ledger: ledger,
		log:    log,
	}
}

// Load replaces the in-memory set with the persisted one.
func (r *ReactionChannels) Load(ctx context.Context) error {
	ids, err := r.ledger.ListReactionChannels(ctx)
	if err != nil {
		return fmt.Errorf("load reaction channels: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	r.ids = set
	r.mu.Unlock()

	r.log.Info("loaded reaction channels", slog.Int("count", len(set)))

	return nil
}

// Contains reports whether reactions in the channel earn points.
func (r *ReactionChannels) Contains(channelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.ids[channelID]

	return ok
}

// Add persists the channel and then adds it to the in-memory set.
func (r *ReactionChannels) Add(ctx context.Context, channelID string) error {
	if err := r.ledger.AddReactionChannel(ctx, channelID); err != nil {
		return fmt.Errorf("add reaction channel: %w", err)
	}

	r.mu.Lock()
	r.ids[channelID] = struct{}{}
	r.mu.Unlock()

	return nil
}

// Remove deletes the channel from the store and the in-memory set.
func (r *ReactionChannels) Remove(ctx context.Context, channelID string) error {
	if err := r.ledger.RemoveReactionChannel(ctx, channelID); err != nil {
		return fmt.Errorf("remove reaction channel: %w", err)
	}

	r.mu.Lock()
	delete(r.ids, channelID)
	r.mu.Unlock()

	return nil
}
