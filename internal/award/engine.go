// Package award implements the awarding engine: the single path through
// which gold points are credited.
package award

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aurum-community/aurum-bot/internal/domain"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/pkg/metrics"
)

// Result reports the outcome of an award attempt.
//
// Verified distinguishes "not eligible" (Verified=false) from "eligible but
// the store write failed" (Verified=true, Accepted=false) so callers can
// react differently.
type Result struct {
	Accepted      bool
	NewTotal      *int64
	Verified      bool
	NotifyEnabled bool
}

// Invalidator removes a cached user entry after a write. Optional.
type Invalidator interface {
	Invalidate(ctx context.Context, discordID string) error
}

// Engine credits points to verified users and records the activity log.
type Engine struct {
	ledger repository.Ledger
	cache  Invalidator
	log    *slog.Logger
}

// NewEngine constructs an Engine. cache may be nil.
func NewEngine(ledger repository.Ledger, cache Invalidator, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		ledger: ledger,
		cache:  cache,
		log:    log,
	}
}

// Award credits amount to the user for the labeled action.
//
// Unverified or unknown users are never credited through any path: the call
// returns Verified=false with no mutation and no log entry. For verified
// users the credit is a single atomic increment; a non-zero amount also
// appends an activity log entry with that exact delta and label. Award never
// sends user-facing messages; callers consult NotifyEnabled and decide.
func (e *Engine) Award(ctx context.Context, discordID string, amount int64, action string) (Result, error) {
	user, err := e.ledger.GetUser(ctx, discordID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.RecordAward(action, "not_verified")
			return Result{}, nil
		}

		metrics.RecordAward(action, "store_error")
		return Result{}, fmt.Errorf("look up user for award: %w", err)
	}

	if !user.Verified() {
		metrics.RecordAward(action, "not_verified")
		return Result{}, nil
	}

	newTotal, err := e.ledger.IncrementPoints(ctx, discordID, amount)
	if err != nil {
		metrics.RecordAward(action, "store_error")
		return Result{Verified: true, NotifyEnabled: user.NotifyEnabled}, fmt.Errorf("credit points: %w", err)
	}

	if amount != 0 {
		entry := &domain.ActivityLogEntry{
			DiscordID: discordID,
			Action:    action,
			Points:    amount,
		}
		if logErr := e.ledger.InsertActivityLog(ctx, entry); logErr != nil {
			// The credit already landed; losing the audit row is not a
			// reason to report the award as failed.
			e.log.Error("failed to append activity log",
				slog.String("discord_id", discordID),
				slog.String("action", action),
				slog.Int64("points", amount),
				slog.Any("error", logErr),
			)
		}
	}

	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, discordID); err != nil {
			e.log.Warn("failed to invalidate user cache",
				slog.String("discord_id", discordID),
				slog.Any("error", err),
			)
		}
	}

	metrics.RecordAward(action, "ok")
	metrics.RecordPointsAwarded(action, amount)

	return Result{
		Accepted:      true,
		NewTotal:      &newTotal,
		Verified:      true,
		NotifyEnabled: user.NotifyEnabled,
	}, nil
}
