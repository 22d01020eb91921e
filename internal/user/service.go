// Package user provides business operations over user accounts.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aurum-community/aurum-bot/internal/domain"
	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/usercache"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// Service provides business operations over users.
type Service struct {
	ledger repository.Ledger
	cache  *usercache.Cache
	log    *slog.Logger
}

// NewService constructs a new Service instance. cache may be nil.
func NewService(ledger repository.Ledger, cache *usercache.Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{ledger: ledger, cache: cache, log: log}
}

// Get fetches an account, serving from cache when possible.
func (s *Service) Get(ctx context.Context, discordID string) (*domain.UserAccount, error) {
	if cached, err := s.cache.Get(ctx, discordID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logError("cache_get", discordID, err)
	}

	user, err := s.ledger.GetUser(ctx, discordID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.logError("cache_set", discordID, err)
	}

	return user, nil
}

// Verify validates and links a Twitter handle, creating the account when
// missing. It reports whether this was the user's first verification so the
// caller can grant the one-time reward.
func (s *Service) Verify(ctx context.Context, discordID, rawHandle string) (bool, error) {
	handle := strings.TrimPrefix(strings.TrimSpace(rawHandle), "@")
	if !handlePattern.MatchString(handle) {
		return false, apperrors.NewInvalidConfigError(
			"That doesn't look like a Twitter handle. Use letters, digits, and underscores (max 15).",
		)
	}

	first, err := s.ledger.UpsertTwitterHandle(ctx, discordID, handle)
	if err != nil {
		return false, fmt.Errorf("link twitter handle: %w", err)
	}

	s.invalidate(ctx, discordID)

	return first, nil
}

// ConnectWallet stores the wallet address once. A second call returns
// repository.ErrWalletAlreadySet.
func (s *Service) ConnectWallet(ctx context.Context, discordID, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return apperrors.NewInvalidConfigError("Wallet address cannot be empty.")
	}

	if err := s.ledger.SetWallet(ctx, discordID, address); err != nil {
		return err
	}

	s.invalidate(ctx, discordID)

	return nil
}

// ToggleNotify flips the user's notification preference and returns the new
// value.
func (s *Service) ToggleNotify(ctx context.Context, discordID string) (bool, error) {
	user, err := s.ledger.GetUser(ctx, discordID)
	if err != nil {
		return false, err
	}

	next := !user.NotifyEnabled
	if err := s.ledger.SetNotify(ctx, discordID, next); err != nil {
		return false, err
	}

	s.invalidate(ctx, discordID)

	return next, nil
}

// ResetPoints forces the target's balance to zero and records the admin
// action.
func (s *Service) ResetPoints(ctx context.Context, adminID, targetID string) error {
	if err := s.ledger.ResetPoints(ctx, targetID); err != nil {
		return err
	}

	var zero int64
	entry := &domain.AdminLogEntry{
		AdminID:  adminID,
		TargetID: targetID,
		Action:   "reset_points",
		Points:   &zero,
	}
	if err := s.ledger.InsertAdminLog(ctx, entry); err != nil {
		s.logError("admin_log", adminID, err)
	}

	s.invalidate(ctx, targetID)

	return nil
}

// Leaderboard returns the top n users, points descending, ties broken by
// discord_id ascending. The store orders its query the same way, but the
// ranking contract is enforced here so callers get deterministic positions
// no matter which Ledger implementation served them.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.ledger.TopNByPoints(ctx, n)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}

		return entries[i].DiscordID < entries[j].DiscordID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// Rank returns the user's current leaderboard position.
func (s *Service) Rank(ctx context.Context, discordID string) (int, error) {
	return s.ledger.UserRank(ctx, discordID)
}

func (s *Service) invalidate(ctx context.Context, discordID string) {
	if err := s.cache.Invalidate(ctx, discordID); err != nil {
		s.logError("cache_invalidate", discordID, err)
	}
}

func (s *Service) logError(operation, discordID string, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.String("discord_id", discordID),
		slog.Any("error", err),
	)
}
