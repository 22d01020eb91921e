package repository

import (
	"context"
	"errors"

	"github.com/aurum-community/aurum-bot/internal/domain"
)

// ErrUserNotFound indicates no account exists for the requested discord ID.
var ErrUserNotFound = errors.New("user not found")

// ErrWalletAlreadySet indicates the account already has a wallet address.
// Wallet writes are first-write-wins; later writes are rejected, not merged.
var ErrWalletAlreadySet = errors.New("wallet address already set")

// Ledger defines persistence operations for the points ledger.
//
// Every method fails with a wrapped driver error when the store is
// unreachable; callers translate that into a StoreUnavailable condition.
type Ledger interface {
	GetUser(ctx context.Context, discordID string) (*domain.UserAccount, error)
	UpsertTwitterHandle(ctx context.Context, discordID, handle string) (created bool, err error)
	SetWallet(ctx context.Context, discordID, address string) error
	IncrementPoints(ctx context.Context, discordID string, delta int64) (newTotal int64, err error)
	ResetPoints(ctx context.Context, discordID string) error
	SetNotify(ctx context.Context, discordID string, enabled bool) error

	InsertActivityLog(ctx context.Context, entry *domain.ActivityLogEntry) error
	InsertAdminLog(ctx context.Context, entry *domain.AdminLogEntry) error

	TopNByPoints(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
	UserRank(ctx context.Context, discordID string) (int, error)
	ListVerifiedUsers(ctx context.Context) ([]domain.UserAccount, error)

	ListReactionChannels(ctx context.Context) ([]string, error)
	AddReactionChannel(ctx context.Context, channelID string) error
	RemoveReactionChannel(ctx context.Context, channelID string) error

	HasProcessedPost(ctx context.Context, postID string) (bool, error)
	MarkPostProcessed(ctx context.Context, postID string) (inserted bool, err error)

	LoadPolicy(ctx context.Context) (map[string]float64, error)
	SavePolicyValue(ctx context.Context, key string, value float64) error
}
