package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurum-community/aurum-bot/internal/domain"
	"github.com/aurum-community/aurum-bot/internal/repository"
)

type fakeLedger struct {
	repository.Ledger

	users     map[string]*domain.UserAccount
	adminLogs []domain.AdminLogEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{users: make(map[string]*domain.UserAccount)}
}

func (f *fakeLedger) GetUser(_ context.Context, discordID string) (*domain.UserAccount, error) {
	user, ok := f.users[discordID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (f *fakeLedger) UpsertTwitterHandle(_ context.Context, discordID, handle string) (bool, error) {
	user, ok := f.users[discordID]
	if !ok {
		f.users[discordID] = &domain.UserAccount{DiscordID: discordID, TwitterHandle: handle, NotifyEnabled: true}
		return true, nil
	}

	first := user.TwitterHandle == ""
	user.TwitterHandle = handle
	return first, nil
}

func (f *fakeLedger) SetWallet(_ context.Context, discordID, address string) error {
	user, ok := f.users[discordID]
	if !ok {
		f.users[discordID] = &domain.UserAccount{DiscordID: discordID, WalletAddress: address, NotifyEnabled: true}
		return nil
	}

	if user.WalletAddress != "" {
		return repository.ErrWalletAlreadySet
	}

	user.WalletAddress = address
	return nil
}

func (f *fakeLedger) SetNotify(_ context.Context, discordID string, enabled bool) error {
	user, ok := f.users[discordID]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.NotifyEnabled = enabled
	return nil
}

func (f *fakeLedger) ResetPoints(_ context.Context, discordID string) error {
	if user, ok := f.users[discordID]; ok {
		user.Points = 0
	}
	return nil
}

func (f *fakeLedger) InsertAdminLog(_ context.Context, entry *domain.AdminLogEntry) error {
	f.adminLogs = append(f.adminLogs, *entry)
	return nil
}

func (f *fakeLedger) TopNByPoints(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	// Map iteration order is random on purpose: the service owns the
	// ordering contract, not the store.
	entries := make([]domain.LeaderboardEntry, 0, len(f.users))
	for _, u := range f.users {
		entries = append(entries, domain.LeaderboardEntry{DiscordID: u.DiscordID, Points: u.Points})
	}

	if len(entries) > n {
		entries = entries[:n]
	}

	return entries, nil
}

func TestVerifyFirstTime(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger, nil, nil)

	first, err := svc.Verify(context.Background(), "user-1", "@Alice_01")
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, "Alice_01", ledger.users["user-1"].TwitterHandle)

	first, err = svc.Verify(context.Background(), "user-1", "alice_02")
	require.NoError(t, err)
	assert.False(t, first, "re-verification is not a first-time link")
}

func TestVerifyRejectsMalformedHandle(t *testing.T) {
	svc := NewService(newFakeLedger(), nil, nil)

	for _, handle := range []string{"", "way_too_long_for_twitter", "bad handle", "nope!"} {
		_, err := svc.Verify(context.Background(), "user-1", handle)
		assert.Error(t, err, "handle %q must be rejected", handle)
	}
}

func TestConnectWalletSetOnce(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(ledger, nil, nil)

	require.NoError(t, svc.ConnectWallet(context.Background(), "user-1", "0xabc"))

	err := svc.ConnectWallet(context.Background(), "user-1", "0xdef")
	assert.ErrorIs(t, err, repository.ErrWalletAlreadySet)
	assert.Equal(t, "0xabc", ledger.users["user-1"].WalletAddress, "first address stays intact")
}

func TestToggleNotify(t *testing.T) {
	ledger := newFakeLedger()
	ledger.users["user-1"] = &domain.UserAccount{DiscordID: "user-1", NotifyEnabled: true}
	svc := NewService(ledger, nil, nil)

	enabled, err := svc.ToggleNotify(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = svc.ToggleNotify(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestResetPointsWritesAdminLog(t *testing.T) {
	ledger := newFakeLedger()
	ledger.users["target"] = &domain.UserAccount{DiscordID: "target", Points: 99}
	svc := NewService(ledger, nil, nil)

	require.NoError(t, svc.ResetPoints(context.Background(), "admin", "target"))

	assert.Equal(t, int64(0), ledger.users["target"].Points)
	require.Len(t, ledger.adminLogs, 1)
	assert.Equal(t, "admin", ledger.adminLogs[0].AdminID)
	assert.Equal(t, "reset_points", ledger.adminLogs[0].Action)
}

func TestLeaderboardOrderingWithTiebreak(t *testing.T) {
	ledger := newFakeLedger()
	ledger.users["zed"] = &domain.UserAccount{DiscordID: "zed", Points: 50}
	ledger.users["bob"] = &domain.UserAccount{DiscordID: "bob", Points: 50}
	ledger.users["amy"] = &domain.UserAccount{DiscordID: "amy", Points: 50}
	ledger.users["top"] = &domain.UserAccount{DiscordID: "top", Points: 120}
	ledger.users["low"] = &domain.UserAccount{DiscordID: "low", Points: 1}
	svc := NewService(ledger, nil, nil)

	// Run repeatedly so a lucky map iteration order can't hide a broken sort.
	for attempt := 0; attempt < 10; attempt++ {
		entries, err := svc.Leaderboard(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, entries, 5)

		var ids []string
		for i, entry := range entries {
			assert.Equal(t, i+1, entry.Rank)
			ids = append(ids, entry.DiscordID)
		}

		assert.Equal(t, []string{"top", "amy", "bob", "zed", "low"}, ids,
			"points descending, ties broken by discord_id ascending")
	}
}
