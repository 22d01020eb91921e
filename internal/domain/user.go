package domain

import "time"

// UserAccount represents a community member tracked by the bot.
// A user is verified once a Twitter handle is linked; only verified
// users accumulate gold points.
type UserAccount struct {
	DiscordID     string
	TwitterHandle string
	WalletAddress string
	Points        int64
	NotifyEnabled bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Verified reports whether the user has linked a Twitter handle.
func (u *UserAccount) Verified() bool {
	return u != nil && u.TwitterHandle != ""
}

// ActivityLogEntry is an append-only record of a successful point award.
type ActivityLogEntry struct {
	ID        int64
	DiscordID string
	Action    string
	Points    int64
	CreatedAt time.Time
}

// AdminLogEntry is an append-only record of a privileged action.
type AdminLogEntry struct {
	ID        int64
	AdminID   string
	TargetID  string
	Action    string
	Points    *int64
	CreatedAt time.Time
}

// LeaderboardEntry is a ranked leaderboard row.
type LeaderboardEntry struct {
	Rank      int
	DiscordID string
	Points    int64
}
