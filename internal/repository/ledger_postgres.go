package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aurum-community/aurum-bot/internal/domain"
)

type ledgerRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewLedger creates a new SQL-backed points ledger.
func NewLedger(db *sql.DB, log *slog.Logger) Ledger {
	return &ledgerRepository{
		db:  db,
		log: log,
	}
}

// GetUser retrieves an account by its Discord identifier.
func (r *ledgerRepository) GetUser(ctx context.Context, discordID string) (*domain.UserAccount, error) {
	const query = `
		SELECT discord_id, COALESCE(twitter_handle, ''), COALESCE(wallet_address, ''), points, notify_enabled, created_at, updated_at
		FROM users
		WHERE discord_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, discordID)

	var user domain.UserAccount
	if err := row.Scan(
		&user.DiscordID,
		&user.TwitterHandle,
		&user.WalletAddress,
		&user.Points,
		&user.NotifyEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		r.logError("get_user", discordID, err)
		return nil, fmt.Errorf("select user by discord id: %w", err)
	}

	return &user, nil
}

// UpsertTwitterHandle creates the account if missing and links the Twitter
// handle. It reports whether the handle was previously unset so callers can
// grant the one-time verification reward exactly once.
func (r *ledgerRepository) UpsertTwitterHandle(ctx context.Context, discordID, handle string) (bool, error) {
	existing, err := r.GetUser(ctx, discordID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	firstVerification := existing == nil || existing.TwitterHandle == ""

	const query = `
		INSERT INTO users (discord_id, twitter_handle, points, notify_enabled, created_at, updated_at)
		VALUES ($1, $2, 0, TRUE, NOW(), NOW())
		ON CONFLICT (discord_id) DO UPDATE
		SET twitter_handle = EXCLUDED.twitter_handle, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, discordID, handle); err != nil {
		r.logError("upsert_twitter_handle", discordID, err)
		return false, fmt.Errorf("upsert twitter handle: %w", err)
	}

	return firstVerification, nil
}

// SetWallet stores the wallet address if and only if none is set yet.
func (r *ledgerRepository) SetWallet(ctx context.Context, discordID, address string) error {
	const query = `
		INSERT INTO users (discord_id, wallet_address, points, notify_enabled, created_at, updated_at)
		VALUES ($1, $2, 0, TRUE, NOW(), NOW())
		ON CONFLICT (discord_id) DO UPDATE
		SET wallet_address = EXCLUDED.wallet_address, updated_at = NOW()
		WHERE users.wallet_address IS NULL OR users.wallet_address = ''
	`

	result, err := r.db.ExecContext(ctx, query, discordID, address)
	if err != nil {
		r.logError("set_wallet", discordID, err)
		return fmt.Errorf("set wallet address: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set wallet rows affected: %w", err)
	}

	if affected == 0 {
		return ErrWalletAlreadySet
	}

	return nil
}

// IncrementPoints atomically adds delta to the user's balance and returns the
// new total. A single UPDATE avoids the lost-delta race of read-then-write.
func (r *ledgerRepository) IncrementPoints(ctx context.Context, discordID string, delta int64) (int64, error) {
	const query = `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE discord_id = $1
		RETURNING points
	`

	var newTotal int64
	if err := r.db.QueryRowContext(ctx, query, discordID, delta).Scan(&newTotal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}

		r.logError("increment_points", discordID, err)
		return 0, fmt.Errorf("increment points: %w", err)
	}

	return newTotal, nil
}

// ResetPoints forces the user's balance to zero.
func (r *ledgerRepository) ResetPoints(ctx context.Context, discordID string) error {
	const query = `
		UPDATE users
		SET points = 0, updated_at = NOW()
		WHERE discord_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, discordID); err != nil {
		r.logError("reset_points", discordID, err)
		return fmt.Errorf("reset points: %w", err)
	}

	return nil
}

// SetNotify persists the user's notification preference.
func (r *ledgerRepository) SetNotify(ctx context.Context, discordID string, enabled bool) error {
	const query = `
		UPDATE users
		SET notify_enabled = $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, discordID, enabled)
	if err != nil {
		r.logError("set_notify", discordID, err)
		return fmt.Errorf("set notify preference: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set notify rows affected: %w", err)
	}

	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// InsertActivityLog appends an award record to the activity log.
func (r *ledgerRepository) InsertActivityLog(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
		INSERT INTO activity_log (discord_id, action, points, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := r.db.ExecContext(ctx, query, entry.DiscordID, entry.Action, entry.Points); err != nil {
		r.logError("insert_activity_log", entry.DiscordID, err)
		return fmt.Errorf("insert activity log: %w", err)
	}

	return nil
}

// InsertAdminLog appends a privileged-action record to the admin log.
func (r *ledgerRepository) InsertAdminLog(ctx context.Context, entry *domain.AdminLogEntry) error {
	const query = `
		INSERT INTO admin_log (admin_id, target_id, action, points, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	if _, err := r.db.ExecContext(ctx, query, entry.AdminID, entry.TargetID, entry.Action, entry.Points); err != nil {
		r.logError("insert_admin_log", entry.AdminID, err)
		return fmt.Errorf("insert admin log: %w", err)
	}

	return nil
}

// TopNByPoints returns the n highest-ranked users, points descending, ties
// broken by discord_id ascending so ordering stays deterministic.
func (r *ledgerRepository) TopNByPoints(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	const query = `
		SELECT discord_id, points
		FROM users
		ORDER BY points DESC, discord_id ASC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		r.logError("top_n_by_points", "", err)
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	rank := 0
	for rows.Next() {
		rank++

		entry := domain.LeaderboardEntry{Rank: rank}
		if err := rows.Scan(&entry.DiscordID, &entry.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	return entries, nil
}

// UserRank returns the user's 1-based position ordered by points.
func (r *ledgerRepository) UserRank(ctx context.Context, discordID string) (int, error) {
	const query = `
		SELECT COUNT(*) + 1
		FROM users
		WHERE points > (SELECT points FROM users WHERE discord_id = $1)
	`

	var rank int
	if err := r.db.QueryRowContext(ctx, query, discordID).Scan(&rank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}

		r.logError("user_rank", discordID, err)
		return 0, fmt.Errorf("select user rank: %w", err)
	}

	return rank, nil
}

// ListVerifiedUsers returns every account with a linked Twitter handle.
func (r *ledgerRepository) ListVerifiedUsers(ctx context.Context) ([]domain.UserAccount, error) {
	const query = `
		SELECT discord_id, twitter_handle, COALESCE(wallet_address, ''), points, notify_enabled, created_at, updated_at
		FROM users
		WHERE twitter_handle IS NOT NULL AND twitter_handle <> ''
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("list_verified_users", "", err)
		return nil, fmt.Errorf("select verified users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserAccount
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(
			&user.DiscordID,
			&user.TwitterHandle,
			&user.WalletAddress,
			&user.Points,
			&user.NotifyEnabled,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan verified user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verified users: %w", err)
	}

	return users, nil
}

// ListReactionChannels returns the channels eligible for reaction awards.
func (r *ledgerRepository) ListReactionChannels(ctx context.Context) ([]string, error) {
	const query = `SELECT channel_id FROM reaction_channels ORDER BY channel_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("list_reaction_channels", "", err)
		return nil, fmt.Errorf("select reaction channels: %w", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reaction channel: %w", err)
		}

		channels = append(channels, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reaction channels: %w", err)
	}

	return channels, nil
}

// AddReactionChannel registers a channel for reaction awards.
func (r *ledgerRepository) AddReactionChannel(ctx context.Context, channelID string) error {
	const query = `
		INSERT INTO reaction_channels (channel_id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (channel_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, channelID); err != nil {
		r.logError("add_reaction_channel", channelID, err)
		return fmt.Errorf("insert reaction channel: %w", err)
	}

	return nil
}

// RemoveReactionChannel unregisters a channel from reaction awards.
func (r *ledgerRepository) RemoveReactionChannel(ctx context.Context, channelID string) error {
	const query = `DELETE FROM reaction_channels WHERE channel_id = $1`

	if _, err := r.db.ExecContext(ctx, query, channelID); err != nil {
		r.logError("remove_reaction_channel", channelID, err)
		return fmt.Errorf("delete reaction channel: %w", err)
	}

	return nil
}

// HasProcessedPost reports whether the post has been announced already.
func (r *ledgerRepository) HasProcessedPost(ctx context.Context, postID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM processed_posts WHERE post_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, postID).Scan(&exists); err != nil {
		r.logError("has_processed_post", postID, err)
		return false, fmt.Errorf("select processed post: %w", err)
	}

	return exists, nil
}

// MarkPostProcessed records the post in the processed set. It reports whether
// this call inserted the row, so concurrent announcers cannot both win.
func (r *ledgerRepository) MarkPostProcessed(ctx context.Context, postID string) (bool, error) {
	const query = `
		INSERT INTO processed_posts (post_id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (post_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		r.logError("mark_post_processed", postID, err)
		return false, fmt.Errorf("insert processed post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("processed post rows affected: %w", err)
	}

	return affected > 0, nil
}

// LoadPolicy reads every persisted scoring policy value.
func (r *ledgerRepository) LoadPolicy(ctx context.Context) (map[string]float64, error) {
	const query = `SELECT key, value FROM scoring_policy`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("load_policy", "", err)
		return nil, fmt.Errorf("select scoring policy: %w", err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan scoring policy row: %w", err)
		}

		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scoring policy rows: %w", err)
	}

	return values, nil
}

// SavePolicyValue upserts a single scoring policy value.
func (r *ledgerRepository) SavePolicyValue(ctx context.Context, key string, value float64) error {
	const query = `
		INSERT INTO scoring_policy (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		r.logError("save_policy_value", key, err)
		return fmt.Errorf("upsert scoring policy value: %w", err)
	}

	return nil
}

func (r *ledgerRepository) logError(operation, subject string, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("ledger operation failed",
		slog.String("operation", operation),
		slog.String("subject", subject),
		slog.Any("error", err),
	)
}
