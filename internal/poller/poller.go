// Package poller periodically reconciles the ledger against the engagement
// source: announcing new posts once and crediting likes and retweets.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/domain"
	"github.com/aurum-community/aurum-bot/internal/engagement"
	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/pkg/metrics"
)

// Action labels recorded in the activity log for engagement credits.
const (
	ActionEngagementLike  = "engagement_like"
	ActionEngagementShare = "engagement_share"
)

// Announcer publishes a newly seen post to the community. Implementations
// decide the channel and formatting.
type Announcer interface {
	AnnouncePost(ctx context.Context, post domain.Post, url string) error
}

// Config holds poller settings.
type Config struct {
	AccountHandle string `mapstructure:"account_handle" validate:"required"`
	Interval      string `mapstructure:"interval" validate:"required"`
	PostLimit     int    `mapstructure:"post_limit" validate:"min=1,max=100"`
}

// Poller owns the periodic engagement reconciliation loop.
type Poller struct {
	cfg       Config
	source    engagement.Source
	ledger    repository.Ledger
	engine    *award.Engine
	policy    *policy.Policy
	announcer Announcer
	errs      *apperrors.Handler
	log       *slog.Logger

	cron *cron.Cron
}

// New constructs a Poller. announcer and errs may be nil when no announce
// channel or central error handler is configured.
func New(
	cfg Config,
	source engagement.Source,
	ledger repository.Ledger,
	engine *award.Engine,
	p *policy.Policy,
	announcer Announcer,
	errs *apperrors.Handler,
	log *slog.Logger,
) *Poller {
	if log == nil {
		log = slog.Default()
	}

	if cfg.PostLimit <= 0 {
		cfg.PostLimit = 10
	}

	return &Poller{
		cfg:       cfg,
		source:    source,
		ledger:    ledger,
		engine:    engine,
		policy:    p,
		announcer: announcer,
		errs:      errs,
		log:       log,
	}
}

// Start schedules cycles at the configured fixed interval.
func (p *Poller) Start(ctx context.Context) error {
	p.cron = cron.New()

	spec := "@every " + p.cfg.Interval
	if _, err := p.cron.AddFunc(spec, func() {
		if err := p.RunCycle(ctx); err != nil {
			p.log.Error("poll cycle aborted", slog.Any("error", err))
		}
	}); err != nil {
		return fmt.Errorf("schedule poll cycle %q: %w", spec, err)
	}

	p.cron.Start()
	p.log.Info("engagement poller started",
		slog.String("account", p.cfg.AccountHandle),
		slog.String("interval", p.cfg.Interval),
	)

	return nil
}

// Stop halts the schedule and waits for a running cycle to finish.
func (p *Poller) Stop() {
	if p.cron == nil {
		return
	}

	<-p.cron.Stop().Done()
	p.log.Info("engagement poller stopped")
}

// RunCycle executes one reconciliation pass.
//
// A resolve or recent-posts failure aborts the whole cycle; the next cycle
// retries from scratch. Per-post engagement fetch failures skip only that
// post, so its credit is re-attempted every cycle until the post ages out of
// the recent window. Announcement failures never block engagement
// evaluation.
func (p *Poller) RunCycle(ctx context.Context) error {
	log := p.log.With(slog.String("cycle_id", uuid.NewString()))

	accountID, err := p.source.ResolveAccount(ctx, p.cfg.AccountHandle)
	if err != nil {
		metrics.RecordPollCycle("resolve_failed")
		return p.reportSourceError(ctx, "", fmt.Errorf("resolve monitored account: %w", err))
	}

	posts, err := p.source.RecentPosts(ctx, accountID, p.cfg.PostLimit)
	if err != nil {
		metrics.RecordPollCycle("fetch_failed")
		return p.reportSourceError(ctx, "", fmt.Errorf("fetch recent posts: %w", err))
	}

	users, err := p.ledger.ListVerifiedUsers(ctx)
	if err != nil {
		// Announcements can still go out; engagement credit waits for the
		// next cycle.
		log.Error("failed to list verified users", slog.Any("error", err))
		users = nil
	}

	for _, post := range posts {
		p.processPost(ctx, log, post, users)
	}

	metrics.RecordPollCycle("ok")
	log.Info("poll cycle complete",
		slog.Int("posts", len(posts)),
		slog.Int("verified_users", len(users)),
	)

	return nil
}

func (p *Poller) processPost(ctx context.Context, log *slog.Logger, post domain.Post, users []domain.UserAccount) {
	postLog := log.With(slog.String("post_id", post.ID))

	p.announceIfNew(ctx, postLog, post)

	likedBy, err := p.source.LikedBy(ctx, post.ID)
	if err != nil {
		p.reportSourceError(ctx, post.ID, err)
		postLog.Warn("skipping post this cycle", slog.Any("error", err))
		return
	}

	retweetedBy, err := p.source.RetweetedBy(ctx, post.ID)
	if err != nil {
		p.reportSourceError(ctx, post.ID, err)
		postLog.Warn("skipping post this cycle", slog.Any("error", err))
		return
	}

	likedSet := handleSet(likedBy)
	retweetedSet := handleSet(retweetedBy)

	likeReward := p.policy.GetInt(policy.KeyLikeReward)
	retweetReward := p.policy.GetInt(policy.KeyRetweetReward)

	for _, user := range users {
		handle := strings.ToLower(user.TwitterHandle)

		if likedSet[handle] {
			p.credit(ctx, postLog, user.DiscordID, likeReward, ActionEngagementLike)
		}

		if retweetedSet[handle] {
			p.credit(ctx, postLog, user.DiscordID, retweetReward, ActionEngagementShare)
		}
	}
}

// announceIfNew inserts the post into the processed set and announces it when
// this cycle saw it first. Only the announcement is gated by the processed
// set; engagement is evaluated every cycle regardless.
func (p *Poller) announceIfNew(ctx context.Context, log *slog.Logger, post domain.Post) {
	inserted, err := p.ledger.MarkPostProcessed(ctx, post.ID)
	if err != nil {
		log.Error("failed to mark post processed", slog.Any("error", err))
		return
	}

	if !inserted || p.announcer == nil {
		return
	}

	url := post.URL(p.cfg.AccountHandle)
	if err := p.announcer.AnnouncePost(ctx, post, url); err != nil {
		log.Warn("failed to announce post", slog.Any("error", err))
		return
	}

	metrics.RecordPostAnnounced()
	log.Info("announced new post", slog.String("url", url))
}

func (p *Poller) credit(ctx context.Context, log *slog.Logger, discordID string, amount int64, action string) {
	result, err := p.engine.Award(ctx, discordID, amount, action)
	if err != nil {
		log.Error("engagement award failed",
			slog.String("discord_id", discordID),
			slog.String("action", action),
			slog.Any("error", err),
		)
		return
	}

	if result.Accepted {
		log.Info("engagement credited",
			slog.String("discord_id", discordID),
			slog.String("action", action),
			slog.Int64("points", amount),
		)
	}
}

// classifySourceError maps an engagement source failure onto the error
// taxonomy: denied access becomes E300 (post-scoped), everything else E310.
func classifySourceError(postID string, err error) *apperrors.AppError {
	if errors.Is(err, engagement.ErrUnauthorized) {
		return apperrors.NewSourceUnauthorizedError(postID, err)
	}

	return apperrors.NewSourceUnavailableError(err)
}

// reportSourceError classifies err and routes it through the central error
// handler so codes and severities land in the operational logs, then returns
// the classified error for the caller to propagate.
func (p *Poller) reportSourceError(ctx context.Context, postID string, err error) error {
	appErr := classifySourceError(postID, err)

	if p.errs != nil {
		p.errs.Handle(ctx, appErr)
	}

	return appErr
}

func handleSet(handles []string) map[string]bool {
	set := make(map[string]bool, len(handles))
	for _, handle := range handles {
		set[strings.ToLower(handle)] = true
	}

	return set
}
