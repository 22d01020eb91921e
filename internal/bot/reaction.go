package bot

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/ratelimit"
	"github.com/aurum-community/aurum-bot/pkg/config"
)

// ReactionHandler credits reactions added in configured channels.
type ReactionHandler struct {
	engine   *award.Engine
	channels *ReactionChannels
	policy   *policy.Policy
	limiter  ratelimit.Limiter
	rateCfg  config.RateLimitConfig
	log      *slog.Logger
}

// NewReactionHandler constructs the handler. limiter may be nil to disable
// per-user limiting.
func NewReactionHandler(engine *award.Engine, channels *ReactionChannels, p *policy.Policy, limiter ratelimit.Limiter, rateCfg config.RateLimitConfig, log *slog.Logger) *ReactionHandler {
	if log == nil {
		log = slog.Default()
	}

	return &ReactionHandler{
		engine:   engine,
		channels: channels,
		policy:   p,
		limiter:  limiter,
		rateCfg:  rateCfg,
		log:      log,
	}
}

// Handle processes a MessageReactionAdd gateway event. Only reactions in
// configured channels count, and reacting to your own message earns nothing.
func (h *ReactionHandler) Handle(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || !h.channels.Contains(r.ChannelID) {
		return
	}

	if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.allow(ctx, r.UserID) {
		return
	}

	msg, err := s.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		h.log.Warn("failed to fetch reacted message, skipping award",
			slog.String("channel_id", r.ChannelID),
			slog.String("message_id", r.MessageID),
			slog.Any("error", err),
		)
	}

	if !creditableReaction(msg, err, r.UserID) {
		return
	}

	amount := h.policy.GetInt(policy.KeyReactionReward)
	if amount <= 0 {
		return
	}

	if _, err := h.engine.Award(ctx, r.UserID, amount, handlers.ActionReaction); err != nil {
		h.log.Error("failed to credit reaction",
			slog.String("discord_id", r.UserID),
			slog.String("channel_id", r.ChannelID),
			slog.Any("error", err),
		)
	}
}

// creditableReaction decides whether the reaction earns points. The author
// check is the only self-award guard, so an unverifiable message (fetch
// failed, no author) never earns.
func creditableReaction(msg *discordgo.Message, err error, reactorID string) bool {
	if err != nil || msg == nil || msg.Author == nil {
		return false
	}

	return msg.Author.ID != reactorID && !msg.Author.Bot
}

// allow checks the per-user limit. Limiter failures let the reaction through
// rather than dropping awards whenever Redis blips.
func (h *ReactionHandler) allow(ctx context.Context, userID string) bool {
	if h.limiter == nil || h.rateCfg.IsWhitelisted(userID) {
		return true
	}

	limit, window, err := h.rateCfg.PerUserLimit()
	if err != nil {
		return true
	}

	result, err := h.limiter.Check(ctx, "reaction:"+userID, limit, window)
	if err != nil && result == nil {
		h.log.Warn("rate limiter error", slog.String("user_id", userID), slog.Any("error", err))
		return true
	}

	return result.Allowed
}
