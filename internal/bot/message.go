package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
	"github.com/aurum-community/aurum-bot/internal/throttle"
)

const handlerTimeout = 10 * time.Second

// MessageHandler credits message activity through the daily throttle.
type MessageHandler struct {
	engine   *award.Engine
	throttle *throttle.Daily
	log      *slog.Logger
}

func NewMessageHandler(engine *award.Engine, daily *throttle.Daily, log *slog.Logger) *MessageHandler {
	if log == nil {
		log = slog.Default()
	}

	return &MessageHandler{
		engine:   engine,
		throttle: daily,
		log:      log,
	}
}

// Handle processes a MessageCreate gateway event. Bot authors and DMs earn
// nothing; everything else runs through the throttle, which decides whether
// this particular message crosses an award threshold.
func (h *MessageHandler) Handle(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	// GuildID is empty for direct messages.
	if m.GuildID == "" {
		return
	}

	amount := h.throttle.OnMessage(m.Author.ID)
	if amount == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	result, err := h.engine.Award(ctx, m.Author.ID, amount, handlers.ActionMessage)
	if err != nil {
		h.log.Error("failed to credit message activity",
			slog.String("discord_id", m.Author.ID),
			slog.Int64("points", amount),
			slog.Any("error", err),
		)

		return
	}

	if !result.Verified {
		return
	}

	if result.Accepted && result.NotifyEnabled {
		content := fmt.Sprintf("%s earned %d gold points for being active! Total: %d",
			m.Author.Mention(), amount, *result.NewTotal)
		if _, err := s.ChannelMessageSend(m.ChannelID, content); err != nil {
			h.log.Warn("failed to send activity congratulation",
				slog.String("channel_id", m.ChannelID),
				slog.Any("error", err),
			)
		}
	}
}
