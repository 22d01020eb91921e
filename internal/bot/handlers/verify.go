package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/user"
)

// Verify links the caller's Twitter handle and grants the one-time
// verification reward on first link.
func Verify(svc *user.Service, engine *award.Engine, pol *policy.Policy, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		discordID := SenderID(i)

		handle, ok := stringOption(i, "handle")
		if !ok {
			return Respond(s, i, "Please provide your Twitter handle.", true)
		}

		first, err := svc.Verify(ctx, discordID, handle)
		if err != nil {
			return err
		}

		if !first {
			return Respond(s, i, "Your Twitter handle has been updated.", true)
		}

		reward := pol.GetInt(policy.KeyVerifyReward)

		result, err := engine.Award(ctx, discordID, reward, ActionVerify)
		if err != nil {
			log.Error("failed to credit verification reward",
				slog.String("discord_id", discordID),
				slog.Any("error", err),
			)

			return Respond(s, i,
				"You're verified! Your welcome reward will be credited shortly.", true)
		}

		content := fmt.Sprintf("You're verified! You earned %d gold points.", reward)
		if result.NewTotal != nil {
			content = fmt.Sprintf("You're verified! You earned %d gold points. Total: %d",
				reward, *result.NewTotal)
		}

		return Respond(s, i, content, true)
	}
}

func stringOption(i *discordgo.InteractionCreate, name string) (string, bool) {
	option, ok := Options(i)[name]
	if !ok {
		return "", false
	}

	return option.StringValue(), true
}
