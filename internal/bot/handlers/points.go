package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/user"
)

// Points shows the caller's gold point balance and leaderboard rank.
func Points(svc *user.Service, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		discordID := SenderID(i)

		account, err := svc.Get(ctx, discordID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperrors.NewNotVerifiedError(discordID)
			}

			return err
		}

		content := fmt.Sprintf("You have %d gold points.", account.Points)

		rank, err := svc.Rank(ctx, discordID)
		if err != nil {
			log.Warn("failed to look up rank",
				slog.String("discord_id", discordID),
				slog.Any("error", err),
			)
		} else {
			content = fmt.Sprintf("You have %d gold points. Rank: #%d", account.Points, rank)
		}

		return Respond(s, i, content, true)
	}
}
