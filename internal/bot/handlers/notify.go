package handlers

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/user"
)

// NotifyToggle flips the caller's award-notification preference.
func NotifyToggle(svc *user.Service) Handler {
	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		discordID := SenderID(i)

		enabled, err := svc.ToggleNotify(ctx, discordID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperrors.NewNotVerifiedError(discordID)
			}

			return err
		}

		if enabled {
			return Respond(s, i, "Award notifications are now on.", true)
		}

		return Respond(s, i, "Award notifications are now off.", true)
	}
}
