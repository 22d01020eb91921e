package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/user"
)

// ConnectWallet stores the caller's wallet address and grants the one-time
// connection reward. The address cannot be changed once set.
func ConnectWallet(svc *user.Service, engine *award.Engine, pol *policy.Policy, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		discordID := SenderID(i)

		address, ok := stringOption(i, "address")
		if !ok {
			return Respond(s, i, "Please provide a wallet address.", true)
		}

		if err := svc.ConnectWallet(ctx, discordID, address); err != nil {
			if errors.Is(err, repository.ErrWalletAlreadySet) {
				return Respond(s, i, "Your wallet is already connected and cannot be changed.", true)
			}

			return err
		}

		reward := pol.GetInt(policy.KeyWalletReward)

		result, err := engine.Award(ctx, discordID, reward, ActionWallet)
		if err != nil {
			log.Error("failed to credit wallet reward",
				slog.String("discord_id", discordID),
				slog.Any("error", err),
			)

			return Respond(s, i,
				"Wallet connected! Your reward will be credited shortly.", true)
		}

		if !result.Verified {
			return Respond(s, i,
				"Wallet connected! Use /verify to claim your connection reward.", true)
		}

		content := fmt.Sprintf("Wallet connected! You earned %d gold points.", reward)
		if result.NewTotal != nil {
			content = fmt.Sprintf("Wallet connected! You earned %d gold points. Total: %d",
				reward, *result.NewTotal)
		}

		return Respond(s, i, content, true)
	}
}
