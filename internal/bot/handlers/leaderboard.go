package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/user"
)

const leaderboardSize = 10

// Leaderboard shows the top gold point holders.
func Leaderboard(svc *user.Service) Handler {
	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		entries, err := svc.Leaderboard(ctx, leaderboardSize)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			return Respond(s, i, "Nobody has earned gold points yet. Be the first!", false)
		}

		var sb strings.Builder
		for _, entry := range entries {
			fmt.Fprintf(&sb, "**#%d** <@%s>: %d points\n", entry.Rank, entry.DiscordID, entry.Points)
		}

		return RespondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Gold Points Leaderboard",
			Description: sb.String(),
			Color:       0xFFD700,
		})
	}
}
