package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
	"github.com/aurum-community/aurum-bot/pkg/config"
)

// AdminOnly rejects callers who are neither server administrators nor
// holders of a configured admin role. Discord already hides admin commands
// via default member permissions, but server owners can override those, so
// the bot enforces the gate itself as well.
func AdminOnly(cfg config.DiscordConfig) handlers.Middleware {
	roleSet := make(map[string]struct{}, len(cfg.AdminRoleIDs))
	for _, id := range cfg.AdminRoleIDs {
		roleSet[id] = struct{}{}
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
			if !isAdmin(i, roleSet) {
				return handlers.Respond(s, i, "You need administrator access to use this command.", true)
			}

			return next(ctx, s, i)
		}
	}
}

func isAdmin(i *discordgo.InteractionCreate, roleSet map[string]struct{}) bool {
	if i.Member == nil {
		return false
	}

	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	for _, roleID := range i.Member.Roles {
		if _, ok := roleSet[roleID]; ok {
			return true
		}
	}

	return false
}
