package bot

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
)

func commandInteraction(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{Name: name},
		},
	}
}

func TestRouterDispatchesByName(t *testing.T) {
	router := NewRouter(nil)

	var called string
	router.RegisterCommand("points", func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		called = i.ApplicationCommandData().Name
		return nil
	})

	router.Route(context.Background(), nil, commandInteraction("points"))

	assert.Equal(t, "points", called)
}

func TestRouterIgnoresUnknownCommand(t *testing.T) {
	router := NewRouter(nil)

	assert.NotPanics(t, func() {
		router.Route(context.Background(), nil, commandInteraction("unknown"))
	})
}

func TestRouterIgnoresNonCommandInteractions(t *testing.T) {
	router := NewRouter(nil)

	called := false
	router.RegisterCommand("points", func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		called = true
		return nil
	})

	router.Route(context.Background(), nil, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{Type: discordgo.InteractionMessageComponent},
	})

	assert.False(t, called)
}

func TestRouterMiddlewareOrder(t *testing.T) {
	router := NewRouter(nil)

	var order []string
	mw := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
				order = append(order, name)
				return next(ctx, s, i)
			}
		}
	}

	router.Use(mw("first"))
	router.Use(mw("second"))
	router.RegisterCommand("verify", func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		order = append(order, "handler")
		return nil
	})

	router.Route(context.Background(), nil, commandInteraction("verify"))

	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestIsAdmin(t *testing.T) {
	roleSet := map[string]struct{}{"role-admin": {}}

	tests := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{
			name:   "no member means DM, never admin",
			member: nil,
			want:   false,
		},
		{
			name:   "administrator permission",
			member: &discordgo.Member{Permissions: discordgo.PermissionAdministrator},
			want:   true,
		},
		{
			name:   "configured admin role",
			member: &discordgo.Member{Roles: []string{"role-other", "role-admin"}},
			want:   true,
		},
		{
			name:   "plain member",
			member: &discordgo.Member{Roles: []string{"role-other"}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &discordgo.InteractionCreate{
				Interaction: &discordgo.Interaction{Member: tt.member},
			}
			assert.Equal(t, tt.want, isAdmin(i, roleSet))
		})
	}
}

func TestReactionChannelsContains(t *testing.T) {
	channels := NewReactionChannels(nil, nil)

	assert.False(t, channels.Contains("c1"))

	channels.mu.Lock()
	channels.ids["c1"] = struct{}{}
	channels.mu.Unlock()

	assert.True(t, channels.Contains("c1"))
	assert.False(t, channels.Contains("c2"))
}
