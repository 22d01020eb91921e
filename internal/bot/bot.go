// Package bot owns the Discord gateway connection: slash command routing,
// event handlers, and the award surfaces they drive.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/pkg/config"
)

// Bot wraps the Discord session and routes gateway traffic to the handlers.
type Bot struct {
	session   *discordgo.Session
	router    *Router
	messages  *MessageHandler
	reactions *ReactionHandler
	cfg       config.DiscordConfig
	log       *slog.Logger

	connected atomic.Bool
}

// New builds the Bot around an authenticated session. Handlers must be
// registered on the router before Start.
func New(cfg config.DiscordConfig, router *Router, messages *MessageHandler, reactions *ReactionHandler, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	return &Bot{
		session:   session,
		router:    router,
		messages:  messages,
		reactions: reactions,
		cfg:       cfg,
		log:       log,
	}, nil
}

// Session exposes the underlying connection for components that send
// messages outside an interaction, such as the announcer.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.router.Route(ctx, s, i)
	})
	b.session.AddHandler(b.messages.Handle)
	b.session.AddHandler(b.reactions.Handle)

	b.session.AddHandler(func(s *discordgo.Session, _ *discordgo.Ready) {
		b.connected.Store(true)
		b.log.Info("discord gateway ready")
	})
	b.session.AddHandler(func(s *discordgo.Session, _ *discordgo.Disconnect) {
		b.connected.Store(false)
		b.log.Warn("discord gateway disconnected")
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		if closeErr := b.session.Close(); closeErr != nil {
			b.log.Error("failed to close session after registration failure", slog.Any("error", closeErr))
		}

		return err
	}

	b.log.Info("bot started", slog.Int("commands", len(commandDefinitions)))

	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	b.connected.Store(false)

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}

	return nil
}

// IsConnected reports whether the gateway session is live. Used by the
// health endpoint.
func (b *Bot) IsConnected() bool {
	return b.connected.Load()
}

// registerCommands bulk-overwrites the slash command set, scoped to the
// configured guild when one is set so changes propagate immediately.
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID

	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, commandDefinitions); err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}

	return nil
}
