package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/domain"
)

// Announcer posts new official tweets to the configured announcement channel.
type Announcer struct {
	session   *discordgo.Session
	channelID string
	log       *slog.Logger
}

func NewAnnouncer(session *discordgo.Session, channelID string, log *slog.Logger) *Announcer {
	if log == nil {
		log = slog.Default()
	}

	return &Announcer{
		session:   session,
		channelID: channelID,
		log:       log,
	}
}

// AnnouncePost sends the post link to the announcement channel.
func (a *Announcer) AnnouncePost(ctx context.Context, post domain.Post, url string) error {
	content := fmt.Sprintf("New post from the official account! Like and retweet to earn gold points:\n%s", url)

	if _, err := a.session.ChannelMessageSend(a.channelID, content); err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}

	a.log.Info("announced post",
		slog.String("post_id", post.ID),
		slog.String("channel_id", a.channelID),
	)

	return nil
}
