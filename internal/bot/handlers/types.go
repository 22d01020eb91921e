package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Action labels recorded in the activity log by command and event handlers.
const (
	ActionVerify   = "twitter_verify"
	ActionWallet   = "wallet_connect"
	ActionMessage  = "message_activity"
	ActionReaction = "reaction"
)

// Handler processes a slash command interaction.
type Handler func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Respond sends the interaction reply. Ephemeral replies are visible only to
// the invoking user.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// RespondEmbed sends an embed reply.
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// SenderID extracts the invoking user's ID from guild or DM interactions.
func SenderID(i *discordgo.InteractionCreate) string {
	if i == nil {
		return ""
	}

	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}

	if i.User != nil {
		return i.User.ID
	}

	return ""
}

// Options flattens the interaction's options into a name-keyed map.
func Options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	named := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		named[option.Name] = option
	}

	return named
}
