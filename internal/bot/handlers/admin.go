package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/aurum-community/aurum-bot/internal/domain"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/user"
)

// ChannelSet mutates the set of channels where reactions earn points.
type ChannelSet interface {
	Add(ctx context.Context, channelID string) error
	Remove(ctx context.Context, channelID string) error
}

// ResetPoints zeroes a member's balance. Admin only.
func ResetPoints(svc *user.Service) Handler {
	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		option, ok := Options(i)["user"]
		if !ok {
			return Respond(s, i, "Please choose a member to reset.", true)
		}

		target := option.UserValue(s)
		if target == nil {
			return Respond(s, i, "Please choose a member to reset.", true)
		}

		if err := svc.ResetPoints(ctx, SenderID(i), target.ID); err != nil {
			return err
		}

		return Respond(s, i, fmt.Sprintf("Reset %s's gold points to zero.", target.Mention()), true)
	}
}

// EditScores changes one scoring policy value. Admin only.
func EditScores(pol *policy.Policy, ledger repository.Ledger, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		options := Options(i)

		keyOption, ok := options["key"]
		if !ok {
			return Respond(s, i, "Please provide a scoring key. Valid keys: "+strings.Join(policy.Keys(), ", "), true)
		}

		valueOption, ok := options["value"]
		if !ok {
			return Respond(s, i, "Please provide the new value.", true)
		}

		key := keyOption.StringValue()
		value := valueOption.FloatValue()

		if err := pol.Set(ctx, key, value); err != nil {
			return err
		}

		entry := editScoresEntry(SenderID(i), key, value)
		if err := ledger.InsertAdminLog(ctx, entry); err != nil {
			log.Error("failed to record admin action",
				slog.String("admin_id", entry.AdminID),
				slog.String("action", entry.Action),
				slog.Any("error", err),
			)
		}

		return Respond(s, i, fmt.Sprintf("Set %s to %g.", key, value), true)
	}
}

// SetReactionChannel marks a channel so reactions there earn points. Admin only.
func SetReactionChannel(channels ChannelSet, ledger repository.Ledger, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		option, ok := Options(i)["channel"]
		if !ok {
			return Respond(s, i, "Please choose a channel.", true)
		}

		channel := option.ChannelValue(s)
		if channel == nil {
			return Respond(s, i, "Please choose a channel.", true)
		}

		if err := channels.Add(ctx, channel.ID); err != nil {
			return err
		}

		recordAdminAction(ctx, ledger, log, SenderID(i), "set_reaction_channel:"+channel.ID)

		return Respond(s, i, fmt.Sprintf("Reactions in <#%s> now earn gold points.", channel.ID), true)
	}
}

// RemoveReactionChannel stops counting reactions in a channel. Admin only.
func RemoveReactionChannel(channels ChannelSet, ledger repository.Ledger, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		option, ok := Options(i)["channel"]
		if !ok {
			return Respond(s, i, "Please choose a channel.", true)
		}

		channel := option.ChannelValue(s)
		if channel == nil {
			return Respond(s, i, "Please choose a channel.", true)
		}

		if err := channels.Remove(ctx, channel.ID); err != nil {
			return err
		}

		recordAdminAction(ctx, ledger, log, SenderID(i), "remove_reaction_channel:"+channel.ID)

		return Respond(s, i, fmt.Sprintf("Reactions in <#%s> no longer earn gold points.", channel.ID), true)
	}
}

// editScoresEntry records the exact value in the action string; the Points
// column is integral and would truncate fractional policy values.
func editScoresEntry(adminID, key string, value float64) *domain.AdminLogEntry {
	return &domain.AdminLogEntry{
		AdminID: adminID,
		Action:  "edit_scores:" + key + "=" + strconv.FormatFloat(value, 'g', -1, 64),
	}
}

func recordAdminAction(ctx context.Context, ledger repository.Ledger, log *slog.Logger, adminID, action string) {
	entry := &domain.AdminLogEntry{
		AdminID: adminID,
		Action:  action,
	}
	if err := ledger.InsertAdminLog(ctx, entry); err != nil {
		log.Error("failed to record admin action",
			slog.String("admin_id", adminID),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
