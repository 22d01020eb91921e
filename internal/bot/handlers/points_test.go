package handlers

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurum-community/aurum-bot/internal/domain"
	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/user"
)

type fakeLedger struct {
	repository.Ledger

	users map[string]*domain.UserAccount
}

func (f *fakeLedger) GetUser(_ context.Context, discordID string) (*domain.UserAccount, error) {
	u, ok := f.users[discordID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *u
	return &copied, nil
}

func memberInteraction(userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:   discordgo.InteractionApplicationCommand,
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
		},
	}
}

func TestPointsUnknownUserReturnsNotVerified(t *testing.T) {
	svc := user.NewService(&fakeLedger{users: map[string]*domain.UserAccount{}}, nil, nil)
	handler := Points(svc, nil)

	err := handler(context.Background(), nil, memberInteraction("user-1"))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E100", appErr.Code)
	assert.NotEmpty(t, appErr.UserMessage, "middleware relays this message to the member")
}

func TestNotifyToggleUnknownUserReturnsNotVerified(t *testing.T) {
	svc := user.NewService(&fakeLedger{users: map[string]*domain.UserAccount{}}, nil, nil)
	handler := NotifyToggle(svc)

	err := handler(context.Background(), nil, memberInteraction("user-1"))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E100", appErr.Code)
}
