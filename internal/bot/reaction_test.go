package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestCreditableReaction(t *testing.T) {
	tests := []struct {
		name      string
		msg       *discordgo.Message
		err       error
		reactorID string
		want      bool
	}{
		{
			name:      "reaction to someone else's message",
			msg:       &discordgo.Message{Author: &discordgo.User{ID: "author"}},
			reactorID: "reactor",
			want:      true,
		},
		{
			name:      "self-reaction",
			msg:       &discordgo.Message{Author: &discordgo.User{ID: "reactor"}},
			reactorID: "reactor",
			want:      false,
		},
		{
			name:      "reaction to a bot message",
			msg:       &discordgo.Message{Author: &discordgo.User{ID: "author", Bot: true}},
			reactorID: "reactor",
			want:      false,
		},
		{
			name:      "fetch failure degrades closed",
			err:       errors.New("message fetch failed"),
			reactorID: "reactor",
			want:      false,
		},
		{
			name:      "message without author",
			msg:       &discordgo.Message{},
			reactorID: "reactor",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, creditableReaction(tt.msg, tt.err, tt.reactorID))
		})
	}
}
