package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditScoresEntryKeepsFractionalValues(t *testing.T) {
	entry := editScoresEntry("admin-1", "message_reward", 2.5)

	assert.Equal(t, "admin-1", entry.AdminID)
	assert.Equal(t, "edit_scores:message_reward=2.5", entry.Action)
	assert.Nil(t, entry.Points, "integral Points column would truncate the value")

	entry = editScoresEntry("admin-1", "daily_cap", 20)
	assert.Equal(t, "edit_scores:daily_cap=20", entry.Action)
}
