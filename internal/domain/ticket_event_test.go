package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketCreatedEncodesSubjectAndStatus(t *testing.T) {
	change := TicketCreated("Printer on fire", TicketStatusNew)

	assert.Equal(t, ChangeTicketCreated, change.Type)
	assert.Nil(t, change.Old)
	require.NotNil(t, change.New)
	assert.JSONEq(t, `{"subject":"Printer on fire","status":"new"}`, *change.New)
}

func TestAssigneeChangedUsesNullForUnassigned(t *testing.T) {
	agent := int64(12)

	change := AssigneeChanged(nil, &agent)
	assert.Nil(t, change.Old)
	require.NotNil(t, change.New)
	assert.Equal(t, "12", *change.New)

	change = AssigneeChanged(&agent, nil)
	require.NotNil(t, change.Old)
	assert.Equal(t, "12", *change.Old)
	assert.Nil(t, change.New)
}

func TestCommentAddedTruncatesToFiftyRunes(t *testing.T) {
	long := strings.Repeat("é", 80)

	change := CommentAdded(long)
	require.NotNil(t, change.New)
	assert.Equal(t, "Comment: "+strings.Repeat("é", 50)+"...", *change.New)

	short := CommentAdded("thanks")
	assert.Equal(t, "Comment: thanks...", *short.New)
}

func TestForBindsTicketAndActor(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ev := StatusChanged(TicketStatusOpen, TicketStatusResolved).For(5, 9, at)
	assert.Equal(t, int64(5), ev.TicketID)
	assert.Equal(t, int64(9), ev.UserID)
	assert.Equal(t, at, ev.CreatedAt)
	assert.Equal(t, "open", *ev.OldValue)
	assert.Equal(t, "resolved", *ev.NewValue)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("agent")
	assert.True(t, ok)
	assert.Equal(t, RoleAgent, role)

	_, ok = ParseRole("Agent")
	assert.False(t, ok)
}
