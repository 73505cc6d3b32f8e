package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
)

type captureQueue struct {
	messages []mailer.Message
}

func (q *captureQueue) Enqueue(msg mailer.Message) bool {
	q.messages = append(q.messages, msg)
	return true
}

func TestNotificationsFollowTicketEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	queue := &captureQueue{}
	NewNotificationService(f.recorder, f.store.Repos().Users, nil).RegisterHandlers(queue)

	view := f.createTicket(t, f.customer.Actor())
	require.Len(t, queue.messages, 1)
	assert.Equal(t, []string{"jane@example.com"}, queue.messages[0].To)
	assert.Contains(t, queue.messages[0].Subject, view.TicketCode)

	_, err := f.tickets.UpdateTicket(ctx, f.admin.Actor(), view.ID, UpdateTicketInput{
		Assignee: &AssigneeChange{ID: &f.agent.ID},
	})
	require.NoError(t, err)
	require.Len(t, queue.messages, 2)
	assert.Equal(t, []string{f.agent.Email}, queue.messages[1].To)

	_, err = f.tickets.AddComment(ctx, f.agent.Actor(), view.ID, "checking the logs", true)
	require.NoError(t, err)
	assert.Len(t, queue.messages, 2, "internal notes never reach the requester")

	_, err = f.tickets.AddComment(ctx, f.agent.Actor(), view.ID, "fixed the tray", false)
	require.NoError(t, err)
	require.Len(t, queue.messages, 3)
	assert.Contains(t, queue.messages[2].Body, "fixed the tray")

	_, err = f.tickets.UpdateTicket(ctx, f.agent.Actor(), view.ID, UpdateTicketInput{Status: ptr(domain.TicketStatusResolved)})
	require.NoError(t, err)
	require.Len(t, queue.messages, 4)
	assert.Contains(t, queue.messages[3].Subject, "resolved")
}

func TestNotificationsSkipUnassignment(t *testing.T) {
	f := newFixture(t)
	queue := &captureQueue{}
	NewNotificationService(f.recorder, f.store.Repos().Users, nil).RegisterHandlers(queue)

	view := f.createTicket(t, f.admin.Actor(), func(in *CreateTicketInput) { in.AssigneeID = &f.agent.ID })
	_, err := f.tickets.UpdateTicket(context.Background(), f.admin.Actor(), view.ID, UpdateTicketInput{
		Assignee: &AssigneeChange{},
	})
	require.NoError(t, err)
	assert.Len(t, queue.messages, 1)
}
