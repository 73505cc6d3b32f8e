package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// MailQueue accepts mail for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg mailer.Message) bool
}

// NotificationService turns ticket events into emails for requesters and
// assignees.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	logger     *zap.Logger
	queue      MailQueue
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		users:      users,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to ticket events and routes mail to queue.
func (n *NotificationService) RegisterHandlers(queue MailQueue) {
	if n.dispatcher == nil || queue == nil {
		return
	}
	n.queue = queue
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.toRequester(event,
		fmt.Sprintf("[%s] We received your request", event.Ticket.Code),
		fmt.Sprintf("Hello %s,\n\nYour ticket %q was created with code %s. We will get back to you soon.\n",
			displayName(event.Ticket.RequesterName), event.Ticket.Subject, event.Ticket.Code))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.toRequester(event,
		fmt.Sprintf("[%s] Status changed to %s", event.Ticket.Code, payload.NewStatus),
		fmt.Sprintf("Hello %s,\n\nThe status of ticket %s changed from %s to %s.\n",
			displayName(event.Ticket.RequesterName), event.Ticket.Code, payload.OldStatus, payload.NewStatus))
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.NewAssigneeID == nil {
		return nil
	}
	assignee, err := n.users.GetByID(ctx, *payload.NewAssigneeID)
	if err != nil {
		return fmt.Errorf("load assignee %d: %w", *payload.NewAssigneeID, err)
	}
	n.enqueue(event, mailer.Message{
		To:      []string{assignee.Email},
		Subject: fmt.Sprintf("[%s] Ticket assigned to you", event.Ticket.Code),
		Body: fmt.Sprintf("Hello %s,\n\nTicket %s %q is now assigned to you.\n",
			displayName(assignee.FullName()), event.Ticket.Code, event.Ticket.Subject),
	})
	return nil
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.IsInternal {
		return nil
	}
	n.toRequester(event,
		fmt.Sprintf("[%s] New reply on your ticket", event.Ticket.Code),
		fmt.Sprintf("Hello %s,\n\nA new reply was posted on ticket %s:\n\n%s\n",
			displayName(event.Ticket.RequesterName), event.Ticket.Code, payload.Preview))
	return nil
}

func (n *NotificationService) toRequester(event events.Event, subject, body string) {
	if strings.TrimSpace(event.Ticket.RequesterEmail) == "" {
		return
	}
	n.enqueue(event, mailer.Message{
		To:      []string{event.Ticket.RequesterEmail},
		Subject: subject,
		Body:    body,
	})
}

func (n *NotificationService) enqueue(event events.Event, msg mailer.Message) {
	if n.queue.Enqueue(msg) {
		n.logger.Debug("notification queued",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.Ticket.ID),
			zap.Strings("to", msg.To))
	}
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}
