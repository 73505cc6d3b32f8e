package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventAttachmentsAdded      EventType = "ticket_attachments_added"
	EventAttachmentDeleted     EventType = "ticket_attachment_deleted"
)

// TicketRef identifies the ticket an event is about, along with the
// fields notification handlers need to address mail.
type TicketRef struct {
	ID             int64  `json:"id"`
	Code           string `json:"ticket_code"`
	Subject        string `json:"subject"`
	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
	AssigneeID     *int64 `json:"assignee_id,omitempty"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	Ticket    TicketRef    `json:"ticket"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Status     domain.TicketStatus `json:"status"`
	PriorityID int64               `json:"priority_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriorityID int64 `json:"old_priority_id"`
	NewPriorityID int64 `json:"new_priority_id"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *int64 `json:"old_assignee_id,omitempty"`
	NewAssigneeID *int64 `json:"new_assignee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  int64  `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// AttachmentsPayload lists the stored URLs of added or removed attachments.
type AttachmentsPayload struct {
	URLs []string `json:"urls"`
}
