package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// ChangeType captures what changed in a ticket event.
type ChangeType string

const (
	ChangeTicketCreated     ChangeType = "ticket_created"
	ChangeStatusChanged     ChangeType = "status_changed"
	ChangeAssigneeChanged   ChangeType = "assignee_changed"
	ChangePriorityChanged   ChangeType = "priority_changed"
	ChangeCommentAdded      ChangeType = "comment_added"
	ChangeAttachmentAdded   ChangeType = "attachment_added"
	ChangeAttachmentDeleted ChangeType = "attachment_deleted"
)

// commentPreviewRunes bounds the comment excerpt stored on comment_added events.
const commentPreviewRunes = 50

// TicketEvent is an immutable audit trail entry. Events are only ever appended.
type TicketEvent struct {
	ID         int64
	TicketID   int64
	UserID     int64
	User       *UserRef
	ChangeType ChangeType
	OldValue   *string
	NewValue   *string
	CreatedAt  time.Time
}

// EventChange is a pending event body, built by one of the constructors below
// so that each change type always encodes its values the same way.
type EventChange struct {
	Type ChangeType
	Old  *string
	New  *string
}

// For binds the change to a ticket and actor.
func (c EventChange) For(ticketID, userID int64, at time.Time) TicketEvent {
	return TicketEvent{
		TicketID:   ticketID,
		UserID:     userID,
		ChangeType: c.Type,
		OldValue:   c.Old,
		NewValue:   c.New,
		CreatedAt:  at,
	}
}

type ticketCreatedValue struct {
	Subject string       `json:"subject"`
	Status  TicketStatus `json:"status"`
}

// TicketCreated records the initial subject and status as JSON.
func TicketCreated(subject string, status TicketStatus) EventChange {
	raw, _ := json.Marshal(ticketCreatedValue{Subject: subject, Status: status})
	return EventChange{Type: ChangeTicketCreated, New: strPtr(string(raw))}
}

// StatusChanged records a status transition.
func StatusChanged(from, to TicketStatus) EventChange {
	return EventChange{Type: ChangeStatusChanged, Old: strPtr(string(from)), New: strPtr(string(to))}
}

// AssigneeChanged records a reassignment; nil means unassigned.
func AssigneeChanged(from, to *int64) EventChange {
	return EventChange{Type: ChangeAssigneeChanged, Old: idString(from), New: idString(to)}
}

// PriorityChanged records a priority change.
func PriorityChanged(from, to int64) EventChange {
	return EventChange{Type: ChangePriorityChanged, Old: idString(&from), New: idString(&to)}
}

// CommentAdded stores a short excerpt of the comment. The comment row is
// authoritative for the content.
func CommentAdded(content string) EventChange {
	runes := []rune(content)
	if len(runes) > commentPreviewRunes {
		runes = runes[:commentPreviewRunes]
	}
	return EventChange{Type: ChangeCommentAdded, New: strPtr("Comment: " + string(runes) + "...")}
}

// AttachmentAdded records the stored URL of a new attachment.
func AttachmentAdded(url string) EventChange {
	return EventChange{Type: ChangeAttachmentAdded, New: strPtr(url)}
}

// AttachmentDeleted records the stored URL of a removed attachment.
func AttachmentDeleted(url string) EventChange {
	return EventChange{Type: ChangeAttachmentDeleted, Old: strPtr(url)}
}

func strPtr(s string) *string { return &s }

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	return strPtr(strconv.FormatInt(*id, 10))
}
