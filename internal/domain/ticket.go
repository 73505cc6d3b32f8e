package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Any status may follow
// any other; only the resolved/closed timestamps depend on the transition.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusOpen,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate root for support requests.
type Ticket struct {
	ID             int64
	TicketCode     string
	Subject        string
	Description    string
	RequesterEmail string
	RequesterName  string
	Status         TicketStatus
	PriorityID     int64
	AssigneeID     *int64
	CreatedByID    int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}

// TicketView is a ticket with its directly referenced entities resolved.
type TicketView struct {
	Ticket
	Priority Priority
	Assignee *UserRef
	Creator  *UserRef
	Tags     []Tag
}

// TicketSummary is a list row.
type TicketSummary struct {
	TicketView
	CommentCount    int
	AttachmentCount int
}

// TicketDetail is the full read model of one ticket.
type TicketDetail struct {
	TicketView
	Comments    []Comment
	Attachments []Attachment
	Events      []TicketEvent
}

// TicketStats aggregates ticket counts for dashboards.
type TicketStats struct {
	ByStatus   map[TicketStatus]int
	ByPriority map[int64]int
	Recent     map[TicketStatus]int
	Total      int
}
