package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject        string   `json:"subject" validate:"required,max=255"`
	Description    string   `json:"description" validate:"max=10000"`
	RequesterEmail string   `json:"requester_email" validate:"required,email,max=255"`
	RequesterName  string   `json:"requester_name" validate:"required,max=255"`
	PriorityID     int64    `json:"priority_id" validate:"required,gt=0"`
	AssigneeID     *int64   `json:"assignee_id" validate:"omitempty,gt=0"`
	TagIDs         []int64  `json:"tag_ids" validate:"omitempty,dive,gt=0"`
	ImageURLs      []string `json:"image_urls" validate:"omitempty,max=10,dive,url"`
}

// UpdateTicketRequest is a partial update; absent fields are left unchanged.
type UpdateTicketRequest struct {
	Subject        *string              `json:"subject" validate:"omitempty,max=255"`
	Description    *string              `json:"description" validate:"omitempty,max=10000"`
	RequesterEmail *string              `json:"requester_email" validate:"omitempty,email,max=255"`
	RequesterName  *string              `json:"requester_name" validate:"omitempty,max=255"`
	Status         *domain.TicketStatus `json:"status" validate:"omitempty,oneof=new open resolved closed"`
	PriorityID     *int64               `json:"priority_id" validate:"omitempty,gt=0"`
	AssigneeID     OptionalID           `json:"assignee_id"`
	TagIDs         *[]int64             `json:"tag_ids" validate:"omitempty,dive,gt=0"`
}

// OptionalID distinguishes an absent id from an explicit null.
type OptionalID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON records that the field was present, with null meaning none.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required,max=10000"`
	IsInternal bool   `json:"is_internal"`
}

// UserRefResponse is the public projection of a user.
type UserRefResponse struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role,omitempty"`
}

// TicketResponse is a ticket with its directly referenced entities.
type TicketResponse struct {
	ID             int64               `json:"id"`
	TicketCode     string              `json:"ticket_code"`
	Subject        string              `json:"subject"`
	Description    string              `json:"description"`
	RequesterEmail string              `json:"requester_email"`
	RequesterName  string              `json:"requester_name"`
	Status         domain.TicketStatus `json:"status"`
	PriorityID     int64               `json:"priority_id"`
	Priority       PriorityResponse    `json:"priority"`
	AssigneeID     *int64              `json:"assignee_id"`
	Assignee       *UserRefResponse    `json:"assignee"`
	CreatedByID    int64               `json:"created_by_id"`
	Creator        *UserRefResponse    `json:"creator"`
	Tags           []TagResponse       `json:"tags"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	ResolvedAt     *time.Time          `json:"resolved_at"`
	ClosedAt       *time.Time          `json:"closed_at"`
}

// TicketSummaryResponse is a list row.
type TicketSummaryResponse struct {
	TicketResponse
	CommentCount    int `json:"comment_count"`
	AttachmentCount int `json:"attachment_count"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketResponse
	Comments     []CommentResponse     `json:"comments"`
	Attachments  []AttachmentResponse  `json:"attachments"`
	TicketEvents []TicketEventResponse `json:"ticket_events"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Tickets    []TicketSummaryResponse `json:"tickets"`
	Pagination PaginationResponse      `json:"pagination"`
}

// CommentResponse represents a comment on a ticket.
type CommentResponse struct {
	ID         int64            `json:"id"`
	TicketID   int64            `json:"ticket_id"`
	Content    string           `json:"content"`
	IsInternal bool             `json:"is_internal"`
	AuthorID   int64            `json:"author_id"`
	Author     *UserRefResponse `json:"author"`
	CreatedAt  time.Time        `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID               int64            `json:"id"`
	TicketID         int64            `json:"ticket_id"`
	OriginalFilename string           `json:"original_filename"`
	StoredFilename   string           `json:"stored_filename"`
	MimeType         string           `json:"mime_type"`
	Size             int64            `json:"size"`
	UploadedByID     int64            `json:"uploaded_by_id"`
	UploadedBy       *UserRefResponse `json:"uploaded_by"`
	UploadedAt       time.Time        `json:"uploaded_at"`
}

// TicketEventResponse is one audit trail entry.
type TicketEventResponse struct {
	ID         int64             `json:"id"`
	TicketID   int64             `json:"ticket_id"`
	UserID     int64             `json:"user_id"`
	User       *UserRefResponse  `json:"user"`
	ChangeType domain.ChangeType `json:"change_type"`
	OldValue   *string           `json:"old_value"`
	NewValue   *string           `json:"new_value"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TicketStatsResponse aggregates ticket counts.
type TicketStatsResponse struct {
	Total      int                         `json:"total"`
	ByStatus   map[domain.TicketStatus]int `json:"by_status"`
	ByPriority map[int64]int               `json:"by_priority"`
	Recent     map[domain.TicketStatus]int `json:"recent"`
}

// UploadedURLsResponse lists temporary upload URLs.
type UploadedURLsResponse struct {
	URLs []string `json:"urls"`
}
