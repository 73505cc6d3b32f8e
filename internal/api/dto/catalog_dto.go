package dto

import "time"

// NameRequest creates or renames a priority or tag.
type NameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// PriorityResponse payload.
type PriorityResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TagResponse payload.
type TagResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
