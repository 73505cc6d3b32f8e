package domain

import "time"

// Tag labels tickets; a ticket holds each tag at most once.
type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
