package domain

import "time"

// Priority is an admin-managed ticket urgency level.
type Priority struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
