package domain

import "time"

// Comment is a message on a ticket thread. Internal comments are agent notes
// hidden from requesters; customers never author them.
type Comment struct {
	ID         int64
	TicketID   int64
	Content    string
	IsInternal bool
	AuthorID   int64
	Author     *UserRef
	CreatedAt  time.Time
}
