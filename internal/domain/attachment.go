package domain

import "time"

// Attachment references a file stored in blob storage.
type Attachment struct {
	ID               int64
	TicketID         int64
	OriginalFilename string
	StoredFilename   string
	MimeType         string
	Size             int64
	UploadedByID     int64
	UploadedBy       *UserRef
	UploadedAt       time.Time
}
