package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	Delete(ctx context.Context, id int64) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	db DBTX
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(db DBTX) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, original_filename, stored_filename, mime_type, size, uploaded_by_id, uploaded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.OriginalFilename,
		attachment.StoredFilename,
		attachment.MimeType,
		attachment.Size,
		attachment.UploadedByID,
		attachment.UploadedAt,
	).Scan(&attachment.ID)
	return mapError(err)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, original_filename, stored_filename, mime_type, size, uploaded_by_id, uploaded_at
        FROM attachments WHERE id=$1`
	var attachment domain.Attachment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.OriginalFilename,
		&attachment.StoredFilename,
		&attachment.MimeType,
		&attachment.Size,
		&attachment.UploadedByID,
		&attachment.UploadedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &attachment, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM attachments WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByTicket returns attachments newest first with their uploaders.
func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.original_filename, a.stored_filename, a.mime_type, a.size,
               a.uploaded_by_id, a.uploaded_at, u.first_name, u.last_name, u.email, u.role
        FROM attachments a JOIN users u ON u.id = a.uploaded_by_id
        WHERE a.ticket_id=$1 ORDER BY a.uploaded_at DESC, a.id DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var (
			attachment domain.Attachment
			uploader   domain.UserRef
		)
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.OriginalFilename,
			&attachment.StoredFilename,
			&attachment.MimeType,
			&attachment.Size,
			&attachment.UploadedByID,
			&attachment.UploadedAt,
			&uploader.FirstName,
			&uploader.LastName,
			&uploader.Email,
			&uploader.Role,
		); err != nil {
			return nil, err
		}
		uploader.ID = attachment.UploadedByID
		attachment.UploadedBy = &uploader
		result = append(result, attachment)
	}
	return result, rows.Err()
}
