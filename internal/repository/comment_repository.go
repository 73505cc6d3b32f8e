package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, content, is_internal, author_id, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		comment.TicketID,
		comment.Content,
		comment.IsInternal,
		comment.AuthorID,
		comment.CreatedAt,
	).Scan(&comment.ID)
	return mapError(err)
}

// ListByTicket returns comments oldest first with their authors.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.content, c.is_internal, c.author_id, c.created_at,
               u.first_name, u.last_name, u.email, u.role
        FROM comments c JOIN users u ON u.id = c.author_id
        WHERE c.ticket_id=$1 ORDER BY c.created_at ASC, c.id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var (
			comment domain.Comment
			author  domain.UserRef
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.Content,
			&comment.IsInternal,
			&comment.AuthorID,
			&comment.CreatedAt,
			&author.FirstName,
			&author.LastName,
			&author.Email,
			&author.Role,
		); err != nil {
			return nil, err
		}
		author.ID = comment.AuthorID
		comment.Author = &author
		result = append(result, comment)
	}
	return result, rows.Err()
}
