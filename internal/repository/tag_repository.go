package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TagRepository manages tags and their ticket links.
type TagRepository interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Create(ctx context.Context, tag *domain.Tag) error
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Tag, error)
	ListForTickets(ctx context.Context, ticketIDs []int64) (map[int64][]domain.Tag, error)
	AddToTicket(ctx context.Context, ticketID int64, tagIDs []int64) error
	ClearTicket(ctx context.Context, ticketID int64) error
}

type tagRepository struct {
	db DBTX
}

// NewTagRepository constructs repository.
func NewTagRepository(db DBTX) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	const query = `SELECT id, name, created_at FROM tags ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `
        INSERT INTO tags (name, created_at)
        VALUES ($1,$2)
        RETURNING id`
	return mapError(r.db.QueryRow(ctx, query, tag.Name, tag.CreatedAt).Scan(&tag.ID))
}

// GetByIDs returns the tags that exist among ids; callers compare lengths to
// detect unknown ids.
func (r *tagRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, created_at FROM tags WHERE id = ANY($1) ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

func (r *tagRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Tag, error) {
	tags, err := r.ListForTickets(ctx, []int64{ticketID})
	if err != nil {
		return nil, err
	}
	return tags[ticketID], nil
}

func (r *tagRepository) ListForTickets(ctx context.Context, ticketIDs []int64) (map[int64][]domain.Tag, error) {
	result := make(map[int64][]domain.Tag, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT tt.ticket_id, t.id, t.name, t.created_at
        FROM ticket_tags tt JOIN tags t ON t.id = tt.tag_id
        WHERE tt.ticket_id = ANY($1) ORDER BY t.name ASC`
	rows, err := r.db.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ticketID int64
			tag      domain.Tag
		)
		if err := rows.Scan(&ticketID, &tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result[ticketID] = append(result[ticketID], tag)
	}
	return result, rows.Err()
}

// AddToTicket links tags to a ticket; existing links are kept.
func (r *tagRepository) AddToTicket(ctx context.Context, ticketID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	const query = `
        INSERT INTO ticket_tags (ticket_id, tag_id)
        SELECT $1, unnest($2::bigint[])
        ON CONFLICT DO NOTHING`
	_, err := r.db.Exec(ctx, query, ticketID, tagIDs)
	return mapError(err)
}

func (r *tagRepository) ClearTicket(ctx context.Context, ticketID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM ticket_tags WHERE ticket_id=$1`, ticketID)
	return mapError(err)
}
