package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityRepository manages priority persistence.
type PriorityRepository interface {
	List(ctx context.Context) ([]domain.Priority, error)
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	Create(ctx context.Context, priority *domain.Priority) error
	Update(ctx context.Context, priority *domain.Priority) error
	Delete(ctx context.Context, id int64) error
}

type priorityRepository struct {
	db DBTX
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(db DBTX) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `SELECT id, name, created_at FROM ticket_priorities ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(&priority.ID, &priority.Name, &priority.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	const query = `SELECT id, name, created_at FROM ticket_priorities WHERE id=$1`
	var priority domain.Priority
	if err := r.db.QueryRow(ctx, query, id).Scan(&priority.ID, &priority.Name, &priority.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &priority, nil
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	const query = `
        INSERT INTO ticket_priorities (name, created_at)
        VALUES ($1,$2)
        RETURNING id`
	return mapError(r.db.QueryRow(ctx, query, priority.Name, priority.CreatedAt).Scan(&priority.ID))
}

func (r *priorityRepository) Update(ctx context.Context, priority *domain.Priority) error {
	cmd, err := r.db.Exec(ctx, `UPDATE ticket_priorities SET name=$1 WHERE id=$2`, priority.Name, priority.ID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete fails with ErrInUse while tickets still reference the priority.
func (r *priorityRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM ticket_priorities WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
