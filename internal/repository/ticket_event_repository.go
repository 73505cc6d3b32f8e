package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketEventRepository stores the append-only audit trail.
type TicketEventRepository interface {
	Create(ctx context.Context, event *domain.TicketEvent) error
	CreateMany(ctx context.Context, events []domain.TicketEvent) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketEvent, error)
}

type ticketEventRepository struct {
	db DBTX
}

// NewTicketEventRepository builds repository.
func NewTicketEventRepository(db DBTX) TicketEventRepository {
	return &ticketEventRepository{db: db}
}

const insertTicketEvent = `
        INSERT INTO ticket_events (ticket_id, user_id, change_type, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`

func (r *ticketEventRepository) Create(ctx context.Context, event *domain.TicketEvent) error {
	err := r.db.QueryRow(ctx, insertTicketEvent,
		event.TicketID,
		event.UserID,
		event.ChangeType,
		event.OldValue,
		event.NewValue,
		event.CreatedAt,
	).Scan(&event.ID)
	return mapError(err)
}

// CreateMany inserts events in order and fills their IDs.
func (r *ticketEventRepository) CreateMany(ctx context.Context, events []domain.TicketEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range events {
		ev := &events[i]
		batch.Queue(insertTicketEvent,
			ev.TicketID, ev.UserID, ev.ChangeType, ev.OldValue, ev.NewValue, ev.CreatedAt,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&ev.ID)
		})
	}
	return mapError(r.db.SendBatch(ctx, batch).Close())
}

// ListByTicket returns events newest first with the acting user.
func (r *ticketEventRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketEvent, error) {
	const query = `
        SELECT e.id, e.ticket_id, e.user_id, e.change_type, e.old_value, e.new_value, e.created_at,
               u.first_name, u.last_name, u.email, u.role
        FROM ticket_events e JOIN users u ON u.id = e.user_id
        WHERE e.ticket_id=$1 ORDER BY e.created_at DESC, e.id DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.TicketEvent
	for rows.Next() {
		var (
			event domain.TicketEvent
			user  domain.UserRef
		)
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.UserID,
			&event.ChangeType,
			&event.OldValue,
			&event.NewValue,
			&event.CreatedAt,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Role,
		); err != nil {
			return nil, err
		}
		user.ID = event.UserID
		event.User = &user
		result = append(result, event)
	}
	return result, rows.Err()
}
