package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// List returns summaries without tags; callers attach tags separately.
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketSummary, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
	CountByStatus(ctx context.Context, filter TicketFilter) (map[domain.TicketStatus]int, error)
	CountByPriority(ctx context.Context, filter TicketFilter) (map[int64]int, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `t.id, t.ticket_code, t.subject, t.description, t.requester_email, t.requester_name,
               t.status, t.priority_id, t.assignee_id, t.created_by_id, t.created_at, t.updated_at,
               t.resolved_at, t.closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_code, subject, description, requester_email, requester_name, status,
            priority_id, assignee_id, created_by_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		ticket.TicketCode,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterEmail,
		ticket.RequesterName,
		ticket.Status,
		ticket.PriorityID,
		ticket.AssigneeID,
		ticket.CreatedByID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)
	return mapError(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, requester_email=$3, requester_name=$4, status=$5,
            priority_id=$6, assignee_id=$7, resolved_at=$8, closed_at=$9, updated_at=$10
        WHERE id=$11`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterEmail,
		ticket.RequesterName,
		ticket.Status,
		ticket.PriorityID,
		ticket.AssigneeID,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, mapError(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketSummary, error) {
	where, args := buildTicketWhere(filter)
	query := fmt.Sprintf(`
        SELECT %s,
               p.name,
               a.first_name, a.last_name, a.email, a.role,
               c.first_name, c.last_name, c.email, c.role,
               (SELECT COUNT(*) FROM comments cm WHERE cm.ticket_id = t.id),
               (SELECT COUNT(*) FROM attachments at WHERE at.ticket_id = t.id)
        FROM tickets t
        JOIN ticket_priorities p ON p.id = t.priority_id
        LEFT JOIN users a ON a.id = t.assignee_id
        JOIN users c ON c.id = t.created_by_id
        WHERE %s
        ORDER BY %s
        LIMIT %d OFFSET %d`,
		ticketColumns, where, ticketOrderBy(filter), pageLimit(filter.Limit), pageOffset(filter.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.TicketSummary
	for rows.Next() {
		var (
			summary                      domain.TicketSummary
			aFirst, aLast, aEmail, aRole *string
			cFirst, cLast, cEmail, cRole string
		)
		t := &summary.Ticket
		if err := rows.Scan(
			&t.ID, &t.TicketCode, &t.Subject, &t.Description, &t.RequesterEmail, &t.RequesterName,
			&t.Status, &t.PriorityID, &t.AssigneeID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt,
			&t.ResolvedAt, &t.ClosedAt,
			&summary.Priority.Name,
			&aFirst, &aLast, &aEmail, &aRole,
			&cFirst, &cLast, &cEmail, &cRole,
			&summary.CommentCount,
			&summary.AttachmentCount,
		); err != nil {
			return nil, err
		}
		summary.Priority.ID = t.PriorityID
		if t.AssigneeID != nil && aEmail != nil {
			summary.Assignee = &domain.UserRef{
				ID:        *t.AssigneeID,
				FirstName: deref(aFirst),
				LastName:  deref(aLast),
				Email:     *aEmail,
				Role:      domain.Role(deref(aRole)),
			}
		}
		summary.Creator = &domain.UserRef{
			ID:        t.CreatedByID,
			FirstName: cFirst,
			LastName:  cLast,
			Email:     cEmail,
			Role:      domain.Role(cRole),
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	where, args := buildTicketWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets t WHERE `+where, args...).Scan(&count)
	return count, mapError(err)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, filter TicketFilter) (map[domain.TicketStatus]int, error) {
	where, args := buildTicketWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT t.status, COUNT(*) FROM tickets t WHERE `+where+` GROUP BY t.status`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := map[domain.TicketStatus]int{}
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByPriority(ctx context.Context, filter TicketFilter) (map[int64]int, error) {
	where, args := buildTicketWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT t.priority_id, COUNT(*) FROM tickets t WHERE `+where+` GROUP BY t.priority_id`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := map[int64]int{}
	for rows.Next() {
		var priorityID int64
		var count int
		if err := rows.Scan(&priorityID, &count); err != nil {
			return nil, err
		}
		result[priorityID] = count
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.Subject,
		&ticket.Description,
		&ticket.RequesterEmail,
		&ticket.RequesterName,
		&ticket.Status,
		&ticket.PriorityID,
		&ticket.AssigneeID,
		&ticket.CreatedByID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	)
}

// buildTicketWhere renders filter as a WHERE clause over alias t with
// positional arguments.
func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("t.priority_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("t.created_by_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(t.subject ILIKE %[1]s OR t.description ILIKE %[1]s OR t.ticket_code ILIKE %[1]s OR t.requester_name ILIKE %[1]s OR t.requester_email ILIKE %[1]s)", p))
	}
	return strings.Join(clauses, " AND "), args
}

func ticketOrderBy(filter TicketFilter) string {
	column := SortCreatedAt
	if filter.SortBy.Valid() {
		column = filter.SortBy
	}
	dir := "DESC"
	if filter.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("t.%s %s, t.id %s", column, dir, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}

func pageOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
