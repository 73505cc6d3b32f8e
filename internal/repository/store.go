package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateTicketCode is returned when a generated ticket code collides.
	ErrDuplicateTicketCode = errors.New("repository: duplicate ticket code")
	// ErrDuplicateName is returned when a unique name is already taken.
	ErrDuplicateName = errors.New("repository: duplicate name")
	// ErrInUse is returned when a row is still referenced elsewhere.
	ErrInUse = errors.New("repository: row in use")
)

// Repositories bundles all repositories bound to the same connection or transaction.
type Repositories struct {
	Tickets     TicketRepository
	Comments    CommentRepository
	Attachments AttachmentRepository
	Events      TicketEventRepository
	Tags        TagRepository
	Priorities  PriorityRepository
	Users       UserRepository
}

// Store gives access to repositories and to atomic units of work.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn inside one transaction. Every write done through the
	// given repositories commits together or, if fn returns an error, not at all.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type postgresStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool, repos: newRepositories(pool)}
}

func newRepositories(db DBTX) Repositories {
	return Repositories{
		Tickets:     NewTicketRepository(db),
		Comments:    NewCommentRepository(db),
		Attachments: NewAttachmentRepository(db),
		Events:      NewTicketEventRepository(db),
		Tags:        NewTagRepository(db),
		Priorities:  NewPriorityRepository(db),
		Users:       NewUserRepository(db),
	}
}

func (s *postgresStore) Repos() Repositories {
	return s.repos
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	ticketCodeConstraint = "tickets_ticket_code_key"
)

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == ticketCodeConstraint {
				return ErrDuplicateTicketCode
			}
			return ErrDuplicateName
		case pgForeignKeyViolation:
			return ErrInUse
		}
	}
	return err
}

// SortField names a sortable ticket column.
type SortField string

const (
	SortCreatedAt  SortField = "created_at"
	SortUpdatedAt  SortField = "updated_at"
	SortSubject    SortField = "subject"
	SortStatus     SortField = "status"
	SortPriorityID SortField = "priority_id"
	SortTicketCode SortField = "ticket_code"
)

// Valid reports whether f is an allowed sort column.
func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortSubject, SortStatus, SortPriorityID, SortTicketCode:
		return true
	}
	return false
}

// TicketFilter captures ticket listing parameters. Nil fields do not filter.
type TicketFilter struct {
	Status      *domain.TicketStatus
	PriorityID  *int64
	AssigneeID  *int64
	CreatedByID *int64
	Search      string
	CreatedFrom *time.Time
	SortBy      SortField
	SortAsc     bool
	Limit       int
	Offset      int
}
