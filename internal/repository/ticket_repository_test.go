package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestBuildTicketWhereEmptyFilter(t *testing.T) {
	where, args := buildTicketWhere(TicketFilter{})

	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestBuildTicketWhereNumbersPlaceholdersInOrder(t *testing.T) {
	status := domain.TicketStatusOpen
	priority := int64(2)
	assignee := int64(7)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args := buildTicketWhere(TicketFilter{
		Status:      &status,
		PriorityID:  &priority,
		AssigneeID:  &assignee,
		CreatedFrom: &from,
		Search:      "printer",
	})

	assert.Equal(t,
		"1=1 AND t.status=$1 AND t.priority_id=$2 AND t.assignee_id=$3 AND t.created_at >= $4 AND "+
			"(t.subject ILIKE $5 OR t.description ILIKE $5 OR t.ticket_code ILIKE $5 OR t.requester_name ILIKE $5 OR t.requester_email ILIKE $5)",
		where)
	assert.Equal(t, []any{status, priority, assignee, from, "%printer%"}, args)
}

func TestBuildTicketWhereEscapesLikeWildcards(t *testing.T) {
	_, args := buildTicketWhere(TicketFilter{Search: `50%_off\`})

	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestBuildTicketWhereIgnoresBlankSearch(t *testing.T) {
	where, args := buildTicketWhere(TicketFilter{Search: "   "})

	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestTicketOrderBy(t *testing.T) {
	cases := []struct {
		filter TicketFilter
		want   string
	}{
		{TicketFilter{}, "t.created_at DESC, t.id DESC"},
		{TicketFilter{SortBy: SortSubject, SortAsc: true}, "t.subject ASC, t.id ASC"},
		{TicketFilter{SortBy: SortField("password_hash; DROP TABLE tickets")}, "t.created_at DESC, t.id DESC"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ticketOrderBy(tc.filter))
	}
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	code := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: ticketCodeConstraint}
	assert.ErrorIs(t, mapError(code), ErrDuplicateTicketCode)

	name := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "tags_name_key"}
	assert.ErrorIs(t, mapError(name), ErrDuplicateName)

	fk := &pgconn.PgError{Code: pgForeignKeyViolation}
	assert.ErrorIs(t, mapError(fk), ErrInUse)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}

func TestPaging(t *testing.T) {
	assert.Equal(t, 10, pageLimit(0))
	assert.Equal(t, 25, pageLimit(25))
	assert.Equal(t, 0, pageOffset(-5))
	assert.Equal(t, 40, pageOffset(40))
}
