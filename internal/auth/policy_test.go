package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func TestTicketAccess(t *testing.T) {
	agentID := int64(2)
	ticket := &domain.Ticket{ID: 1, CreatedByID: 3, AssigneeID: &agentID}

	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}
	agent := domain.Actor{ID: 2, Role: domain.RoleAgent}
	otherAgent := domain.Actor{ID: 4, Role: domain.RoleAgent}
	owner := domain.Actor{ID: 3, Role: domain.RoleCustomer}
	stranger := domain.Actor{ID: 5, Role: domain.RoleCustomer}
	superAdmin := domain.Actor{ID: 6, Role: domain.RoleSuperAdmin}

	cases := []struct {
		name       string
		actor      domain.Actor
		read, edit bool
	}{
		{"admin", admin, true, true},
		{"assigned agent", agent, true, true},
		{"unassigned agent", otherAgent, false, false},
		{"creator customer", owner, true, false},
		{"other customer", stranger, false, false},
		{"super admin", superAdmin, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.read, CanRead(tc.actor, ticket))
			assert.Equal(t, tc.edit, CanMutate(tc.actor, ticket))
		})
	}
}

func TestAgentCannotReadUnassignedTicket(t *testing.T) {
	ticket := &domain.Ticket{CreatedByID: 2}
	assert.False(t, CanRead(domain.Actor{ID: 2, Role: domain.RoleAgent}, ticket))
}

func TestCanReassignIsAdminOnly(t *testing.T) {
	assert.True(t, CanReassign(domain.Actor{Role: domain.RoleAdmin}))
	assert.False(t, CanReassign(domain.Actor{Role: domain.RoleAgent}))
	assert.False(t, CanReassign(domain.Actor{Role: domain.RoleCustomer}))
}

func TestCanCommentForbidsCustomerInternalNotes(t *testing.T) {
	ticket := &domain.Ticket{CreatedByID: 3}
	customer := domain.Actor{ID: 3, Role: domain.RoleCustomer}
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	assert.False(t, CanComment(customer, ticket, true))
	assert.False(t, CanComment(customer, ticket, false))
	assert.True(t, CanComment(admin, ticket, true))
}

func TestScopeFilterOverridesCallerFilters(t *testing.T) {
	other := int64(99)
	filter := repository.TicketFilter{AssigneeID: &other, CreatedByID: &other}

	scoped := ScopeFilter(domain.Actor{ID: 2, Role: domain.RoleAgent}, filter)
	require.NotNil(t, scoped.AssigneeID)
	assert.Equal(t, int64(2), *scoped.AssigneeID)
	assert.Equal(t, int64(99), *scoped.CreatedByID)

	scoped = ScopeFilter(domain.Actor{ID: 3, Role: domain.RoleCustomer}, filter)
	assert.Equal(t, int64(3), *scoped.CreatedByID)

	scoped = ScopeFilter(domain.Actor{ID: 1, Role: domain.RoleAdmin}, filter)
	assert.Equal(t, int64(99), *scoped.AssigneeID)
	assert.Equal(t, int64(99), *scoped.CreatedByID)
}
