package auth

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// CanRead reports whether actor may view ticket: admins always, agents when
// assigned, customers when they created it.
func CanRead(actor domain.Actor, ticket *domain.Ticket) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleAgent:
		return isAssignee(actor, ticket)
	case domain.RoleCustomer:
		return ticket.CreatedByID == actor.ID
	default:
		return false
	}
}

// CanMutate reports whether actor may change ticket fields, attachments and
// comments: admins always, agents when assigned.
func CanMutate(actor domain.Actor, ticket *domain.Ticket) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleAgent:
		return isAssignee(actor, ticket)
	default:
		return false
	}
}

// CanReassign reports whether actor may touch the assignee field at all.
func CanReassign(actor domain.Actor) bool {
	return actor.Role == domain.RoleAdmin
}

// CanComment combines mutate access with the rule that customers never write
// internal notes.
func CanComment(actor domain.Actor, ticket *domain.Ticket, internal bool) bool {
	if internal && actor.Role == domain.RoleCustomer {
		return false
	}
	return CanMutate(actor, ticket)
}

// CanCreate reports whether actor may open tickets.
func CanCreate(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleAgent, domain.RoleCustomer:
		return true
	default:
		return false
	}
}

// CanList reports whether actor may list tickets or read stats.
func CanList(actor domain.Actor) bool {
	return CanCreate(actor)
}

// ScopeFilter narrows filter to the tickets actor may see. It runs after
// caller-supplied filters so they cannot widen the scope.
func ScopeFilter(actor domain.Actor, filter repository.TicketFilter) repository.TicketFilter {
	id := actor.ID
	switch actor.Role {
	case domain.RoleAgent:
		filter.AssigneeID = &id
	case domain.RoleCustomer:
		filter.CreatedByID = &id
	}
	return filter
}

func isAssignee(actor domain.Actor, ticket *domain.Ticket) bool {
	return ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID
}
