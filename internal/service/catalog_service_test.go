package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCatalogPriorities(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.clock.Now)
	ctx := context.Background()
	admin := f.admin.Actor()

	_, err := svc.CreatePriority(ctx, f.agent.Actor(), "Urgent")
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.CreatePriority(ctx, admin, "   ")
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.CreatePriority(ctx, admin, "Medium")
	requireCode(t, err, apperrors.CodeConflict)

	urgent, err := svc.CreatePriority(ctx, admin, "  Urgent ")
	require.NoError(t, err)
	assert.Equal(t, "Urgent", urgent.Name)

	renamed, err := svc.UpdatePriority(ctx, admin, urgent.ID, "Critical")
	require.NoError(t, err)
	assert.Equal(t, "Critical", renamed.Name)

	_, err = svc.UpdatePriority(ctx, admin, 123456, "Ghost")
	requireCode(t, err, apperrors.CodeNotFound)

	list, err := svc.ListPriorities(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	f.createTicket(t, admin)
	err = svc.DeletePriority(ctx, admin, f.medium.ID)
	requireCode(t, err, apperrors.CodeConflict)

	require.NoError(t, svc.DeletePriority(ctx, admin, urgent.ID))
	_, err = svc.GetPriority(ctx, urgent.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestCatalogTags(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.clock.Now)
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, f.customer.Actor(), "billing")
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.CreateTag(ctx, f.admin.Actor(), "bug")
	requireCode(t, err, apperrors.CodeConflict)

	tag, err := svc.CreateTag(ctx, f.admin.Actor(), "billing")
	require.NoError(t, err)
	assert.NotZero(t, tag.ID)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"billing", "bug", "vpn"}, names)
}
