package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CatalogService manages the lookup data tickets refer to: priorities and
// tags. Anyone authenticated may read; only admins may write.
type CatalogService struct {
	store repository.Store
	now   func() time.Time
}

// NewCatalogService constructs the service.
func NewCatalogService(store repository.Store, clock func() time.Time) *CatalogService {
	if clock == nil {
		clock = time.Now
	}
	return &CatalogService{store: store, now: clock}
}

func (s *CatalogService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	priorities, err := s.store.Repos().Priorities.List(ctx)
	if err != nil {
		return nil, mapStoreError(err, "priority")
	}
	return priorities, nil
}

func (s *CatalogService) GetPriority(ctx context.Context, id int64) (*domain.Priority, error) {
	priority, err := s.store.Repos().Priorities.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "priority")
	}
	return priority, nil
}

func (s *CatalogService) CreatePriority(ctx context.Context, actor domain.Actor, name string) (*domain.Priority, error) {
	name, err := catalogName(actor, name)
	if err != nil {
		return nil, err
	}
	priority := domain.Priority{Name: name, CreatedAt: s.now()}
	if err := s.store.Repos().Priorities.Create(ctx, &priority); err != nil {
		return nil, mapStoreError(err, "priority")
	}
	return &priority, nil
}

func (s *CatalogService) UpdatePriority(ctx context.Context, actor domain.Actor, id int64, name string) (*domain.Priority, error) {
	name, err := catalogName(actor, name)
	if err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	priority, err := repos.Priorities.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "priority")
	}
	priority.Name = name
	if err := repos.Priorities.Update(ctx, priority); err != nil {
		return nil, mapStoreError(err, "priority")
	}
	return priority, nil
}

// DeletePriority fails with a conflict while tickets still use the priority.
func (s *CatalogService) DeletePriority(ctx context.Context, actor domain.Actor, id int64) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins can manage priorities")
	}
	if err := s.store.Repos().Priorities.Delete(ctx, id); err != nil {
		return mapStoreError(err, "priority")
	}
	return nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.Repos().Tags.List(ctx)
	if err != nil {
		return nil, mapStoreError(err, "tag")
	}
	return tags, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, actor domain.Actor, name string) (*domain.Tag, error) {
	name, err := catalogName(actor, name)
	if err != nil {
		return nil, err
	}
	tag := domain.Tag{Name: name, CreatedAt: s.now()}
	if err := s.store.Repos().Tags.Create(ctx, &tag); err != nil {
		return nil, mapStoreError(err, "tag")
	}
	return &tag, nil
}

func catalogName(actor domain.Actor, name string) (string, error) {
	if actor.Role != domain.RoleAdmin {
		return "", apperrors.NewForbidden("only admins can manage the catalog")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	return name, nil
}
