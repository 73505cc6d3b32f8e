package service

import (
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// mapStoreError translates repository errors into domain errors for resource.
func mapStoreError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicateName):
		return apperrors.NewConflict(resource+" name already exists", nil)
	case errors.Is(err, repository.ErrInUse):
		return apperrors.NewConflict(resource+" is still in use", nil)
	case errors.Is(err, repository.ErrDuplicateTicketCode):
		return apperrors.NewConflict("ticket code already exists", nil)
	default:
		return apperrors.MapError(err)
	}
}
