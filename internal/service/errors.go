package service

import (
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// storeError maps repository sentinels onto the DomainError taxonomy.
func storeError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return errorutil.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrVersionConflict):
		return errorutil.NewConcurrencyConflict(resource, details)
	case errors.Is(err, repository.ErrInvalidReference):
		return errorutil.NewReferenceNotFound("reference", details)
	case errors.Is(err, repository.ErrDuplicate):
		return errorutil.NewConflict(resource+" already exists", details)
	default:
		var domainErr *errorutil.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return errorutil.NewInternalError(err)
	}
}

// referenceError treats a missing row as a user-selectable reference that does not resolve.
func referenceError(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewReferenceNotFound(resource, details)
	}
	return storeError(err, resource, details)
}
