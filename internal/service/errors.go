package service

import (
	"context"
	"errors"

	domainerrors "github.com/mybglist/mybglist-server/internal/errors"
	"github.com/mybglist/mybglist-server/internal/store"
)

// storageError converts a store failure into a domain error. Known store
// conditions keep their code; anything else is an internal error whose cause
// is logged by the HTTP layer and never shown to the client.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeErr.AppError()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "storage failure")
}
