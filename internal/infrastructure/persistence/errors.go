package persistence

import (
	"errors"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// findError maps a lookup failure: a missing row becomes a not-found error naming the
// resource, anything else a store error
func findError(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return storeError(op, err)
}

// storeError wraps a driver failure, leaving domain errors untouched.
// A unique constraint violation becomes shared.ErrDuplicateKey.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewConflictError(shared.ErrDuplicateKey.Code, shared.ErrDuplicateKey.Message, err)
	}
	return shared.NewStoreError(op, err)
}
