package conversation

import (
	"errors"
	"fmt"

	"github.com/knowx/knowx-back/internal/database"
)

// ValidationError rejects a message before anything is persisted
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NotFoundError is returned when the caller has no standing to touch the resource.
// It deliberately does not say whether the resource exists.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// StoreUnavailableError means persistence could not be reached. Callers may retry.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	storeErrors.WithLabelValues(op).Inc()
	if errors.Is(err, database.ErrStoreUnavailable) {
		return &StoreUnavailableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
