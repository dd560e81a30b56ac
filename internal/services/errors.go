package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/metrics"
)

// StoreError wraps an unexpected persistence failure. Handlers answer it with
// a generic 500 and log the wrapped error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// outcome maps a service result onto a metrics outcome label.
func outcome(err error) string {
	var storeError *StoreError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, authz.ErrConflict):
		return metrics.OutcomeConflict
	case errors.As(err, &storeError):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeDenied
	}
}
