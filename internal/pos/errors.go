package pos

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

var (
	// ErrRestitution marks a reversal whose stock could not be restored. It
	// is only ever reported as a warning; the entry is still deleted.
	ErrRestitution = errors.New("sold quantity could not be returned to stock")

	ErrCompensationFailed = errors.New("stock change could not be undone")

	ErrEntryNotFound = ledger.ErrNotFound
)

// CompensationError reports a stock change that is now out of step with the
// ledger. It matches ErrCompensationFailed and the original cause.
type CompensationError struct {
	Operation  string
	ProductID  uuid.UUID
	Delta      int
	Cause      error
	Compensate error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s: applying %+d to product %s: %v (after: %v)",
		ErrCompensationFailed, e.Delta, e.ProductID, e.Compensate, e.Cause)
}

func (e *CompensationError) Unwrap() []error {
	return []error{ErrCompensationFailed, e.Cause, e.Compensate}
}
