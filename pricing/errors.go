package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidVariation   = errors.New("invalid variation")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

// MaxExtraQuantity bounds ExtraQuantity of a single selection.
const MaxExtraQuantity = 1000

// SelectionError points at the offending selection.
type SelectionError struct {
	ComplementID string
	Reason       string
	Err          error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%v: complement %q: %s", e.Err, e.ComplementID, e.Reason)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

func invalidSelection(id, reason string) error {
	return &SelectionError{ComplementID: id, Reason: reason, Err: ErrInvalidSelection}
}
