package entry

import (
	"errors"
	"fmt"
)

// ErrSeriesNotFound is returned when a series does not exist or does not belong
// to the requesting user.
var ErrSeriesNotFound = errors.New("entry series not found")

// ValidationError reports a malformed command with field-level detail. It is
// always raised before any mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a request that is well-formed but cannot be applied to
// the series in its current state, e.g. a scope date outside the series range.
// No mutation is performed.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return e.Reason
}
