package catalog

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by read operations before any refresh has
// completed. Callers should run Initialize and retry.
var ErrNotInitialized = errors.New("exercise cache not initialized")

// InitializationError reports a failed catalog refresh. The previously
// committed snapshot, if any, is left untouched, so callers holding stale
// data remain usable after a failed refresh attempt.
type InitializationError struct {
	Page int
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initializing exercise cache: fetching page %d: %v", e.Page, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}
