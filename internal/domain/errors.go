package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by repositories when no row matches the owner-scoped lookup
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when no owner identity is available for a call
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoSession is returned when a stock-take operation runs without an open session
	ErrNoSession = errors.New("no stock-take session in progress")

	// ErrSaveInProgress is returned when a stock-take save is requested while another is running
	ErrSaveInProgress = errors.New("stock-take save already in progress")

	// ErrUnsavedChanges is returned when cancelling a modified session without confirmation
	ErrUnsavedChanges = errors.New("stock-take has unsaved changes; confirmation required")

	// ErrSessionActive is returned when a session is started while the current one is not idle
	ErrSessionActive = errors.New("stock-take session already active")
)

// ValidationError reports the first field of a user input that fails its bounds check
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// FetchError wraps a failure to read from the persistence backend
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError wraps a write rejected by the persistence backend
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ComputationError signals a projection produced a value that must never be shown or stored
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string {
	return "computation error: " + e.Reason
}

// PartialSaveError lists the holdings whose amount update failed during a stock-take save.
// Writes that succeeded are not rolled back.
type PartialSaveError struct {
	Failed map[uuid.UUID]error
}

// FailedIDs returns the failing holding ids in a stable order
func (e *PartialSaveError) FailedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func (e *PartialSaveError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		parts = append(parts, fmt.Sprintf("%s (%v)", id, e.Failed[id]))
	}
	return fmt.Sprintf("failed to update %d holding(s): %s", len(e.Failed), strings.Join(parts, ", "))
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
