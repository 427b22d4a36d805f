package order

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrNotFound is returned when a toggle, edit or delete targets a record
// that does not exist (anymore).
var ErrNotFound = errors.New("order not found")

// ValidationError carries every field-level problem of one request so the
// caller can show them all at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UploadError means the payment proof was rejected or could not be stored.
// No record is written when assembly fails with it.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "upload proof: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure of the backing store. Callers may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }
