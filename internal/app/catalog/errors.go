package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/vitrine/internal/domain/models"
)

var (
	// ErrNotFound is returned when no property has the requested id.
	ErrNotFound = errors.New("catalog: property not found")
	// ErrConflict is returned when the stored version no longer matches
	// the version a write was based on.
	ErrConflict = errors.New("catalog: version conflict")
	// ErrEmptyWorkbook is wrapped in a ParseError when a workbook has no
	// data rows.
	ErrEmptyWorkbook = errors.New("catalog: workbook has no rows")
)

// ValidationError lists the fields of a draft that failed validation.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RemoteError reports a failed store call. Local state is left at the
// last confirmed value.
type RemoteError struct {
	Op  string
	ID  string
	Err error
}

func (e *RemoteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ParseError reports an unreadable or empty workbook. Nothing was
// submitted to the store.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse workbook: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

func validationError(fields []models.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
