package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

var (
	// ErrUnauthorized is returned when the request carries no usable identity.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the principal may not act on the resource.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a reservation would overlap another one.
	ErrConflict = errors.New("application: reservation conflict")
	// ErrInvalidAdminKey is returned when a presented admin key does not match.
	ErrInvalidAdminKey = errors.New("application: invalid admin key")
)

// ConflictError reports the stored occurrence a candidate clashes with.
type ConflictError struct {
	Existing booking.Occurrence
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: court %s on %s %s-%s is taken by %s",
		ErrConflict,
		e.Existing.CourtID,
		calendar.FormatDate(e.Existing.Date),
		e.Existing.Start, e.Existing.End,
		e.Existing.ID,
	)
}

// Unwrap lets errors.Is match ErrConflict.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records the first error reported for a field.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
