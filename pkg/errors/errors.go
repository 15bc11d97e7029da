// Package errors defines the error taxonomy of a merge run. Fatal problems
// (malformed catalogs, unreadable candidate streams, bad configuration) are
// returned as these types; recoverable problems become diagnostics instead.
//
// Every type matches one of the sentinels below through errors.Is, so
// callers can branch on the category without knowing the concrete type.
package errors

import (
	"errors"
	"fmt"
)

// New and As re-export the standard library so callers need one import.
var (
	New = errors.New
	As  = errors.As
)

// Categories.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrReferential  = errors.New("dangling reference")
	ErrCanceled     = errors.New("operation canceled")
)

// IsNotFound reports whether err refers to something missing, including
// dangling references.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err was caused by bad input: validation,
// parse and configuration errors all qualify.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsReferential reports whether err is a reference to an unknown IRI.
func IsReferential(err error) bool { return errors.Is(err, ErrReferential) }

// IsCanceled reports whether err stems from a cancelled run.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// WrapCanceled marks a context error as a cancellation of operation. Both
// ErrCanceled and the original context error stay reachable.
func WrapCanceled(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrCanceled, err)
}
