package errors_test

import (
	"errors"
	"fmt"

	pkgerrors "github.com/agentstation/ontomerge/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &pkgerrors.NotFoundError{
		Resource: "entity",
		ID:       "http://example.org/osn#Person",
	}

	if pkgerrors.IsNotFound(err) {
		fmt.Println("Entity not found")
	}

	// Output: Entity not found
}

// Example_referentialError shows how dangling references are recognized.
func Example_referentialError() {
	err := fmt.Errorf("admit candidate: %w",
		pkgerrors.NewReferentialError("candidate", "", "http://example.org/mp#Ghost"))

	var ref *pkgerrors.ReferentialError
	if errors.As(err, &ref) {
		fmt.Println("missing:", ref.Missing[0])
	}

	// Output: missing: http://example.org/mp#Ghost
}

// Example_validationError shows validation error usage.
func Example_validationError() {
	err := pkgerrors.NewValidationError("threshold", 1.5, "must be within [0,1]")
	fmt.Println(err)

	// Output: validation failed for field threshold: must be within [0,1]
}
