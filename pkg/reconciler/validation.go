package reconciler

import (
	"context"
	"fmt"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
)

// ValidationResult represents the result of validating a run input.
type ValidationResult struct {
	Valid    bool
	Errors   []diagnostics.Diagnostic
	Warnings []diagnostics.Diagnostic
	Stats    ResultStatistics
}

// IsValid returns true if validation passed.
func (v *ValidationResult) IsValid() bool {
	return v.Valid && len(v.Errors) == 0
}

// HasWarnings returns true if there are warnings.
func (v *ValidationResult) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// String returns a string representation of the validation result.
func (v *ValidationResult) String() string {
	if v.IsValid() {
		if v.HasWarnings() {
			return fmt.Sprintf("Validation passed with %d warnings", len(v.Warnings))
		}
		return "Validation passed"
	}
	return fmt.Sprintf("Validation failed with %d errors", len(v.Errors))
}

// Validate resolves the input without merging it. Diagnostics that stand
// for bad input (dangling references, malformed rows or members) are
// errors; resolved conflicts are warnings.
func (r *reconciler) Validate(ctx context.Context, in *Input) (*ValidationResult, error) {
	result, err := r.Cluster(ctx, in)
	if err != nil {
		return nil, err
	}

	v := &ValidationResult{Valid: true, Stats: result.Metadata.Stats}
	for _, d := range result.Diagnostics {
		if d.Err() != nil {
			v.Errors = append(v.Errors, d)
			continue
		}
		v.Warnings = append(v.Warnings, d)
	}
	v.Valid = len(v.Errors) == 0
	return v, nil
}
