package matchgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/errors"
)

// Admission selects which signal of a candidate decides whether it becomes
// an edge.
type Admission string

// Admission modes.
const (
	// AdmitScore admits candidates whose score reaches the threshold.
	AdmitScore Admission = "score"
	// AdmitLabel admits candidates labeled as accepted.
	AdmitLabel Admission = "label"
	// AdmitBoth requires an accepted label and a score reaching the threshold.
	AdmitBoth Admission = "both"
	// AdmitEither admits candidates passing either test.
	AdmitEither Admission = "either"
)

// ParseAdmission parses an admission mode name.
func ParseAdmission(s string) (Admission, error) {
	switch a := Admission(strings.ToLower(strings.TrimSpace(s))); a {
	case AdmitScore, AdmitLabel, AdmitBoth, AdmitEither:
		return a, nil
	case "":
		return AdmitBoth, nil
	default:
		return "", &errors.ValidationError{Field: "admission", Value: s, Message: "must be one of score, label, both, either"}
	}
}

// Rule is an admission mode plus the score threshold it uses.
type Rule struct {
	Mode      Admission
	Threshold float64
}

// DefaultRule returns the admission rule used when none is configured.
func DefaultRule() Rule {
	return Rule{Mode: AdmitBoth, Threshold: constants.DefaultThreshold}
}

// Validate checks the rule.
func (r Rule) Validate() error {
	if _, err := ParseAdmission(string(r.Mode)); err != nil || r.Mode == "" {
		return &errors.ValidationError{Field: "admission", Value: r.Mode, Message: "unknown admission mode"}
	}
	if math.IsNaN(r.Threshold) || math.IsInf(r.Threshold, 0) {
		return &errors.ValidationError{Field: "threshold", Value: r.Threshold, Message: "must be a finite number"}
	}
	return nil
}

// Admit reports whether c passes the rule. A missing score counts as
// constants.DefaultScore.
func (r Rule) Admit(c Candidate) bool {
	scoreOK := c.Weight() >= r.Threshold
	switch r.Mode {
	case AdmitScore:
		return scoreOK
	case AdmitLabel:
		return c.Accepted
	case AdmitBoth:
		return scoreOK && c.Accepted
	case AdmitEither:
		return scoreOK || c.Accepted
	default:
		return false
	}
}

// String renders the rule for logs.
func (r Rule) String() string {
	return fmt.Sprintf("%s@%g", r.Mode, r.Threshold)
}
