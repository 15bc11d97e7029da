package reconciler

import (
	"fmt"
	"runtime"

	"github.com/agentstation/ontomerge/pkg/authority"
	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// Options configures a reconciler.
type options struct {
	rule        matchgraph.Rule
	cardinality candidates.Cardinality
	authorities authority.Authority
	workers     int
	exclude     []string
	builtins    bool
	passThrough bool
	tracking    bool
	baseline    *schema.Document // Previous merge output for comparison
	runID       string
}

func defaultOptions() *options {
	return &options{
		rule:        matchgraph.DefaultRule(),
		cardinality: candidates.CardinalityNone,
		authorities: authority.New(),
		workers:     runtime.GOMAXPROCS(0),
		passThrough: true,
		tracking:    true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if err := options.rule.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithRule sets the admission rule of the match graph.
func WithRule(rule matchgraph.Rule) Option {
	return func(o *options) error {
		o.rule = rule
		return nil
	}
}

// WithThreshold sets the score threshold, keeping the admission mode.
func WithThreshold(threshold float64) Option {
	return func(o *options) error {
		o.rule.Threshold = threshold
		return nil
	}
}

// WithAdmission sets the admission mode, keeping the threshold.
func WithAdmission(mode matchgraph.Admission) Option {
	return func(o *options) error {
		o.rule.Mode = mode
		return nil
	}
}

// WithCardinality sets the filter applied to admitted candidates.
func WithCardinality(c candidates.Cardinality) Option {
	return func(o *options) error {
		if _, err := candidates.ParseCardinality(string(c)); err != nil {
			return err
		}
		o.cardinality = c
		return nil
	}
}

// WithAuthorities sets the kind priority and field authorities.
func WithAuthorities(authorities authority.Authority) Option {
	return func(o *options) error {
		if authorities == nil {
			return &errors.ValidationError{
				Field:   "authorities",
				Message: "cannot be nil",
			}
		}
		o.authorities = authorities
		return nil
	}
}

// WithWorkers bounds the number of classes merged concurrently.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxWorkers {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: fmt.Sprintf("must be between 1 and %d", constants.MaxWorkers),
			}
		}
		o.workers = n
		return nil
	}
}

// WithExclude skips catalog entities whose IRI matches a pattern.
func WithExclude(patterns ...string) Option {
	return func(o *options) error {
		o.exclude = append(o.exclude, patterns...)
		return nil
	}
}

// WithBuiltins keeps OWL/RDF/RDFS/XSD entities found in catalog files.
func WithBuiltins(keep bool) Option {
	return func(o *options) error {
		o.builtins = keep
		return nil
	}
}

// WithPassThrough controls whether unmatched entities are carried into the
// merged schema. Enabled by default.
func WithPassThrough(enabled bool) Option {
	return func(o *options) error {
		o.passThrough = enabled
		return nil
	}
}

// WithProvenance enables the per-entity provenance ledger.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}

// WithBaseline sets a previous merged schema to compare against for change detection.
func WithBaseline(doc *schema.Document) Option {
	return func(o *options) error {
		o.baseline = doc
		return nil
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(o *options) error {
		o.runID = id
		return nil
	}
}
