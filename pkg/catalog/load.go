package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/ontomerge/internal/matcher"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/vocabulary"
)

// options configures catalog loading.
type options struct {
	exclude      matcher.Set
	keepBuiltins bool
}

// Option is a function that configures catalog loading.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithExclude skips entities whose IRI matches any of the glob or regex
// patterns.
func WithExclude(patterns ...string) Option {
	return func(o *options) error {
		set, err := matcher.NewSet(matcher.Auto, false, patterns...)
		if err != nil {
			return &errors.ValidationError{Field: "exclude_iris", Value: patterns, Message: err.Error()}
		}
		o.exclude = set
		return nil
	}
}

// WithBuiltins keeps entities from the OWL/RDF/RDFS/XSD namespaces, which
// are skipped by default.
func WithBuiltins(keep bool) Option {
	return func(o *options) error {
		o.keepBuiltins = keep
		return nil
	}
}

// Stats summarizes a load.
type Stats struct {
	Documents int
	Loaded    int
	Excluded  int
	Dropped   int // misplaced structural attributes removed
}

// Loader builds a Catalog from one or more documents.
type Loader struct {
	catalog *Catalog
	opts    *options
	stats   Stats
}

// NewLoader creates a loader for a fresh catalog.
func NewLoader(opts ...Option) (*Loader, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Loader{catalog: New(), opts: o}, nil
}

// AddDocument validates a document and adds its entities. Any catalog-level
// malformation aborts with a ValidationError.
func (l *Loader) AddDocument(ctx context.Context, doc *Document, name string) error {
	logger := logging.FromContext(ctx).With().Str("file", name).Str("source", string(doc.Source)).Logger()

	if err := l.catalog.AddSource(doc.Source, doc.BaseIRI); err != nil {
		return errors.WrapResource("load", "catalog", name, err)
	}

	loaded := 0
	for i, de := range doc.Entities {
		if err := ctx.Err(); err != nil {
			return errors.WrapCanceled("load catalog", err)
		}
		if l.excluded(de.IRI) {
			l.stats.Excluded++
			logger.Debug().Str("iri", de.IRI).Msg("Entity excluded")
			continue
		}

		e, err := doc.entity(de)
		if err != nil {
			return errors.WrapResource("load", "catalog", fmt.Sprintf("%s entity #%d", name, i+1), err)
		}
		l.stats.Dropped += l.normalize(&e, logger)

		if err := l.catalog.Add(e); err != nil {
			return errors.WrapResource("load", "catalog", name, err)
		}
		loaded++
	}

	l.stats.Documents++
	l.stats.Loaded += loaded
	logger.Debug().Int("entities", loaded).Msg("Catalog document loaded")
	return nil
}

// AddFile reads and adds a document from disk.
func (l *Loader) AddFile(ctx context.Context, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from CLI flags
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	doc, err := Decode(f, path)
	if err != nil {
		return err
	}
	return l.AddDocument(ctx, doc, path)
}

// Catalog returns the loaded catalog. The loader must not be used afterwards.
func (l *Loader) Catalog() *Catalog {
	return l.catalog
}

// Stats returns load statistics.
func (l *Loader) Stats() Stats {
	return l.stats
}

func (l *Loader) excluded(iri string) bool {
	if !l.opts.keepBuiltins && vocabulary.IsDatatype(iri) {
		return true
	}
	return l.opts.exclude.Match(iri)
}

// normalize removes structural attributes that do not belong to the entity's
// kind and returns how many were dropped.
func (l *Loader) normalize(e *Entity, logger zerolog.Logger) int {
	dropped := 0
	if e.Kind.IsRelation() && len(e.SuperIRIs) > 0 {
		logger.Warn().Str("iri", e.IRI).Strs("super", e.SuperIRIs).Msg("Relation declares superclasses; ignored")
		dropped += len(e.SuperIRIs)
		e.SuperIRIs = nil
	}
	if !e.Kind.IsRelation() && len(e.DomainIRIs)+len(e.RangeIRIs) > 0 {
		logger.Warn().Str("iri", e.IRI).Msg("Class declares domain or range; ignored")
		dropped += len(e.DomainIRIs) + len(e.RangeIRIs)
		e.DomainIRIs, e.RangeIRIs = nil, nil
	}
	return dropped
}
