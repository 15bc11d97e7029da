// Package merger fuses the members of every resolved equivalence class into
// one canonical entity. Merging runs as four sweeps in a fixed order
// (hierarchy, signature, annotation, alignment). Each sweep visits every live
// class and runs in parallel across classes; each worker owns the entity it
// writes, so no locking is needed on merged state.
package merger

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/ontomerge/pkg/authority"
	"github.com/agentstation/ontomerge/pkg/catalog"
	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Catalog is the read-only entity lookup the merge engine needs.
type Catalog interface {
	Get(iri string) (catalog.Entity, bool)
}

// Pass names one merge sweep.
type Pass string

// Merge sweeps, in execution order.
const (
	PassHierarchy  Pass = "hierarchy"
	PassSignature  Pass = "signature"
	PassAnnotation Pass = "annotation"
	PassAlignment  Pass = "alignment"
)

// Passes returns every sweep in execution order.
func Passes() []Pass {
	return []Pass{PassHierarchy, PassSignature, PassAnnotation, PassAlignment}
}

func (p Pass) stage() diagnostics.Stage {
	switch p {
	case PassHierarchy:
		return diagnostics.StageHierarchy
	case PassSignature:
		return diagnostics.StageSignature
	case PassAnnotation:
		return diagnostics.StageAnnotation
	default:
		return diagnostics.StageAlignment
	}
}

// Engine runs the merge sweeps.
type Engine struct {
	catalog   Catalog
	authority authority.Authority
	diags     *diagnostics.Collector
	ledger    provenance.Ledger
	workers   int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithAuthority replaces the field authority.
func WithAuthority(a authority.Authority) Option {
	return func(e *Engine) error {
		if a == nil {
			return &errors.ValidationError{Field: "authority", Message: "cannot be nil"}
		}
		e.authority = a
		return nil
	}
}

// WithDiagnostics sets the collector diagnostics are reported to.
func WithDiagnostics(c *diagnostics.Collector) Option {
	return func(e *Engine) error {
		if c == nil {
			return &errors.ValidationError{Field: "diagnostics", Message: "cannot be nil"}
		}
		e.diags = c
		return nil
	}
}

// WithLedger records every provenance fact of the merged entities in l.
func WithLedger(l provenance.Ledger) Option {
	return func(e *Engine) error {
		e.ledger = l
		return nil
	}
}

// WithWorkers bounds the number of classes merged concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		if n < 1 || n > constants.MaxWorkers {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: fmt.Sprintf("must be between 1 and %d", constants.MaxWorkers),
			}
		}
		e.workers = n
		return nil
	}
}

// New creates a merge engine over a catalog.
func New(cat Catalog, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
	}
	e := &Engine{
		catalog:   cat,
		authority: authority.New(),
		diags:     diagnostics.NewCollector(),
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Workers returns the concurrency bound.
func (e *Engine) Workers() int {
	return e.workers
}

// Seed creates the empty merged entities for the live classes of res, in
// partition order.
func Seed(res *resolver.Result) []*Entity {
	live := res.Live()
	out := make([]*Entity, len(live))
	for i, r := range live {
		out[i] = newEntity(r.Name, r.Kind, r.Valid, r.Sources)
	}
	return out
}

// Merge runs every sweep over the live classes of res and returns one merged
// entity per class in partition order. On cancellation no entities are
// returned.
func (e *Engine) Merge(ctx context.Context, res *resolver.Result) ([]*Entity, error) {
	entities := Seed(res)
	for _, pass := range Passes() {
		if err := e.Sweep(ctx, pass, res, entities); err != nil {
			return nil, err
		}
	}

	if e.ledger != nil {
		for _, ent := range entities {
			for _, f := range ent.Provenance {
				e.ledger.Track(ent.CanonicalName, f)
			}
			for _, tag := range ent.Sources {
				e.ledger.Touch(ent.CanonicalName, tag)
			}
		}
	}
	return entities, nil
}

// Sweep applies one pass to every entity. entities must be aligned with
// res.Live(), as returned by Seed. Sweeps only add facts, so running one
// twice leaves the entities unchanged.
func (e *Engine) Sweep(ctx context.Context, pass Pass, res *resolver.Result, entities []*Entity) error {
	return e.sweep(ctx, pass, res, res.Live(), entities)
}

func (e *Engine) sweep(ctx context.Context, pass Pass, res *resolver.Result, live []resolver.Resolution, entities []*Entity) error {
	if len(live) != len(entities) {
		return &errors.ValidationError{
			Field:   "entities",
			Value:   len(entities),
			Message: "must hold one entity per live class",
		}
	}

	ctx = logging.WithPass(ctx, string(pass))
	logger := logging.FromContext(ctx)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range live {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.apply(gctx, pass, res, live[i], entities[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.WrapCanceled("merge "+string(pass), err)
	}
	if err := ctx.Err(); err != nil {
		return errors.WrapCanceled("merge "+string(pass), err)
	}

	logger.Debug().
		Int("classes", len(live)).
		Dur("duration", time.Since(start)).
		Msg("Sweep complete")
	return nil
}

// PassThrough carries every catalog entity in iris that belongs to no live
// class into the merged schema under its own local name. Its structure is
// mapped to canonical names exactly like a merged entity's, and its comments
// stay under its own source tag. Results are ordered by IRI.
func (e *Engine) PassThrough(ctx context.Context, res *resolver.Result, iris []string) ([]*Entity, error) {
	var (
		singles  []resolver.Resolution
		entities []*Entity
	)
	for _, iri := range slices.Sorted(slices.Values(iris)) {
		if _, clustered := res.NameOf(iri); clustered {
			continue
		}
		m, ok := e.catalog.Get(iri)
		if !ok || !m.Kind.IsValid() {
			continue
		}
		if len(singles) > 0 && singles[len(singles)-1].Valid[0] == iri {
			continue
		}
		r := resolver.Resolution{
			Index:      -1,
			Name:       provenance.Normalize(m.LocalName),
			Kind:       m.Kind,
			Valid:      []string{iri},
			Compatible: []string{iri},
			Sources:    []types.SourceTag{m.Source},
		}
		singles = append(singles, r)
		entities = append(entities, newEntity(r.Name, r.Kind, r.Valid, r.Sources))
	}

	for _, pass := range []Pass{PassHierarchy, PassSignature, PassAnnotation} {
		if err := e.sweep(ctx, pass, res, singles, entities); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func (e *Engine) apply(ctx context.Context, pass Pass, res *resolver.Result, r resolver.Resolution, ent *Entity) {
	switch pass {
	case PassHierarchy:
		e.hierarchy(ctx, res, r, ent)
	case PassSignature:
		e.signature(ctx, res, r, ent)
	case PassAnnotation:
		e.annotation(r, ent)
	case PassAlignment:
		e.alignment(r, ent)
	}
}
