// Package provenance records why every structural fact of a merged entity
// exists: which relation it belongs to, which canonical name it points at,
// and which source schema contributed it.
package provenance

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/ontomerge/pkg/types"
)

// Relation is the kind of structural edge a fact explains.
type Relation string

// Relations recorded by the merge engine.
const (
	RelationSubClassOf Relation = "subClassOf"
	RelationDomain     Relation = "domain"
	RelationRange      Relation = "range"
)

// Fact is one provenance record: relation to Name was contributed by Source.
type Fact struct {
	Relation Relation        `json:"relation" yaml:"relation"`
	Name     string          `json:"name" yaml:"name"`
	Source   types.SourceTag `json:"source" yaml:"source"`
}

// String renders a fact as "relation:name_from:SOURCE".
func (f Fact) String() string {
	return fmt.Sprintf("%s:%s_from:%s", f.Relation, f.Name, f.Source)
}

// Compare orders facts by relation, name, then source.
func Compare(a, b Fact) int {
	return cmp.Or(
		cmp.Compare(a.Relation, b.Relation),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Source, b.Source),
	)
}

// Facts is a set of provenance facts kept sorted and free of duplicates.
type Facts []Fact

// Add inserts f if not already present and reports whether it was new.
func (fs *Facts) Add(f Fact) bool {
	i, found := slices.BinarySearchFunc(*fs, f, Compare)
	if found {
		return false
	}
	*fs = slices.Insert(*fs, i, f)
	return true
}

// Contains reports whether f is in the set.
func (fs Facts) Contains(f Fact) bool {
	_, found := slices.BinarySearchFunc(fs, f, Compare)
	return found
}

// ByRelation returns the facts with the given relation.
func (fs Facts) ByRelation(r Relation) Facts {
	var out Facts
	for _, f := range fs {
		if f.Relation == r {
			out = append(out, f)
		}
	}
	return out
}

// Sources returns the sorted distinct source tags in the set.
func (fs Facts) Sources() []types.SourceTag {
	seen := make(map[types.SourceTag]struct{}, len(fs))
	out := make([]types.SourceTag, 0, len(fs))
	for _, f := range fs {
		if _, ok := seen[f.Source]; ok {
			continue
		}
		seen[f.Source] = struct{}{}
		out = append(out, f.Source)
	}
	return types.SortTags(out)
}

// Map holds facts per merged entity, keyed by canonical name.
type Map map[string]Facts

// Ledger accumulates provenance for every merged entity of a run.
type Ledger interface {
	// Track records a fact for an entity
	Track(entity string, fact Fact)

	// Touch records that source contributed to entity without a structural fact
	Touch(entity string, source types.SourceTag)

	// FindByEntity returns the facts recorded for an entity
	FindByEntity(entity string) Facts

	// FindByRelation returns an entity's facts of one relation
	FindByRelation(entity string, relation Relation) Facts

	// Sources returns every source tag that contributed to an entity
	Sources(entity string) []types.SourceTag

	// Entities returns the sorted names of tracked entities
	Entities() []string

	// Map returns a copy of the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

type ledger struct {
	mu      sync.RWMutex
	facts   Map
	touched map[string]map[types.SourceTag]struct{}
	enabled bool
}

// NewLedger creates a new provenance ledger. A disabled ledger ignores writes.
func NewLedger(enabled bool) Ledger {
	return &ledger{
		facts:   make(Map),
		touched: make(map[string]map[types.SourceTag]struct{}),
		enabled: enabled,
	}
}

// Track records a fact for an entity.
func (l *ledger) Track(entity string, fact Fact) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fs := l.facts[entity]
	fs.Add(fact)
	l.facts[entity] = fs
	l.touch(entity, fact.Source)
}

// Touch records a contributing source without a fact.
func (l *ledger) Touch(entity string, source types.SourceTag) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.touch(entity, source)
}

func (l *ledger) touch(entity string, source types.SourceTag) {
	set, ok := l.touched[entity]
	if !ok {
		set = make(map[types.SourceTag]struct{})
		l.touched[entity] = set
	}
	set[source] = struct{}{}
}

// FindByEntity returns the facts recorded for an entity.
func (l *ledger) FindByEntity(entity string) Facts {
	if !l.enabled {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.facts[entity])
}

// FindByRelation returns an entity's facts of one relation.
func (l *ledger) FindByRelation(entity string, relation Relation) Facts {
	return l.FindByEntity(entity).ByRelation(relation)
}

// Sources returns every source tag that contributed to an entity.
func (l *ledger) Sources(entity string) []types.SourceTag {
	if !l.enabled {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.SourceTag, 0, len(l.touched[entity]))
	for tag := range l.touched[entity] {
		out = append(out, tag)
	}
	return types.SortTags(out)
}

// Entities returns the sorted names of tracked entities.
func (l *ledger) Entities() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.touched))
	for name := range l.touched {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Map returns a copy of the complete provenance map.
func (l *ledger) Map() Map {
	if !l.enabled {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(Map, len(l.facts))
	for k, v := range l.facts {
		result[k] = slices.Clone(v)
	}
	return result
}

// Clear removes all provenance data.
func (l *ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.facts = make(Map)
	l.touched = make(map[string]map[types.SourceTag]struct{})
}

// Report is a human-readable view of a provenance map.
type Report struct {
	Entities map[string]EntityProvenance
}

// EntityProvenance groups one entity's facts by contributing source.
type EntityProvenance struct {
	Name     string
	BySource map[types.SourceTag]Facts
}

// GenerateReport creates a provenance report from a Map.
func GenerateReport(m Map) *Report {
	report := &Report{Entities: make(map[string]EntityProvenance, len(m))}
	for name, facts := range m {
		ep := EntityProvenance{Name: name, BySource: make(map[types.SourceTag]Facts)}
		for _, f := range facts {
			fs := ep.BySource[f.Source]
			fs.Add(f)
			ep.BySource[f.Source] = fs
		}
		report.Entities[name] = ep
	}
	return report
}

// String generates a string representation of the provenance report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	names := make([]string, 0, len(r.Entities))
	for name := range r.Entities {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		ep := r.Entities[name]
		sb.WriteString(name)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		tags := make([]types.SourceTag, 0, len(ep.BySource))
		for tag := range ep.BySource {
			tags = append(tags, tag)
		}
		for _, tag := range types.SortTags(tags) {
			fmt.Fprintf(&sb, "  %s:\n", tag)
			for _, f := range ep.BySource[tag] {
				fmt.Fprintf(&sb, "    - %s %s\n", f.Relation, f.Name)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
