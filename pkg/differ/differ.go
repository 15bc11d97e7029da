package differ

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/schema"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Field paths compared on entities.
const (
	FieldName         = "name"
	FieldKind         = "kind"
	FieldSuper        = "super"
	FieldDomain       = "domain"
	FieldRange        = "range"
	FieldAnnotations  = "annotations"
	FieldSourceOrigin = "source_origin"
	FieldMembers      = "members"
	FieldSources      = "sources"
)

// Differ handles change detection between merged schema documents.
type Differ interface {
	// Entities compares two sets of entities and returns changes
	Entities(existing, updated []schema.Entity) *EntityChangeset

	// Diagnostics compares two diagnostic streams
	Diagnostics(existing, updated []diagnostics.Diagnostic) *DiagnosticChangeset

	// Documents compares two complete documents
	Documents(existing, updated *schema.Document) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
	diagnostics  bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
		diagnostics:  true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Entities compares two sets of entities and returns changes.
func (diff *differ) Entities(existing, updated []schema.Entity) *EntityChangeset {
	changeset := &EntityChangeset{
		Added:   []schema.Entity{},
		Updated: []EntityUpdate{},
		Removed: []schema.Entity{},
	}

	existingMap := make(map[string]schema.Entity, len(existing))
	for _, e := range existing {
		existingMap[e.Key()] = e
	}

	newMap := make(map[string]schema.Entity, len(updated))
	for _, e := range updated {
		newMap[e.Key()] = e
	}

	for _, newEntity := range updated {
		if existingEntity, exists := existingMap[newEntity.Key()]; exists {
			if update := diff.entity(existingEntity, newEntity); update != nil {
				changeset.Updated = append(changeset.Updated, *update)
			}
		} else {
			changeset.Added = append(changeset.Added, newEntity)
		}
	}

	for _, existingEntity := range existing {
		if _, exists := newMap[existingEntity.Key()]; !exists {
			changeset.Removed = append(changeset.Removed, existingEntity)
		}
	}

	sortEntityChangeset(changeset)
	return changeset
}

// Diagnostics compares two diagnostic streams as multisets.
func (diff *differ) Diagnostics(existing, updated []diagnostics.Diagnostic) *DiagnosticChangeset {
	changeset := &DiagnosticChangeset{}

	remaining := slices.Clone(existing)
	diagnostics.Sort(remaining)
	for _, d := range updated {
		i := slices.IndexFunc(remaining, func(e diagnostics.Diagnostic) bool {
			return diagnostics.Compare(e, d) == 0
		})
		if i < 0 {
			changeset.Added = append(changeset.Added, d)
			continue
		}
		remaining = slices.Delete(remaining, i, i+1)
	}
	changeset.Removed = remaining

	diagnostics.Sort(changeset.Added)
	return changeset
}

// Documents compares two complete documents.
func (diff *differ) Documents(existing, updated *schema.Document) *Changeset {
	changeset := &Changeset{
		Entities:    diff.Entities(existing.Entities, updated.Entities),
		Diagnostics: &DiagnosticChangeset{},
	}
	if diff.diagnostics {
		changeset.Diagnostics = diff.Diagnostics(existing.Diagnostics, updated.Diagnostics)
	}
	changeset.Summary = calculateSummary(changeset.Entities, changeset.Diagnostics)
	return changeset
}

// entity compares two entities and returns an update if they differ.
func (diff *differ) entity(existing, updated schema.Entity) *EntityUpdate {
	changes := []FieldChange{}

	if existing.Name != updated.Name && !diff.ignoreFields[FieldName] {
		changes = append(changes, FieldChange{
			Path:     FieldName,
			OldValue: existing.Name,
			NewValue: updated.Name,
			Type:     ChangeTypeUpdate,
		})
	}

	if existing.Kind != updated.Kind && !diff.ignoreFields[FieldKind] {
		changes = append(changes, FieldChange{
			Path:     FieldKind,
			OldValue: string(existing.Kind),
			NewValue: string(updated.Kind),
			Type:     ChangeTypeUpdate,
		})
	}

	changes = diff.appendSet(changes, FieldSuper, existing.Super, updated.Super)
	changes = diff.appendSet(changes, FieldDomain, existing.Domain, updated.Domain)
	changes = diff.appendSet(changes, FieldRange, existing.Range, updated.Range)
	changes = diff.appendSet(changes, FieldSourceOrigin, existing.SourceOrigin, updated.SourceOrigin)
	changes = diff.appendSet(changes, FieldMembers, existing.Members, updated.Members)
	changes = diff.appendSet(changes, FieldSources, tagStrings(existing.Sources), tagStrings(updated.Sources))

	if !diff.ignoreFields[FieldAnnotations] {
		changes = append(changes, diffAnnotations(existing.Annotations, updated.Annotations)...)
	}

	if len(changes) == 0 {
		return nil
	}

	return &EntityUpdate{
		Key:      existing.Key(),
		Existing: existing,
		New:      updated,
		Changes:  changes,
	}
}

// appendSet records a change when two string sets differ.
func (diff *differ) appendSet(changes []FieldChange, path string, existing, updated []string) []FieldChange {
	if diff.ignoreFields[path] || equalSets(existing, updated) {
		return changes
	}
	return append(changes, FieldChange{
		Path:     path,
		OldValue: joinSet(existing),
		NewValue: joinSet(updated),
		Type:     changeType(existing, updated),
	})
}

// diffAnnotations compares annotation properties one by one. Comment order
// is significant, so values are compared as lists.
func diffAnnotations(existing, updated map[string][]string) []FieldChange {
	changes := []FieldChange{}
	props := slices.Sorted(maps.Keys(existing))
	for prop := range maps.Keys(updated) {
		if _, ok := existing[prop]; !ok {
			props = append(props, prop)
		}
	}
	slices.Sort(props)

	for _, prop := range props {
		old, found := existing[prop]
		now, ok := updated[prop]
		if found && ok && slices.Equal(old, now) {
			continue
		}
		changes = append(changes, FieldChange{
			Path:     FieldAnnotations + "." + prop,
			OldValue: strings.Join(old, " | "),
			NewValue: strings.Join(now, " | "),
			Type:     changeType(old, now),
		})
	}
	return changes
}

func changeType(existing, updated []string) ChangeType {
	switch {
	case len(existing) == 0:
		return ChangeTypeAdd
	case len(updated) == 0:
		return ChangeTypeRemove
	default:
		return ChangeTypeUpdate
	}
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = slices.Sorted(slices.Values(a)), slices.Sorted(slices.Values(b))
	return slices.Equal(a, b)
}

func joinSet(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return fmt.Sprintf("[%s]", strings.Join(slices.Sorted(slices.Values(s)), ", "))
}

func tagStrings(tags []types.SourceTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func sortEntityChangeset(c *EntityChangeset) {
	byKey := func(a, b schema.Entity) int { return cmp.Compare(a.Key(), b.Key()) }
	slices.SortFunc(c.Added, byKey)
	slices.SortFunc(c.Removed, byKey)
	slices.SortFunc(c.Updated, func(a, b EntityUpdate) int { return cmp.Compare(a.Key, b.Key) })
}
