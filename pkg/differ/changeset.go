// Package differ compares merged schema documents and reports what changed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"` // Field path (e.g., "super", "annotations.OSNcomment")
	OldValue string     `json:"old,omitempty" yaml:"old,omitempty"`
	NewValue string     `json:"new,omitempty" yaml:"new,omitempty"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// EntityUpdate represents an update to an entity present in both documents.
type EntityUpdate struct {
	Key      string        `json:"key" yaml:"key"`
	Existing schema.Entity `json:"-" yaml:"-"`
	New      schema.Entity `json:"-" yaml:"-"`
	Changes  []FieldChange `json:"changes" yaml:"changes"`
}

// EntityChangeset represents changes to entities.
type EntityChangeset struct {
	Added   []schema.Entity `json:"added,omitempty" yaml:"added,omitempty"`
	Updated []EntityUpdate  `json:"updated,omitempty" yaml:"updated,omitempty"`
	Removed []schema.Entity `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// DiagnosticChangeset represents diagnostics raised or no longer raised.
type DiagnosticChangeset struct {
	Added   []diagnostics.Diagnostic `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []diagnostics.Diagnostic `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// Changeset represents all changes between two documents.
type Changeset struct {
	Entities    *EntityChangeset     `json:"entities" yaml:"entities"`
	Diagnostics *DiagnosticChangeset `json:"diagnostics" yaml:"diagnostics"`
	Summary     ChangesetSummary     `json:"summary" yaml:"summary"`
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	EntitiesAdded      int `json:"entities_added" yaml:"entities_added"`
	EntitiesUpdated    int `json:"entities_updated" yaml:"entities_updated"`
	EntitiesRemoved    int `json:"entities_removed" yaml:"entities_removed"`
	DiagnosticsAdded   int `json:"diagnostics_added" yaml:"diagnostics_added"`
	DiagnosticsRemoved int `json:"diagnostics_removed" yaml:"diagnostics_removed"`
	TotalChanges       int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// calculateSummary computes the summary for a changeset.
func calculateSummary(entities *EntityChangeset, diags *DiagnosticChangeset) ChangesetSummary {
	s := ChangesetSummary{
		EntitiesAdded:      len(entities.Added),
		EntitiesUpdated:    len(entities.Updated),
		EntitiesRemoved:    len(entities.Removed),
		DiagnosticsAdded:   len(diags.Added),
		DiagnosticsRemoved: len(diags.Removed),
	}
	s.TotalChanges = s.EntitiesAdded + s.EntitiesUpdated + s.EntitiesRemoved +
		s.DiagnosticsAdded + s.DiagnosticsRemoved
	return s
}

// HasChanges returns true if the entity changeset contains any changes.
func (e *EntityChangeset) HasChanges() bool {
	return len(e.Added) > 0 || len(e.Updated) > 0 || len(e.Removed) > 0
}

// HasChanges returns true if the diagnostic changeset contains any changes.
func (d *DiagnosticChangeset) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	if c.Entities.HasChanges() {
		parts = append(parts, fmt.Sprintf("Entities: %s",
			counts(len(c.Entities.Added), len(c.Entities.Updated), len(c.Entities.Removed))))
	}
	if c.Diagnostics.HasChanges() {
		parts = append(parts, fmt.Sprintf("Diagnostics: %s",
			counts(len(c.Diagnostics.Added), 0, len(c.Diagnostics.Removed))))
	}
	return fmt.Sprintf("Changeset: %s (Total: %d changes)", strings.Join(parts, "; "), c.Summary.TotalChanges)
}

func counts(added, updated, removed int) string {
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", added))
	}
	if updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", updated))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", removed))
	}
	return strings.Join(parts, ", ")
}

// Print writes a detailed, human-readable view of the changeset to w.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if c.Entities.HasChanges() {
		c.Entities.Print(w)
	}
	if c.Diagnostics.HasChanges() {
		c.Diagnostics.Print(w)
	}
}

// Print writes entity changes in a human-readable format.
func (e *EntityChangeset) Print(w io.Writer) {
	if len(e.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added Entities (%d):\n", len(e.Added))
		for _, entity := range e.Added {
			fmt.Fprintf(w, "  • %s\n", describe(entity))
		}
	}

	if len(e.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated Entities (%d):\n", len(e.Updated))
		for _, update := range e.Updated {
			fmt.Fprintf(w, "  • %s:\n", update.Key)
			for _, change := range update.Changes {
				fmt.Fprintf(w, "    - %s: %s → %s\n", change.Path, change.OldValue, change.NewValue)
			}
		}
	}

	if len(e.Removed) > 0 {
		fmt.Fprintf(w, "\n⚠️  Removed Entities (%d):\n", len(e.Removed))
		for _, entity := range e.Removed {
			fmt.Fprintf(w, "  • %s\n", describe(entity))
		}
	}
}

// Print writes diagnostic changes in a human-readable format.
func (d *DiagnosticChangeset) Print(w io.Writer) {
	if len(d.Added) > 0 {
		fmt.Fprintf(w, "\n➕ New Diagnostics (%d):\n", len(d.Added))
		for _, diag := range d.Added {
			fmt.Fprintf(w, "  • %s\n", diag)
		}
	}
	if len(d.Removed) > 0 {
		fmt.Fprintf(w, "\n✅ Resolved Diagnostics (%d):\n", len(d.Removed))
		for _, diag := range d.Removed {
			fmt.Fprintf(w, "  • %s\n", diag)
		}
	}
}

func describe(e schema.Entity) string {
	if e.Origin == schema.OriginSource {
		return fmt.Sprintf("%s (%s, %s)", e.Name, e.Kind, e.IRI)
	}
	return fmt.Sprintf("%s (%s)", e.Name, e.Kind)
}

// ApplyStrategy represents which changes to keep.
type ApplyStrategy string

const (
	// ApplyAll keeps all changes including removals.
	ApplyAll ApplyStrategy = "all"

	// ApplyAdditive keeps additions and updates, never removals.
	ApplyAdditive ApplyStrategy = "additive"

	// ApplyUpdatesOnly keeps only updates to existing entities.
	ApplyUpdatesOnly ApplyStrategy = "updates-only"

	// ApplyAdditionsOnly keeps only additions.
	ApplyAdditionsOnly ApplyStrategy = "additions-only"
)

// Filter filters the changeset based on the apply strategy.
func (c *Changeset) Filter(strategy ApplyStrategy) *Changeset {
	filtered := &Changeset{
		Entities:    &EntityChangeset{},
		Diagnostics: &DiagnosticChangeset{},
	}

	switch strategy {
	case ApplyAll:
		return c

	case ApplyAdditive:
		filtered.Entities.Added = c.Entities.Added
		filtered.Entities.Updated = c.Entities.Updated
		filtered.Diagnostics.Added = c.Diagnostics.Added

	case ApplyUpdatesOnly:
		filtered.Entities.Updated = c.Entities.Updated

	case ApplyAdditionsOnly:
		filtered.Entities.Added = c.Entities.Added
		filtered.Diagnostics.Added = c.Diagnostics.Added
	}

	filtered.Summary = calculateSummary(filtered.Entities, filtered.Diagnostics)
	return filtered
}
