package provenance

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Registry tracks canonical names claimed during a run so that no two merged
// entities share a name. Names are compared after NFC normalization.
//
// A Registry is not safe for concurrent use; names are resolved in a single
// pass before the merge sweeps start.
type Registry struct {
	owners map[string]string
}

// NewRegistry creates an empty name registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]string)}
}

// Normalize returns the registry key for a name.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Taken reports whether name is already claimed.
func (r *Registry) Taken(name string) bool {
	_, ok := r.owners[Normalize(name)]
	return ok
}

// Owner returns the owner that claimed name, if any.
func (r *Registry) Owner(name string) (string, bool) {
	owner, ok := r.owners[Normalize(name)]
	return owner, ok
}

// Claim registers name for owner. It returns false when the name is taken.
func (r *Registry) Claim(name, owner string) bool {
	key := Normalize(name)
	if _, ok := r.owners[key]; ok {
		return false
	}
	r.owners[key] = owner
	return true
}

// Names returns all claimed names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.owners))
	for name := range r.owners {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of claimed names.
func (r *Registry) Len() int {
	return len(r.owners)
}
