//nolint:revive // Package types provides common type definitions
package types

import (
	"slices"
	"strings"
)

// SourceTag identifies the source schema an entity was declared in
// (e.g., "OSN", "MP"). Tags are short, upper-case by convention and are
// used verbatim in per-source annotation names such as "OSNcomment".
type SourceTag string

// String returns the string representation of a source tag.
func (t SourceTag) String() string {
	return string(t)
}

// IsValid reports whether the tag is non-empty and contains no whitespace.
func (t SourceTag) IsValid() bool {
	if t == "" {
		return false
	}
	return !strings.ContainsAny(string(t), " \t\r\n")
}

// SortTags sorts tags lexicographically in place and returns the slice.
func SortTags(tags []SourceTag) []SourceTag {
	slices.Sort(tags)
	return tags
}
