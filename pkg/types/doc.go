// Package types provides shared type definitions used across the ontomerge packages.
//
// This package contains fundamental types like SourceTag and Kind that are
// referenced by multiple packages (catalog, provenance, resolver, merger, etc.) to avoid
// import cycles while maintaining type safety.
//
// The package has zero dependencies and serves as a foundation for the type system.
//
//nolint:revive // Package name 'types' is appropriate for common type definitions
package types
