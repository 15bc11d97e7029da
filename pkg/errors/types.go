package errors

import (
	"fmt"
	"strings"
)

// NotFoundError reports a lookup that found nothing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError rejects a single field or value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ReferentialError reports a candidate or structural edge pointing at an IRI
// missing from the entity catalog. Merge sweeps recover from it by dropping
// the edge.
type ReferentialError struct {
	Context string   // candidate, subClassOf, domain or range
	From    string   // IRI holding the reference; empty for candidates
	Missing []string // unknown IRIs
}

func (e *ReferentialError) Error() string {
	missing := strings.Join(e.Missing, ", ")
	if e.From == "" {
		return fmt.Sprintf("%s references unknown IRI %s", e.Context, missing)
	}
	return fmt.Sprintf("%s reference from %s to unknown IRI %s", e.Context, e.From, missing)
}

func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential || target == ErrNotFound
}

// NewReferentialError creates a ReferentialError.
func NewReferentialError(context, from string, missing ...string) *ReferentialError {
	return &ReferentialError{Context: context, From: from, Missing: missing}
}

// ConfigError reports an invalid setting. Component names the config key.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidInput }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// MergeError aborts the merge of one equivalence class.
type MergeError struct {
	Class   string   // canonical name, or the smallest member IRI before resolution
	Members []string // member IRIs
	Err     error
}

func (e *MergeError) Error() string {
	if len(e.Members) == 0 {
		return fmt.Sprintf("merge error for class %s: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("merge error for class %s (members: %v): %v", e.Class, e.Members, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// NewMergeError creates a MergeError.
func NewMergeError(class string, members []string, err error) *MergeError {
	return &MergeError{Class: class, Members: members, Err: err}
}

// ParseError reports an unreadable catalog, candidate stream or schema
// document. Line and Column are 1-based and zero when unknown.
type ParseError struct {
	Format  string // yaml, json, tsv or csv
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	case e.File != "":
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	default:
		return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrInvalidInput }

// NewParseError creates a ParseError without position information.
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError reports a failed file operation.
type IOError struct {
	Operation string // read, write, open or create
	Path      string
	Message   string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates an IOError carrying err's message.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Message: message(err), Err: err}
}

// ResourceError reports a failed pipeline step on a named resource.
type ResourceError struct {
	Operation string // load, resolve, merge or write
	Resource  string // catalog, candidates, schema or class
	ID        string
	Message   string
	Err       error
}

func (e *ResourceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
	}
	return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// NewResourceError creates a ResourceError carrying err's message.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: message(err), Err: err}
}

func message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
