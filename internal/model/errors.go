// Package model declares the domain entity schemas for the music graph and
// provides typed, traversal-backed access to them on top of a graph.Store.
package model

import (
	"errors"
	"fmt"

	"github.com/mrdrprofuroboros/constellation/internal/graph"
)

// NotFoundError reports an identity lookup that matched zero nodes.
type NotFoundError struct {
	Label string
	Key   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q has not been found", e.Label, e.Key)
}

// InconsistencyError reports an identity lookup that matched more than one
// node, which violates the uniqueness invariant. It is surfaced distinctly
// from NotFoundError instead of picking a match arbitrarily.
type InconsistencyError struct {
	Label   string
	Key     string
	Matches int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s %q matched %d nodes, expected exactly one", e.Label, e.Key, e.Matches)
}

// DuplicateIdentityError reports an attempt to create an entity whose
// identity already exists.
type DuplicateIdentityError struct {
	Label string
	Key   string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Label, e.Key)
}

// ValidationError reports a constructor or setter value that does not
// correspond to a declared scalar field.
type ValidationError struct {
	Label string
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s has no scalar field %q", e.Label, e.Field)
}

// wrapStoreErr translates store-level failures into the domain taxonomy.
func wrapStoreErr(err error, label, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, graph.ErrDuplicateIdentity):
		return &DuplicateIdentityError{Label: label, Key: key}
	case errors.Is(err, graph.ErrNodeMissing):
		return &NotFoundError{Label: label, Key: key}
	default:
		return err
	}
}
