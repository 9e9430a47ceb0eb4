package registry

import "errors"

var (
	// ErrTemplateNotFound is returned when a lookup names a template the
	// Store has never seen or has fully emptied and expired.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInstanceNotFound is returned when a lookup names an instance ID
	// not present under the given template.
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrInstanceExists is returned by Register when the instance ID is
	// already registered under a different template (invariant: an
	// instance ID is unique across the whole catalogue).
	ErrInstanceExists = errors.New("instance already registered under a different template")
)
