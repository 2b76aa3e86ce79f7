package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrInvalidPatch          = errors.New("invalid patch")
	ErrInvalidUpdateRequest  = errors.New("invalid update request")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInUse                 = errors.New("in use")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrUnmanagedImage marks an image URI the image store cannot address.
	// Retrying a delete of such a URI can never succeed.
	ErrUnmanagedImage = errors.New("unmanaged image")
)

// NotFoundError reports a missing entity together with the key used to look it up.
type NotFoundError struct {
	Entity string
	Key    any
}

func NotFound(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError reports a conflicting record identified by its fingerprint.
type AlreadyExistsError struct {
	Entity      string
	Fingerprint string
}

func AlreadyExists(entity, fingerprint string) *AlreadyExistsError {
	return &AlreadyExistsError{Entity: entity, Fingerprint: fingerprint}
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.Fingerprint)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// DependencyError wraps a failure of an external collaborator (entity store, image store).
// The underlying error stays reachable through Unwrap.
type DependencyError struct {
	Dependency string
	Err        error
}

func Unavailable(dependency string, err error) *DependencyError {
	return &DependencyError{Dependency: dependency, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func (e *DependencyError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}

func InvalidPatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPatch, fmt.Sprintf(format, args...))
}

func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Kind returns a stable, low-cardinality name for err, suitable for metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidUpdateRequest):
		return "invalid_update_request"
	case errors.Is(err, ErrInvalidPatch):
		return "invalid_patch"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInUse):
		return "in_use"
	case errors.Is(err, ErrDependencyUnavailable):
		return "dependency_unavailable"
	default:
		return "internal"
	}
}
