package feature

import (
	"errors"
	"fmt"
)

// Feature errors
var (
	ErrInvalidName      = errors.New("invalid feature name")
	ErrDuplicateName    = errors.New("duplicate feature name")
	ErrUnknownFeature   = errors.New("unknown feature")
	ErrCyclicDependency = errors.New("cyclic feature dependency")
	ErrInjection        = errors.New("resource injection failed")
	ErrNilFeature       = errors.New("feature cannot be nil")
)

// Resource errors
var (
	ErrEmptyPayload = errors.New("resource payload cannot be empty")
	ErrEmptyKey     = errors.New("resource key cannot be empty")
	ErrNilResource  = errors.New("resource cannot be nil")
)

// UnknownFeatureError is returned when a name has no registered feature.
// It matches ErrUnknownFeature with errors.Is.
type UnknownFeatureError struct {
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownFeature, e.Name)
}

// Is reports whether target is ErrUnknownFeature.
func (e *UnknownFeatureError) Is(target error) bool {
	return target == ErrUnknownFeature
}
