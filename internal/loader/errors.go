package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrClassNotFound reports a name no resolver in the chain can provide.
	ErrClassNotFound = errors.New("class not found")
	// ErrNotInstantiable reports a class without a constructor or concrete type.
	ErrNotInstantiable = errors.New("class cannot be instantiated")
	// ErrReleased reports a lookup on a loader whose context was torn down.
	ErrReleased = errors.New("loader released")
)

// ClassResolutionError is returned when a loader cannot find or define a class.
type ClassResolutionError struct {
	Name   string
	Loader string
	Err    error
}

func (e *ClassResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve class %s in %s: %v", e.Name, e.Loader, e.Err)
}

func (e *ClassResolutionError) Unwrap() error {
	return e.Err
}

func notFound(name, loader string) error {
	return &ClassResolutionError{Name: name, Loader: loader, Err: ErrClassNotFound}
}
