package harden

import (
	"errors"
	"fmt"
)

var (
	ErrNilRoot          = errors.New("harden: walk root is nil")
	ErrNilRuntime       = errors.New("harden: runtime is nil")
	ErrMissingPrimitive = errors.New("harden: realm is missing a reflective primitive")
	ErrNonConfigurable  = errors.New("property is non-configurable")

	// errRefused marks an operation the object answered with false instead of throwing.
	errRefused = errors.New("operation refused")
)

// RepairError reports a dangerous property that could not be converted to a
// data property. It never aborts a run; failures are collected on the Report.
type RepairError struct {
	Path string
	Key  string
	Err  error
}

func (e *RepairError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("harden: could not convert property %s on object %s: %v", e.Key, displayPath(e.Path), e.Err)
	}
	return fmt.Sprintf("harden: could not convert property %s on object %s", e.Key, displayPath(e.Path))
}

func (e *RepairError) Unwrap() error { return e.Err }

// FreezeError reports a node that could not be locked. It is fatal to the run.
type FreezeError struct {
	Path string
	Key  string // empty when extensibility could not be removed
	Err  error
}

func (e *FreezeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("harden: property %s on object %s could not be locked: %v", e.Key, displayPath(e.Path), e.Err)
	}
	return fmt.Sprintf("harden: object %s could not be made non-extensible: %v", displayPath(e.Path), e.Err)
}

func (e *FreezeError) Unwrap() error { return e.Err }

// TraversalError reports a failure to enumerate or inspect a node. It aborts
// the walk that hit it.
type TraversalError struct {
	Path string
	Op   string
	Key  string
	Err  error
}

func (e *TraversalError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("harden: %s(%s) failed on object %s: %v", e.Op, e.Key, displayPath(e.Path), e.Err)
	}
	return fmt.Sprintf("harden: %s failed on object %s: %v", e.Op, displayPath(e.Path), e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
