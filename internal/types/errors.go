package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNoCategories = errors.New("category menu is empty")
	ErrRunStopped   = errors.New("run has been stopped")
)

// BootstrapError wraps a failure in one of the session bootstrap steps.
// Bootstrap errors are fatal: nothing downstream works without the session.
type BootstrapError struct {
	Step     string
	Selector string
	Err      error
}

func (e *BootstrapError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("bootstrap step %q (selector=%q): %v", e.Step, e.Selector, e.Err)
	}
	return fmt.Sprintf("bootstrap step %q: %v", e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// NavigationError wraps failures to read or restore the category listing.
type NavigationError struct {
	Op  string
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("navigation %s (%s): %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("navigation %s: %v", e.Op, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the processing pipeline.
type PipelineError struct {
	Stage   string
	Product *Product
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
