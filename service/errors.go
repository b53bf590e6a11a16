package service

import (
	"errors"
	"fmt"
)

var (
	// ErrCrossDocumentReorder rejects moves between two documents.
	ErrCrossDocumentReorder = errors.New("service: reorder across documents is not supported")

	// ErrInvalidSplitPosition rejects split positions that would leave
	// one side of the cut without any surviving page.
	ErrInvalidSplitPosition = errors.New("service: split must leave at least one page on each side")

	// ErrUnsupportedRotation rejects rotations that are not quarter turns.
	ErrUnsupportedRotation = errors.New("service: rotation must be 90, 180, 270 or -90 degrees")
)

// EngineError wraps a failure reported by the PDF engine. Engine calls
// are deterministic, so nothing retries them; the caller's displayed
// state is unchanged because no mutation was committed.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string { return fmt.Sprintf("engine: %s: %v", e.Op, e.Err) }

func (e *EngineError) Unwrap() error { return e.Err }
