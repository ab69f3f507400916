package render

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vgv/pkg/protocol"
)

// Replay errors.
var (
	// ErrNotInitialized is returned when a frame arrives before the
	// Initialization frame of the stream.
	ErrNotInitialized = errors.New("render: frame before initialization")

	// ErrReinitialized is returned for a second Initialization frame.
	ErrReinitialized = errors.New("render: stream already initialized")

	// ErrNilFrame is returned when Step is given a nil frame.
	ErrNilFrame = errors.New("render: nil frame")
)

// StepError is returned when a frame cannot be applied.
// Index is the 0-based position of the frame in the replayed sequence.
type StepError struct {
	Index int
	Tag   protocol.Tag
	Err   error
}

// Error returns the error message with frame context.
func (e *StepError) Error() string {
	return fmt.Sprintf("render: frame %d (%s): %v", e.Index, e.Tag, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *StepError) Unwrap() error {
	return e.Err
}
