package export

import (
	"errors"
	"fmt"
)

// Export errors.
var (
	// ErrWorkerStopped is returned by Queue.Push when the consumer has exited.
	ErrWorkerStopped = errors.New("export: worker stopped")

	// ErrNoInitialization is returned for a frame sequence that does not
	// start with an Initialization frame.
	ErrNoInitialization = errors.New("export: stream does not start with an initialization frame")

	// ErrFrameSize is returned when a rasterizer returns a buffer of the
	// wrong size.
	ErrFrameSize = errors.New("export: rasterized frame has wrong size")
)

// Pipeline stages reported in PipelineError.
const (
	StageReplay = "replay"
	StageRaster = "raster"
	StageWrite  = "write"
	StageSpawn  = "spawn"
	StageMux    = "mux"
)

// PipelineError is returned when a stage of an export fails.
// Index is the output image being processed, or -1 when the failure is not
// tied to an image.
type PipelineError struct {
	Stage string
	Index int
	Err   error
}

// Error returns the error message with stage context.
func (e *PipelineError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("export: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("export: %s: image %d: %v", e.Stage, e.Index, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}
