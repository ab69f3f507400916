package errors

import (
	"context"
	"errors"
	"os/exec"
	"strconv"

	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/export"
	"github.com/vango-dev/vgv/pkg/protocol"
	"github.com/vango-dev/vgv/pkg/render"
	"github.com/vango-dev/vgv/pkg/upload"
)

// FromStreamError maps an error returned by the vgv packages to a
// registered VGVError. file names the stream the error came from and is
// used to point at the failing line. Unknown errors map to E900.
func FromStreamError(err error, file string) *VGVError {
	if err == nil {
		return nil
	}
	var ve *VGVError
	if errors.As(err, &ve) {
		return ve
	}

	var (
		headerErr   *protocol.HeaderError
		parseErr    *protocol.ParseError
		stepErr     *render.StepError
		pipelineErr *export.PipelineError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return New("E901").Wrap(err)

	case errors.As(err, &headerErr):
		return New("E001").Wrap(err).WithLocation(file, 1)

	case errors.As(err, &parseErr):
		code := "E002"
		var unsupported *protocol.UnsupportedFrameError
		switch {
		case errors.As(err, &unsupported):
			code = "E003"
		case errors.Is(err, protocol.ErrLineTooLong):
			code = "E004"
		}
		// The header is line 0 of the stream and line 1 of the file.
		return New(code).Wrap(err).WithLocation(file, parseErr.Line+1)

	case errors.Is(err, protocol.ErrInvalidInitialization):
		return New("E005").Wrap(err)

	case errors.As(err, &pipelineErr):
		return fromPipelineError(pipelineErr, err, file)

	case errors.As(err, &stepErr):
		return fromStepError(stepErr, err)

	case errors.Is(err, upload.ErrInvalidKey):
		return New("E061").Wrap(err)

	case errors.Is(err, upload.ErrTooLarge):
		return New("E062").Wrap(err)
	}

	return New("E900").Wrap(err)
}

func fromStepError(stepErr *render.StepError, err error) *VGVError {
	switch {
	case errors.Is(err, render.ErrNotInitialized):
		return New("E021").Wrap(err)
	case errors.Is(err, render.ErrReinitialized):
		return New("E022").Wrap(err)
	}
	var de *diff.Error
	if errors.As(err, &de) {
		return New("E020").Wrap(err).
			WithDetail("Frame " + strconv.Itoa(stepErr.Index) + " carries a delta that does not match the content rebuilt so far.")
	}
	return New("E023").Wrap(err)
}

func fromPipelineError(pe *export.PipelineError, err error, file string) *VGVError {
	switch pe.Stage {
	case export.StageReplay:
		if errors.Is(err, export.ErrNoInitialization) {
			return New("E044").Wrap(err).WithLocation(file, 2)
		}
		var stepErr *render.StepError
		if errors.As(err, &stepErr) {
			return fromStepError(stepErr, err)
		}
		return New("E023").Wrap(err)
	case export.StageSpawn:
		if errors.Is(err, exec.ErrNotFound) {
			return New("E040").Wrap(err)
		}
		return New("E045").Wrap(err)
	case export.StageMux:
		return New("E041").Wrap(err)
	case export.StageRaster:
		return New("E042").Wrap(err)
	case export.StageWrite:
		return New("E043").Wrap(err)
	}
	return New("E900").Wrap(err)
}
