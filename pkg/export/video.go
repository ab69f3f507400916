package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vgv/pkg/protocol"
	"github.com/vango-dev/vgv/pkg/raster"
	"github.com/vango-dev/vgv/pkg/render"
)

const tracerName = "github.com/vango-dev/vgv/pkg/export"

// Exporter kinds used in metrics.
const (
	KindVideo = "video"
	KindHTML  = "html"
)

// Result summarizes a finished export.
type Result struct {
	Output    string
	Width     int
	Height    int
	FrameRate FrameRate
	Images    int           // Output images
	Unique    int           // Distinct images rasterized or embedded
	Bytes     int64         // Bytes written to the output
	Duration  time.Duration // Playback duration
}

// Video exports frame sequences to video files.
type Video struct {
	settings
	rasterizer raster.Rasterizer
	muxers     MuxerFactory
}

// NewVideo creates a video exporter.
func NewVideo(rasterizer raster.Rasterizer, muxers MuxerFactory, opts ...Option) *Video {
	return &Video{
		settings:   newSettings(opts),
		rasterizer: rasterizer,
		muxers:     muxers,
	}
}

// Export replays frames and writes the resulting video to output.
//
// On failure the muxer is aborted and no Result is returned; the error is a
// *PipelineError naming the failed stage, or the context error.
func (v *Video) Export(ctx context.Context, frames []protocol.Frame, output string) (res *Result, err error) {
	init, ok := first(frames)
	if !ok {
		return nil, &PipelineError{Stage: StageReplay, Index: -1, Err: ErrNoInitialization}
	}

	spec := MuxSpec{
		Width:     int(init.Width),
		Height:    int(init.Height),
		FrameRate: FrameRateOf(init.FrameDuration()),
		Output:    output,
		Audio:     v.audio,
	}
	if v.width > 0 {
		spec.Width = v.width
	}
	if v.height > 0 {
		spec.Height = v.height
	}

	ctx, span := v.tracer.Start(ctx, "vgv.export.video", trace.WithAttributes(
		attribute.String("vgv.output", output),
		attribute.Int("vgv.width", spec.Width),
		attribute.Int("vgv.height", spec.Height),
		attribute.Int("vgv.frames", len(frames)),
		attribute.String("vgv.frame_rate", spec.FrameRate.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("vgv.images", res.Images))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		v.metrics.finish(KindVideo, err)
	}()

	mux, err := v.muxers.Open(ctx, spec)
	if err != nil {
		var pe *PipelineError
		if !errors.As(err, &pe) {
			err = &PipelineError{Stage: StageSpawn, Index: -1, Err: err}
		}
		return nil, err
	}

	res = &Result{
		Output:    output,
		Width:     spec.Width,
		Height:    spec.Height,
		FrameRate: spec.FrameRate,
	}
	queue := NewQueue(v.queueSize)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return v.work(gctx, queue, mux, spec, res)
	})
	g.Go(func() error {
		return v.produce(gctx, queue, frames, spec, res)
	})

	if err := g.Wait(); err != nil {
		if abortErr := mux.Abort(); abortErr != nil {
			v.logger.Warn("vgv muxer abort failed", "output", output, "error", abortErr)
		}
		return nil, err
	}
	if err := mux.Close(); err != nil {
		var pe *PipelineError
		if !errors.As(err, &pe) {
			err = &PipelineError{Stage: StageMux, Index: -1, Err: err}
		}
		return nil, err
	}

	res.Duration = time.Duration(res.Images) * init.FrameDuration()
	v.logger.Info("vgv video exported",
		"output", output,
		"images", res.Images,
		"unique", res.Unique,
		"bytes", res.Bytes,
		"duration", res.Duration,
	)
	return res, nil
}

// produce replays frames and enqueues one job per output image, then the
// end-of-work sentinel.
func (v *Video) produce(ctx context.Context, queue *Queue, frames []protocol.Frame, spec MuxSpec, res *Result) error {
	r := render.NewRenderer(render.WithDiffEngine(v.engine), render.WithLogger(v.logger))

	err := r.Replay(frames, func(img int, s render.Scene) error {
		res.Images = img + 1
		if err := queue.Push(ctx, Job{Index: img, Markup: s.Markup(), Width: spec.Width, Height: spec.Height}); err != nil {
			return err
		}
		v.metrics.setQueueDepth(queue.Len())
		return nil
	})
	if err == nil {
		err = queue.Finish(ctx)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrWorkerStopped):
		// The worker's own error is reported by the group.
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	}

	var se *render.StepError
	if errors.As(err, &se) {
		return &PipelineError{Stage: StageReplay, Index: res.Images, Err: err}
	}
	return &PipelineError{Stage: StageReplay, Index: -1, Err: err}
}

// work rasterizes jobs in order and writes them to the muxer until the
// sentinel arrives.
func (v *Video) work(ctx context.Context, queue *Queue, mux Muxer, spec MuxSpec, res *Result) (err error) {
	ctx, span := v.tracer.Start(ctx, "vgv.export.raster")
	defer span.End()

	index := -1
	defer queue.Stop()
	defer func() {
		if r := recover(); r != nil {
			err = &PipelineError{Stage: StageRaster, Index: index, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var (
		lastMarkup string
		lastPixels []byte
		frameSize  = raster.BufferSize(spec.Width, spec.Height)
	)

	for {
		job, ok := queue.Pop(ctx)
		if !ok {
			span.SetAttributes(attribute.Int("vgv.unique", res.Unique))
			return ctx.Err()
		}
		index = job.Index
		v.metrics.setQueueDepth(queue.Len())

		if lastPixels == nil || job.Markup != lastMarkup {
			start := time.Now()
			pixels, err := v.rasterizer.Rasterize(job.Markup, job.Width, job.Height)
			v.metrics.observeRaster(time.Since(start))
			if err != nil {
				return &PipelineError{Stage: StageRaster, Index: job.Index, Err: err}
			}
			if len(pixels) != frameSize {
				return &PipelineError{Stage: StageRaster, Index: job.Index,
					Err: fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(pixels), frameSize)}
			}
			lastMarkup, lastPixels = job.Markup, pixels
			res.Unique++
		}

		n, err := mux.Write(lastPixels)
		res.Bytes += int64(n)
		if err != nil {
			return &PipelineError{Stage: StageWrite, Index: job.Index, Err: err}
		}
		v.metrics.addImages(KindVideo, 1)
		v.metrics.addBytes(KindVideo, int64(n))
	}
}

func first(frames []protocol.Frame) (*protocol.Initialization, bool) {
	if len(frames) == 0 {
		return nil, false
	}
	init, ok := frames[0].(*protocol.Initialization)
	return init, ok
}
