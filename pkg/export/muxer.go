package export

import (
	"context"
	"fmt"
	"io"
	"time"
)

// FrameRate is a rational frame rate in frames per second.
type FrameRate struct {
	Num int
	Den int
}

// FrameRateOf returns the frame rate of images shown for d each.
func FrameRateOf(d time.Duration) FrameRate {
	ms := d.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return FrameRate{Num: 1000, Den: int(ms)}
}

// String returns the rate in ffmpeg's "num/den" form.
func (r FrameRate) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// MuxSpec describes the raw video stream handed to a muxer.
type MuxSpec struct {
	Width     int
	Height    int
	FrameRate FrameRate
	Output    string // Output file path
	Audio     string // Optional audio track to mux in
}

// Muxer consumes raw RGBA frames, one Write per frame.
type Muxer interface {
	io.Writer

	// Close flushes the input and waits until the output is complete.
	Close() error

	// Abort stops the muxer and discards its output.
	Abort() error
}

// MuxerFactory opens muxers.
type MuxerFactory interface {
	Open(ctx context.Context, spec MuxSpec) (Muxer, error)
}

// MuxerFunc adapts a function to the MuxerFactory interface.
type MuxerFunc func(ctx context.Context, spec MuxSpec) (Muxer, error)

// Open calls f.
func (f MuxerFunc) Open(ctx context.Context, spec MuxSpec) (Muxer, error) {
	return f(ctx, spec)
}
