// Package vgv provides the public API for VGV streams.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/vgv"
//
// A VGV stream is a text file of frames describing an animated SVG scene:
// one Initialization, optional Style frames, then Full, Delta and Unchanged
// frames that each produce output images.
//
// Usage:
//
//	frames, err := vgv.Encode(&vgv.Initialization{Duration: 40, Width: 320, Height: 240}, snapshots)
//	err = vgv.Replay(frames, func(img int, s vgv.Scene) error { ... })
//	res, err := vgv.ExportVideo(ctx, frames, "out.mp4")
package vgv

import (
	"context"
	"io"

	"github.com/vango-dev/vgv/pkg/export"
	"github.com/vango-dev/vgv/pkg/protocol"
	"github.com/vango-dev/vgv/pkg/raster"
	"github.com/vango-dev/vgv/pkg/render"
)

// =============================================================================
// Frames
// =============================================================================

// Frame is one unit of a stream.
type Frame = protocol.Frame

// Frame variants.
type (
	Initialization = protocol.Initialization
	Style          = protocol.Style
	Full           = protocol.Full
	Delta          = protocol.Delta
	Unchanged      = protocol.Unchanged
)

// Magic is the first line of every stream.
const Magic = protocol.Magic

// Scene is the renderable state after a frame.
type Scene = render.Scene

// Result describes a finished export.
type Result = export.Result

// =============================================================================
// Codec
// =============================================================================

// Parse decodes an in-memory stream.
func Parse(data string) ([]Frame, error) {
	return protocol.Parse(data)
}

// Read decodes a stream from r.
func Read(r io.Reader) ([]Frame, error) {
	return protocol.ReadAll(r)
}

// Write writes frames as a stream to w.
func Write(w io.Writer, frames []Frame) error {
	return protocol.WriteStream(w, frames)
}

// Encode turns a sequence of content snapshots into frames.
func Encode(init *Initialization, contents []string, opts ...protocol.EncoderOption) ([]Frame, error) {
	enc, err := protocol.NewEncoder(init, opts...)
	if err != nil {
		return nil, err
	}
	for _, c := range contents {
		if err := enc.AddContent(c); err != nil {
			return nil, err
		}
	}
	return enc.Finish(), nil
}

// =============================================================================
// Replay and export
// =============================================================================

// Replay steps through frames and calls fn once per output image.
func Replay(frames []Frame, fn func(img int, s Scene) error, opts ...render.Option) error {
	return render.NewRenderer(opts...).Replay(frames, fn)
}

// ExportHTML writes a self-contained HTML player for frames to w.
func ExportHTML(ctx context.Context, frames []Frame, w io.Writer, opts ...export.Option) (*Result, error) {
	return export.NewHTML(opts...).Export(ctx, frames, w)
}

// ExportVideo rasterizes frames and encodes them with ffmpeg into output.
func ExportVideo(ctx context.Context, frames []Frame, output string, opts ...export.Option) (*Result, error) {
	v := export.NewVideo(raster.NewGG(), export.NewFFmpeg(), opts...)
	return v.Export(ctx, frames, output)
}
