package render

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/protocol"
)

// Renderer reconstructs scenes by stepping through the frames of a stream.
// It is not safe for concurrent use.
type Renderer struct {
	engine diff.Engine
	logger *slog.Logger

	initialized bool
	duration    uint64
	width       uint32
	height      uint32
	backdrop    string
	attributes  string
	stylesheet  strings.Builder
	content     string

	stepped int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDiffEngine sets the diff engine used to apply Delta frames
// (default: diff.NewDMP()). It must match the engine the stream was
// encoded with.
func WithDiffEngine(e diff.Engine) Option {
	return func(r *Renderer) {
		r.engine = e
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer creates an uninitialized Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = diff.NewDMP()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Initialized reports whether the Initialization frame has been stepped.
func (r *Renderer) Initialized() bool {
	return r.initialized
}

// Frames returns the number of frames stepped successfully.
func (r *Renderer) Frames() int {
	return r.stepped
}

// FrameDuration returns the declared duration of one output image.
func (r *Renderer) FrameDuration() time.Duration {
	return time.Duration(r.duration) * time.Millisecond
}

// Content returns the current scene content.
func (r *Renderer) Content() string {
	return r.content
}

// Step applies one frame to the replay state.
//
// On error the state is left exactly as it was before the call and the
// replay must not continue.
func (r *Renderer) Step(f protocol.Frame) error {
	if f == nil {
		return &StepError{Index: r.stepped, Err: ErrNilFrame}
	}
	if err := r.step(f); err != nil {
		return &StepError{Index: r.stepped, Tag: f.Tag(), Err: err}
	}
	r.stepped++
	return nil
}

func (r *Renderer) step(f protocol.Frame) error {
	if _, ok := f.(*protocol.Initialization); !ok && !r.initialized {
		return ErrNotInitialized
	}

	switch f := f.(type) {
	case *protocol.Initialization:
		if r.initialized {
			return ErrReinitialized
		}
		r.duration = f.Duration
		r.width = f.Width
		r.height = f.Height
		r.backdrop = f.Backdrop
		r.attributes = f.Attributes
		r.initialized = true
		r.logger.Debug("vgv stream initialized",
			"duration_ms", f.Duration,
			"width", f.Width,
			"height", f.Height,
		)

	case *protocol.Style:
		r.stylesheet.WriteString(f.CSS)

	case *protocol.Full:
		r.content = f.Content

	case *protocol.Delta:
		script, err := r.engine.Deserialize(r.content, f.Script)
		if err != nil {
			return err
		}
		out, err := r.engine.Apply(script, r.content)
		if err != nil {
			return err
		}
		r.content = out

	case *protocol.Unchanged:
		// The current image persists.

	default:
		return &protocol.UnsupportedFrameError{Tag: f.Tag()}
	}
	return nil
}

// Scene returns a snapshot of the current state.
func (r *Renderer) Scene() Scene {
	return Scene{
		Width:      int(r.width),
		Height:     int(r.height),
		Duration:   r.FrameDuration(),
		Backdrop:   r.backdrop,
		Attributes: r.attributes,
		Stylesheet: r.stylesheet.String(),
		Content:    r.content,
	}
}

// Replay steps through frames in order and calls fn once per output image
// with the 0-based image number and the scene to show. Full and Delta frames
// produce one image each, Unchanged(n) produces n images of the same scene.
//
// Replay stops at the first step error or the first error returned by fn.
func (r *Renderer) Replay(frames []protocol.Frame, fn func(img int, s Scene) error) error {
	img := 0
	for _, f := range frames {
		if err := r.Step(f); err != nil {
			return err
		}
		n := protocol.Images(f)
		if n == 0 {
			continue
		}
		scene := r.Scene()
		for i := 0; i < n; i++ {
			if err := fn(img, scene); err != nil {
				return err
			}
			img++
		}
	}
	return nil
}
