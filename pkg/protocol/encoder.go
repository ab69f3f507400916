package protocol

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vango-dev/vgv/pkg/diff"
)

// Encoder turns a sequence of scene snapshots into frames.
//
// An Encoder owns its frame list and its baseline. It is mutated only by
// appending and is sealed by Finish or WriteTo; it is not safe for concurrent
// use.
type Encoder struct {
	engine diff.Engine
	ratio  int
	logger *slog.Logger

	frames      []Frame
	baseline    string
	hasBaseline bool
	position    int // Content position of the next AddContent call
	finished    bool
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithDiffEngine sets the diff engine (default: diff.NewDMP()).
func WithDiffEngine(e diff.Engine) EncoderOption {
	return func(enc *Encoder) {
		enc.engine = e
	}
}

// WithFullDiffRatio sets the interval at which a Full frame is forced
// (default: DefaultFullDiffRatio). Values below 1 keep the default.
func WithFullDiffRatio(n int) EncoderOption {
	return func(enc *Encoder) {
		if n >= 1 {
			enc.ratio = n
		}
	}
}

// WithEncoderLogger sets the logger (default: slog.Default()).
func WithEncoderLogger(l *slog.Logger) EncoderOption {
	return func(enc *Encoder) {
		enc.logger = l
	}
}

// NewEncoder creates an Encoder whose stream starts with init.
func NewEncoder(init *Initialization, opts ...EncoderOption) (*Encoder, error) {
	if init == nil {
		return nil, fmt.Errorf("%w: nil initialization", ErrInvalidInitialization)
	}
	if init.Duration == 0 || init.Width == 0 || init.Height == 0 {
		return nil, fmt.Errorf("%w: duration, width and height must be positive", ErrInvalidInitialization)
	}

	first := *init
	first.Backdrop = field(first.Backdrop)
	first.Attributes = field(first.Attributes)

	enc := &Encoder{
		ratio:    DefaultFullDiffRatio,
		frames:   []Frame{&first},
		position: 1,
	}
	for _, opt := range opts {
		opt(enc)
	}
	if enc.engine == nil {
		enc.engine = diff.NewDMP()
	}
	if enc.logger == nil {
		enc.logger = slog.Default()
	}
	return enc, nil
}

// FullDiffRatio returns the configured full frame interval.
func (e *Encoder) FullDiffRatio() int {
	return e.ratio
}

// AddStyle appends CSS rules to the stream's stylesheet.
func (e *Encoder) AddStyle(css string) error {
	if e.finished {
		return ErrEncoderFinished
	}
	e.frames = append(e.frames, &Style{CSS: stripNewlines(css)})
	return nil
}

// AddContent encodes the next scene snapshot.
//
// The snapshot becomes a Full frame at every full-diff-ratio boundary and when
// there is no baseline yet. Otherwise it is diffed against the baseline: an
// empty diff extends the Unchanged run, anything else is emitted as a Delta.
// A diff engine failure appends nothing.
func (e *Encoder) AddContent(content string) error {
	if e.finished {
		return ErrEncoderFinished
	}

	content = stripNewlines(content)
	n := e.position

	switch {
	case n%e.ratio == 0:
		e.logger.Debug("vgv full frame", "position", n, "reason", "periodic")
		e.pushFull(content)
	case !e.hasBaseline:
		e.logger.Debug("vgv full frame", "position", n, "reason", "bootstrap")
		e.pushFull(content)
	default:
		script, err := e.engine.Diff(e.baseline, content)
		if err != nil {
			return fmt.Errorf("protocol: encode position %d: %w", n, err)
		}
		if script.IsNoop() {
			e.pushUnchanged()
			break
		}
		delta, err := e.engine.Serialize(script)
		if err != nil {
			return fmt.Errorf("protocol: encode position %d: %w", n, err)
		}
		e.frames = append(e.frames, &Delta{Script: stripNewlines(delta)})
		e.baseline = content
	}

	e.position++
	return nil
}

func (e *Encoder) pushFull(content string) {
	e.frames = append(e.frames, &Full{Content: content})
	e.baseline = content
	e.hasBaseline = true
}

func (e *Encoder) pushUnchanged() {
	if last, ok := e.frames[len(e.frames)-1].(*Unchanged); ok {
		last.Count++
		return
	}
	e.frames = append(e.frames, &Unchanged{Count: 1})
}

// Frames returns a copy of the frames encoded so far.
func (e *Encoder) Frames() []Frame {
	out := make([]Frame, len(e.frames))
	for i, f := range e.frames {
		out[i] = cloneFrame(f)
	}
	return out
}

// Finish seals the encoder and returns its frames.
// The encoder must not be used afterwards.
func (e *Encoder) Finish() []Frame {
	e.finished = true
	frames := e.frames
	e.frames = nil
	return frames
}

// WriteTo seals the encoder and writes the complete stream to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	if e.finished {
		return 0, ErrEncoderFinished
	}
	frames := e.Finish()

	sw := NewWriter(w)
	for _, f := range frames {
		if err := sw.WriteFrame(f); err != nil {
			return sw.Written(), err
		}
	}
	if err := sw.Flush(); err != nil {
		return sw.Written(), err
	}
	return sw.Written(), nil
}

func cloneFrame(f Frame) Frame {
	switch f := f.(type) {
	case *Initialization:
		c := *f
		return &c
	case *Style:
		c := *f
		return &c
	case *Full:
		c := *f
		return &c
	case *Delta:
		c := *f
		return &c
	case *Unchanged:
		c := *f
		return &c
	default:
		return f
	}
}
