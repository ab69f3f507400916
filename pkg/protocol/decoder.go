package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decoder reads frames from a VGV stream one line at a time.
type Decoder struct {
	sc     *bufio.Scanner
	line   int
	header bool
	err    error
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Decoder{sc: sc, line: -1}
}

// Line returns the line number of the last frame returned by Next.
// The magic header is line 0.
func (d *Decoder) Line() int {
	return d.line
}

// Next returns the next frame of the stream.
// It returns io.EOF after the last frame. Once Next has returned an error,
// every later call returns the same error.
func (d *Decoder) Next() (Frame, error) {
	if d.err != nil {
		return nil, d.err
	}

	if !d.header {
		d.header = true
		if !d.scan() {
			if d.err == nil || d.err == io.EOF {
				d.err = &HeaderError{}
			}
			return nil, d.err
		}
		if got := d.sc.Text(); got != Magic {
			d.err = &HeaderError{Got: got}
			return nil, d.err
		}
	}

	if !d.scan() {
		return nil, d.err
	}

	f, err := ParseFrame(d.sc.Text())
	if err != nil {
		d.err = &ParseError{Line: d.line, Err: err}
		return nil, d.err
	}
	return f, nil
}

func (d *Decoder) scan() bool {
	if d.sc.Scan() {
		d.line++
		return true
	}
	err := d.sc.Err()
	switch {
	case err == nil:
		d.err = io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		d.err = &ParseError{Line: d.line + 1, Err: ErrLineTooLong}
	default:
		d.err = err
	}
	return false
}

// ReadAll decodes every frame of the stream read from r.
// On error no frames are returned.
func ReadAll(r io.Reader) ([]Frame, error) {
	d := NewDecoder(r)
	var frames []Frame
	for {
		f, err := d.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// Parse decodes a complete stream held in memory.
func Parse(data string) ([]Frame, error) {
	return ReadAll(strings.NewReader(data))
}

// ParseFrame decodes a single frame line (tag and body, no newline).
func ParseFrame(line string) (Frame, error) {
	if line == "" {
		return nil, ErrEmptyFrame
	}

	tag, body := Tag(line[0]), line[1:]
	switch tag {
	case TagStyle:
		return &Style{CSS: body}, nil
	case TagFull:
		return &Full{Content: body}, nil
	case TagDelta:
		return &Delta{Script: body}, nil
	case TagUnchanged:
		count, err := strconv.ParseUint(body, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid unchanged count %q: %w", body, err)
		}
		if count == 0 {
			return nil, ErrInvalidCount
		}
		return &Unchanged{Count: uint32(count)}, nil
	case TagInitialization:
		return parseInitialization(body)
	case TagAudio:
		return nil, &UnsupportedFrameError{Tag: tag, Reserved: true}
	default:
		return nil, &UnsupportedFrameError{Tag: tag}
	}
}

// parseInitialization decodes "duration\twidth\theight\tbackdrop\tattributes".
// The attributes are the last tab-separated segment; any extra segments
// between the backdrop and the last one are dropped.
func parseInitialization(body string) (*Initialization, error) {
	parts := strings.Split(body, "\t")
	next := func(name string) (string, error) {
		if len(parts) == 0 {
			return "", fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		p := parts[0]
		parts = parts[1:]
		return p, nil
	}

	raw, err := next("frame duration")
	if err != nil {
		return nil, err
	}
	duration, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid frame duration %q: %w", raw, err)
	}

	raw, err = next("frame width")
	if err != nil {
		return nil, err
	}
	width, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid frame width %q: %w", raw, err)
	}

	raw, err = next("frame height")
	if err != nil {
		return nil, err
	}
	height, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid frame height %q: %w", raw, err)
	}

	backdrop, err := next("backdrop color")
	if err != nil {
		return nil, err
	}

	var attrs string
	if len(parts) > 0 {
		attrs = parts[len(parts)-1]
	}

	return &Initialization{
		Duration:   duration,
		Width:      uint32(width),
		Height:     uint32(height),
		Backdrop:   backdrop,
		Attributes: attrs,
	}, nil
}
