package protocol

import (
	"errors"
	"fmt"
)

// Protocol errors.
var (
	// ErrEmptyFrame is returned for a frame line without a tag.
	ErrEmptyFrame = errors.New("protocol: empty frame")

	// ErrMissingField is returned when an Initialization body lacks a field.
	ErrMissingField = errors.New("protocol: missing field")

	// ErrInvalidCount is returned for an Unchanged frame with a zero count.
	ErrInvalidCount = errors.New("protocol: invalid unchanged count")

	// ErrLineTooLong is returned when a frame line exceeds MaxLineSize.
	ErrLineTooLong = errors.New("protocol: frame line too long")

	// ErrInvalidInitialization is returned by NewEncoder for unusable stream parameters.
	ErrInvalidInitialization = errors.New("protocol: invalid initialization")

	// ErrEncoderFinished is returned when an Encoder is used after Finish.
	ErrEncoderFinished = errors.New("protocol: encoder finished")
)

// HeaderError is returned when a stream does not start with the magic token.
// No frames are parsed from such a stream.
type HeaderError struct {
	Got string // First line of the stream, empty if the stream was empty
}

// Error returns the error message.
func (e *HeaderError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("protocol: missing magic header, expected %q", Magic)
	}
	return fmt.Sprintf("protocol: invalid magic header %q, expected %q", truncate(e.Got, 32), Magic)
}

// ParseError is returned when a frame line cannot be decoded.
// Line is 1-based, counting the magic header as line 0.
type ParseError struct {
	Line int
	Err  error
}

// Error returns the error message with line context.
func (e *ParseError) Error() string {
	return fmt.Sprintf("protocol: line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFrameError is returned for unknown and reserved frame tags.
type UnsupportedFrameError struct {
	Tag      Tag
	Reserved bool // Tag is reserved for a future frame type
}

// Error returns the error message.
func (e *UnsupportedFrameError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("protocol: %s frames are not supported", e.Tag)
	}
	return fmt.Sprintf("protocol: unknown frame type %q", rune(e.Tag))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
