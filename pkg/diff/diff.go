package diff

import (
	"errors"
	"fmt"
	"strings"
)

// Op identifies the kind of a single edit.
type Op int8

const (
	OpDelete Op = -1 // Text removed from the source
	OpEqual  Op = 0  // Text kept from the source
	OpInsert Op = 1  // Text added to the target
)

// String returns the string representation of the op.
func (op Op) String() string {
	switch op {
	case OpDelete:
		return "Delete"
	case OpEqual:
		return "Equal"
	case OpInsert:
		return "Insert"
	default:
		return "Unknown"
	}
}

// Edit is one step of an edit script.
type Edit struct {
	Op   Op
	Text string
}

// Script is an ordered edit script transforming a source text into a target text.
type Script []Edit

// IsNoop reports whether applying the script leaves the source unchanged:
// either there are no edits at all or a single Equal edit spans the whole text.
func (s Script) IsNoop() bool {
	switch len(s) {
	case 0:
		return true
	case 1:
		return s[0].Op == OpEqual
	default:
		return false
	}
}

// Source reconstructs the text the script was computed against.
func (s Script) Source() string {
	var b strings.Builder
	for _, e := range s {
		if e.Op != OpInsert {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// Target reconstructs the text the script produces.
func (s Script) Target() string {
	var b strings.Builder
	for _, e := range s {
		if e.Op != OpDelete {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// Engine computes, serializes and applies edit scripts.
type Engine interface {
	// Diff computes the edit script transforming a into b.
	Diff(a, b string) (Script, error)

	// Serialize encodes a script into its compact delta form.
	Serialize(s Script) (string, error)

	// Deserialize decodes a delta computed against source.
	Deserialize(source, delta string) (Script, error)

	// Apply applies the script to source and returns the target text.
	// A script that does not cleanly match source is an error.
	Apply(s Script, source string) (string, error)
}

// Diff errors.
var (
	// ErrPatchFailed is returned when a patch hunk does not apply to the source.
	ErrPatchFailed = errors.New("diff: patch does not apply")

	// ErrSourceMismatch is returned when a delta was computed against a
	// different source text than the one supplied.
	ErrSourceMismatch = errors.New("diff: delta does not match source")

	// ErrMalformedDelta is returned when a delta is not in the engine's
	// delta syntax.
	ErrMalformedDelta = errors.New("diff: malformed delta")
)

// Error wraps a failure from an Engine operation.
type Error struct {
	Op  string // "diff", "serialize", "deserialize" or "apply"
	Err error
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("diff: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Op: op, Err: err}
}
