package diff

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DMP is an Engine backed by diff-match-patch.
//
// The zero value is not usable; create one with NewDMP.
type DMP struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDMP creates a diff-match-patch engine.
// The diff timeout is disabled so the same inputs always yield the same script.
func NewDMP() *DMP {
	d := diffmatchpatch.New()
	d.DiffTimeout = 0
	return &DMP{dmp: d}
}

// Diff computes the edit script transforming a into b.
func (e *DMP) Diff(a, b string) (script Script, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Op: "diff", Err: fmt.Errorf("%v", r)}
		}
	}()
	diffs := e.dmp.DiffMain(a, b, false)
	return fromDiffs(diffs), nil
}

// Serialize encodes a script into the diff-match-patch delta format.
func (e *DMP) Serialize(s Script) (string, error) {
	for _, ed := range s {
		if ed.Op < OpDelete || ed.Op > OpInsert {
			return "", &Error{Op: "serialize", Err: fmt.Errorf("invalid op %d", ed.Op)}
		}
	}
	return e.dmp.DiffToDelta(toDiffs(s)), nil
}

// Deserialize decodes a delta computed against source.
func (e *DMP) Deserialize(source, delta string) (Script, error) {
	if err := checkDelta(delta); err != nil {
		return nil, wrap("deserialize", err)
	}
	diffs, err := e.dmp.DiffFromDelta(source, delta)
	if err != nil {
		return nil, wrap("deserialize", fmt.Errorf("%w: %v", ErrSourceMismatch, err))
	}
	return fromDiffs(diffs), nil
}

// checkDelta validates the token syntax of a delta. Blank tokens, as left by
// a trailing tab, are allowed.
func checkDelta(delta string) error {
	for i, tok := range strings.Split(delta, "\t") {
		if tok == "" {
			continue
		}
		param := tok[1:]
		switch tok[0] {
		case '+':
			if _, err := url.QueryUnescape(strings.ReplaceAll(param, "+", "%2b")); err != nil {
				return fmt.Errorf("%w: token %d: %v", ErrMalformedDelta, i+1, err)
			}
		case '=', '-':
			n, err := strconv.Atoi(param)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: token %d: invalid count %q", ErrMalformedDelta, i+1, param)
			}
		default:
			return fmt.Errorf("%w: token %d: invalid op %q", ErrMalformedDelta, i+1, tok[0])
		}
	}
	return nil
}

// Apply builds a patch set from the script and applies it to source.
// Every hunk must apply; a partially applied result is never returned.
func (e *DMP) Apply(s Script, source string) (string, error) {
	if s.IsNoop() {
		return source, nil
	}
	if s.Source() != source {
		return "", wrap("apply", ErrSourceMismatch)
	}

	patches := e.dmp.PatchMake(source, toDiffs(s))
	out, applied := e.dmp.PatchApply(patches, source)
	for i, ok := range applied {
		if !ok {
			return "", wrap("apply", fmt.Errorf("%w: hunk %d of %d", ErrPatchFailed, i+1, len(applied)))
		}
	}
	if out != s.Target() {
		return "", wrap("apply", ErrPatchFailed)
	}
	return out, nil
}

func fromDiffs(diffs []diffmatchpatch.Diff) Script {
	s := make(Script, 0, len(diffs))
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		default:
			op = OpEqual
		}
		s = append(s, Edit{Op: op, Text: d.Text})
	}
	return s
}

func toDiffs(s Script) []diffmatchpatch.Diff {
	diffs := make([]diffmatchpatch.Diff, 0, len(s))
	for _, ed := range s {
		var t diffmatchpatch.Operation
		switch ed.Op {
		case OpDelete:
			t = diffmatchpatch.DiffDelete
		case OpInsert:
			t = diffmatchpatch.DiffInsert
		default:
			t = diffmatchpatch.DiffEqual
		}
		diffs = append(diffs, diffmatchpatch.Diff{Type: t, Text: ed.Text})
	}
	return diffs
}
