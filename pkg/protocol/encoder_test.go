package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/vgv/pkg/diff"
)

func testInit() *Initialization {
	return &Initialization{Duration: 40, Width: 100, Height: 100, Backdrop: "#ffffff"}
}

func newTestEncoder(t *testing.T, opts ...EncoderOption) *Encoder {
	t.Helper()
	enc, err := NewEncoder(testInit(), opts...)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	return enc
}

func tagsOf(frames []Frame) string {
	var b strings.Builder
	for _, f := range frames {
		b.WriteByte(byte(f.Tag()))
		if u, ok := f.(*Unchanged); ok {
			fmt.Fprintf(&b, "%d", u.Count)
		}
	}
	return b.String()
}

func TestNewEncoderValidation(t *testing.T) {
	tests := []struct {
		name string
		init *Initialization
	}{
		{"nil", nil},
		{"zero_duration", &Initialization{Width: 1, Height: 1}},
		{"zero_width", &Initialization{Duration: 1, Height: 1}},
		{"zero_height", &Initialization{Duration: 1, Width: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEncoder(tc.init)
			if !errors.Is(err, ErrInvalidInitialization) {
				t.Errorf("NewEncoder() error = %v, want ErrInvalidInitialization", err)
			}
		})
	}
}

func TestEncoderBootstrapAndDelta(t *testing.T) {
	enc := newTestEncoder(t)

	for _, c := range []string{`<rect x="10"/>`, `<rect x="22"/>`, `<rect x="23"/>`} {
		if err := enc.AddContent(c); err != nil {
			t.Fatalf("AddContent(%q) error = %v", c, err)
		}
	}

	if got := tagsOf(enc.Frames()); got != "IFDD" {
		t.Errorf("frames = %s, want IFDD", got)
	}
}

func TestEncoderCoalescesUnchanged(t *testing.T) {
	enc := newTestEncoder(t)
	content := `<rect width="10" height="10"/>`

	if err := enc.AddContent(content); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := enc.AddContent(content); err != nil {
			t.Fatal(err)
		}
	}

	frames := enc.Frames()
	if got := tagsOf(frames); got != "IFU3" {
		t.Errorf("frames = %s, want IFU3", got)
	}
}

func TestEncoderUnchangedRunRestartsAfterDelta(t *testing.T) {
	enc := newTestEncoder(t)
	for _, c := range []string{"a", "a", "b", "b", "b"} {
		if err := enc.AddContent(c); err != nil {
			t.Fatal(err)
		}
	}
	if got := tagsOf(enc.Frames()); got != "IFU1DU2" {
		t.Errorf("frames = %s, want IFU1DU2", got)
	}
}

func TestEncoderPeriodicFull(t *testing.T) {
	enc := newTestEncoder(t, WithFullDiffRatio(3))
	for i := 1; i <= 7; i++ {
		if err := enc.AddContent(fmt.Sprintf(`<circle r="%d"/>`, i)); err != nil {
			t.Fatal(err)
		}
	}

	// Positions 1..7: 1 bootstrap, 3 and 6 periodic.
	if got := tagsOf(enc.Frames()); got != "IFDFDDFD" {
		t.Errorf("frames = %s, want IFDFDDFD", got)
	}
}

func TestEncoderPeriodicBound(t *testing.T) {
	const k = 5
	enc := newTestEncoder(t, WithFullDiffRatio(k))
	for i := 0; i < 60; i++ {
		// Alternate runs of changed and unchanged content.
		if err := enc.AddContent(fmt.Sprintf("<g>%d</g>", i/3)); err != nil {
			t.Fatal(err)
		}
	}

	run := 0
	for _, f := range enc.Frames()[1:] {
		switch f.(type) {
		case *Full:
			run = 0
		case *Delta, *Unchanged:
			run++
			if run > k-1 {
				t.Fatalf("run of %d Delta/Unchanged frames exceeds %d", run, k-1)
			}
		}
	}
}

func TestEncoderStyleFrames(t *testing.T) {
	enc := newTestEncoder(t)
	if err := enc.AddStyle("rect {\n fill: red;\n}"); err != nil {
		t.Fatal(err)
	}
	if err := enc.AddContent("<rect/>"); err != nil {
		t.Fatal(err)
	}
	frames := enc.Frames()
	if got := tagsOf(frames); got != "ISF" {
		t.Fatalf("frames = %s, want ISF", got)
	}
	if css := frames[1].(*Style).CSS; strings.Contains(css, "\n") {
		t.Errorf("Style CSS contains newline: %q", css)
	}
}

type failingEngine struct {
	diff.Engine
}

func (failingEngine) Diff(a, b string) (diff.Script, error) {
	return nil, &diff.Error{Op: "diff", Err: errors.New("boom")}
}

func TestEncoderDiffFailureAppendsNothing(t *testing.T) {
	enc := newTestEncoder(t, WithDiffEngine(failingEngine{}))
	if err := enc.AddContent("a"); err != nil {
		t.Fatalf("bootstrap AddContent() error = %v", err)
	}

	err := enc.AddContent("b")
	var de *diff.Error
	if !errors.As(err, &de) {
		t.Fatalf("AddContent() error = %v, want *diff.Error", err)
	}
	if got := tagsOf(enc.Frames()); got != "IF" {
		t.Errorf("frames = %s, want IF", got)
	}
}

func TestEncoderFinish(t *testing.T) {
	enc := newTestEncoder(t)
	if err := enc.AddContent("a"); err != nil {
		t.Fatal(err)
	}

	frames := enc.Finish()
	if len(frames) != 2 {
		t.Fatalf("Finish() returned %d frames, want 2", len(frames))
	}
	if err := enc.AddContent("b"); !errors.Is(err, ErrEncoderFinished) {
		t.Errorf("AddContent() after Finish error = %v, want ErrEncoderFinished", err)
	}
	if err := enc.AddStyle("x"); !errors.Is(err, ErrEncoderFinished) {
		t.Errorf("AddStyle() after Finish error = %v, want ErrEncoderFinished", err)
	}
	if _, err := enc.WriteTo(&bytes.Buffer{}); !errors.Is(err, ErrEncoderFinished) {
		t.Errorf("WriteTo() after Finish error = %v, want ErrEncoderFinished", err)
	}
}

func TestEncoderFramesIsCopy(t *testing.T) {
	enc := newTestEncoder(t)
	_ = enc.AddContent("a")
	_ = enc.AddContent("a")

	frames := enc.Frames()
	frames[2].(*Unchanged).Count = 99

	_ = enc.AddContent("a")
	if got := tagsOf(enc.Frames()); got != "IFU2" {
		t.Errorf("frames = %s, want IFU2", got)
	}
}

func TestEncoderWriteTo(t *testing.T) {
	enc := newTestEncoder(t)
	_ = enc.AddContent(`<rect x="10"/>`)
	_ = enc.AddContent(`<rect x="22"/>`)
	_ = enc.AddContent(`<rect x="22"/>`)

	var buf bytes.Buffer
	n, err := enc.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() = %d, wrote %d bytes", n, buf.Len())
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"vgv1",
		"I40\t100\t100\t#ffffff\t",
		`F<rect x="10"/>`,
		"D=9\t-2\t+22\t=3",
		"U1",
	}
	if len(lines) != len(want) {
		t.Fatalf("stream has %d lines, want %d: %q", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncoderStripsNewlinesFromContent(t *testing.T) {
	enc := newTestEncoder(t)
	_ = enc.AddContent("<g>\n<rect/>\n</g>")
	_ = enc.AddContent("<g><rect/></g>")

	// Identical once newlines are stripped.
	if got := tagsOf(enc.Frames()); got != "IFU1" {
		t.Errorf("frames = %s, want IFU1", got)
	}
}
