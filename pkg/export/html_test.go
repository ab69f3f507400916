package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vgv/pkg/protocol"
)

func decodeFrame(t *testing.T, s string) string {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("frame is not base64: %v", err)
	}
	return string(b)
}

func TestHTMLBuild(t *testing.T) {
	frames := append(scenario(t),
		&protocol.Style{CSS: "rect{fill:red}"},
		&protocol.Unchanged{Count: 1},
		&protocol.Full{Content: `<rect width="10" height="10"/>`},
	)

	p, err := NewHTML().Build(context.Background(), frames)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if want := []int{0, 1, 1, 1, 2, 3}; !reflect.DeepEqual(p.Timeline, want) {
		t.Errorf("Timeline = %v, want %v", p.Timeline, want)
	}
	if len(p.Frames) != 4 {
		t.Fatalf("Frames = %d, want 4", len(p.Frames))
	}
	if p.Interval != 500 || p.Width != 8 || p.Height != 6 {
		t.Errorf("player = %dms %dx%d, want 500ms 8x6", p.Interval, p.Width, p.Height)
	}

	svg := decodeFrame(t, p.Frames[0].SVG)
	want := `<svg width="8" height="6"><rect width="100%" height="100%" fill="#000000"/><rect width="10" height="10"/></svg>`
	if svg != want {
		t.Errorf("frame 0 svg = %q, want %q", svg, want)
	}
	if got := decodeFrame(t, p.Frames[2].Style); got != "rect{fill:red}" {
		t.Errorf("frame 2 style = %q", got)
	}
	if got := decodeFrame(t, p.Frames[0].Style); got != "" {
		t.Errorf("frame 0 style = %q, want empty", got)
	}
}

func TestHTMLBuildEmptyStream(t *testing.T) {
	p, err := NewHTML().Build(context.Background(), []protocol.Frame{
		&protocol.Initialization{Duration: 100, Width: 1, Height: 1, Backdrop: "blue"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(p.Frames) != 1 || len(p.Timeline) != 1 {
		t.Errorf("player = %d frames, %d ticks, want the empty canvas once", len(p.Frames), len(p.Timeline))
	}
}

func TestHTMLExport(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTML(WithTitle("Demo <1>"))
	res, err := h.Export(context.Background(), scenario(t), &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	doc := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Demo &lt;1&gt;</title>",
		`<style id="framestyles">`,
		"const timeline = [0,1,1,1];",
		"setInterval(",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Contains(doc, "<rect") {
		t.Error("scene markup should only appear base64 encoded")
	}

	if res.Images != 4 || res.Unique != 2 || res.Bytes != int64(buf.Len()) {
		t.Errorf("Result = %+v", res)
	}
	if res.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", res.Duration)
	}
}

func TestHTMLSanitize(t *testing.T) {
	frames := []protocol.Frame{
		&protocol.Initialization{Duration: 100, Width: 4, Height: 4, Backdrop: "white"},
		&protocol.Full{Content: `<script>alert(1)</script><rect width="2" height="2" onclick="steal()" fill="red"/><image href="http://evil/x.png"/>`},
	}

	p, err := NewHTML(WithSanitizer(SVGPolicy())).Build(context.Background(), frames)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	svg := decodeFrame(t, p.Frames[0].SVG)

	for _, banned := range []string{"script", "alert", "onclick", "steal", "image", "evil"} {
		if strings.Contains(svg, banned) {
			t.Errorf("sanitized svg %q still contains %q", svg, banned)
		}
	}
	for _, kept := range []string{"<svg", "<rect", `fill="red"`, `width="2"`} {
		if !strings.Contains(svg, kept) {
			t.Errorf("sanitized svg %q lost %q", svg, kept)
		}
	}
}

func TestHTMLErrors(t *testing.T) {
	if _, err := NewHTML().Build(context.Background(), nil); !errors.Is(err, ErrNoInitialization) {
		t.Errorf("Build(nil) error = %v, want ErrNoInitialization", err)
	}

	bad := []protocol.Frame{
		&protocol.Initialization{Duration: 10, Width: 1, Height: 1},
		&protocol.Full{Content: "abc"},
		&protocol.Delta{Script: "=9\t+x"},
	}
	_, err := NewHTML().Export(context.Background(), bad, &bytes.Buffer{})
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Stage != StageReplay || pe.Index != 1 {
		t.Errorf("Export() error = %v, want replay PipelineError at image 1", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHTML().Build(ctx, scenario(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}
