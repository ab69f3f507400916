package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/vgv/pkg/protocol"
)

// run executes the CLI with args against a config file in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(dir, "vgv.json")
	if _, err := os.Stat(cfg); err != nil {
		data := `{"encode": {"durationMs": 100, "fullDiffRatio": 3}, "upload": {"store": "disk", "dir": "` +
			filepath.ToSlash(filepath.Join(dir, "published")) + `"}, "log": {"level": "error"}}`
		if err := os.WriteFile(cfg, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var stdout, stderr bytes.Buffer
	a := &app{stdin: strings.NewReader(""), stdout: &stdout, stderr: &stderr}
	root := a.rootCmd()
	root.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func writeSnapshots(t *testing.T, dir string, docs ...string) string {
	t.Helper()
	snaps := filepath.Join(dir, "snaps")
	if err := os.MkdirAll(snaps, 0755); err != nil {
		t.Fatal(err)
	}
	for i, doc := range docs {
		name := filepath.Join(snaps, string(rune('a'+i))+".svg")
		if err := os.WriteFile(name, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return snaps
}

func TestParseSnapshot(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want snapshot
	}{
		{
			name: "root svg",
			doc:  `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="320" height="240px"><rect width="10" height="10"/></svg>`,
			want: snapshot{Content: `<rect width="10" height="10"/>`, Width: 320, Height: 240},
		},
		{
			name: "whitespace trimmed",
			doc:  "<svg width=\"8\" height=\"6\">\n  <circle r=\"2\"/>\n</svg>\n",
			want: snapshot{Content: `<circle r="2"/>`, Width: 8, Height: 6},
		},
		{
			name: "no size",
			doc:  `<svg viewBox="0 0 10 10"><g/></svg>`,
			want: snapshot{Content: `<g/>`},
		},
		{
			name: "self closing",
			doc:  `<svg width="4" height="4"/>`,
			want: snapshot{Width: 4, Height: 4},
		},
		{
			name: "fragment",
			doc:  ` <rect width="1" height="1"/> `,
			want: snapshot{Content: `<rect width="1" height="1"/>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSnapshot(tt.doc); got != tt.want {
				t.Errorf("parseSnapshot() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"1280x720", 1280, 720, false},
		{"64X48", 64, 48, false},
		{"0x10", 0, 0, true},
		{"wide", 0, 0, true},
		{"10x", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr || w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %d, %d, %v", tt.in, w, h, err)
		}
	}
}

func TestEncodeInspect(t *testing.T) {
	dir := t.TempDir()
	snaps := writeSnapshots(t, dir,
		`<svg width="16" height="9"><rect x="1" y="1" width="4" height="4" fill="red"/></svg>`,
		`<svg width="16" height="9"><rect x="2" y="1" width="4" height="4" fill="red"/></svg>`,
		`<svg width="16" height="9"><rect x="2" y="1" width="4" height="4" fill="red"/></svg>`,
		`<svg width="16" height="9"><rect x="3" y="1" width="4" height="4" fill="blue"/></svg>`,
	)
	out := filepath.Join(dir, "demo.vgv")

	if _, err := run(t, dir, "encode", snaps, "-o", out, "--backdrop", "black"); err != nil {
		t.Fatalf("encode error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := protocol.Parse(string(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	init, ok := frames[0].(*protocol.Initialization)
	if !ok {
		t.Fatalf("first frame = %T", frames[0])
	}
	if init.Width != 16 || init.Height != 9 || init.Duration != 100 || init.Backdrop != "black" {
		t.Errorf("init = %+v", init)
	}
	if n := protocol.CountImages(frames); n != 4 {
		t.Errorf("images = %d, want 4", n)
	}

	stdout, err := run(t, dir, "inspect", "--json", "--verify", out)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	var stats streamStats
	if err := json.Unmarshal([]byte(stdout), &stats); err != nil {
		t.Fatalf("inspect output is not JSON: %v\n%s", err, stdout)
	}
	if stats.Images != 4 || stats.Frames != len(frames) || !stats.Verified {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Bytes != int64(len(data)) {
		t.Errorf("stats.Bytes = %d, want %d", stats.Bytes, len(data))
	}
	if stats.Duration != "400ms" {
		t.Errorf("stats.Duration = %q, want 400ms", stats.Duration)
	}
}

func TestEncodeStyleAndUpload(t *testing.T) {
	dir := t.TempDir()
	snaps := writeSnapshots(t, dir, `<svg width="4" height="4"><circle r="1"/></svg>`)
	css := filepath.Join(dir, "theme.css")
	if err := os.WriteFile(css, []byte("circle {\n  fill: red;\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "styled.vgv")

	if _, err := run(t, dir, "encode", snaps, "--style", css, "-o", out, "--upload", "."); err != nil {
		t.Fatalf("encode error = %v", err)
	}

	published, err := os.ReadFile(filepath.Join(dir, "published", "styled.vgv"))
	if err != nil {
		t.Fatalf("stream not uploaded: %v", err)
	}
	frames, err := protocol.Parse(string(published))
	if err != nil {
		t.Fatal(err)
	}
	style, ok := frames[1].(*protocol.Style)
	if !ok || style.CSS != "circle {  fill: red;}" {
		t.Errorf("frames[1] = %#v, want the stylesheet without newlines", frames[1])
	}
}

func TestPublishCommand(t *testing.T) {
	dir := t.TempDir()
	stream := filepath.Join(dir, "clip.vgv")
	data := "vgv1\nI50\t4\t4\twhite\t\nF<g/>\n"
	if err := os.WriteFile(stream, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default key", []string{"publish", stream}, "clip.vgv"},
		{"explicit key", []string{"publish", stream, "--key", "releases/v1.vgv"}, filepath.Join("releases", "v1.vgv")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := run(t, dir, tc.args...); err != nil {
				t.Fatalf("publish error = %v", err)
			}
			got, err := os.ReadFile(filepath.Join(dir, "published", tc.want))
			if err != nil {
				t.Fatalf("artifact not published: %v", err)
			}
			if string(got) != data {
				t.Errorf("published = %q, want %q", got, data)
			}
		})
	}

	_, err := run(t, dir, "publish", filepath.Join(dir, "missing.vgv"))
	if err == nil || !strings.HasPrefix(err.Error(), "E140") {
		t.Errorf("publish error = %v, want E140", err)
	}
}

func TestHTMLCommand(t *testing.T) {
	dir := t.TempDir()
	stream := filepath.Join(dir, "in.vgv")
	data := "vgv1\nI50\t4\t4\twhite\t\nF<rect width=\"2\" height=\"2\"/>\nU3\n"
	if err := os.WriteFile(stream, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, err := run(t, dir, "html", stream, "--title", "Tiny")
	if err != nil {
		t.Fatalf("html error = %v", err)
	}
	if !strings.Contains(stdout, "<title>Tiny</title>") || !strings.Contains(stdout, "const timeline = [0,0,0,0];") {
		t.Errorf("unexpected document:\n%s", stdout)
	}
}

func TestStreamErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.vgv")
	if err := os.WriteFile(bad, []byte("vgv1\nI50\t4\t4\twhite\t\nX1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, dir, "inspect", bad)
	if err == nil || !strings.HasPrefix(err.Error(), "E003") {
		t.Errorf("inspect error = %v, want E003", err)
	}

	_, err = run(t, dir, "html", filepath.Join(dir, "missing.vgv"))
	if err == nil || !strings.HasPrefix(err.Error(), "E140") {
		t.Errorf("html error = %v, want E140", err)
	}

	_, err = run(t, dir, "encode", filepath.Join(dir, "empty"))
	if err == nil || !strings.HasPrefix(err.Error(), "E140") {
		t.Errorf("encode error = %v, want E140", err)
	}
}

func TestVersion(t *testing.T) {
	stdout, err := run(t, t.TempDir(), "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != version {
		t.Errorf("version = %q, want %q", stdout, version)
	}
}
