package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vgv/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Encode.FullDiffRatio != DefaultFullDiffRatio {
		t.Errorf("Encode.FullDiffRatio = %d, want %d", cfg.Encode.FullDiffRatio, DefaultFullDiffRatio)
	}
	if cfg.FrameDuration() != 40*time.Millisecond {
		t.Errorf("FrameDuration() = %v, want 40ms", cfg.FrameDuration())
	}
	if cfg.Export.QueueSize != DefaultQueueSize {
		t.Errorf("Export.QueueSize = %d, want %d", cfg.Export.QueueSize, DefaultQueueSize)
	}
	if cfg.Export.FFmpeg != "ffmpeg" || cfg.Export.Title != "VGV Player" {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, DefaultAddr)
	}
	if cfg.SlogLevel() != slog.LevelInfo || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Load(tmpDir); err == nil {
		t.Error("Expected error for missing config")
	}

	configJSON := `{
  "encode": {"fullDiffRatio": 10, "durationMs": 500, "width": 320, "height": 240, "backdrop": "black"},
  "export": {"ffmpeg": "/opt/ffmpeg", "outputArgs": ["-pix_fmt", "yuv420p"], "sanitize": true},
  "upload": {"store": "s3", "bucket": "renders"},
  "log": {"level": "debug", "format": "json"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Encode.FullDiffRatio != 10 || cfg.Encode.DurationMs != 500 {
		t.Errorf("Encode = %+v", cfg.Encode)
	}
	if cfg.Encode.Width != 320 || cfg.Encode.Height != 240 || cfg.Encode.Backdrop != "black" {
		t.Errorf("Encode = %+v", cfg.Encode)
	}
	if cfg.Export.FFmpeg != "/opt/ffmpeg" || !cfg.Export.Sanitize {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if !reflect.DeepEqual(cfg.Export.OutputArgs, []string{"-pix_fmt", "yuv420p"}) {
		t.Errorf("Export.OutputArgs = %q", cfg.Export.OutputArgs)
	}
	// Defaults still fill the gaps.
	if cfg.Export.QueueSize != DefaultQueueSize {
		t.Errorf("Export.QueueSize = %d, want default", cfg.Export.QueueSize)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	data := `encode:
  fullDiffRatio: 5
  durationMs: 100
serve:
  addr: ":9000"
  loop: true
telemetry:
  endpoint: localhost:4318
  insecure: true
`
	if err := os.WriteFile(filepath.Join(tmpDir, "vgv.yaml"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Encode.FullDiffRatio != 5 || cfg.FrameDuration() != 100*time.Millisecond {
		t.Errorf("Encode = %+v", cfg.Encode)
	}
	if cfg.Serve.Addr != ":9000" || !cfg.Serve.Loop {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
	if cfg.Telemetry.Endpoint != "localhost:4318" || !cfg.Telemetry.Insecure {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	var ve *errors.VGVError
	if !stderrors.As(err, &ve) || ve.Code != "E121" {
		t.Errorf("LoadFile() error = %v, want E121", err)
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !stderrors.As(err, &ve) || ve.Code != "E120" {
		t.Errorf("LoadFile() error = %v, want E120", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	cfg.Upload.Bucket = "from-file"

	err := cfg.applyEnv(map[string]string{
		"VGV_ENCODE_FULL_DIFF_RATIO":   "7",
		"VGV_ENCODE_WIDTH":             "64",
		"VGV_EXPORT_OUTPUT_ARGS":       "-crf 18",
		"VGV_EXPORT_SANITIZE":          "true",
		"VGV_UPLOAD_REGION":            "eu-west-1",
		"VGV_UPLOAD_ACCESS_KEY_ID":     "AKID",
		"VGV_UPLOAD_SECRET_ACCESS_KEY": "secret",
		"VGV_TELEMETRY_SAMPLE_RATIO":   "0.5",
		"VGV_LOG_LEVEL":                "warn",
		"UNRELATED_ENCODE_WIDTH":       "1",
	})
	if err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	if cfg.Encode.FullDiffRatio != 7 || cfg.Encode.Width != 64 {
		t.Errorf("Encode = %+v", cfg.Encode)
	}
	if !reflect.DeepEqual(cfg.Export.OutputArgs, []string{"-crf", "18"}) || !cfg.Export.Sanitize {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if cfg.Upload.Bucket != "from-file" || cfg.Upload.Region != "eu-west-1" {
		t.Errorf("Upload = %+v", cfg.Upload)
	}
	if cfg.Upload.AccessKeyID != "AKID" || cfg.Upload.SecretAccessKey != "secret" {
		t.Error("credentials not read from the environment")
	}
	if cfg.Telemetry.SampleRatio != 0.5 || cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("Telemetry = %+v, Log = %+v", cfg.Telemetry, cfg.Log)
	}

	err = New().applyEnv(map[string]string{"VGV_ENCODE_WIDTH": "wide"})
	var ve *errors.VGVError
	if !stderrors.As(err, &ve) || ve.Code != "E123" {
		t.Errorf("applyEnv() error = %v, want E123", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		detail string
	}{
		{"ratio", func(c *Config) { c.Encode.FullDiffRatio = -1 }, "fullDiffRatio"},
		{"queue", func(c *Config) { c.Export.QueueSize = -5 }, "queueSize"},
		{"half size", func(c *Config) { c.Export.Width = 100 }, "set together"},
		{"negative size", func(c *Config) { c.Export.Width, c.Export.Height = -1, -1 }, "negative"},
		{"store", func(c *Config) { c.Upload.Store = "ftp" }, "upload.store"},
		{"s3 bucket", func(c *Config) { c.Upload.Store = "s3" }, "upload.bucket"},
		{"disk dir", func(c *Config) { c.Upload.Store = "disk" }, "upload.dir"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"ratio range", func(c *Config) { c.Telemetry.SampleRatio = 2 }, "sampleRatio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			var ve *errors.VGVError
			if !stderrors.As(err, &ve) || ve.Code != "E122" {
				t.Fatalf("Validate() = %v, want E122", err)
			}
			if !strings.Contains(ve.Detail, tt.detail) {
				t.Errorf("Detail = %q, want it to mention %q", ve.Detail, tt.detail)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	for _, name := range []string{"vgv.json", "vgv.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Encode.Width = 640
			cfg.Upload.Store = "disk"
			cfg.Upload.Dir = "out"
			cfg.Upload.SecretAccessKey = "secret"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Contains(string(data), "secret") {
				t.Error("credentials must not be saved")
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Encode.Width != 640 || loaded.Upload.Dir != "out" {
				t.Errorf("loaded = %+v", loaded)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "vgv.yml"), []byte("log:\n  level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	if got != root {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}

	if !Exists(root) || Exists(nested) {
		t.Error("Exists() reports the wrong directory")
	}
}

func TestDiscover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"serve": {"addr": ":1"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VGV_SERVE_LOOP", "true")

	cfg, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if cfg.Serve.Addr != ":1" || !cfg.Serve.Loop {
		t.Errorf("Serve = %+v", cfg.Serve)
	}

	t.Setenv("VGV_LOG_FORMAT", "xml")
	if _, err := Discover(path); err == nil {
		t.Error("Discover() should validate environment overrides")
	}
}
