package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vgv/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vgv.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "VGV_"

	// DefaultFullDiffRatio emits a Full frame every 100 content frames.
	DefaultFullDiffRatio = 100

	// DefaultDurationMs is the default frame duration (25 fps).
	DefaultDurationMs = 40

	// DefaultQueueSize is the default raster queue capacity.
	DefaultQueueSize = 1000

	// DefaultAddr is the default serve address.
	DefaultAddr = "localhost:8080"

	// DefaultServiceName is the default OpenTelemetry service name.
	DefaultServiceName = "vgv"
)

// fileNames lists the recognized configuration files in lookup order.
var fileNames = []string{ConfigFileName, "vgv.yaml", "vgv.yml"}

// Config represents the complete vgv configuration.
type Config struct {
	// Encode contains stream encoding settings.
	Encode EncodeConfig `json:"encode" yaml:"encode" envPrefix:"ENCODE_"`

	// Export contains video and HTML export settings.
	Export ExportConfig `json:"export" yaml:"export" envPrefix:"EXPORT_"`

	// Serve contains HTTP server settings.
	Serve ServeConfig `json:"serve" yaml:"serve" envPrefix:"SERVE_"`

	// Upload contains artifact storage settings.
	Upload UploadConfig `json:"upload" yaml:"upload" envPrefix:"UPLOAD_"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log" envPrefix:"LOG_"`

	// Telemetry contains OpenTelemetry settings.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry" envPrefix:"TELEMETRY_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// EncodeConfig contains stream encoding settings.
type EncodeConfig struct {
	// FullDiffRatio is the Full frame period in content frames.
	FullDiffRatio int `json:"fullDiffRatio,omitempty" yaml:"fullDiffRatio,omitempty" env:"FULL_DIFF_RATIO"`

	// DurationMs is the frame duration in milliseconds.
	DurationMs uint64 `json:"durationMs,omitempty" yaml:"durationMs,omitempty" env:"DURATION_MS"`

	// Width and Height are the canvas size. Zero reads the size from the
	// first snapshot's svg element.
	Width  uint32 `json:"width,omitempty" yaml:"width,omitempty" env:"WIDTH"`
	Height uint32 `json:"height,omitempty" yaml:"height,omitempty" env:"HEIGHT"`

	// Backdrop is the canvas background color.
	Backdrop string `json:"backdrop,omitempty" yaml:"backdrop,omitempty" env:"BACKDROP"`

	// Attributes are extra attributes for the root svg element.
	Attributes string `json:"attributes,omitempty" yaml:"attributes,omitempty" env:"ATTRIBUTES"`

	// Style is the path of a CSS file emitted as a Style frame.
	Style string `json:"style,omitempty" yaml:"style,omitempty" env:"STYLE"`
}

// ExportConfig contains video and HTML export settings.
type ExportConfig struct {
	// QueueSize is the raster queue capacity.
	QueueSize int `json:"queueSize,omitempty" yaml:"queueSize,omitempty" env:"QUEUE_SIZE"`

	// FFmpeg is the ffmpeg binary.
	FFmpeg string `json:"ffmpeg,omitempty" yaml:"ffmpeg,omitempty" env:"FFMPEG"`

	// OutputArgs are extra ffmpeg output options.
	OutputArgs []string `json:"outputArgs,omitempty" yaml:"outputArgs,omitempty" env:"OUTPUT_ARGS" envSeparator:" "`

	// Width and Height override the output size. Zero keeps the stream size.
	Width  int `json:"width,omitempty" yaml:"width,omitempty" env:"WIDTH"`
	Height int `json:"height,omitempty" yaml:"height,omitempty" env:"HEIGHT"`

	// Audio is an audio file muxed into video exports.
	Audio string `json:"audio,omitempty" yaml:"audio,omitempty" env:"AUDIO"`

	// Sanitize strips scripts and foreign content from HTML exports.
	Sanitize bool `json:"sanitize,omitempty" yaml:"sanitize,omitempty" env:"SANITIZE"`

	// Title is the HTML player title.
	Title string `json:"title,omitempty" yaml:"title,omitempty" env:"TITLE"`
}

// ServeConfig contains HTTP server settings.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" env:"ADDR"`

	// Loop restarts the websocket feed when it ends.
	Loop bool `json:"loop,omitempty" yaml:"loop,omitempty" env:"LOOP"`
}

// UploadConfig contains artifact storage settings.
type UploadConfig struct {
	// Store is "s3", "disk" or empty to disable uploads.
	Store string `json:"store,omitempty" yaml:"store,omitempty" env:"STORE"`

	// Bucket, Prefix, Region, Endpoint and PathStyle configure S3.
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty" env:"BUCKET"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty" env:"PREFIX"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty" env:"REGION"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"ENDPOINT"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty" env:"PATH_STYLE"`

	// Dir is the DiskStore directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" env:"DIR"`

	// MaxSize limits artifact size in bytes (0 = no limit).
	MaxSize int64 `json:"maxSize,omitempty" yaml:"maxSize,omitempty" env:"MAX_SIZE"`

	// Credentials come from the environment only.
	AccessKeyID     string `json:"-" yaml:"-" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" yaml:"-" env:"SECRET_ACCESS_KEY"`
	SessionToken    string `json:"-" yaml:"-" env:"SESSION_TOKEN"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty" env:"FORMAT"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector (host:port). Empty disables tracing.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"ENDPOINT"`

	// Insecure sends spans over plain HTTP.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty" env:"INSECURE"`

	// ServiceName is reported as service.name.
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" env:"SERVICE_NAME"`

	// SampleRatio is the fraction of traces sampled (0 uses 1).
	SampleRatio float64 `json:"sampleRatio,omitempty" yaml:"sampleRatio,omitempty" env:"SAMPLE_RATIO"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for vgv.json, vgv.yaml and vgv.yml in that order.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E120").
		WithDetail("No vgv.json, vgv.yaml or vgv.yml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E120").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E121").Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E121").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Discover loads the configuration for the CLI. An explicit path must
// exist. Otherwise the nearest configuration file above the working
// directory is used, falling back to defaults. Environment overrides are
// applied and the result validated.
func Discover(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch {
	case path != "":
		cfg, err = LoadFile(path)
	default:
		cfg, err = loadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}

// ApplyEnv overrides fields from VGV_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(nil)
}

func (c *Config) applyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("E123").Wrap(err)
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension says so and JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E121").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E121").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Encode.FullDiffRatio == 0 {
		c.Encode.FullDiffRatio = DefaultFullDiffRatio
	}
	if c.Encode.DurationMs == 0 {
		c.Encode.DurationMs = DefaultDurationMs
	}
	if c.Encode.Backdrop == "" {
		c.Encode.Backdrop = "white"
	}

	if c.Export.QueueSize == 0 {
		c.Export.QueueSize = DefaultQueueSize
	}
	if c.Export.FFmpeg == "" {
		c.Export.FFmpeg = "ffmpeg"
	}
	if c.Export.Title == "" {
		c.Export.Title = "VGV Player"
	}

	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	if c.Telemetry.SampleRatio == 0 {
		c.Telemetry.SampleRatio = 1
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E122").WithDetail(detail)
	}

	if c.Encode.FullDiffRatio < 1 {
		return invalid("encode.fullDiffRatio must be at least 1, got " + strconv.Itoa(c.Encode.FullDiffRatio))
	}
	if c.Export.QueueSize < 1 {
		return invalid("export.queueSize must be at least 1")
	}
	if c.Export.Width < 0 || c.Export.Height < 0 {
		return invalid("export.width and export.height must not be negative")
	}
	if (c.Export.Width == 0) != (c.Export.Height == 0) {
		return invalid("export.width and export.height must be set together")
	}
	if c.Upload.MaxSize < 0 {
		return invalid("upload.maxSize must not be negative")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return invalid("telemetry.sampleRatio must be between 0 and 1")
	}

	switch c.Upload.Store {
	case "":
	case "s3":
		if c.Upload.Bucket == "" {
			return invalid("upload.bucket is required for the s3 store")
		}
	case "disk":
		if c.Upload.Dir == "" {
			return invalid("upload.dir is required for the disk store")
		}
	default:
		return invalid("upload.store must be s3 or disk, got " + strconv.Quote(c.Upload.Store))
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level must be debug, info, warn or error, got " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	return nil
}

// FrameDuration returns the configured frame duration.
func (c *Config) FrameDuration() time.Duration {
	return time.Duration(c.Encode.DurationMs) * time.Millisecond
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E120").
				WithDetail("No vgv.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
