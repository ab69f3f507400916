package export

import (
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vgv/pkg/diff"
)

// settings holds the configuration shared by the exporters.
// Options that do not apply to an exporter are ignored by it.
type settings struct {
	engine  diff.Engine
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// Video
	queueSize int
	width     int
	height    int
	audio     string

	// HTML
	title  string
	policy *bluemonday.Policy
}

// Option configures an exporter.
type Option func(*settings)

// WithDiffEngine sets the engine used to replay Delta frames
// (default: diff.NewDMP()).
func WithDiffEngine(e diff.Engine) Option {
	return func(s *settings) {
		s.engine = e
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithMetrics records export metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithTracer sets the tracer (default: from the global tracer provider).
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) {
		s.tracer = t
	}
}

// WithQueueSize sets the raster queue capacity (default: DefaultQueueSize).
func WithQueueSize(n int) Option {
	return func(s *settings) {
		s.queueSize = n
	}
}

// WithOutputSize overrides the video size; the scene is scaled to fit.
// Zero keeps the stream's declared dimension.
func WithOutputSize(width, height int) Option {
	return func(s *settings) {
		s.width = width
		s.height = height
	}
}

// WithAudio muxes an audio track into the video.
func WithAudio(path string) Option {
	return func(s *settings) {
		s.audio = path
	}
}

// WithTitle sets the title of the HTML player document.
func WithTitle(title string) Option {
	return func(s *settings) {
		s.title = title
	}
}

// WithSanitizer sanitizes scene markup embedded in the HTML player.
// A nil policy disables sanitizing. See SVGPolicy.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		queueSize: DefaultQueueSize,
		title:     "VGV Player",
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.engine == nil {
		s.engine = diff.NewDMP()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}
