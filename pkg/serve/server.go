package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vgv/pkg/export"
	"github.com/vango-dev/vgv/pkg/protocol"
)

// ErrNoInitialization is returned by New when the stream does not start
// with an Initialization frame.
var ErrNoInitialization = errors.New("serve: stream must start with an initialization frame")

// MinInterval is the shortest feed tick. Streams declaring a shorter frame
// duration are paced at MinInterval.
const MinInterval = 10 * time.Millisecond

// Server serves one decoded stream.
type Server struct {
	frames   []protocol.Frame
	raw      []byte
	page     []byte
	interval time.Duration

	player   *export.HTML
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	upgrader websocket.Upgrader
	loop     bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and feed logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithPlayer sets the exporter that builds the page served on GET /.
func WithPlayer(h *export.HTML) Option {
	return func(s *Server) {
		s.player = h
	}
}

// WithGatherer sets the registry exposed on /metrics.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithCheckOrigin overrides the websocket origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithLoop restarts the websocket feed from the top when it ends.
func WithLoop(loop bool) Option {
	return func(s *Server) {
		s.loop = loop
	}
}

// WithInterval overrides the feed tick, which defaults to the stream's
// frame duration.
func WithInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a Server for frames.
func New(frames []protocol.Frame, opts ...Option) (*Server, error) {
	if len(frames) == 0 {
		return nil, ErrNoInitialization
	}
	init, ok := frames[0].(*protocol.Initialization)
	if !ok {
		return nil, ErrNoInitialization
	}

	var buf bytes.Buffer
	if err := protocol.WriteStream(&buf, frames); err != nil {
		return nil, err
	}

	s := &Server{
		frames:   frames,
		raw:      buf.Bytes(),
		interval: init.FrameDuration(),
		gatherer: prometheus.DefaultGatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.interval < MinInterval {
		s.interval = MinInterval
	}
	if s.player == nil {
		s.player = export.NewHTML(export.WithLogger(s.logger))
	}

	var page bytes.Buffer
	if _, err := s.player.Export(context.Background(), frames, &page); err != nil {
		return nil, fmt.Errorf("serve: build player: %w", err)
	}
	s.page = page.Bytes()
	return s, nil
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePlayer)
	r.Get("/stream.vgv", s.handleStream)
	r.Get("/ws", s.handleFeed)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("vgv server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(s.raw)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
