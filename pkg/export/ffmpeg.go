package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// FFmpeg opens muxers backed by an ffmpeg subprocess reading raw RGBA frames
// from its standard input.
type FFmpeg struct {
	path       string
	outputArgs []string
	logger     *slog.Logger
}

// FFmpegOption configures FFmpeg.
type FFmpegOption func(*FFmpeg)

// WithFFmpegPath sets the ffmpeg binary (default: "ffmpeg" from PATH).
func WithFFmpegPath(path string) FFmpegOption {
	return func(f *FFmpeg) {
		if path != "" {
			f.path = path
		}
	}
}

// WithOutputArgs adds encoder arguments placed before the output path,
// e.g. "-c:v", "libx264", "-pix_fmt", "yuv420p".
func WithOutputArgs(args ...string) FFmpegOption {
	return func(f *FFmpeg) {
		f.outputArgs = append(f.outputArgs, args...)
	}
}

// WithFFmpegLogger sets the logger (default: slog.Default()).
func WithFFmpegLogger(l *slog.Logger) FFmpegOption {
	return func(f *FFmpeg) {
		f.logger = l
	}
}

// NewFFmpeg creates an ffmpeg muxer factory.
func NewFFmpeg(opts ...FFmpegOption) *FFmpeg {
	f := &FFmpeg{path: "ffmpeg"}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Args returns the ffmpeg command line arguments for spec.
//
// The raw video is input 0 and read from stdin; an audio track, if any, is
// input 1 and the output is cut to the shorter of the two.
func (f *FFmpeg) Args(spec MuxSpec) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", strconv.Itoa(spec.Width) + "x" + strconv.Itoa(spec.Height),
		"-framerate", spec.FrameRate.String(),
		"-i", "-",
	}
	if spec.Audio != "" {
		args = append(args,
			"-i", spec.Audio,
			"-map", "0:v",
			"-map", "1:a",
			"-shortest",
		)
	}
	args = append(args, f.outputArgs...)
	return append(args, "-y", spec.Output)
}

// Open starts ffmpeg for spec.
func (f *FFmpeg) Open(ctx context.Context, spec MuxSpec) (Muxer, error) {
	if spec.Width <= 0 || spec.Height <= 0 || spec.Output == "" {
		return nil, &PipelineError{Stage: StageSpawn, Index: -1, Err: fmt.Errorf("invalid mux spec %dx%d %q", spec.Width, spec.Height, spec.Output)}
	}

	args := f.Args(spec)
	cmd := exec.CommandContext(ctx, f.path, args...)
	stderr := &tail{max: 4096}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &PipelineError{Stage: StageSpawn, Index: -1, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &PipelineError{Stage: StageSpawn, Index: -1, Err: err}
	}

	f.logger.Debug("ffmpeg started",
		"pid", cmd.Process.Pid,
		"output", spec.Output,
		"args", strings.Join(args, " "),
	)
	return &ffmpegMuxer{cmd: cmd, stdin: stdin, stderr: stderr, logger: f.logger}, nil
}

type ffmpegMuxer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tail
	logger *slog.Logger

	once sync.Once
	err  error
}

func (m *ffmpegMuxer) Write(p []byte) (int, error) {
	return m.stdin.Write(p)
}

// Close closes stdin and waits for ffmpeg to exit. A non-zero exit status
// is reported together with the end of ffmpeg's error output.
func (m *ffmpegMuxer) Close() error {
	m.once.Do(func() {
		closeErr := m.stdin.Close()
		waitErr := m.cmd.Wait()
		switch {
		case waitErr != nil:
			m.err = &PipelineError{Stage: StageMux, Index: -1, Err: m.describe(waitErr)}
		case closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe):
			m.err = &PipelineError{Stage: StageMux, Index: -1, Err: closeErr}
		}
	})
	return m.err
}

// Abort kills ffmpeg and reaps it.
func (m *ffmpegMuxer) Abort() error {
	m.once.Do(func() {
		_ = m.stdin.Close()
		if m.cmd.Process != nil {
			_ = m.cmd.Process.Kill()
		}
		_ = m.cmd.Wait()
		m.logger.Debug("ffmpeg aborted")
	})
	return nil
}

func (m *ffmpegMuxer) describe(err error) error {
	if msg := strings.TrimSpace(m.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

// tail keeps the last max bytes written to it.
type tail struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
