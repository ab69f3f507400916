package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/config"
	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/protocol"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds the state shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	shutdown func(context.Context) error

	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		errors.Fprint(a.stderr, errors.FromStreamError(err, ""))
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vgv",
		Short: "Delta-compressed vector graphics video streams",
		Long: `vgv encodes sequences of SVG snapshots into compact text streams
and turns those streams back into pictures.

  • encode   SVG snapshots into a .vgv stream
  • inspect  a stream and print frame statistics
  • html     export a self-contained HTML player
  • video    export a video through ffmpeg
  • serve    a stream over HTTP and websocket
  • publish  an artifact to the configured store`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown != nil {
				return a.shutdown(cmd.Context())
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Configuration file (default: nearest vgv.json)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		a.encodeCmd(),
		a.inspectCmd(),
		a.htmlCmd(),
		a.videoCmd(),
		a.serveCmd(),
		a.publishCmd(),
		a.versionCmd(),
	)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root
}

// setup loads configuration and installs logging and tracing.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.noColor {
		errors.DisableColors()
	}

	cfg, err := config.Discover(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(a.stderr, opts)
	} else {
		handler = slog.NewTextHandler(a.stderr, opts)
	}
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)

	shutdown, err := setupTracing(cmd.Context(), cfg.Telemetry)
	if err != nil {
		a.logger.Warn("tracing disabled", "error", err)
		return nil
	}
	a.shutdown = shutdown
	return nil
}

// readStream decodes the stream at path, "-" meaning stdin. Errors carry
// the stream location.
func (a *app) readStream(path string) ([]protocol.Frame, error) {
	var r io.Reader = a.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.New("E140").Wrap(err)
		}
		defer f.Close()
		r = f
	}
	frames, err := protocol.ReadAll(r)
	if err != nil {
		return nil, errors.FromStreamError(err, path)
	}
	return frames, nil
}

// parseSize parses WIDTHxHEIGHT.
func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, errors.New("E142").WithDetail("size must look like 1280x720, got " + strconv.Quote(s))
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 0, 0, errors.New("E142").WithDetail("size must look like 1280x720, got " + strconv.Quote(s))
	}
	return width, height, nil
}

// success prints a success message.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.stderr, "  %s\n", fmt.Sprintf(format, args...))
}
