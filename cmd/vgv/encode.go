package main

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/config"
	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/protocol"
)

func (a *app) encodeCmd() *cobra.Command {
	var (
		output   string
		ratio    int
		duration uint64
		size     string
		backdrop string
		attrs    string
		style    string
		key      string
	)

	cmd := &cobra.Command{
		Use:   "encode <snapshot.svg|dir>...",
		Short: "Encode SVG snapshots into a stream",
		Long: `Encode a sequence of SVG snapshots into a .vgv stream.

Directories are expanded to the .svg files they contain. Snapshots are
encoded in name order. The markup inside each root <svg> element becomes
the frame content; the canvas size defaults to the first snapshot's
width and height.

Examples:
  vgv encode frames/ -o demo.vgv
  vgv encode a.svg b.svg --duration 100 --ratio 25
  vgv encode frames/ --style theme.css --backdrop black -o demo.vgv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := a.cfg.Encode
			if cmd.Flags().Changed("ratio") {
				enc.FullDiffRatio = ratio
			}
			if cmd.Flags().Changed("duration") {
				enc.DurationMs = duration
			}
			if size != "" {
				w, h, err := parseSize(size)
				if err != nil {
					return err
				}
				enc.Width, enc.Height = uint32(w), uint32(h)
			}
			if backdrop != "" {
				enc.Backdrop = backdrop
			}
			if attrs != "" {
				enc.Attributes = attrs
			}
			if style != "" {
				enc.Style = style
			}

			files, err := collectSnapshots(args)
			if err != nil {
				return err
			}
			w := a.stdout
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return errors.New("E140").Wrap(err)
				}
				defer f.Close()
				w = f
			}
			if err := a.encode(files, enc, w); err != nil {
				return err
			}
			if output != "-" {
				a.success("Encoded %d snapshots into %s", len(files), output)
				return a.publish(cmd.Context(), output, key)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output stream (- for stdout)")
	cmd.Flags().IntVar(&ratio, "ratio", 0, "Emit a Full frame every N content frames (default from config)")
	cmd.Flags().Uint64Var(&duration, "duration", 0, "Frame duration in milliseconds (default from config)")
	cmd.Flags().StringVar(&size, "size", "", "Canvas size WIDTHxHEIGHT (default from the first snapshot)")
	cmd.Flags().StringVar(&backdrop, "backdrop", "", "Canvas background color")
	cmd.Flags().StringVar(&attrs, "attrs", "", "Extra attributes for the root svg element")
	cmd.Flags().StringVar(&style, "style", "", "CSS file emitted as a Style frame")
	cmd.Flags().StringVar(&key, "upload", "", "Upload the stream under this key")

	return cmd
}

// encode streams the snapshot files through an Encoder into w.
func (a *app) encode(files []string, cfg config.EncodeConfig, w io.Writer) error {
	first, err := readSnapshot(files[0])
	if err != nil {
		return err
	}
	width, height := cfg.Width, cfg.Height
	if width == 0 || height == 0 {
		width, height = first.Width, first.Height
	}

	init := &protocol.Initialization{
		Duration:   cfg.DurationMs,
		Width:      width,
		Height:     height,
		Backdrop:   cfg.Backdrop,
		Attributes: cfg.Attributes,
	}
	encoder, err := protocol.NewEncoder(init,
		protocol.WithDiffEngine(diff.NewDMP()),
		protocol.WithFullDiffRatio(cfg.FullDiffRatio),
		protocol.WithEncoderLogger(a.logger),
	)
	if err != nil {
		return errors.FromStreamError(err, "")
	}

	if cfg.Style != "" {
		css, err := os.ReadFile(cfg.Style)
		if err != nil {
			return errors.New("E140").Wrap(err)
		}
		if err := encoder.AddStyle(string(css)); err != nil {
			return err
		}
	}

	for i, file := range files {
		s := first
		if i > 0 {
			if s, err = readSnapshot(file); err != nil {
				return err
			}
		}
		if err := encoder.AddContent(s.Content); err != nil {
			return err
		}
		a.logger.Debug("snapshot encoded", "file", file, "frame", i)
	}

	bw := bufio.NewWriter(w)
	if _, err := encoder.WriteTo(bw); err != nil {
		return err
	}
	return bw.Flush()
}
