package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/export"
)

func (a *app) htmlCmd() *cobra.Command {
	var (
		output   string
		title    string
		sanitize bool
		key      string
	)

	cmd := &cobra.Command{
		Use:   "html <stream.vgv>",
		Short: "Export a self-contained HTML player",
		Long: `Replay a stream into a single HTML document that plays it back in a
browser. Each distinct picture is embedded once; repeats only extend the
timeline.

Examples:
  vgv html demo.vgv -o demo.html
  vgv html demo.vgv --sanitize --title "Demo" -o demo.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := a.readStream(args[0])
			if err != nil {
				return err
			}

			cfg := a.cfg.Export
			if title != "" {
				cfg.Title = title
			}
			if cmd.Flags().Changed("sanitize") {
				cfg.Sanitize = sanitize
			}

			opts := []export.Option{
				export.WithDiffEngine(diff.NewDMP()),
				export.WithLogger(a.logger),
				export.WithMetrics(exportMetrics()),
				export.WithTitle(cfg.Title),
			}
			if cfg.Sanitize {
				opts = append(opts, export.WithSanitizer(export.SVGPolicy()))
			}

			w := a.stdout
			var f *os.File
			if output != "-" {
				if f, err = os.Create(output); err != nil {
					return errors.New("E140").Wrap(err)
				}
				defer f.Close()
				w = f
			}
			bw := bufio.NewWriter(w)

			res, err := export.NewHTML(opts...).Export(cmd.Context(), frames, bw)
			if err != nil {
				return errors.FromStreamError(err, args[0])
			}
			if err := bw.Flush(); err != nil {
				return errors.New("E043").Wrap(err)
			}
			if f == nil {
				return nil
			}
			if err := f.Close(); err != nil {
				return errors.New("E043").Wrap(err)
			}

			a.success("Wrote %s (%d images, %d unique, %d bytes)", output, res.Images, res.Unique, res.Bytes)
			return a.publish(cmd.Context(), output, key)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output document (- for stdout)")
	cmd.Flags().StringVar(&title, "title", "", "Player title")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "Strip scripts and foreign content from the markup")
	cmd.Flags().StringVar(&key, "upload", "", "Upload the document under this key (. for the file name)")

	return cmd
}
