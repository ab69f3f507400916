package main

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/export"
	"github.com/vango-dev/vgv/pkg/raster"
)

var (
	metricsOnce sync.Once
	metrics     *export.Metrics
)

// exportMetrics returns the process wide export collectors registered with
// the default Prometheus registry.
func exportMetrics() *export.Metrics {
	metricsOnce.Do(func() {
		metrics = export.NewMetrics()
	})
	return metrics
}

func (a *app) videoCmd() *cobra.Command {
	var (
		output string
		size   string
		audio  string
		ffmpeg string
		queue  int
		key    string
	)

	cmd := &cobra.Command{
		Use:   "video <stream.vgv>",
		Short: "Export a video through ffmpeg",
		Long: `Replay a stream, rasterize every picture and pipe the raw RGBA frames
into ffmpeg. The frame rate follows the stream's frame duration.

Examples:
  vgv video demo.vgv -o demo.mp4
  vgv video demo.vgv --size 1920x1080 --audio music.mp3 -o demo.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := a.readStream(args[0])
			if err != nil {
				return err
			}

			cfg := a.cfg.Export
			if size != "" {
				w, h, err := parseSize(size)
				if err != nil {
					return err
				}
				cfg.Width, cfg.Height = w, h
			}
			if audio != "" {
				cfg.Audio = audio
			}
			if ffmpeg != "" {
				cfg.FFmpeg = ffmpeg
			}
			if queue > 0 {
				cfg.QueueSize = queue
			}

			muxer := export.NewFFmpeg(
				export.WithFFmpegPath(cfg.FFmpeg),
				export.WithOutputArgs(cfg.OutputArgs...),
				export.WithFFmpegLogger(a.logger),
			)
			opts := []export.Option{
				export.WithDiffEngine(diff.NewDMP()),
				export.WithLogger(a.logger),
				export.WithMetrics(exportMetrics()),
				export.WithQueueSize(cfg.QueueSize),
				export.WithAudio(cfg.Audio),
			}
			if cfg.Width > 0 && cfg.Height > 0 {
				opts = append(opts, export.WithOutputSize(cfg.Width, cfg.Height))
			}

			v := export.NewVideo(raster.NewGG(raster.WithLogger(a.logger)), muxer, opts...)
			res, err := v.Export(cmd.Context(), frames, output)
			if err != nil {
				return errors.FromStreamError(err, args[0])
			}

			a.success("Wrote %s", output)
			a.info("%dx%d at %s fps, %d images (%d rasterized), %s",
				res.Width, res.Height, res.FrameRate, res.Images, res.Unique, res.Duration)
			return a.publish(cmd.Context(), output, key)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "out.mp4", "Output video")
	cmd.Flags().StringVar(&size, "size", "", "Output size WIDTHxHEIGHT (default: stream size)")
	cmd.Flags().StringVar(&audio, "audio", "", "Audio track to mux in")
	cmd.Flags().StringVar(&ffmpeg, "ffmpeg", "", "ffmpeg binary (default from config)")
	cmd.Flags().IntVar(&queue, "queue", 0, "Raster queue capacity (default from config)")
	cmd.Flags().StringVar(&key, "upload", "", "Upload the video under this key (. for the file name)")

	return cmd
}
