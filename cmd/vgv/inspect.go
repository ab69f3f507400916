package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/protocol"
	"github.com/vango-dev/vgv/pkg/render"
)

// streamStats summarizes a stream.
type streamStats struct {
	Width     uint32         `json:"width"`
	Height    uint32         `json:"height"`
	FrameMs   uint64         `json:"frameMs"`
	Frames    int            `json:"frames"`
	Images    int            `json:"images"`
	Duration  string         `json:"duration"`
	Bytes     int64          `json:"bytes"`
	Tags      map[string]int `json:"tags"`
	TagBytes  map[string]int `json:"tagBytes"`
	LongestAt int            `json:"longestLine"`
	Longest   int            `json:"longestBytes"`
	Verified  bool           `json:"verified,omitempty"`
}

func (a *app) inspectCmd() *cobra.Command {
	var (
		asJSON bool
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <stream.vgv>",
		Short: "Print frame statistics of a stream",
		Long: `Decode a stream and print its parameters and per-frame-type statistics.

With --verify every frame is replayed, so corrupt deltas are reported
with the frame that failed.

Examples:
  vgv inspect demo.vgv
  vgv inspect --verify --json demo.vgv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.inspect(args[0], verify)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			printStats(out, args[0], stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	cmd.Flags().BoolVar(&verify, "verify", false, "Replay every frame to check deltas")

	return cmd
}

func (a *app) inspect(path string, verify bool) (*streamStats, error) {
	var r io.Reader = a.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.New("E140").Wrap(err)
		}
		defer f.Close()
		r = f
	}

	stats := &streamStats{
		Tags:     make(map[string]int),
		TagBytes: make(map[string]int),
	}
	var renderer *render.Renderer
	if verify {
		renderer = render.NewRenderer(render.WithDiffEngine(diff.NewDMP()), render.WithLogger(a.logger))
	}

	dec := protocol.NewDecoder(r)
	for {
		f, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.FromStreamError(err, path)
		}
		if renderer != nil {
			if err := renderer.Step(f); err != nil {
				return nil, errors.FromStreamError(err, path).WithLocation(path, dec.Line()+1)
			}
		}

		line := len(protocol.EncodeFrame(f))
		stats.Frames++
		stats.Bytes += int64(line) + 1
		stats.Tags[f.Tag().String()]++
		stats.TagBytes[f.Tag().String()] += line
		stats.Images += protocol.Images(f)
		if line > stats.Longest {
			stats.Longest, stats.LongestAt = line, dec.Line()
		}
		if init, ok := f.(*protocol.Initialization); ok {
			stats.Width, stats.Height, stats.FrameMs = init.Width, init.Height, init.Duration
		}
	}

	stats.Bytes += int64(len(protocol.Magic)) + 1
	stats.Duration = (time.Duration(stats.Images) * time.Duration(stats.FrameMs) * time.Millisecond).String()
	stats.Verified = verify
	return stats, nil
}

func printStats(w io.Writer, name string, s *streamStats) {
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  Canvas:    %dx%d\n", s.Width, s.Height)
	fmt.Fprintf(w, "  Frame:     %dms\n", s.FrameMs)
	fmt.Fprintf(w, "  Images:    %d (%s)\n", s.Images, s.Duration)
	fmt.Fprintf(w, "  Frames:    %d\n", s.Frames)
	fmt.Fprintf(w, "  Size:      %d bytes\n", s.Bytes)
	for _, tag := range []protocol.Tag{
		protocol.TagInitialization, protocol.TagStyle, protocol.TagFull,
		protocol.TagDelta, protocol.TagUnchanged,
	} {
		name := tag.String()
		if n := s.Tags[name]; n > 0 {
			fmt.Fprintf(w, "    %-14s %6d frames %10d bytes\n", name, n, s.TagBytes[name])
		}
	}
	fmt.Fprintf(w, "  Longest:   line %d (%d bytes)\n", s.LongestAt, s.Longest)
	if s.Verified {
		fmt.Fprintf(w, "  Replay:    ok\n")
	}
}
