package export

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vgv/pkg/protocol"
	"github.com/vango-dev/vgv/pkg/render"
)

// HTML exports frame sequences as a self-contained HTML player.
//
// Each distinct scene is embedded once as base64 encoded svg and stylesheet.
// A timeline lists the scene shown at every tick, so Unchanged runs keep
// their timing without repeating markup.
type HTML struct {
	settings
}

// NewHTML creates an HTML player exporter.
func NewHTML(opts ...Option) *HTML {
	return &HTML{settings: newSettings(opts)}
}

// PlayerFrame is one distinct scene of a player document.
type PlayerFrame struct {
	SVG   string `json:"svg"`   // base64 svg markup
	Style string `json:"style"` // base64 stylesheet
}

// Player is the data embedded in a player document.
type Player struct {
	Title    string
	Width    int
	Height   int
	Interval int64 // Milliseconds between ticks
	Frames   []PlayerFrame
	Timeline []int // Index into Frames for every tick
}

// Build replays frames into player data.
func (h *HTML) Build(ctx context.Context, frames []protocol.Frame) (*Player, error) {
	init, ok := first(frames)
	if !ok {
		return nil, &PipelineError{Stage: StageReplay, Index: -1, Err: ErrNoInitialization}
	}

	player := &Player{
		Title:    h.title,
		Width:    int(init.Width),
		Height:   int(init.Height),
		Interval: int64(init.Duration),
	}
	seen := make(map[string]int)

	add := func(s render.Scene) {
		svg := s.SVG()
		if h.policy != nil {
			svg = h.policy.Sanitize(svg)
		}
		key := svg + "\x00" + s.Stylesheet
		i, ok := seen[key]
		if !ok {
			i = len(player.Frames)
			seen[key] = i
			player.Frames = append(player.Frames, PlayerFrame{
				SVG:   base64.StdEncoding.EncodeToString([]byte(svg)),
				Style: base64.StdEncoding.EncodeToString([]byte(s.Stylesheet)),
			})
		}
		player.Timeline = append(player.Timeline, i)
	}

	r := render.NewRenderer(render.WithDiffEngine(h.engine), render.WithLogger(h.logger))
	err := r.Replay(frames, func(img int, s render.Scene) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		add(s)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &PipelineError{Stage: StageReplay, Index: len(player.Timeline), Err: err}
	}

	if len(player.Timeline) == 0 {
		// Nothing but stream parameters: show the empty canvas.
		add(r.Scene())
	}
	return player, nil
}

// Export replays frames and writes the player document to w.
func (h *HTML) Export(ctx context.Context, frames []protocol.Frame, w io.Writer) (res *Result, err error) {
	ctx, span := h.tracer.Start(ctx, "vgv.export.html", trace.WithAttributes(
		attribute.Int("vgv.frames", len(frames)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("vgv.images", res.Images),
				attribute.Int("vgv.unique", res.Unique),
			)
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		h.metrics.finish(KindHTML, err)
	}()

	player, err := h.Build(ctx, frames)
	if err != nil {
		return nil, err
	}

	cw := &countingWriter{w: w}
	if err := WritePlayer(cw, player); err != nil {
		return nil, &PipelineError{Stage: StageWrite, Index: -1, Err: err}
	}

	h.metrics.addImages(KindHTML, len(player.Timeline))
	h.metrics.addBytes(KindHTML, cw.n)

	res = &Result{
		Width:     player.Width,
		Height:    player.Height,
		FrameRate: FrameRateOf(time.Duration(player.Interval) * time.Millisecond),
		Images:    len(player.Timeline),
		Unique:    len(player.Frames),
		Bytes:     cw.n,
		Duration:  time.Duration(int64(len(player.Timeline))*player.Interval) * time.Millisecond,
	}
	h.logger.Info("vgv player exported",
		"images", res.Images,
		"unique", res.Unique,
		"bytes", res.Bytes,
	)
	return res, nil
}

// WritePlayer renders the player document for p.
func WritePlayer(w io.Writer, p *Player) error {
	frames, err := json.Marshal(p.Frames)
	if err != nil {
		return fmt.Errorf("encode frames: %w", err)
	}
	timeline, err := json.Marshal(p.Timeline)
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}

	interval := p.Interval
	if interval <= 0 {
		interval = 1
	}

	// json.Marshal escapes <, > and & so the arrays are safe inside <script>.
	return playerTemplate.Execute(w, map[string]any{
		"Title":    p.Title,
		"Frames":   template.JS(frames),
		"Timeline": template.JS(timeline),
		"Interval": interval,
	})
}

var playerTemplate = template.Must(template.New("player").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body, html { margin: 0; padding: 0; }
html { background-color: black; }
body { height: 100vh; width: 100vw; display: flex; justify-content: center; align-items: center; }
#stage { width: 100%; height: 100%; }
#stage svg { background-color: white; width: 100%; height: 100%; object-fit: contain; }
</style>
<style id="framestyles"></style>
</head>
<body>
<div id="stage"></div>
<script>
(function () {
  const frames = {{.Frames}};
  const timeline = {{.Timeline}};
  const interval = {{.Interval}};
  const decoder = new TextDecoder("utf-8");
  const stage = document.getElementById("stage");
  const styles = document.getElementById("framestyles");
  function decode(s) {
    return decoder.decode(Uint8Array.from(atob(s), function (c) { return c.charCodeAt(0); }));
  }
  let tick = 0;
  let shown = -1;
  function show() {
    const i = timeline[tick];
    if (i === shown) { return; }
    stage.innerHTML = decode(frames[i].svg);
    styles.textContent = decode(frames[i].style);
    shown = i;
  }
  show();
  if (timeline.length > 1) {
    setInterval(function () {
      tick = (tick + 1) % timeline.length;
      show();
    }, interval);
  }
})();
</script>
</body>
</html>
`))

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
