package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/net/html"
)

// GG is a Rasterizer drawing with the gogpu/gg software renderer.
// It is safe for concurrent use; each call draws on its own context.
type GG struct {
	logger *slog.Logger
}

// Option configures a GG rasterizer.
type Option func(*GG)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *GG) {
		r.logger = l
	}
}

// NewGG creates a gg based rasterizer.
func NewGG(opts ...Option) *GG {
	r := &GG{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Rasterize renders markup scaled to width x height.
func (r *GG) Rasterize(markup string, width, height int) ([]byte, error) {
	img, err := r.Image(markup, width, height)
	if err != nil {
		return nil, err
	}
	return img.Pix, nil
}

// Image renders markup scaled to width x height into an image with
// straight (non-premultiplied) alpha, the layout of ffmpeg's rgba format.
func (r *GG) Image(markup string, width, height int) (*image.NRGBA, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.Clear()

	d := &drawer{dc: dc, logger: r.logger, width: float64(width), height: float64(height)}
	if err := d.run(markup); err != nil {
		return nil, err
	}

	src := dc.Image()
	if img, ok := src.(*image.NRGBA); ok && img.Stride == width*4 && img.Rect.Min == (image.Point{}) {
		return img, nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img, nil
}

// element is the state of an open element.
type element struct {
	style  style
	m      gg.Matrix // User space to device space
	vw, vh float64   // Viewport size in user units, for percentages
	skip   bool      // Element and its subtree are not rendered
}

// Elements whose content is never rendered directly.
var skipped = map[string]bool{
	"defs":           true,
	"clippath":       true,
	"mask":           true,
	"symbol":         true,
	"lineargradient": true,
	"radialgradient": true,
	"pattern":        true,
	"marker":         true,
	"filter":         true,
	"style":          true,
	"script":         true,
	"title":          true,
	"desc":           true,
	"metadata":       true,
	"text":           true,
	"foreignobject":  true,
}

type drawer struct {
	dc     *gg.Context
	logger *slog.Logger

	width, height float64 // Target size in pixels
	stack         []element
	root          bool
}

func (d *drawer) run(markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	z.AllowCDATA(true)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("raster: tokenize: %w", err)
			}
			if !d.root {
				return ErrNoSVG
			}
			return nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			attrs := make(map[string]string, len(tok.Attr))
			for _, a := range tok.Attr {
				attrs[a.Key] = a.Val
			}

			var el element
			switch {
			case !d.root:
				if tok.Data != "svg" {
					continue
				}
				d.root = true
				el = d.viewport(attrs)
			case len(d.stack) == 0:
				// Content after the root element.
				continue
			default:
				el = d.enter(tok.Data, attrs, d.stack[len(d.stack)-1])
				if !el.skip {
					if err := d.draw(tok.Data, attrs, el); err != nil {
						return err
					}
				}
			}
			if tt == html.StartTagToken {
				d.stack = append(d.stack, el)
			}

		case html.EndTagToken:
			if len(d.stack) > 0 {
				d.stack = d.stack[:len(d.stack)-1]
			}
		}
	}
}

// viewport sets up the root element: its declared size is scaled to the
// target size and its viewBox, if any, is fitted into the declared size.
func (d *drawer) viewport(attrs map[string]string) element {
	vb, hasViewBox := parseViewBox(attrs["viewbox"])

	dw, okW := parseLength(attrs["width"], d.width)
	dh, okH := parseLength(attrs["height"], d.height)
	switch {
	case okW && okH && dw > 0 && dh > 0:
	case hasViewBox:
		dw, dh = vb[2], vb[3]
	default:
		dw, dh = d.width, d.height
	}

	m := gg.Scale(d.width/dw, d.height/dh)
	vw, vh := dw, dh
	if hasViewBox {
		m = m.Multiply(fitViewBox(vb, dw, dh, attrs["preserveaspectratio"]))
		vw, vh = vb[2], vb[3]
	}

	el := element{style: defaultStyle(), m: m, vw: vw, vh: vh}
	el.style = el.style.inherit(properties(attrs))
	if t, ok := attrs["transform"]; ok {
		if tm, err := parseTransform(t); err == nil {
			el.m = el.m.Multiply(tm)
		}
	}
	return el
}

func parseViewBox(s string) ([4]float64, bool) {
	var vb [4]float64
	if strings.TrimSpace(s) == "" {
		return vb, false
	}
	sc := &scanner{s: s}
	for i := range vb {
		f, err := sc.number()
		if err != nil {
			return vb, false
		}
		vb[i] = f
	}
	return vb, vb[2] > 0 && vb[3] > 0
}

// fitViewBox maps the viewBox onto a dw x dh viewport.
// Only "none" and the default xMidYMid alignment are distinguished.
func fitViewBox(vb [4]float64, dw, dh float64, aspect string) gg.Matrix {
	sx, sy := dw/vb[2], dh/vb[3]
	if strings.HasPrefix(strings.TrimSpace(aspect), "none") {
		return gg.Scale(sx, sy).Multiply(gg.Translate(-vb[0], -vb[1]))
	}

	s := math.Min(sx, sy)
	if strings.Contains(aspect, "slice") {
		s = math.Max(sx, sy)
	}
	tx := (dw - vb[2]*s) / 2
	ty := (dh - vb[3]*s) / 2
	return gg.Translate(tx, ty).Multiply(gg.Scale(s, s)).Multiply(gg.Translate(-vb[0], -vb[1]))
}

func (d *drawer) enter(name string, attrs map[string]string, parent element) element {
	el := element{style: parent.style, m: parent.m, vw: parent.vw, vh: parent.vh}
	if parent.skip || skipped[name] {
		el.skip = true
		return el
	}

	props := properties(attrs)
	if props["display"] == "none" {
		el.skip = true
		return el
	}
	el.style = parent.style.inherit(props)

	if t, ok := attrs["transform"]; ok {
		tm, err := parseTransform(t)
		if err != nil {
			d.logger.Debug("raster: ignoring transform", "element", name, "error", err)
		} else {
			el.m = el.m.Multiply(tm)
		}
	}

	if name == "svg" {
		// Nested viewport: only its position is honored.
		x, _ := parseLength(attrs["x"], parent.vw)
		y, _ := parseLength(attrs["y"], parent.vh)
		el.m = el.m.Multiply(gg.Translate(x, y))
	}
	return el
}

func (d *drawer) draw(name string, attrs map[string]string, el element) error {
	if !el.style.visible {
		return nil
	}

	length := func(key string, ref float64) float64 {
		f, _ := parseLength(attrs[key], ref)
		return f
	}
	diag := math.Hypot(el.vw, el.vh) / math.Sqrt2

	dc := d.dc
	dc.SetTransform(el.m)
	fillable := true

	switch name {
	case "rect":
		x, y := length("x", el.vw), length("y", el.vh)
		w, h := length("width", el.vw), length("height", el.vh)
		if w <= 0 || h <= 0 {
			return nil
		}
		rx, okX := parseLength(attrs["rx"], el.vw)
		ry, okY := parseLength(attrs["ry"], el.vh)
		switch {
		case okX && !okY:
			ry = rx
		case okY && !okX:
			rx = ry
		}
		rx = math.Min(math.Max(rx, 0), w/2)
		ry = math.Min(math.Max(ry, 0), h/2)
		if rx > 0 && ry > 0 {
			roundedRect(dc, x, y, w, h, rx, ry)
		} else {
			dc.DrawRectangle(x, y, w, h)
		}

	case "circle":
		r := length("r", diag)
		if r <= 0 {
			return nil
		}
		dc.DrawCircle(length("cx", el.vw), length("cy", el.vh), r)

	case "ellipse":
		rx, ry := length("rx", el.vw), length("ry", el.vh)
		if rx <= 0 || ry <= 0 {
			return nil
		}
		dc.DrawEllipse(length("cx", el.vw), length("cy", el.vh), rx, ry)

	case "line":
		dc.MoveTo(length("x1", el.vw), length("y1", el.vh))
		dc.LineTo(length("x2", el.vw), length("y2", el.vh))
		fillable = false

	case "polyline", "polygon":
		pts := parsePoints(attrs["points"])
		if len(pts) < 2 {
			return nil
		}
		dc.MoveTo(pts[0].x, pts[0].y)
		for _, p := range pts[1:] {
			dc.LineTo(p.x, p.y)
		}
		if name == "polygon" {
			dc.ClosePath()
		}

	case "path":
		if err := tracePath(attrs["d"], dc); err != nil {
			d.logger.Debug("raster: path data error", "error", err)
		}

	default:
		return nil
	}

	return d.paint(el, fillable)
}

func (d *drawer) paint(el element, fillable bool) error {
	dc := d.dc
	fill, doFill := el.style.fillColor()
	stroke, doStroke := el.style.strokeColor()
	doFill = doFill && fillable

	if doFill {
		dc.SetRGBA(fill.R, fill.G, fill.B, fill.A)
		dc.SetFillRule(el.style.fillRule)
		var err error
		if doStroke {
			err = dc.FillPreserve()
		} else {
			err = dc.Fill()
		}
		if err != nil {
			return fmt.Errorf("raster: fill: %w", err)
		}
	}

	if doStroke {
		dc.SetRGBA(stroke.R, stroke.G, stroke.B, stroke.A)
		dc.SetLineWidth(el.style.strokeWidth * lineScale(el.m))
		dc.SetLineCap(el.style.lineCap)
		dc.SetLineJoin(el.style.lineJoin)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("raster: stroke: %w", err)
		}
	}

	if !doFill && !doStroke {
		dc.ClearPath()
	}
	return nil
}

// roundedRect traces a rectangle with elliptical corners.
func roundedRect(b pathBuilder, x, y, w, h, rx, ry float64) {
	const k = 0.5522847498307936
	ox, oy := rx*k, ry*k

	b.MoveTo(x+rx, y)
	b.LineTo(x+w-rx, y)
	b.CubicTo(x+w-rx+ox, y, x+w, y+ry-oy, x+w, y+ry)
	b.LineTo(x+w, y+h-ry)
	b.CubicTo(x+w, y+h-ry+oy, x+w-rx+ox, y+h, x+w-rx, y+h)
	b.LineTo(x+rx, y+h)
	b.CubicTo(x+rx-ox, y+h, x, y+h-ry+oy, x, y+h-ry)
	b.LineTo(x, y+ry)
	b.CubicTo(x, y+ry-oy, x+rx-ox, y, x+rx, y)
	b.ClosePath()
}
