package raster

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// paint is a fill or stroke paint. A none paint draws nothing.
type paint struct {
	none  bool
	color gg.RGBA
}

// style is the inherited presentation state of an element.
type style struct {
	fill          paint
	stroke        paint
	color         gg.RGBA // Value of currentColor
	fillOpacity   float64
	strokeOpacity float64
	opacity       float64 // Product of the opacity of all ancestors
	strokeWidth   float64
	fillRule      gg.FillRule
	lineCap       gg.LineCap
	lineJoin      gg.LineJoin
	visible       bool
}

func defaultStyle() style {
	black := gg.RGB(0, 0, 0)
	return style{
		fill:          paint{color: black},
		stroke:        paint{none: true},
		color:         black,
		fillOpacity:   1,
		strokeOpacity: 1,
		opacity:       1,
		strokeWidth:   1,
		fillRule:      gg.FillRuleNonZero,
		lineCap:       gg.LineCapButt,
		lineJoin:      gg.LineJoinMiter,
		visible:       true,
	}
}

// properties collects the presentation attributes of an element, with
// inline style declarations taking precedence over attributes.
func properties(attrs map[string]string) map[string]string {
	props := make(map[string]string, len(attrs))
	for k, v := range attrs {
		props[k] = strings.TrimSpace(v)
	}
	for _, decl := range strings.Split(attrs["style"], ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if name != "" {
			props[name] = value
		}
	}
	return props
}

// inherit returns the style of a child element with the given properties.
// Unknown and malformed values are ignored so the inherited value stays.
func (s style) inherit(props map[string]string) style {
	// color first, so currentColor in the same element resolves to it.
	if v, ok := props["color"]; ok {
		if p, ok := parsePaint(v, s.color); ok && !p.none {
			s.color = p.color
		}
	}
	if v, ok := props["fill"]; ok {
		if p, ok := parsePaint(v, s.color); ok {
			s.fill = p
		}
	}
	if v, ok := props["stroke"]; ok {
		if p, ok := parsePaint(v, s.color); ok {
			s.stroke = p
		}
	}
	if v, ok := props["fill-opacity"]; ok {
		if f, ok := parseOpacity(v); ok {
			s.fillOpacity = f
		}
	}
	if v, ok := props["stroke-opacity"]; ok {
		if f, ok := parseOpacity(v); ok {
			s.strokeOpacity = f
		}
	}
	if v, ok := props["opacity"]; ok {
		if f, ok := parseOpacity(v); ok {
			s.opacity *= f
		}
	}
	if v, ok := props["stroke-width"]; ok {
		if f, ok := parseLength(v, 0); ok && f >= 0 {
			s.strokeWidth = f
		}
	}
	switch props["fill-rule"] {
	case "nonzero":
		s.fillRule = gg.FillRuleNonZero
	case "evenodd":
		s.fillRule = gg.FillRuleEvenOdd
	}
	switch props["stroke-linecap"] {
	case "butt":
		s.lineCap = gg.LineCapButt
	case "round":
		s.lineCap = gg.LineCapRound
	case "square":
		s.lineCap = gg.LineCapSquare
	}
	switch props["stroke-linejoin"] {
	case "miter":
		s.lineJoin = gg.LineJoinMiter
	case "round":
		s.lineJoin = gg.LineJoinRound
	case "bevel":
		s.lineJoin = gg.LineJoinBevel
	}
	switch props["visibility"] {
	case "visible":
		s.visible = true
	case "hidden", "collapse":
		s.visible = false
	}
	return s
}

// fillColor returns the effective fill color, or false if nothing is filled.
func (s style) fillColor() (gg.RGBA, bool) {
	return effective(s.fill, s.fillOpacity*s.opacity)
}

// strokeColor returns the effective stroke color, or false if nothing is stroked.
func (s style) strokeColor() (gg.RGBA, bool) {
	if s.strokeWidth <= 0 {
		return gg.RGBA{}, false
	}
	return effective(s.stroke, s.strokeOpacity*s.opacity)
}

func effective(p paint, opacity float64) (gg.RGBA, bool) {
	if p.none || p.color.A*opacity <= 0 {
		return gg.RGBA{}, false
	}
	c := p.color
	c.A *= opacity
	return c, true
}

// parsePaint parses a fill or stroke value.
func parsePaint(v string, current gg.RGBA) (paint, bool) {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)

	switch lower {
	case "":
		return paint{}, false
	case "none", "transparent":
		return paint{none: true}, true
	case "currentcolor":
		return paint{color: current}, true
	case "inherit":
		return paint{}, false
	}

	if strings.HasPrefix(lower, "url(") {
		// Paint servers are not rendered; use the fallback if there is one.
		end := strings.IndexByte(v, ')')
		if end < 0 {
			return paint{}, false
		}
		if fallback := strings.TrimSpace(v[end+1:]); fallback != "" {
			return parsePaint(fallback, current)
		}
		return paint{none: true}, true
	}

	c, ok := parseColor(lower)
	if !ok {
		return paint{}, false
	}
	return paint{color: c}, true
}

// parseColor parses a lower-case CSS color value.
func parseColor(v string) (gg.RGBA, bool) {
	switch {
	case strings.HasPrefix(v, "#"):
		hex := v[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return gg.RGBA{}, false
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return gg.RGBA{}, false
		}
		return gg.Hex(hex), true

	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		open := strings.IndexByte(v, '(')
		if !strings.HasSuffix(v, ")") {
			return gg.RGBA{}, false
		}
		args := strings.FieldsFunc(v[open+1:len(v)-1], func(r rune) bool {
			return r == ',' || r == ' ' || r == '/'
		})
		if len(args) != 3 && len(args) != 4 {
			return gg.RGBA{}, false
		}
		var ch [3]float64
		for i := range ch {
			f, ok := parseChannel(args[i])
			if !ok {
				return gg.RGBA{}, false
			}
			ch[i] = f
		}
		a := 1.0
		if len(args) == 4 {
			f, ok := parseOpacity(args[3])
			if !ok {
				return gg.RGBA{}, false
			}
			a = f
		}
		return gg.RGBA2(ch[0], ch[1], ch[2], a), true
	}

	if c, ok := colornames.Map[v]; ok {
		return gg.FromColor(c), true
	}
	return gg.RGBA{}, false
}

// parseChannel parses an rgb() channel, either 0-255 or a percentage,
// into the range [0, 1].
func parseChannel(s string) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(f / 100), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(f / 255), true
}

func parseOpacity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(f / 100), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(f), true
}

// parseLength parses a length in user units. Percentages resolve against ref.
func parseLength(s string, ref float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	scale := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s, scale = s[:len(s)-1], ref/100
	case strings.HasSuffix(s, "px"):
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "pt"):
		s, scale = s[:len(s)-2], 4.0/3.0
	case strings.HasSuffix(s, "pc"):
		s, scale = s[:len(s)-2], 16
	case strings.HasSuffix(s, "mm"):
		s, scale = s[:len(s)-2], 96/25.4
	case strings.HasSuffix(s, "cm"):
		s, scale = s[:len(s)-2], 96/2.54
	case strings.HasSuffix(s, "in"):
		s, scale = s[:len(s)-2], 96
	case strings.HasSuffix(s, "em"):
		s, scale = s[:len(s)-2], 16
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f * scale, true
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
