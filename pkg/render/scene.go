package render

import (
	"strconv"
	"strings"
	"time"
)

// Scene is a renderable snapshot of the replay state.
type Scene struct {
	Width      int
	Height     int
	Duration   time.Duration // How long the scene is shown per image
	Backdrop   string        // Fill of the full-canvas background rect
	Attributes string        // Extra attributes of the svg root
	Stylesheet string        // Accumulated CSS rules
	Content    string        // Scene content inside the svg root
}

// SVG returns the scene as an svg document without its stylesheet:
//
//	<svg width="W" height="H" ATTRS><rect width="100%" height="100%" fill="BACKDROP"/>CONTENT</svg>
func (s Scene) SVG() string {
	var b strings.Builder
	b.Grow(len(s.Content) + len(s.Attributes) + 96)
	s.open(&b)
	b.WriteString(s.Content)
	b.WriteString("</svg>")
	return b.String()
}

// Markup returns the scene as an svg document with the stylesheet embedded
// in a <style> element. This is what gets rasterized.
func (s Scene) Markup() string {
	if s.Stylesheet == "" {
		return s.SVG()
	}

	var b strings.Builder
	b.Grow(len(s.Content) + len(s.Attributes) + len(s.Stylesheet) + 112)
	s.open(&b)
	b.WriteString(s.Content)
	b.WriteString("<style>")
	b.WriteString(s.Stylesheet)
	b.WriteString("</style></svg>")
	return b.String()
}

func (s Scene) open(b *strings.Builder) {
	b.WriteString(`<svg width="`)
	b.WriteString(strconv.Itoa(s.Width))
	b.WriteString(`" height="`)
	b.WriteString(strconv.Itoa(s.Height))
	b.WriteByte('"')
	if attrs := strings.TrimSpace(s.Attributes); attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	b.WriteString(`><rect width="100%" height="100%" fill="`)
	b.WriteString(escapeAttr(s.Backdrop))
	b.WriteString(`"/>`)
}
