package export

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	svgElements = []string{
		"svg", "g", "defs", "symbol", "use", "title", "desc",
		"rect", "circle", "ellipse", "line", "polyline", "polygon", "path",
		"text", "tspan", "textpath",
		"lineargradient", "radialgradient", "stop", "pattern",
		"clippath", "mask", "marker",
	}

	svgPresentation = []string{
		"fill", "fill-opacity", "fill-rule",
		"stroke", "stroke-width", "stroke-opacity", "stroke-linecap",
		"stroke-linejoin", "stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset",
		"opacity", "color", "display", "visibility",
		"clip-path", "clip-rule", "mask", "transform",
		"font-family", "font-size", "font-weight", "font-style",
		"text-anchor", "dominant-baseline", "letter-spacing",
		"stop-color", "stop-opacity",
		"marker-start", "marker-mid", "marker-end",
	}

	svgGeometry = []string{
		"x", "y", "x1", "y1", "x2", "y2", "cx", "cy", "r", "rx", "ry",
		"fx", "fy", "dx", "dy", "width", "height", "points", "d",
		"viewbox", "preserveaspectratio", "offset",
		"gradientunits", "gradienttransform", "spreadmethod",
		"patternunits", "patterncontentunits", "patterntransform",
		"clippathunits", "maskunits", "maskcontentunits",
		"markerwidth", "markerheight", "markerunits", "refx", "refy", "orient",
		"pathlength", "textlength", "lengthadjust", "startoffset",
		"xmlns", "version",
	}

	// Plain values: no url() other than local fragments, no expressions.
	safeValue = regexp.MustCompile(`^([^()<>"]*|url\(#[\w.:-]+\)[^()<>"]*)$`)

	// Local references only.
	localHref = regexp.MustCompile(`^#[\w.:-]+$`)
)

// SVGPolicy returns a bluemonday policy that keeps static SVG scene markup
// and removes scripts, event handlers, foreign content and external
// references.
func SVGPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(svgElements...)
	p.AllowNoAttrs().OnElements(svgElements...)

	p.AllowAttrs("id", "class").Globally()
	p.AllowAttrs(svgGeometry...).Matching(safeValue).Globally()
	p.AllowAttrs(svgPresentation...).Matching(safeValue).Globally()
	p.AllowAttrs("href", "xlink:href").Matching(localHref).OnElements("use", "textpath", "lineargradient", "radialgradient", "pattern")
	p.AllowStyles(svgPresentation...).Matching(safeValue).Globally()

	return p
}
