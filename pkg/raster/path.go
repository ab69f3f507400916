package raster

import (
	"fmt"
	"math"
	"strconv"
)

// pathBuilder receives path segments. *gg.Context satisfies it.
type pathBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
}

type point struct{ x, y float64 }

// tracePath feeds the SVG path data d to b.
//
// Segments parsed before a syntax error are kept in b, matching how
// browsers render erroneous path data up to the error.
func tracePath(d string, b pathBuilder) error {
	sc := &scanner{s: d}

	var (
		cmd   byte
		cur   point
		start point
		ctrl  point // Reflection source for S and T
		prev  byte  // Previous command, upper case
	)

	for {
		sc.skipSeparators()
		if sc.done() {
			return nil
		}

		if c := sc.peek(); isCommand(c) {
			cmd = c
			sc.i++
		} else if cmd == 0 || cmd == 'Z' || cmd == 'z' {
			return fmt.Errorf("path: unexpected %q at offset %d", c, sc.i)
		}

		rel := cmd >= 'a'
		upper := cmd &^ 0x20
		if prev == 0 && upper != 'M' {
			return fmt.Errorf("path: data must start with moveto, got %q", cmd)
		}
		abs := func(x, y float64) point {
			if rel {
				return point{cur.x + x, cur.y + y}
			}
			return point{x, y}
		}

		switch upper {
		case 'M':
			v, err := sc.numbers(2)
			if err != nil {
				return err
			}
			cur = abs(v[0], v[1])
			start = cur
			b.MoveTo(cur.x, cur.y)
			// Further coordinate pairs are implicit lineto commands.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}

		case 'L':
			v, err := sc.numbers(2)
			if err != nil {
				return err
			}
			cur = abs(v[0], v[1])
			b.LineTo(cur.x, cur.y)

		case 'H':
			v, err := sc.numbers(1)
			if err != nil {
				return err
			}
			if rel {
				cur.x += v[0]
			} else {
				cur.x = v[0]
			}
			b.LineTo(cur.x, cur.y)

		case 'V':
			v, err := sc.numbers(1)
			if err != nil {
				return err
			}
			if rel {
				cur.y += v[0]
			} else {
				cur.y = v[0]
			}
			b.LineTo(cur.x, cur.y)

		case 'C':
			v, err := sc.numbers(6)
			if err != nil {
				return err
			}
			c1, c2, p := abs(v[0], v[1]), abs(v[2], v[3]), abs(v[4], v[5])
			b.CubicTo(c1.x, c1.y, c2.x, c2.y, p.x, p.y)
			ctrl, cur = c2, p

		case 'S':
			v, err := sc.numbers(4)
			if err != nil {
				return err
			}
			c1 := cur
			if prev == 'C' || prev == 'S' {
				c1 = point{2*cur.x - ctrl.x, 2*cur.y - ctrl.y}
			}
			c2, p := abs(v[0], v[1]), abs(v[2], v[3])
			b.CubicTo(c1.x, c1.y, c2.x, c2.y, p.x, p.y)
			ctrl, cur = c2, p

		case 'Q':
			v, err := sc.numbers(4)
			if err != nil {
				return err
			}
			c, p := abs(v[0], v[1]), abs(v[2], v[3])
			b.QuadraticTo(c.x, c.y, p.x, p.y)
			ctrl, cur = c, p

		case 'T':
			v, err := sc.numbers(2)
			if err != nil {
				return err
			}
			c := cur
			if prev == 'Q' || prev == 'T' {
				c = point{2*cur.x - ctrl.x, 2*cur.y - ctrl.y}
			}
			p := abs(v[0], v[1])
			b.QuadraticTo(c.x, c.y, p.x, p.y)
			ctrl, cur = c, p

		case 'A':
			v, err := sc.numbers(3)
			if err != nil {
				return err
			}
			large, err := sc.flag()
			if err != nil {
				return err
			}
			sweep, err := sc.flag()
			if err != nil {
				return err
			}
			end, err := sc.numbers(2)
			if err != nil {
				return err
			}
			p := abs(end[0], end[1])
			arcTo(b, cur, v[0], v[1], v[2], large, sweep, p)
			cur = p

		case 'Z':
			b.ClosePath()
			cur = start
		}

		prev = upper
	}
}

// arcTo approximates an elliptical arc with cubic Béziers, using the
// endpoint to center parameterization conversion of SVG 1.1 appendix F.6.
func arcTo(b pathBuilder, from point, rx, ry, angle float64, large, sweep bool, to point) {
	if from == to {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		b.LineTo(to.x, to.y)
		return
	}

	phi := angle * math.Pi / 180
	cos, sin := math.Cos(phi), math.Sin(phi)

	dx2, dy2 := (from.x-to.x)/2, (from.y-to.y)/2
	x1p := cos*dx2 + sin*dy2
	y1p := -sin*dx2 + cos*dy2

	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	cx := cos*cxp - sin*cyp + (from.x+to.x)/2
	cy := sin*cxp + cos*cyp + (from.y+to.y)/2

	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	theta := vectorAngle(1, 0, ux, uy)
	dtheta := vectorAngle(ux, uy, vx, vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	segments := int(math.Ceil(math.Abs(dtheta) / (math.Pi / 2)))
	if segments < 1 {
		segments = 1
	}
	delta := dtheta / float64(segments)
	t := 4.0 / 3.0 * math.Tan(delta/4)

	onEllipse := func(u, v float64) (float64, float64) {
		return cx + rx*u*cos - ry*v*sin, cy + rx*u*sin + ry*v*cos
	}

	for i := 0; i < segments; i++ {
		a1 := theta + float64(i)*delta
		a2 := a1 + delta
		cos1, sin1 := math.Cos(a1), math.Sin(a1)
		cos2, sin2 := math.Cos(a2), math.Sin(a2)

		c1x, c1y := onEllipse(cos1-t*sin1, sin1+t*cos1)
		c2x, c2y := onEllipse(cos2+t*sin2, sin2-t*cos2)
		x, y := onEllipse(cos2, sin2)
		if i == segments-1 {
			x, y = to.x, to.y
		}
		b.CubicTo(c1x, c1y, c2x, c2y, x, y)
	}
}

func vectorAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// scanner reads numbers out of path data, point lists and transform
// argument lists.
type scanner struct {
	s string
	i int
}

func (sc *scanner) done() bool {
	return sc.i >= len(sc.s)
}

func (sc *scanner) peek() byte {
	return sc.s[sc.i]
}

func (sc *scanner) skipSeparators() {
	for sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			sc.i++
		default:
			return
		}
	}
}

func (sc *scanner) numbers(n int) ([]float64, error) {
	v := make([]float64, n)
	for k := range v {
		f, err := sc.number()
		if err != nil {
			return nil, err
		}
		v[k] = f
	}
	return v, nil
}

func (sc *scanner) number() (float64, error) {
	sc.skipSeparators()
	begin := sc.i
	s := sc.s

	if sc.i < len(s) && (s[sc.i] == '+' || s[sc.i] == '-') {
		sc.i++
	}
	digits := 0
	for sc.i < len(s) && isDigit(s[sc.i]) {
		sc.i++
		digits++
	}
	if sc.i < len(s) && s[sc.i] == '.' {
		sc.i++
		for sc.i < len(s) && isDigit(s[sc.i]) {
			sc.i++
			digits++
		}
	}
	if digits == 0 {
		sc.i = begin
		if sc.done() {
			return 0, fmt.Errorf("path: unexpected end of data")
		}
		return 0, fmt.Errorf("path: expected number at offset %d", begin)
	}
	if sc.i < len(s) && (s[sc.i] == 'e' || s[sc.i] == 'E') {
		mark := sc.i
		sc.i++
		if sc.i < len(s) && (s[sc.i] == '+' || s[sc.i] == '-') {
			sc.i++
		}
		exp := 0
		for sc.i < len(s) && isDigit(s[sc.i]) {
			sc.i++
			exp++
		}
		if exp == 0 {
			sc.i = mark
		}
	}

	f, err := strconv.ParseFloat(s[begin:sc.i], 64)
	if err != nil {
		return 0, fmt.Errorf("path: invalid number %q: %w", s[begin:sc.i], err)
	}
	return f, nil
}

// flag reads an arc flag, which may be written without a separator.
func (sc *scanner) flag() (bool, error) {
	sc.skipSeparators()
	if sc.done() {
		return false, fmt.Errorf("path: unexpected end of data")
	}
	switch sc.peek() {
	case '0':
		sc.i++
		return false, nil
	case '1':
		sc.i++
		return true, nil
	}
	return false, fmt.Errorf("path: invalid arc flag %q at offset %d", sc.peek(), sc.i)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parsePoints parses the points attribute of polyline and polygon.
// A trailing odd coordinate is ignored.
func parsePoints(s string) []point {
	sc := &scanner{s: s}
	var pts []point
	for {
		sc.skipSeparators()
		if sc.done() {
			return pts
		}
		v, err := sc.numbers(2)
		if err != nil {
			return pts
		}
		pts = append(pts, point{v[0], v[1]})
	}
}
