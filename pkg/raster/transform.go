package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gg"
)

// parseTransform parses an SVG transform list into a single matrix.
// Transforms apply right to left, so "translate(10) scale(2)" scales first.
func parseTransform(s string) (gg.Matrix, error) {
	m := gg.Identity()
	rest := strings.TrimSpace(s)

	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return gg.Identity(), fmt.Errorf("transform: missing '(' in %q", rest)
		}
		closing := strings.IndexByte(rest, ')')
		if closing < open {
			return gg.Identity(), fmt.Errorf("transform: missing ')' in %q", rest)
		}

		name := strings.TrimSpace(rest[:open])
		args, err := transformArgs(rest[open+1 : closing])
		if err != nil {
			return gg.Identity(), err
		}
		t, err := transformFunc(name, args)
		if err != nil {
			return gg.Identity(), err
		}
		m = m.Multiply(t)

		rest = strings.TrimLeft(rest[closing+1:], " \t\r\n,")
	}
	return m, nil
}

func transformArgs(s string) ([]float64, error) {
	sc := &scanner{s: s}
	var args []float64
	for {
		sc.skipSeparators()
		if sc.done() {
			return args, nil
		}
		f, err := sc.number()
		if err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
		args = append(args, f)
	}
}

func transformFunc(name string, a []float64) (gg.Matrix, error) {
	arity := func(counts ...int) error {
		for _, n := range counts {
			if len(a) == n {
				return nil
			}
		}
		return fmt.Errorf("transform: %s takes %v arguments, got %d", name, counts, len(a))
	}

	switch name {
	case "matrix":
		if err := arity(6); err != nil {
			return gg.Matrix{}, err
		}
		// SVG order is a b c d e f for the column-major matrix [a c e; b d f].
		return gg.Matrix{A: a[0], B: a[2], C: a[4], D: a[1], E: a[3], F: a[5]}, nil

	case "translate":
		if err := arity(1, 2); err != nil {
			return gg.Matrix{}, err
		}
		if len(a) == 1 {
			return gg.Translate(a[0], 0), nil
		}
		return gg.Translate(a[0], a[1]), nil

	case "scale":
		if err := arity(1, 2); err != nil {
			return gg.Matrix{}, err
		}
		if len(a) == 1 {
			return gg.Scale(a[0], a[0]), nil
		}
		return gg.Scale(a[0], a[1]), nil

	case "rotate":
		if err := arity(1, 3); err != nil {
			return gg.Matrix{}, err
		}
		r := gg.Rotate(a[0] * math.Pi / 180)
		if len(a) == 1 {
			return r, nil
		}
		return gg.Translate(a[1], a[2]).Multiply(r).Multiply(gg.Translate(-a[1], -a[2])), nil

	case "skewX":
		if err := arity(1); err != nil {
			return gg.Matrix{}, err
		}
		return gg.Shear(math.Tan(a[0]*math.Pi/180), 0), nil

	case "skewY":
		if err := arity(1); err != nil {
			return gg.Matrix{}, err
		}
		return gg.Shear(0, math.Tan(a[0]*math.Pi/180)), nil
	}
	return gg.Matrix{}, fmt.Errorf("transform: unknown function %q", name)
}

// lineScale returns the factor by which m scales lengths, used to carry
// stroke widths into device space.
func lineScale(m gg.Matrix) float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}
