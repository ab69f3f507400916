package raster

import (
	"errors"
	"fmt"
)

// Rasterizer renders svg markup into RGBA pixels.
type Rasterizer interface {
	// Rasterize renders markup scaled to width x height and returns
	// width*height*4 bytes of RGBA pixels with straight alpha.
	Rasterize(markup string, width, height int) ([]byte, error)
}

// Func adapts a function to the Rasterizer interface.
type Func func(markup string, width, height int) ([]byte, error)

// Rasterize calls f.
func (f Func) Rasterize(markup string, width, height int) ([]byte, error) {
	return f(markup, width, height)
}

// Raster errors.
var (
	// ErrInvalidSize is returned for a non-positive target size.
	ErrInvalidSize = errors.New("raster: invalid target size")

	// ErrNoSVG is returned when the markup has no svg root element.
	ErrNoSVG = errors.New("raster: no svg element")
)

// BufferSize returns the number of bytes of a width x height RGBA frame.
func BufferSize(width, height int) int {
	return width * height * 4
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}
