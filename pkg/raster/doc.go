// Package raster turns scene markup into raw RGBA pixels.
//
// A Rasterizer renders one svg document into a width*height*4 byte buffer
// (8-bit RGBA, row-major, no padding), which is the frame format the video
// muxer consumes. Output must be deterministic for identical input.
//
// GG is the built-in implementation. It draws with the gogpu/gg software
// renderer and understands the subset of SVG that vector scenes are usually
// made of:
//
//   - svg (width, height, viewBox, preserveAspectRatio) and g
//   - rect (including rx/ry), circle, ellipse, line, polyline, polygon
//   - path with the full command set, arcs included
//   - transform lists (matrix, translate, scale, rotate, skewX, skewY)
//   - fill, stroke, stroke-width, stroke-linecap, stroke-linejoin,
//     fill-rule, opacity, fill-opacity, stroke-opacity, display and
//     visibility, both as attributes and inline style declarations
//   - colors as hex, rgb(), rgba(), named colors and currentColor
//
// Stylesheets, text, gradients, clipping and masks are not rendered.
// The document is scaled so its declared size fills the target size.
package raster
