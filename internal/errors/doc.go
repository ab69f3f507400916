// Package errors provides structured, actionable error messages for the
// vgv command line.
//
// Library packages return plain Go errors. The CLI maps them to VGVError
// values carrying a code, a category, the stream location that failed and
// a hint on how to fix it.
//
// # Error Categories
//
//   - stream: the .vgv text could not be decoded
//   - render: a frame could not be replayed
//   - export: rasterizing, muxing or writing output failed
//   - upload: publishing an artifact failed
//   - config: vgv.json or environment overrides are invalid
//   - cli: bad command line input
//
// # Usage
//
//	frames, err := protocol.Parse(data)
//	if err != nil {
//	    errors.PrintError(errors.FromStreamError(err, "demo.vgv"))
//	}
//
// Output:
//
//	ERROR E002: Malformed frame
//
//	  demo.vgv:3
//
//	       2 │ I500	100	100	white
//	  →    3 │ Ix
//
//	  Hint: Check the frame body against its tag.
package errors
