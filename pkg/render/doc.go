// Package render replays VGV frames into renderable scenes.
//
// A Renderer is the replay state machine of a stream. It starts
// uninitialized, becomes initialized on the first Initialization frame, and
// from then on each frame mutates one part of its state:
//
//	Initialization  sets duration, dimensions, backdrop and svg attributes
//	Style           appends to the stylesheet
//	Full            replaces the content
//	Delta           patches the content through the diff engine
//	Unchanged       leaves everything as is
//
// Frames must be stepped in stream order since every Delta is computed
// against the exact content reconstructed so far. A failed Delta stops the
// replay; the content is never partially patched.
//
// # Scenes
//
// Scene returns a snapshot of the current state that can be turned into a
// standalone SVG document:
//
//	r := render.NewRenderer()
//	err := r.Replay(frames, func(img int, s render.Scene) error {
//	    return emit(img, s.Markup())
//	})
//
// Replay calls its callback once per output image, so an Unchanged(n) frame
// yields n callbacks with the same scene.
package render
