// Package protocol implements the VGV stream format.
//
// A VGV stream records an animated vector-graphics scene as an append-only
// sequence of frames. Full snapshots are interleaved with text deltas and
// run-length "nothing changed" markers so that mostly static scenes stay small
// while any point of the animation is reachable by replaying from the nearest
// prior full snapshot.
//
// # Wire Format
//
// The stream is line-oriented UTF-8 text. The first line is the magic token,
// every following line is one frame: a single-character tag followed by the
// frame body. No field may contain a newline.
//
//	vgv1
//	I500	320	240	#000000	viewBox="0 0 320 240"
//	S.accent { fill: red; }
//	F<rect width="10" height="10"/>
//	D=6	-2	+22	=22
//	U2
//
// # Frame Types
//
//   - Initialization ('I'): duration_ms, width, height, backdrop and svg
//     attributes separated by tabs. Always the first frame.
//   - Style ('S'): CSS rules appended to the cumulative stylesheet.
//   - Full ('F'): complete scene content, replacing the current content.
//   - Delta ('D'): diff-engine delta applied to the current content.
//   - Unchanged ('U'): decimal count of ticks repeating the current image.
//   - Audio ('A'): reserved, rejected by the decoder.
//
// The svg attributes of an Initialization frame are the last tab-separated
// segment of its body. Attributes containing tabs are therefore not
// representable; the writer replaces tabs in attributes with spaces.
//
// # Encoding Policy
//
// The Encoder turns raw scene snapshots into frames:
//
//   - Every full_diff_ratio-th content position is a Full frame, bounding the
//     delta chain a reader must replay.
//   - The first content is a Full frame (bootstrap).
//   - Otherwise the snapshot is diffed against the baseline. An empty diff
//     extends the trailing Unchanged run (or starts one); any other diff is
//     emitted as a Delta and becomes the new baseline.
//
// # Usage Example
//
//	enc, err := protocol.NewEncoder(&protocol.Initialization{
//	    Duration: 40,
//	    Width:    320,
//	    Height:   240,
//	    Backdrop: "#ffffff",
//	})
//	if err != nil {
//	    // Handle error
//	}
//	for _, snapshot := range snapshots {
//	    if err := enc.AddContent(snapshot); err != nil {
//	        // Handle error
//	    }
//	}
//	enc.WriteTo(w)
//
//	// Decode
//	frames, err := protocol.Parse(text)
//
// # File Structure
//
//   - frame.go: Frame types and tags
//   - encoder.go: Encoding policy (snapshots to frames)
//   - writer.go: Frame serialization
//   - decoder.go: Stream parsing
//   - error.go: Error types
//   - limits.go: Size limits and defaults
package protocol
