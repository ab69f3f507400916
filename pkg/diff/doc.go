// Package diff defines the text diff capability used by the VGV codec.
//
// The encoder computes an edit script between the previous baseline and the
// next scene snapshot, serializes it into a compact delta and stores it in a
// Delta frame. The replay state machine deserializes the delta against its
// current content and applies it to reconstruct the next snapshot.
//
// # Contract
//
// Every Engine must guarantee, for all texts a and b:
//
//	script, _ := e.Diff(a, b)
//	out, _ := e.Apply(script, a)
//	// out == b
//
// and that Serialize/Deserialize round-trip exactly:
//
//	delta, _ := e.Serialize(script)
//	back, _ := e.Deserialize(a, delta)
//	// back is equivalent to script
//
// Engines are injected into the encoder and renderer rather than shared
// through a package-level handle, so tests can substitute a fake.
//
// # Implementations
//
//   - DMP: diff-match-patch (github.com/sergi/go-diff). Deltas use the
//     diff-match-patch delta format, e.g. "=8\t-2\t+22\t=6".
package diff
