package protocol

const (
	// Magic is the first line of every VGV stream.
	Magic = "vgv1"

	// MaxLineSize limits a single frame line accepted by the Decoder.
	// Full frames carry a complete scene, so this is generous.
	MaxLineSize = 64 << 20

	// DefaultFullDiffRatio is the default interval, in content positions,
	// at which the Encoder forces a Full frame.
	DefaultFullDiffRatio = 100
)
