package protocol

import (
	"strconv"
	"time"
)

// Tag is the single-character discriminant of a frame on the wire.
type Tag byte

const (
	TagInitialization Tag = 'I' // Stream parameters
	TagStyle          Tag = 'S' // CSS rules
	TagFull           Tag = 'F' // Full scene content
	TagDelta          Tag = 'D' // Content delta
	TagUnchanged      Tag = 'U' // Repeat count
	TagAudio          Tag = 'A' // Reserved, not supported
)

// String returns the string representation of the tag.
func (t Tag) String() string {
	switch t {
	case TagInitialization:
		return "Initialization"
	case TagStyle:
		return "Style"
	case TagFull:
		return "Full"
	case TagDelta:
		return "Delta"
	case TagUnchanged:
		return "Unchanged"
	case TagAudio:
		return "Audio"
	default:
		return "Unknown(" + strconv.QuoteRune(rune(t)) + ")"
	}
}

// Frame is one unit of a VGV stream.
//
// The set of frame types is closed: Frame is implemented only by
// *Initialization, *Style, *Full, *Delta and *Unchanged.
type Frame interface {
	// Tag returns the wire discriminant of the frame.
	Tag() Tag

	isFrame()
}

// Initialization declares per-frame timing and canvas geometry.
// It must be the first frame of every stream.
type Initialization struct {
	Duration   uint64 // Frame duration in milliseconds
	Width      uint32 // Canvas width
	Height     uint32 // Canvas height
	Backdrop   string // Background fill color
	Attributes string // Extra attributes of the svg root element
}

// Style carries CSS rules appended to the cumulative stylesheet.
type Style struct {
	CSS string
}

// Full replaces the current scene content and becomes the new diff baseline.
type Full struct {
	Content string
}

// Delta carries a serialized edit script applied to the current content.
type Delta struct {
	Script string
}

// Unchanged repeats the current image Count times.
type Unchanged struct {
	Count uint32
}

func (*Initialization) Tag() Tag { return TagInitialization }
func (*Style) Tag() Tag          { return TagStyle }
func (*Full) Tag() Tag           { return TagFull }
func (*Delta) Tag() Tag          { return TagDelta }
func (*Unchanged) Tag() Tag      { return TagUnchanged }

func (*Initialization) isFrame() {}
func (*Style) isFrame()          {}
func (*Full) isFrame()           {}
func (*Delta) isFrame()          {}
func (*Unchanged) isFrame()      {}

// FrameDuration returns the duration as a time.Duration.
func (f *Initialization) FrameDuration() time.Duration {
	return time.Duration(f.Duration) * time.Millisecond
}

// Images returns the number of output images the frame triggers.
// Full and Delta frames produce one new image, Unchanged(n) repeats the
// current image n times and all other frames produce none.
func Images(f Frame) int {
	switch f := f.(type) {
	case *Full, *Delta:
		return 1
	case *Unchanged:
		return int(f.Count)
	default:
		return 0
	}
}

// CountImages returns the total number of output images of a frame sequence.
func CountImages(frames []Frame) int {
	n := 0
	for _, f := range frames {
		n += Images(f)
	}
	return n
}
