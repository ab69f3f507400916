package protocol

import (
	"testing"
	"time"
)

func TestTagString(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{TagInitialization, "Initialization"},
		{TagStyle, "Style"},
		{TagFull, "Full"},
		{TagDelta, "Delta"},
		{TagUnchanged, "Unchanged"},
		{TagAudio, "Audio"},
		{Tag('X'), "Unknown('X')"},
	}

	for _, tc := range tests {
		if got := tc.tag.String(); got != tc.want {
			t.Errorf("Tag(%q).String() = %q, want %q", rune(tc.tag), got, tc.want)
		}
	}
}

func TestFrameTags(t *testing.T) {
	tests := []struct {
		frame Frame
		want  Tag
	}{
		{&Initialization{}, TagInitialization},
		{&Style{}, TagStyle},
		{&Full{}, TagFull},
		{&Delta{}, TagDelta},
		{&Unchanged{Count: 1}, TagUnchanged},
	}

	for _, tc := range tests {
		if got := tc.frame.Tag(); got != tc.want {
			t.Errorf("%T.Tag() = %v, want %v", tc.frame, got, tc.want)
		}
	}
}

func TestImages(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  int
	}{
		{"initialization", &Initialization{Duration: 10}, 0},
		{"style", &Style{CSS: "a{}"}, 0},
		{"full", &Full{Content: "<g/>"}, 1},
		{"delta", &Delta{Script: "=4"}, 1},
		{"unchanged", &Unchanged{Count: 7}, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Images(tc.frame); got != tc.want {
				t.Errorf("Images() = %d, want %d", got, tc.want)
			}
		})
	}

	frames := []Frame{
		&Initialization{Duration: 500, Width: 320, Height: 240},
		&Full{Content: "a"},
		&Delta{Script: "-1\t+b"},
		&Unchanged{Count: 2},
	}
	if got := CountImages(frames); got != 4 {
		t.Errorf("CountImages() = %d, want 4", got)
	}
}

func TestFrameDuration(t *testing.T) {
	f := &Initialization{Duration: 40}
	if got := f.FrameDuration(); got != 40*time.Millisecond {
		t.Errorf("FrameDuration() = %v, want 40ms", got)
	}
}
