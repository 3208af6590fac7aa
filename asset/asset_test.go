package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipbookFrameIndex(t *testing.T) {
	tests := []struct {
		name     string
		frames   int
		fps      float64
		loop     bool
		intro    int
		position float64
		want     int
	}{
		{name: "first frame", frames: 10, fps: 10, loop: true, position: 0, want: 0},
		{name: "mid strip", frames: 10, fps: 10, loop: true, position: 0.35, want: 3},
		{name: "loop wraps to start", frames: 10, fps: 10, loop: true, position: 1.2, want: 2},
		{name: "loop skips intro", frames: 10, fps: 10, loop: true, intro: 4, position: 1.0, want: 4},
		{name: "loop body repeats", frames: 10, fps: 10, loop: true, intro: 4, position: 1.3, want: 7},
		{name: "non-loop clamps to last", frames: 10, fps: 10, loop: false, position: 5, want: 9},
		{name: "zero fps stays put", frames: 10, fps: 0, loop: true, position: 3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFlipbook(Meta{ID: "test"}, nil, tt.frames, tt.fps, tt.loop, tt.intro)
			fb.Advance(tt.position)
			assert.Equal(t, tt.want, fb.FrameIndex())
		})
	}
}

func TestFlipbookAdvanceClampsWhenNotLooping(t *testing.T) {
	fb := NewFlipbook(Meta{ID: "test"}, nil, 5, 10, false, 0)

	fb.Advance(10)
	assert.Equal(t, 0.5, fb.Position())

	fb.Rewind()
	assert.Equal(t, 0.0, fb.Position())
	assert.Equal(t, 0, fb.FrameIndex())
}

func TestFlipbookFrameWithoutSheet(t *testing.T) {
	fb := NewFlipbook(Meta{ID: "test"}, nil, 5, 10, true, 0)
	assert.Nil(t, fb.Frame())
}

func TestParseManifest(t *testing.T) {
	valid := `[
		{"id": "gears", "file": "gears.png", "kind": "flipbook",
		 "width": 500, "height": 400, "frames": 20, "fps": 24, "loop": true, "intro": 5},
		{"id": "portrait", "file": "portrait.png", "kind": "image",
		 "width": 300, "height": 300, "offset": 12}
	]`

	specs, err := parseManifest([]byte(valid))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "gears", specs[0].ID)
	assert.Equal(t, 1.0, specs[0].Scale, "scale should default to 1")
	assert.Equal(t, 12.0, specs[1].Offset)
}

func TestParseManifestRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{
			name: "missing id",
			json: `[{"file": "a.png", "kind": "image", "width": 10, "height": 10}]`,
		},
		{
			name: "duplicate id",
			json: `[{"id": "a", "file": "a.png", "kind": "image", "width": 10, "height": 10},
			        {"id": "a", "file": "b.png", "kind": "image", "width": 10, "height": 10}]`,
		},
		{
			name: "unknown kind",
			json: `[{"id": "a", "file": "a.png", "kind": "movie", "width": 10, "height": 10}]`,
		},
		{
			name: "non-positive size",
			json: `[{"id": "a", "file": "a.png", "kind": "image", "width": 0, "height": 10}]`,
		},
		{
			name: "flipbook without frames",
			json: `[{"id": "a", "file": "a.png", "kind": "flipbook", "width": 10, "height": 10, "fps": 24}]`,
		},
		{
			name: "flipbook without fps",
			json: `[{"id": "a", "file": "a.png", "kind": "flipbook", "width": 10, "height": 10, "frames": 4}]`,
		},
		{
			name: "intro exceeds frames",
			json: `[{"id": "a", "file": "a.png", "kind": "flipbook", "width": 10, "height": 10, "frames": 4, "fps": 24, "intro": 4}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseManifest([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestInstantiateMintsIndependentInstances(t *testing.T) {
	lib := NewLibrary()
	lib.Register(Spec{
		ID: "gears", Kind: "flipbook", Width: 500, Height: 400,
		Offset: 30, Frames: 20, FPS: 24, Loop: true,
	}, nil)

	first, err := lib.Instantiate("gears")
	require.NoError(t, err)
	second, err := lib.Instantiate("gears")
	require.NoError(t, err)

	first.Meta().Opacity = 0.25
	first.Meta().Y = 99
	assert.Equal(t, 1.0, second.Meta().Opacity)
	assert.Equal(t, 30.0, second.Meta().Y)

	fb, ok := first.(*Flipbook)
	require.True(t, ok)
	fb.Advance(0.5)
	assert.Equal(t, 0.0, second.(*Flipbook).Position())
}

func TestInstantiateUnknownAsset(t *testing.T) {
	lib := NewLibrary()
	_, err := lib.Instantiate("missing")
	assert.Error(t, err)
	assert.False(t, lib.Has("missing"))
}
