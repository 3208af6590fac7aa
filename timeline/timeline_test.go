package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/events"
)

const frameStep = 1.0 / 60.0

func testTimelineJSON() []byte {
	return []byte(`[
		{
			"id": "universe", "kind": "era", "label": "Birth of the Universe",
			"start": -13800000000, "end": -800000000,
			"background": [43, 38, 61],
			"children": [
				{"id": "big-bang", "kind": "incident", "label": "Big Bang",
				 "date": -13800000000, "article": "big_bang.txt"},
				{"id": "first-stars", "kind": "incident", "label": "First Stars",
				 "date": -13400000000}
			]
		},
		{
			"id": "humans", "kind": "era", "label": "Humans",
			"start": -2500000, "end": 2000,
			"background": [90, 74, 60],
			"children": [
				{"id": "moon-landing", "kind": "incident", "label": "Moon Landing",
				 "date": 1969, "article": "moon_landing.txt"}
			]
		}
	]`)
}

func TestParseBuildsHierarchyAndLinks(t *testing.T) {
	tl, err := Parse(testTimelineJSON(), nil, nil)
	require.NoError(t, err)

	roots := tl.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, Era, roots[0].Kind)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, roots[0], roots[0].Children[0].Parent)

	flat := tl.Entries()
	require.Len(t, flat, 5)
	assert.Nil(t, flat[0].Previous)
	assert.Equal(t, flat[1], flat[0].Next)
	assert.Equal(t, flat[0], flat[1].Previous)
	assert.Nil(t, flat[len(flat)-1].Next)

	moon, ok := tl.ByID("moon-landing")
	require.True(t, ok)
	assert.Equal(t, 1969.0, moon.Start)
	assert.Equal(t, moon.Start, moon.End, "incidents collapse to a single year")

	_, ok = tl.ByID("nope")
	assert.False(t, ok)
}

func TestParseRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "not json", json: `{]`},
		{name: "missing id", json: `[{"kind": "incident", "label": "X", "date": 1}]`},
		{name: "missing label", json: `[{"id": "x", "kind": "incident", "date": 1}]`},
		{
			name: "duplicate id",
			json: `[{"id": "x", "kind": "incident", "label": "A", "date": 1},
			        {"id": "x", "kind": "incident", "label": "B", "date": 2}]`,
		},
		{
			name: "era ends before it starts",
			json: `[{"id": "x", "kind": "era", "label": "X", "start": 100, "end": -100}]`,
		},
		{
			name: "unknown kind",
			json: `[{"id": "x", "kind": "epoch", "label": "X"}]`,
		},
		{
			name: "incident with children",
			json: `[{"id": "x", "kind": "incident", "label": "X", "date": 1,
			         "children": [{"id": "y", "kind": "incident", "label": "Y", "date": 2}]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json), nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestParseResolvesArtwork(t *testing.T) {
	lib := asset.NewLibrary()
	lib.Register(asset.Spec{
		ID: "rocket", Kind: "flipbook", Width: 400, Height: 300,
		Frames: 10, FPS: 24, Loop: true,
	}, nil)

	data := []byte(`[
		{"id": "a", "kind": "incident", "label": "A", "date": 1969, "asset": "rocket"},
		{"id": "b", "kind": "incident", "label": "B", "date": 1970, "asset": "missing"}
	]`)

	tl, err := Parse(data, lib, nil)
	require.NoError(t, err)

	a, _ := tl.ByID("a")
	require.NotNil(t, a.Asset)
	assert.Equal(t, "rocket", a.Asset.Meta().ID)

	b, _ := tl.ByID("b")
	assert.Nil(t, b.Asset, "unknown artwork is skipped, not fatal")
}

func TestSetViewportSnapAndAnimate(t *testing.T) {
	tl, err := Parse(testTimelineJSON(), nil, nil)
	require.NoError(t, err)
	tl.SetSize(1080, 720)

	tl.SetViewport(-5000, 2000, 0, false)
	assert.Equal(t, -5000.0, tl.RenderStart())
	assert.Equal(t, 2000.0, tl.RenderEnd())

	tl.SetViewport(-100000, 2000, 0, true)
	assert.Equal(t, -5000.0, tl.RenderStart(), "animated retarget leaves the render range alone")

	before := tl.RenderStart()
	tl.Advance(frameStep, true)
	assert.Less(t, tl.RenderStart(), before, "render range eases toward the target")
	assert.Greater(t, tl.RenderStart(), -100000.0)

	// Degenerate ranges are ignored.
	tl.SetViewport(10, 10, 0, false)
	assert.Less(t, tl.RenderStart(), before)
}

func TestAdvanceSettles(t *testing.T) {
	tl, err := Parse(testTimelineJSON(), nil, nil)
	require.NoError(t, err)
	tl.SetSize(1080, 720)
	tl.SetViewport(-3000000, 2000, 0, false)
	tl.SetViewport(-5000, 2000, 0, true)

	moving := true
	for i := 0; i < 1200 && moving; i++ {
		moving = tl.Advance(frameStep, true)
	}
	assert.False(t, moving, "everything should come to rest")
	assert.InDelta(t, -5000.0, tl.RenderStart(), 1.0)
	assert.InDelta(t, 2000.0, tl.RenderEnd(), 1.0)
}

func TestAdvanceWithoutHeightWaits(t *testing.T) {
	tl, err := Parse(testTimelineJSON(), nil, nil)
	require.NoError(t, err)
	assert.True(t, tl.Advance(frameStep, true), "unsized timeline keeps asking for frames")
}

func TestVelocityDecays(t *testing.T) {
	tl, err := Parse(testTimelineJSON(), nil, nil)
	require.NoError(t, err)
	tl.SetSize(1080, 720)
	tl.SetViewport(-5000, 2000, 0, false)

	tl.SetViewport(-5000, 2000, 300, true)
	tl.Advance(frameStep, true)
	assert.NotEqual(t, -5000.0, tl.RenderStart(), "fling drifts the viewport")
	assert.Less(t, math.Abs(tl.Velocity()), 300.0, "drag bleeds off the fling")

	for i := 0; i < 1200 && tl.Advance(frameStep, true); i++ {
	}
	assert.Zero(t, tl.Velocity())
}

func TestEraTrackingEmitsEvents(t *testing.T) {
	bus := events.NewBus()
	var changes []EraChanged
	bus.Subscribe(EraChangedType, func(ev events.Event) {
		changes = append(changes, ev.(EraChanged))
	})

	tl, err := Parse(testTimelineJSON(), nil, bus)
	require.NoError(t, err)
	tl.SetSize(1080, 720)

	// Dive inside the Humans era.
	tl.SetViewport(-10000, 1500, 0, false)
	tl.Advance(frameStep, true)
	require.Len(t, changes, 1)
	require.NotNil(t, changes[0].Era)
	assert.Equal(t, "humans", changes[0].Era.ID)
	assert.Equal(t, changes[0].Era, tl.CurrentEra())

	// Staying inside the same era is quiet.
	tl.Advance(frameStep, true)
	assert.Len(t, changes, 1)

	// Zooming out to the whole dataset leaves every era.
	tl.SetViewport(-14000000000, 2000, 0, false)
	tl.Advance(frameStep, true)
	require.Len(t, changes, 2)
	assert.Nil(t, changes[1].Era)
	assert.Nil(t, tl.CurrentEra())
}

func TestViewportForPadsTheTarget(t *testing.T) {
	tl, err := Parse(testTimelineJSON(), nil, nil)
	require.NoError(t, err)
	tl.SetSize(1080, 720)

	humans, _ := tl.ByID("humans")
	start, end := tl.ViewportFor(humans)
	assert.Less(t, start, humans.Start)
	assert.Greater(t, end, humans.End)

	moon, _ := tl.ByID("moon-landing")
	start, end = tl.ViewportFor(moon)
	assert.Less(t, start, moon.Start)
	assert.Greater(t, end, moon.End)
	assert.Greater(t, end-start, 10.0, "incidents get a non-degenerate window")
}

func TestVisibleArtworkAnimates(t *testing.T) {
	lib := asset.NewLibrary()
	lib.Register(asset.Spec{
		ID: "rocket", Kind: "flipbook", Width: 400, Height: 300,
		Frames: 10, FPS: 24, Loop: true,
	}, nil)

	data := []byte(`[
		{"id": "space", "kind": "era", "label": "Space Age", "start": 1957, "end": 2000,
		 "children": [
			{"id": "moon-landing", "kind": "incident", "label": "Moon Landing",
			 "date": 1969, "asset": "rocket"}
		 ]}
	]`)

	tl, err := Parse(data, lib, nil)
	require.NoError(t, err)
	tl.SetSize(1080, 720)
	tl.SetViewport(1957, 2000, 0, false)

	moving := false
	for i := 0; i < 120; i++ {
		moving = tl.Advance(frameStep, true)
	}
	assert.True(t, moving, "visible artwork keeps requesting frames")

	require.Len(t, tl.RenderAssets(), 1)
	entry := tl.RenderAssets()[0]
	fb, ok := entry.Asset.(*asset.Flipbook)
	require.True(t, ok)
	assert.Greater(t, fb.Position(), 0.0, "playback advances while visible")
	assert.Greater(t, entry.Asset.Meta().Opacity, 0.9)
	assert.Greater(t, entry.Asset.Meta().Scale, 0.0)

	// Scroll deep into the past and the artwork fades back out.
	tl.SetViewport(-13800000000, -13000000000, 0, false)
	for i := 0; i < 600; i++ {
		tl.Advance(frameStep, true)
	}
	assert.Empty(t, tl.RenderAssets())
}
