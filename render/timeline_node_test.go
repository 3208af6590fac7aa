package render

import (
	"image/color"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/config"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// settledTimeline builds a 1080x600 timeline showing 1900..2000 at six
// pixels per year and advances it until every label and artwork has eased
// into place.
func settledTimeline() (*timeline.Timeline, *timeline.Entry, *timeline.Entry) {
	img := asset.NewImage(asset.Meta{ID: "flag", Width: 300, Height: 200, Scale: 1}, nil)
	moon := &timeline.Entry{
		Kind:   timeline.Incident,
		ID:     "moon-landing",
		Label:  "Moon Landing",
		Start:  1969,
		End:    1969,
		Accent: color.RGBA{R: 200, G: 80, B: 40, A: 255},
		Asset:  img,
	}
	era := &timeline.Entry{
		Kind:     timeline.Era,
		ID:       "modern",
		Label:    "Modern Era",
		Start:    1900,
		End:      2000,
		Accent:   color.RGBA{R: 40, G: 120, B: 200, A: 255},
		Children: []*timeline.Entry{moon},
	}
	tl := timeline.New(nil)
	tl.SetEntries([]*timeline.Entry{era})
	tl.SetBackgrounds(timeline.ColorTable{
		{Pos: 1900, Col: colorful.Color{R: 51.0 / 255.0, G: 77.0 / 255.0, B: 128.0 / 255.0}},
	})
	tl.SetSize(1080, 600)
	for i := 0; i < 1200; i++ {
		tl.Advance(1.0/60.0, true)
	}
	return tl, era, moon
}

func TestTimelineNodePaintWithoutTimelineDrawsNothing(t *testing.T) {
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})
	rec := &recordingCanvas{}
	n.Paint(rec, Point{}, nil)
	assert.Zero(t, rec.total())

	tl, _, _ := settledTimeline()
	n.Layout(Size{})
	n.Paint(rec, Point{}, tl)
	assert.Zero(t, rec.total(), "a zero-sized node paints nothing")
}

func TestTimelineNodeBackdropCoversNode(t *testing.T) {
	tl, _, _ := settledTimeline()
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})

	rec := &recordingCanvas{}
	n.Paint(rec, Point{X: 7, Y: 11}, tl)

	require.NotEmpty(t, rec.rects)
	assert.Equal(t, Rect{X: 7, Y: 11, W: 1080, H: 600}, rec.rects[0].rect, "backdrop goes down first")
	assert.Equal(t, color.RGBA{R: 51, G: 77, B: 128, A: 255}, rec.rects[0].col)
}

func TestTimelineNodeTicksSnapToRoundYears(t *testing.T) {
	tl, _, _ := settledTimeline()
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})

	rec := &recordingCanvas{}
	n.Paint(rec, Point{}, tl)

	// At six pixels per year the tick step snaps to five years, labelled
	// every twenty: twenty ticks for 1900..1995, five of them major.
	var major, minor int
	for _, op := range rec.rects[1:] {
		switch op.rect.W {
		case config.TickSize:
			major++
		case config.SmallTickSize:
			minor++
		}
	}
	assert.Equal(t, 5, major)
	assert.Equal(t, 15, minor)

	first := rec.rects[1]
	assert.Equal(t, 0.0, first.rect.Y, "the 1900 tick sits on the top edge")
	assert.Equal(t, 1.0, first.rect.H)
	assert.Equal(t, config.TickSize, first.rect.W)
}

func TestTimelineNodeEraBarSpansGutter(t *testing.T) {
	tl, era, _ := settledTimeline()
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})

	rec := &recordingCanvas{}
	n.Paint(rec, Point{X: 7, Y: 11}, tl)

	var bar *rectOp
	for i := range rec.rects {
		if rec.rects[i].col == era.Accent {
			bar = &rec.rects[i]
			break
		}
	}
	require.NotNil(t, bar, "the era accent bar is painted")
	assert.Equal(t, 7+config.GutterLeft-3, bar.rect.X)
	assert.Equal(t, 11.0, bar.rect.Y)
	assert.Equal(t, 2.0, bar.rect.W)
	assert.Equal(t, 600.0, bar.rect.H, "the era spans the whole view")
}

func TestTimelineNodeBubblesFollowSettledLabels(t *testing.T) {
	tl, _, _ := settledTimeline()
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})

	rec := &recordingCanvas{}
	n.Paint(rec, Point{X: 0, Y: 10}, tl)

	require.Len(t, rec.rounded, 2)
	eraBubble, moonBubble := rec.rounded[0], rec.rounded[1]

	assert.Equal(t, config.GutterLeftExpanded, eraBubble.rect.X)
	assert.InDelta(t, 10+config.EdgePadding, eraBubble.rect.Y, 0.01, "the era label sticks to the top edge")
	assert.Equal(t, config.BubbleHeight, eraBubble.rect.H)
	assert.Equal(t, config.EdgeRadius, eraBubble.radius)
	assert.Equal(t, color.RGBA{R: 36, G: 108, B: 180, A: 229}, eraBubble.col, "the fill is the accent at ninety percent")

	assert.InDelta(t, 10+414, moonBubble.rect.Y, 0.01, "the 1969 label sits at its year")
	assert.Equal(t, color.RGBA{R: 180, G: 72, B: 36, A: 229}, moonBubble.col)
}

func TestTimelineNodeArtworkColumnHugsRightEdge(t *testing.T) {
	tl, _, moon := settledTimeline()
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})

	rec := &recordingCanvas{}
	n.Paint(rec, Point{X: 7, Y: 11}, tl)

	require.Len(t, rec.images, 1)
	op := rec.images[0]

	// The 300px artwork settles at screen scale 0.3*1080/300 = 1.08.
	assert.InDelta(t, 324, op.dst.W, 1e-6)
	assert.InDelta(t, 216, op.dst.H, 1e-6)
	assert.InDelta(t, 7+1080-324-config.EdgePadding, op.dst.X, 1e-6)

	// Centred on its year, 1969 at y=414, minus half its height.
	assert.InDelta(t, 11+414-216.0/2, op.dst.Y, 0.01)
	assert.InDelta(t, 414-216.0/2, moon.Asset.Meta().Y, 0.01)

	assert.InDelta(t, 1.0, op.opts.Opacity, 1e-9)
	assert.Equal(t, FilterLow, op.opts.Filter)
	assert.True(t, op.opts.AntiAlias)
}

func TestTimelineNodeEntryAtFindsBubbles(t *testing.T) {
	tl, era, moon := settledTimeline()
	n := NewTimelineNode(nil)
	n.Layout(Size{W: 1080, H: 600})
	rec := &recordingCanvas{}
	n.Paint(rec, Point{}, tl)

	assert.Same(t, moon, n.EntryAt(Point{X: 100, Y: 430}, tl))
	assert.Same(t, era, n.EntryAt(Point{X: 80, Y: 20}, tl))
	assert.Nil(t, n.EntryAt(Point{X: 500, Y: 300}, tl))
	assert.Nil(t, n.EntryAt(Point{X: 100, Y: 430}, nil))
}

func TestNiceStepRounding(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{0.07, 0.1},
		{0.3, 0.5},
		{1, 1},
		{2, 2},
		{2.5, 5},
		{16, 20},
		{70, 100},
		{100, 100},
		{0, 0},
		{-5, 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, niceStep(tc.raw), 1e-9, "niceStep(%v)", tc.raw)
	}
}

func TestScaleRGBAClampsOpacity(t *testing.T) {
	c := color.RGBA{R: 100, G: 200, B: 40, A: 255}
	assert.Equal(t, color.RGBA{R: 50, G: 100, B: 20, A: 127}, scaleRGBA(c, 0.5))
	assert.Equal(t, c, scaleRGBA(c, 2))
	assert.Equal(t, color.RGBA{}, scaleRGBA(c, -1))
}
