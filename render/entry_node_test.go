package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/timeline"
)

func flipbookEntry(id string) *timeline.Entry {
	fb := asset.NewFlipbook(asset.Meta{
		ID: id, Width: 300, Height: 200, Y: 40, Opacity: 1, Scale: 1,
	}, nil, 10, 24, true, 0)
	return &timeline.Entry{ID: id, Label: id, Asset: fb}
}

func imageEntry(id string) *timeline.Entry {
	img := asset.NewImage(asset.Meta{
		ID: id, Width: 300, Height: 200, Y: 40, Opacity: 0.8, Scale: 1,
	}, nil)
	return &timeline.Entry{ID: id, Label: id, Asset: img}
}

func TestEntryNodeSameConfigIsNoOp(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	cfg := EntryConfig{Active: true, Entry: flipbookEntry("gears")}

	w.Mount(cfg)
	require.Len(t, s.pending, 1)

	// Settle the dirty flags, then re-apply the identical config.
	w.Node().Layout(Size{W: 720, H: 600})
	w.Node().Paint(&recordingCanvas{}, Point{})

	w.Update(cfg)
	assert.False(t, w.Node().NeedsPaint())
	assert.False(t, w.Node().NeedsLayout())
	assert.Len(t, s.pending, 1, "no extra registration")
}

func TestEntryNodeActivationSchedulesExactlyOnce(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	entry := flipbookEntry("gears")

	w.Mount(EntryConfig{Active: true, Entry: entry})
	assert.Len(t, s.pending, 1)

	// Config churn while a callback is pending must not double-register.
	w.Update(EntryConfig{Active: true, Entry: entry, InteractOffset: Point{X: 5, Y: 5}})
	w.Update(EntryConfig{Active: true, Entry: entry, InteractOffset: Point{X: 9, Y: 2}})
	assert.Len(t, s.pending, 1)
	assert.True(t, w.Node().NeedsPaint(), "config churn still repaints")
}

func TestEntryNodeActivationWithoutEntryDoesNotSchedule(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)

	w.Mount(EntryConfig{Active: true})
	assert.Empty(t, s.pending)
	assert.False(t, w.Node().NeedsPaint())
	assert.True(t, w.Node().NeedsLayout(), "changes always mark relayout")
}

func TestEntryNodeFirstCallbackIsBaseline(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	entry := flipbookEntry("gears")
	fb := entry.Asset.(*asset.Flipbook)

	w.Mount(EntryConfig{Active: true, Entry: entry})

	s.fire(500 * time.Millisecond)
	assert.Zero(t, fb.Position(), "the baseline tick advances nothing")
	assert.Len(t, s.pending, 1, "the baseline tick re-registers")

	s.fire(516 * time.Millisecond)
	assert.InDelta(t, 0.016, fb.Position(), 1e-9)
	assert.True(t, w.Node().NeedsPaint())
}

func TestEntryNodeReactivationResetsBaseline(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	entry := flipbookEntry("gears")
	fb := entry.Asset.(*asset.Flipbook)

	w.Mount(EntryConfig{Active: true, Entry: entry})
	s.fire(16 * time.Millisecond)
	s.fire(32 * time.Millisecond)
	require.InDelta(t, 0.016, fb.Position(), 1e-9)

	// Deactivate and drain the in-flight callback.
	w.Update(EntryConfig{Active: false, Entry: entry})
	s.fire(48 * time.Millisecond)
	require.Empty(t, s.pending)

	// Much later, reactivate. The first callback must not see the gap.
	w.Update(EntryConfig{Active: true, Entry: entry})
	s.fire(10 * time.Second)
	assert.InDelta(t, 0.032, fb.Position(), 1e-9, "reactivation starts with a baseline tick")

	s.fire(10*time.Second + 16*time.Millisecond)
	assert.InDelta(t, 0.016, fb.Position(), 1e-9, "reactivation replays the intro")
}

func TestEntryNodeDeactivationLetsPendingCallbackFinish(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	entry := flipbookEntry("gears")
	fb := entry.Asset.(*asset.Flipbook)

	w.Mount(EntryConfig{Active: true, Entry: entry})
	s.fire(16 * time.Millisecond)
	s.fire(32 * time.Millisecond)

	w.Update(EntryConfig{Active: false, Entry: entry})
	require.Len(t, s.pending, 1, "the queued callback survives deactivation")

	s.fire(48 * time.Millisecond)
	assert.InDelta(t, 0.032, fb.Position(), 1e-9, "the final callback still advances")
	assert.True(t, w.Node().NeedsPaint(), "the final callback still repaints")
	assert.Empty(t, s.pending, "no further registration after deactivation")
	assert.False(t, w.Node().Scheduled())
}

func TestEntryNodePaintWithoutBindingDrawsNothing(t *testing.T) {
	s := &manualScheduler{}
	node := NewEntryNode(s)
	node.Layout(Size{W: 720, H: 600})

	rec := &recordingCanvas{}
	node.Paint(rec, Point{X: 10, Y: 10})
	assert.Zero(t, rec.total(), "no entry, no draw calls")

	node.Apply(EntryConfig{Entry: &timeline.Entry{ID: "bare", Label: "bare"}})
	node.Paint(rec, Point{X: 10, Y: 10})
	assert.Zero(t, rec.total(), "no asset, no draw calls")
}

func TestEntryNodePaintImageIsOneRightAlignedCall(t *testing.T) {
	s := &manualScheduler{}
	node := NewEntryNode(s)
	node.Apply(EntryConfig{Active: true, Entry: imageEntry("portrait")})
	node.Layout(Size{W: 720, H: 600})

	rec := &recordingCanvas{}
	node.Paint(rec, Point{X: 25, Y: 60})

	require.Equal(t, 1, rec.total(), "an image asset paints as exactly one call")
	op := rec.images[0]
	assert.Equal(t, 25+720-300.0, op.dst.X, "right-aligned in the node")
	assert.Equal(t, 40.0, op.dst.Y, "vertical position comes from the asset alone")
	assert.Equal(t, 300.0, op.dst.W)
	assert.Equal(t, 200.0, op.dst.H)
	assert.Equal(t, 0.8, op.opts.Opacity, "opacity comes from the asset")
	assert.Equal(t, FilterLow, op.opts.Filter)
	assert.True(t, op.opts.AntiAlias)
	assert.False(t, node.NeedsPaint(), "painting clears the dirty flag")
}

func TestEntryNodeRebindReplaysIntro(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	first := flipbookEntry("first")
	second := flipbookEntry("second")

	w.Mount(EntryConfig{Active: true, Entry: first})
	s.fire(16 * time.Millisecond)
	s.fire(160 * time.Millisecond)
	require.Greater(t, first.Asset.(*asset.Flipbook).Position(), 0.0)

	w.Update(EntryConfig{Active: true, Entry: second})
	s.fire(176 * time.Millisecond)
	assert.InDelta(t, 0.016, second.Asset.(*asset.Flipbook).Position(), 1e-9,
		"a fresh entry starts from its intro")
}

func TestEntryNodeUnmountClearsBinding(t *testing.T) {
	s := &manualScheduler{}
	w := NewEntryWidget(s)
	w.Mount(EntryConfig{Active: true, Entry: flipbookEntry("gears")})
	s.fire(16 * time.Millisecond)

	w.Unmount()
	assert.Nil(t, w.Node().Entry())

	// The in-flight callback drains without rescheduling.
	s.fire(32 * time.Millisecond)
	assert.Empty(t, s.pending)
}

func TestEntryNodeHitTestCoversBounds(t *testing.T) {
	node := NewEntryNode(&manualScheduler{})
	node.Layout(Size{W: 100, H: 50})

	assert.True(t, node.HitTest(Point{X: 0, Y: 0}))
	assert.True(t, node.HitTest(Point{X: 99, Y: 49}))
	assert.False(t, node.HitTest(Point{X: 101, Y: 10}))
	assert.False(t, node.HitTest(Point{X: 10, Y: -1}))
}
