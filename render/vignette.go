package render

import (
	"image/color"
	"math"
	"time"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// VignetteConfig is the immutable configuration for a menu background.
// The artwork is found by looking AssetID up in the timeline.
type VignetteConfig struct {
	Active        bool
	Timeline      *timeline.Timeline
	AssetID       string
	GradientColor color.RGBA
}

// MenuVignette keeps a MenuVignetteNode in sync with declarative
// configuration. Unmounting deactivates the node and drops its binding so
// the artwork can be released.
type MenuVignette struct {
	node *MenuVignetteNode
}

// NewMenuVignette creates the widget and its node.
func NewMenuVignette(s Scheduler) *MenuVignette {
	return &MenuVignette{node: NewMenuVignetteNode(s)}
}

// Mount pushes the initial configuration.
func (w *MenuVignette) Mount(cfg VignetteConfig) {
	w.node.Apply(cfg)
}

// Update pushes a new configuration.
func (w *MenuVignette) Update(cfg VignetteConfig) {
	w.node.Apply(cfg)
}

// Unmount deactivates the node and clears its binding.
func (w *MenuVignette) Unmount() {
	w.node.Apply(VignetteConfig{})
}

// Node returns the underlying render node.
func (w *MenuVignette) Node() *MenuVignetteNode {
	return w.node
}

// diffVignette compares two configurations and returns the side effects
// applying the change demands. Identical configurations demand nothing.
// Repainting and scheduling only happen for an active node with a
// timeline to resolve against; relayout happens on any change.
func diffVignette(old, next VignetteConfig) nodeEffects {
	var fx nodeEffects
	if old == next {
		return fx
	}
	fx.relayout = true
	fx.rebind = old.Timeline != next.Timeline || old.AssetID != next.AssetID
	fx.activate = next.Active && !old.Active
	if next.Active && next.Timeline != nil {
		fx.repaint = true
		fx.reschedule = true
	}
	return fx
}

// MenuVignetteNode paints one menu section's background artwork with a
// gradient fade over its lower half, and advances the artwork's playback
// while active.
type MenuVignetteNode struct {
	scheduler Scheduler
	cfg       VignetteConfig

	entry         *timeline.Entry
	phase         framePhase
	lastFrameTime float64
	firstUpdate   bool
	ramp          float64

	needsPaint  bool
	needsLayout bool
	size        Size
	offset      Point
}

// NewMenuVignetteNode creates an inactive node.
func NewMenuVignetteNode(s Scheduler) *MenuVignetteNode {
	return &MenuVignetteNode{scheduler: s, firstUpdate: true}
}

// Apply installs a new configuration, raising exactly the dirty flags the
// change calls for. Applying an equal configuration is a no-op.
func (n *MenuVignetteNode) Apply(next VignetteConfig) {
	fx := diffVignette(n.cfg, next)
	if fx.none() {
		return
	}
	n.cfg = next

	if fx.rebind {
		n.entry = nil
		n.ramp = 0
		n.firstUpdate = true
		if next.Timeline != nil && next.AssetID != "" {
			if e, ok := next.Timeline.ByID(next.AssetID); ok {
				n.entry = e
			}
		}
	}
	if fx.activate {
		// A fresh baseline keeps the first callback after activation
		// from seeing a stale timestamp.
		n.lastFrameTime = 0
		n.firstUpdate = true
	}
	if fx.relayout {
		n.needsLayout = true
	}
	if fx.repaint {
		n.needsPaint = true
	}
	if fx.reschedule {
		n.phase.schedule(n.scheduler, n.beginFrame)
	}
}

// beginFrame is the frame callback. The first tick after activation only
// records the clock baseline; later ticks advance playback by the elapsed
// time, mark the node for repaint and re-register while still active.
func (n *MenuVignetteNode) beginFrame(now time.Duration) {
	n.phase.fired()
	t := now.Seconds()
	if n.lastFrameTime == 0 {
		n.lastFrameTime = t
		n.phase.schedule(n.scheduler, n.beginFrame)
		return
	}
	elapsed := t - n.lastFrameTime
	n.lastFrameTime = t

	if e := n.entry; e != nil && e.Asset != nil {
		switch a := e.Asset.(type) {
		case *asset.Flipbook:
			if n.firstUpdate {
				a.Rewind()
			}
			a.Advance(elapsed)
		case *asset.Image:
			// Static artwork only fades in.
		}
		n.firstUpdate = false
		n.ramp = math.Min(1, n.ramp+elapsed*2)
	}

	n.needsPaint = true
	if n.cfg.Active {
		n.phase.schedule(n.scheduler, n.beginFrame)
	}
}

// Layout stores the size offered by the parent. The node always fills it.
func (n *MenuVignetteNode) Layout(size Size) {
	n.size = size
	n.needsLayout = false
}

// Paint draws the resolved artwork right-aligned in the node, then the
// gradient fade. A missing entry or asset paints nothing.
func (n *MenuVignetteNode) Paint(c Canvas, offset Point) {
	n.offset = offset
	n.needsPaint = false

	e := n.entry
	if e == nil || e.Asset == nil {
		return
	}
	m := e.Asset.Meta()
	dst := Rect{
		X: offset.X + n.size.W - m.Width,
		Y: m.Y,
		W: m.Width,
		H: m.Height,
	}
	opts := DrawOptions{
		Opacity:   m.Opacity * n.ramp,
		Filter:    FilterLow,
		AntiAlias: true,
	}
	switch a := e.Asset.(type) {
	case *asset.Image:
		c.DrawImage(a.Bitmap, dst, opts)
	case *asset.Flipbook:
		c.DrawImage(a.Frame(), dst, opts)
	}

	if n.cfg.GradientColor.A > 0 {
		c.DrawVerticalGradient(Rect{
			X: offset.X,
			Y: offset.Y + n.size.H/2,
			W: n.size.W,
			H: n.size.H / 2,
		}, color.RGBA{}, n.cfg.GradientColor)
	}
}

// Entry returns the resolved timeline entry, if any.
func (n *MenuVignetteNode) Entry() *timeline.Entry { return n.entry }

// NeedsPaint reports whether the node was marked for repaint.
func (n *MenuVignetteNode) NeedsPaint() bool { return n.needsPaint }

// NeedsLayout reports whether the node was marked for relayout.
func (n *MenuVignetteNode) NeedsLayout() bool { return n.needsLayout }

// Scheduled reports whether a frame callback is pending.
func (n *MenuVignetteNode) Scheduled() bool { return n.phase.scheduled() }
