package render

import (
	"time"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// EntryConfig is the immutable configuration for an article page actor.
// InteractOffset is the current touch position in node coordinates; the
// zero value means no touch is down.
type EntryConfig struct {
	Active         bool
	Entry          *timeline.Entry
	InteractOffset Point
}

// EntryWidget keeps an EntryNode in sync with declarative configuration.
// Unmounting deactivates the node and clears its entry so the artwork can
// be released.
type EntryWidget struct {
	node *EntryNode
}

// NewEntryWidget creates the widget and its node.
func NewEntryWidget(s Scheduler) *EntryWidget {
	return &EntryWidget{node: NewEntryNode(s)}
}

// Mount pushes the initial configuration.
func (w *EntryWidget) Mount(cfg EntryConfig) {
	w.node.Apply(cfg)
}

// Update pushes a new configuration.
func (w *EntryWidget) Update(cfg EntryConfig) {
	w.node.Apply(cfg)
}

// Unmount deactivates the node and clears its entry reference.
func (w *EntryWidget) Unmount() {
	w.node.Apply(EntryConfig{})
}

// Node returns the underlying render node.
func (w *EntryWidget) Node() *EntryNode {
	return w.node
}

// diffEntry compares two configurations and returns the side effects
// applying the change demands. Identical configurations demand nothing.
// Repainting and scheduling only happen for an active node with an entry
// bound; relayout happens on any change.
func diffEntry(old, next EntryConfig) nodeEffects {
	var fx nodeEffects
	if old == next {
		return fx
	}
	fx.relayout = true
	fx.rebind = old.Entry != next.Entry
	fx.activate = next.Active && !old.Active
	if next.Active && next.Entry != nil {
		fx.repaint = true
		fx.reschedule = true
	}
	return fx
}

// EntryNode paints one timeline entry's artwork on the article page and
// advances its playback while active.
type EntryNode struct {
	scheduler Scheduler
	cfg       EntryConfig

	phase         framePhase
	lastFrameTime float64
	firstUpdate   bool

	needsPaint  bool
	needsLayout bool
	size        Size
	offset      Point
}

// NewEntryNode creates an inactive node.
func NewEntryNode(s Scheduler) *EntryNode {
	return &EntryNode{scheduler: s, firstUpdate: true}
}

// Apply installs a new configuration, raising exactly the dirty flags the
// change calls for. Applying an equal configuration is a no-op.
func (n *EntryNode) Apply(next EntryConfig) {
	fx := diffEntry(n.cfg, next)
	if fx.none() {
		return
	}
	n.cfg = next

	if fx.rebind {
		// A different entry replays its intro from the top.
		n.firstUpdate = true
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
func (n *EntryNode) beginFrame(now time.Duration) {
	n.phase.fired()
	t := now.Seconds()
	if n.lastFrameTime == 0 {
		n.lastFrameTime = t
		n.phase.schedule(n.scheduler, n.beginFrame)
		return
	}
	elapsed := t - n.lastFrameTime
	n.lastFrameTime = t

	if e := n.cfg.Entry; e != nil && e.Asset != nil {
		switch a := e.Asset.(type) {
		case *asset.Flipbook:
			if n.firstUpdate {
				a.Rewind()
			}
			a.Advance(elapsed)
		case *asset.Image:
			// Nothing to advance.
		}
		n.firstUpdate = false
	}

	n.needsPaint = true
	if n.cfg.Active {
		n.phase.schedule(n.scheduler, n.beginFrame)
	}
}

// Layout stores the size offered by the parent. The node always fills it.
func (n *EntryNode) Layout(size Size) {
	n.size = size
	n.needsLayout = false
}

// Paint draws the bound artwork as a single call, right-aligned in the
// node and vertically placed by the asset's own offset. A missing entry
// or asset paints nothing.
func (n *EntryNode) Paint(c Canvas, offset Point) {
	n.offset = offset
	n.needsPaint = false

	e := n.cfg.Entry
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
		Opacity:   m.Opacity,
		Filter:    FilterLow,
		AntiAlias: true,
	}
	switch a := e.Asset.(type) {
	case *asset.Image:
		c.DrawImage(a.Bitmap, dst, opts)
	case *asset.Flipbook:
		c.DrawImage(a.Frame(), dst, opts)
	}
}

// HitTest reports a hit anywhere in the node's bounds.
// TODO: rewind the flipbook to its intro when the artwork itself is hit.
func (n *EntryNode) HitTest(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= n.size.W && p.Y <= n.size.H
}

// Entry returns the bound timeline entry, if any.
func (n *EntryNode) Entry() *timeline.Entry { return n.cfg.Entry }

// NeedsPaint reports whether the node was marked for repaint.
func (n *EntryNode) NeedsPaint() bool { return n.needsPaint }

// NeedsLayout reports whether the node was marked for relayout.
func (n *EntryNode) NeedsLayout() bool { return n.needsLayout }

// Scheduled reports whether a frame callback is pending.
func (n *EntryNode) Scheduled() bool { return n.phase.scheduled() }
