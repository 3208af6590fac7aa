package timeline

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/config"
	"github.com/dirname/HistoryOfEverything/events"
)

// EraChangedType identifies era-transition events on the app bus.
const EraChangedType events.Type = "timeline.era-changed"

// EraChanged is published when the viewport crosses into a different era.
// Era is nil when the viewport no longer sits inside a single era.
type EraChanged struct {
	Era *Entry
}

// Type implements events.Event.
func (EraChanged) Type() events.Type { return EraChangedType }

// Timeline holds the full entry hierarchy and animates a viewport over it.
// The viewport is a pair of years (start above, end below); Advance chases
// the target range with the render range and lays out every entry in
// pixels for the current frame. All mutation happens on the update thread.
type Timeline struct {
	roots []*Entry
	flat  []*Entry
	byID  map[string]*Entry

	backgrounds ColorTable

	width  float64
	height float64

	start       float64
	end         float64
	renderStart float64
	renderEnd   float64
	velocity    float64
	interacting bool

	renderAssets []*Entry
	currentEra   *Entry
	background   colorful.Color

	bus *events.Bus
	log *logrus.Entry
}

// New creates an empty timeline publishing era transitions on bus. A nil
// bus is allowed and simply drops the events.
func New(bus *events.Bus) *Timeline {
	return &Timeline{
		byID: make(map[string]*Entry),
		bus:  bus,
		log:  logrus.WithField("component", "timeline"),
	}
}

// SetEntries installs the entry hierarchy, flattening it into render order
// and resetting the viewport to span the whole dataset.
func (t *Timeline) SetEntries(roots []*Entry) {
	t.roots = roots
	t.flat = t.flat[:0]
	t.byID = make(map[string]*Entry)
	t.flatten(roots, nil)

	var prev *Entry
	for _, e := range t.flat {
		e.Previous = prev
		if prev != nil {
			prev.Next = e
		}
		prev = e
	}

	if len(t.flat) > 0 {
		first, last := t.flat[0], t.flat[0]
		for _, e := range t.flat {
			if e.Start < first.Start {
				first = e
			}
			if e.End > last.End {
				last = e
			}
		}
		t.SetViewport(first.Start, last.End, 0, false)
	}
	t.background = t.backgrounds.Sample((t.start + t.end) / 2)
	t.log.WithField("entries", len(t.flat)).Debug("timeline entries installed")
}

func (t *Timeline) flatten(entries []*Entry, parent *Entry) {
	for _, e := range entries {
		e.Parent = parent
		t.flat = append(t.flat, e)
		if e.ID != "" {
			t.byID[e.ID] = e
		}
		t.flatten(e.Children, e)
	}
}

// SetBackgrounds installs the year-keyed background colour table.
func (t *Timeline) SetBackgrounds(table ColorTable) {
	t.backgrounds = table
	t.background = table.Sample((t.renderStart + t.renderEnd) / 2)
}

// Backgrounds returns the installed background colour table.
func (t *Timeline) Backgrounds() ColorTable { return t.backgrounds }

// ByID looks up an entry by its identifier.
func (t *Timeline) ByID(id string) (*Entry, bool) {
	e, ok := t.byID[id]
	return e, ok
}

// Roots returns the top-level eras in document order.
func (t *Timeline) Roots() []*Entry { return t.roots }

// Entries returns every entry in render order.
func (t *Timeline) Entries() []*Entry { return t.flat }

// SetSize tells the timeline how many pixels it is laid out into.
func (t *Timeline) SetSize(width, height float64) {
	t.width = width
	t.height = height
}

// Height returns the layout height in pixels.
func (t *Timeline) Height() float64 { return t.height }

// SetInteracting marks a drag in progress, which speeds up how fast the
// render range chases its target.
func (t *Timeline) SetInteracting(interacting bool) {
	t.interacting = interacting
}

// SetViewport retargets the visible year range. With animate the render
// range eases over; without it the viewport snaps. velocity, in pixels per
// second, keeps the viewport drifting after a fling.
func (t *Timeline) SetViewport(start, end, velocity float64, animate bool) {
	if end <= start {
		return
	}
	t.start = start
	t.end = end
	t.velocity = velocity
	if !animate {
		t.renderStart = start
		t.renderEnd = end
	}
}

// ViewportFor returns the padded target range that frames an entry, with
// breathing room above and below at the destination scale.
func (t *Timeline) ViewportFor(e *Entry) (start, end float64) {
	span := e.End - e.Start
	if span <= 0 {
		// An incident gets a window proportional to its depth in time.
		span = math.Abs(e.Start) / 10
		if span < 10 {
			span = 10
		}
	}
	usable := t.height - config.ViewportPaddingTop - config.ViewportPaddingBottom
	if usable <= 0 {
		return e.Start, e.Start + span
	}
	perPixel := span / usable
	return e.Start - perPixel*config.ViewportPaddingTop,
		e.Start + span + perPixel*config.ViewportPaddingBottom
}

// RenderStart returns the year currently rendered at the top edge.
func (t *Timeline) RenderStart() float64 { return t.renderStart }

// RenderEnd returns the year currently rendered at the bottom edge.
func (t *Timeline) RenderEnd() float64 { return t.renderEnd }

// Velocity returns the current drift speed in pixels per second.
func (t *Timeline) Velocity() float64 { return t.velocity }

// CurrentEra returns the era spanning the whole viewport, or nil.
func (t *Timeline) CurrentEra() *Entry { return t.currentEra }

// BackgroundColor returns the blended backdrop colour for this frame.
func (t *Timeline) BackgroundColor() color.RGBA { return rgba(t.background) }

// RenderAssets returns the entries whose artwork is on screen this frame,
// in render order.
func (t *Timeline) RenderAssets() []*Entry { return t.renderAssets }

// Advance moves the viewport physics and the per-entry layout forward by
// elapsed seconds. It reports whether anything is still in motion and
// another frame should follow.
func (t *Timeline) Advance(elapsed float64, animate bool) bool {
	if t.height <= 0 || len(t.flat) == 0 {
		return true
	}
	if t.renderEnd <= t.renderStart {
		t.renderStart = t.start
		t.renderEnd = t.end
	}
	scale := t.height / (t.renderEnd - t.renderStart)

	// Inertial drift after a fling. Velocity is in pixels per second,
	// so it converts through the current scale.
	if !t.interacting && t.velocity != 0 {
		displace := t.velocity * elapsed / scale
		t.start += displace
		t.end += displace
		t.velocity *= 1 - math.Min(1, elapsed*config.Deceleration)
		if math.Abs(t.velocity) < 1 {
			t.velocity = 0
		}
	}
	moving := t.velocity != 0

	if !animate {
		t.renderStart = t.start
		t.renderEnd = t.end
	} else {
		speed := config.MoveSpeed
		if t.interacting {
			speed = config.MoveSpeedInteracting
		}
		step := math.Min(1, elapsed*speed)
		ds := t.start - t.renderStart
		de := t.end - t.renderEnd
		if math.Abs(ds)*scale > 0.5 || math.Abs(de)*scale > 0.5 {
			moving = true
			t.renderStart += ds * step
			t.renderEnd += de * step
		} else {
			t.renderStart = t.start
			t.renderEnd = t.end
		}
	}
	scale = t.height / (t.renderEnd - t.renderStart)

	if t.layoutEntries(elapsed, scale) {
		moving = true
	}
	t.trackEra()
	if t.blendBackground(elapsed) {
		moving = true
	}
	return moving
}

// layoutEntries positions every entry for the current render range and
// eases labels and artwork toward their slots.
func (t *Timeline) layoutEntries(elapsed, scale float64) bool {
	moving := false
	t.renderAssets = t.renderAssets[:0]
	lastLabelY := math.Inf(-1)

	for _, e := range t.flat {
		y := (e.Start - t.renderStart) * scale
		endY := y
		if e.Kind == Era {
			endY = (e.End - t.renderStart) * scale
		}
		e.Y = y
		e.EndY = endY

		onScreen := endY > -config.BubbleHeight && y < t.height+config.BubbleHeight

		// Labels fade out off screen and when crowded against the
		// previous visible label.
		labelTarget := 1.0
		if !onScreen {
			labelTarget = 0
		} else if y-lastLabelY < config.FadeAnimationStart {
			labelTarget = 0
		}
		if labelTarget == 1 {
			lastLabelY = y
		}
		e.LabelOpacity += (labelTarget - e.LabelOpacity) * math.Min(1, elapsed*config.MoveSpeed)
		if math.Abs(labelTarget-e.LabelOpacity) > 0.01 {
			moving = true
		}

		// Era labels stick to the top edge while the era spans it.
		labelY := math.Max(y, config.EdgePadding)
		if e.Kind == Era && labelY > endY-config.BubbleHeight {
			labelY = endY - config.BubbleHeight
		}
		e.LabelY, e.LabelVelocity = springStep(e.LabelY, e.LabelVelocity, labelY, elapsed)
		if math.Abs(labelY-e.LabelY) > 0.1 || math.Abs(e.LabelVelocity) > 0.1 {
			moving = true
		}

		e.Opacity = e.LabelOpacity

		if e.Asset != nil && t.layoutAsset(e, onScreen, elapsed) {
			moving = true
		}
	}

	if len(t.renderAssets) > 0 {
		// Visible artwork keeps animating, so keep the frames coming.
		moving = true
	}
	return moving
}

// layoutAsset eases one entry's artwork toward its on-screen slot and
// advances flipbook playback while it is visible. It reports whether the
// artwork is still in motion.
func (t *Timeline) layoutAsset(e *Entry, onScreen bool, elapsed float64) bool {
	m := e.Asset.Meta()

	opacityTarget := 0.0
	if onScreen {
		opacityTarget = 1
	}
	appearing := onScreen && m.Opacity <= 0.01

	m.Opacity += (opacityTarget - m.Opacity) * math.Min(1, elapsed*config.MoveSpeed)
	moving := math.Abs(opacityTarget-m.Opacity) > 0.01

	if !onScreen && m.Opacity <= 0.01 {
		return moving
	}

	scaleTarget := 1.0
	if m.Width > 0 && t.width > 0 {
		scaleTarget = config.AssetScreenScale * t.width / m.Width
	}
	m.Scale += (scaleTarget - m.Scale) * math.Min(1, elapsed*config.MoveSpeed)

	renderH := m.Height * m.Scale
	target := e.Y - renderH/2
	if target < config.AssetPadding {
		target = config.AssetPadding
	}
	if limit := t.height - renderH - config.AssetPadding; target > limit {
		target = limit
	}
	m.Y, m.Velocity = springStep(m.Y, m.Velocity, target, elapsed)
	if math.Abs(target-m.Y) > 0.1 || math.Abs(m.Velocity) > 0.1 {
		moving = true
	}

	switch a := e.Asset.(type) {
	case *asset.Flipbook:
		if appearing {
			a.Rewind()
		}
		a.Advance(elapsed)
	case *asset.Image:
		// Static artwork only slides and fades.
	}

	t.renderAssets = append(t.renderAssets, e)
	return moving
}

// trackEra finds the era spanning the whole viewport and publishes a
// transition event when it changes. Nested eras win over their parents.
func (t *Timeline) trackEra() {
	var current *Entry
	for _, e := range t.flat {
		if e.Kind != Era {
			continue
		}
		if e.Start <= t.renderStart && e.End >= t.renderEnd {
			current = e
		}
	}
	if current == t.currentEra {
		return
	}
	t.currentEra = current
	if t.bus != nil {
		t.bus.Emit(EraChanged{Era: current})
	}
}

// blendBackground eases the backdrop colour toward the table colour at the
// viewport centre.
func (t *Timeline) blendBackground(elapsed float64) bool {
	if len(t.backgrounds) == 0 {
		return false
	}
	target := t.backgrounds.Sample((t.renderStart + t.renderEnd) / 2)
	if t.background.DistanceRgb(target) < 0.001 {
		t.background = target
		return false
	}
	t.background = t.background.BlendHcl(target, math.Min(1, elapsed*config.MoveSpeed)).Clamped()
	return true
}

// springStep integrates one step of the damped spring used for labels and
// artwork, returning the new position and velocity.
func springStep(pos, vel, target, elapsed float64) (float64, float64) {
	vel += (target - pos) * math.Min(1, elapsed*config.AssetSpring)
	pos += vel * elapsed
	vel *= 1 - math.Min(1, elapsed*config.AssetDamping)
	return pos, vel
}
