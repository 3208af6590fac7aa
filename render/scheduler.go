package render

import (
	"time"
)

// FrameCallback is a one-shot callback from the frame scheduler. now is
// the monotonic time since the scheduler started.
type FrameCallback func(now time.Duration)

// Scheduler hands out one-shot frame callbacks. A callback runs once on
// the next frame; anything that wants the frame after that registers
// again. Implementations run callbacks on the update thread.
type Scheduler interface {
	ScheduleFrame(cb FrameCallback)
}

// FramePump is the production scheduler. The root game ticks it once per
// update with the current clock; callbacks registered while a tick runs
// land in the next tick's batch.
type FramePump struct {
	callbacks []FrameCallback
}

// NewFramePump creates an empty pump.
func NewFramePump() *FramePump {
	return &FramePump{}
}

// ScheduleFrame implements Scheduler.
func (p *FramePump) ScheduleFrame(cb FrameCallback) {
	p.callbacks = append(p.callbacks, cb)
}

// Pending returns how many callbacks wait for the next tick.
func (p *FramePump) Pending() int {
	return len(p.callbacks)
}

// Tick runs every pending callback with the given clock reading. The
// batch is swapped out first so re-registrations wait for the next frame.
func (p *FramePump) Tick(now time.Duration) {
	batch := p.callbacks
	p.callbacks = nil
	for _, cb := range batch {
		cb(now)
	}
}

// framePhase tracks whether a node has a frame callback in flight:
// either idle or scheduled, nothing else. The active flag lives on the
// node; this only guards against double registration.
type framePhase int

const (
	frameIdle framePhase = iota
	frameScheduled
)

// schedule registers cb unless one is already pending. It reports whether
// a registration happened.
func (p *framePhase) schedule(s Scheduler, cb FrameCallback) bool {
	if *p == frameScheduled || s == nil {
		return false
	}
	*p = frameScheduled
	s.ScheduleFrame(cb)
	return true
}

// fired returns the phase to idle as the callback starts running.
func (p *framePhase) fired() {
	*p = frameIdle
}

// scheduled reports whether a callback is pending.
func (p *framePhase) scheduled() bool {
	return *p == frameScheduled
}
