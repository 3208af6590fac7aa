package render

// nodeEffects is the outcome of diffing two node configurations: which
// dirty flags to raise and which actions to take. The zero value means
// the change was a no-op.
type nodeEffects struct {
	rebind     bool
	activate   bool
	repaint    bool
	reschedule bool
	relayout   bool
}

func (fx nodeEffects) none() bool {
	return fx == nodeEffects{}
}
