package screens

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screen is one layer of the application: the menu, the timeline or an
// article. Screens are stacked; the top one receives input.
type Screen interface {
	// Update advances the screen state by one tick and handles input
	Update() error
	// Draw draws the screen
	Draw(screen *ebiten.Image)
	// Layout handles screen layout
	Layout(outsideWidth, outsideHeight int) (int, int)
}

// Navigation sentinels returned from Update
var (
	// ErrCloseScreen asks the stack owner to pop the current screen
	ErrCloseScreen = errors.New("close screen")
	// ErrQuit asks the stack owner to shut the application down
	ErrQuit = errors.New("quit")
)

// Push asks the stack owner to put another screen on top.
type Push struct {
	Next Screen
}

func (p *Push) Error() string {
	return "push screen"
}

// ScreenStack manages a stack of screens
type ScreenStack struct {
	screens []Screen
}

// NewScreenStack creates a new screen stack
func NewScreenStack() *ScreenStack {
	return &ScreenStack{
		screens: make([]Screen, 0),
	}
}

// Push adds a new screen to the top of the stack. The covered screen is
// suspended if it implements Suspend, so it can stop animating while
// hidden.
func (s *ScreenStack) Push(screen Screen) {
	if top := s.Peek(); top != nil {
		if sus, ok := top.(interface{ Suspend() }); ok {
			sus.Suspend()
		}
	}
	s.screens = append(s.screens, screen)
}

// Pop removes the top screen from the stack. The revealed screen is
// resumed if it implements Resume.
func (s *ScreenStack) Pop() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	top := s.screens[len(s.screens)-1]
	s.screens = s.screens[:len(s.screens)-1]
	if next := s.Peek(); next != nil {
		if res, ok := next.(interface{ Resume() }); ok {
			res.Resume()
		}
	}
	return top
}

// Peek returns the top screen without removing it
func (s *ScreenStack) Peek() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	return s.screens[len(s.screens)-1]
}

// Len returns the number of screens on the stack
func (s *ScreenStack) Len() int {
	return len(s.screens)
}

// Update updates the top screen and resolves its navigation errors.
// Screens that implement Close are told before they are popped.
// Unresolved errors, ErrQuit included, bubble up to the caller.
func (s *ScreenStack) Update() error {
	top := s.Peek()
	if top == nil {
		return nil
	}
	err := top.Update()
	if err == nil {
		return nil
	}

	var push *Push
	switch {
	case errors.Is(err, ErrCloseScreen):
		if closer, ok := top.(interface{ Close() }); ok {
			closer.Close()
		}
		s.Pop()
		return nil
	case errors.As(err, &push):
		s.Push(push.Next)
		return nil
	}
	return err
}

// Draw draws all screens from bottom to top
func (s *ScreenStack) Draw(screen *ebiten.Image) {
	for _, scr := range s.screens {
		scr.Draw(screen)
	}
}

// Layout handles layout for the top screen
func (s *ScreenStack) Layout(outsideWidth, outsideHeight int) (int, int) {
	if top := s.Peek(); top != nil {
		return top.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
