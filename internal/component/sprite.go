package component

import (
	"fmt"
	"sort"
)

// Animation cycles through frame indices of a sprite sheet, holding each
// frame for Length ticks.
type Animation struct {
	Frames []int
	Length int

	index int
	timer int
}

func NewAnimation(length int, frames ...int) *Animation {
	if length < 1 {
		length = 1
	}
	return &Animation{Frames: frames, Length: length}
}

// Frame returns the current sheet frame. An animation without frames is a
// construction bug and panics.
func (a *Animation) Frame() int {
	if len(a.Frames) == 0 {
		panic("animation: no frames")
	}
	return a.Frames[a.index]
}

// Index returns the position inside Frames.
func (a *Animation) Index() int { return a.index }

func (a *Animation) Update() {
	if len(a.Frames) == 0 {
		panic("animation: update with no frames")
	}
	a.timer++
	if a.timer >= a.Length {
		a.index = (a.index + 1) % len(a.Frames)
		a.timer = 0
	}
}

func (a *Animation) Reset() {
	a.index = 0
	a.timer = 0
}

// Sprite holds the named animations of an entity and which one plays.
// The pixels behind frame indices belong to the renderer.
type Sprite struct {
	FrameCount int // frames available in the sheet; 0 means unchecked

	animations map[string]*Animation
	current    string
}

// NewSprite builds a sprite; the first animation added becomes current.
func NewSprite(frameCount int) *Sprite {
	return &Sprite{FrameCount: frameCount, animations: make(map[string]*Animation)}
}

// Add registers an animation under name. Referencing a frame outside the
// sheet is a programming error and panics.
func (s *Sprite) Add(name string, a *Animation) *Sprite {
	if s.FrameCount > 0 {
		for _, f := range a.Frames {
			if f < 0 || f >= s.FrameCount {
				panic(fmt.Sprintf("sprite: animation %q references frame %d of %d", name, f, s.FrameCount))
			}
		}
	}
	if len(s.animations) == 0 {
		s.current = name
	}
	s.animations[name] = a
	return s
}

// SetAnimation switches the playing animation, restarting it when it
// changes. Unknown names leave the sprite without a current frame.
func (s *Sprite) SetAnimation(name string) {
	if name == s.current {
		return
	}
	s.current = name
	if a, ok := s.animations[name]; ok {
		a.Reset()
	}
}

func (s *Sprite) Current() string { return s.current }

// Frame returns the current sheet frame, false when no animation plays.
func (s *Sprite) Frame() (int, bool) {
	a, ok := s.animations[s.current]
	if !ok {
		return 0, false
	}
	return a.Frame(), true
}

func (s *Sprite) Update() {
	if a, ok := s.animations[s.current]; ok {
		a.Update()
	}
}

// Names lists the registered animations in sorted order.
func (s *Sprite) Names() []string {
	names := make([]string, 0, len(s.animations))
	for n := range s.animations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
