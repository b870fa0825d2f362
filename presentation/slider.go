// Package presentation holds the interaction state behind the portfolio
// surfaces: the before/after comparison slider, the image lightbox and the
// admin editor dialog. Nothing here performs I/O.
package presentation

import "github.com/rpupo63/transitions-site-backend/media"

// SliderState is the pointer state of a comparison slider
type SliderState int

const (
	SliderIdle SliderState = iota
	SliderDragging
)

func (s SliderState) String() string {
	if s == SliderDragging {
		return "dragging"
	}
	return "idle"
}

// DefaultReveal is the reveal position of a freshly mounted slider
const DefaultReveal = 50.0

// Slider is the state of one project card's before/after slider. The reveal
// position is the percentage of the after image drawn over the before image.
type Slider struct {
	before []media.Image
	after  []media.Image

	state       SliderState
	reveal      float64
	beforeIndex int
	afterIndex  int
}

// NewSlider starts idle at DefaultReveal with both sides on their first image
func NewSlider(view media.View) *Slider {
	return &Slider{
		before: view.BeforeImages,
		after:  view.AfterImages,
		reveal: DefaultReveal,
	}
}

// State reports whether the handle is being dragged
func (s *Slider) State() SliderState { return s.state }

// Reveal is the after image coverage in percent, from 0 to 100
func (s *Slider) Reveal() float64 { return s.reveal }

// BeforeIndex is the position within the before group
func (s *Slider) BeforeIndex() int { return s.beforeIndex }

// AfterIndex is the position within the after group
func (s *Slider) AfterIndex() int { return s.afterIndex }

// PointerDown grabs the handle
func (s *Slider) PointerDown() {
	s.state = SliderDragging
}

// PointerMove updates the reveal position from a pointer x coordinate while
// dragging. Coordinates outside the container clamp to its edges.
func (s *Slider) PointerMove(clientX, containerLeft, containerWidth float64) {
	if s.state != SliderDragging || containerWidth <= 0 {
		return
	}
	x := clientX - containerLeft
	if x < 0 {
		x = 0
	}
	if x > containerWidth {
		x = containerWidth
	}
	s.reveal = x / containerWidth * 100
}

// PointerUp releases the handle, wherever the pointer is
func (s *Slider) PointerUp() {
	s.state = SliderIdle
}

// PointerLeave cancels a drag when the pointer leaves the container. The last
// reveal position is kept.
func (s *Slider) PointerLeave() {
	s.state = SliderIdle
}

// AdvanceBefore moves to the next before image, wrapping around
func (s *Slider) AdvanceBefore() {
	s.beforeIndex = step(s.beforeIndex, 1, len(s.before))
}

// AdvanceAfter moves to the next after image, wrapping around
func (s *Slider) AdvanceAfter() {
	s.afterIndex = step(s.afterIndex, 1, len(s.after))
}

// RetreatBefore moves to the previous before image, wrapping around
func (s *Slider) RetreatBefore() {
	s.beforeIndex = step(s.beforeIndex, -1, len(s.before))
}

// RetreatAfter moves to the previous after image, wrapping around
func (s *Slider) RetreatAfter() {
	s.afterIndex = step(s.afterIndex, -1, len(s.after))
}

// CurrentBefore returns the before image on display; false when the group is
// empty and the side renders blank.
func (s *Slider) CurrentBefore() (media.Image, bool) {
	if len(s.before) == 0 {
		return media.Image{}, false
	}
	return s.before[s.beforeIndex], true
}

// CurrentAfter returns the after image on display; false when the group is
// empty.
func (s *Slider) CurrentAfter() (media.Image, bool) {
	if len(s.after) == 0 {
		return media.Image{}, false
	}
	return s.after[s.afterIndex], true
}

// HasNavigation reports whether either side has more than one image
func (s *Slider) HasNavigation() bool {
	return len(s.before) > 1 || len(s.after) > 1
}

func step(index, delta, length int) int {
	if length == 0 {
		return 0
	}
	return ((index+delta)%length + length) % length
}
