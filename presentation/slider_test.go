package presentation

import (
	"testing"

	"github.com/rpupo63/transitions-site-backend/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func images(srcs ...string) []media.Image {
	out := make([]media.Image, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, media.Image{Src: s, Alt: s})
	}
	return out
}

func TestSlider_DragUpdatesReveal(t *testing.T) {
	s := NewSlider(media.View{BeforeImages: images("b"), AfterImages: images("a")})
	assert.Equal(t, SliderIdle, s.State())
	assert.Equal(t, DefaultReveal, s.Reveal())

	s.PointerMove(10, 0, 200)
	assert.Equal(t, DefaultReveal, s.Reveal(), "moves while idle are ignored")

	s.PointerDown()
	assert.Equal(t, SliderDragging, s.State())

	s.PointerMove(150, 100, 200)
	assert.InDelta(t, 25.0, s.Reveal(), 1e-9)

	s.PointerMove(-40, 100, 200)
	assert.Equal(t, 0.0, s.Reveal())

	s.PointerMove(900, 100, 200)
	assert.Equal(t, 100.0, s.Reveal())

	s.PointerUp()
	assert.Equal(t, SliderIdle, s.State())
	assert.Equal(t, 100.0, s.Reveal())
}

func TestSlider_LeaveKeepsReveal(t *testing.T) {
	s := NewSlider(media.View{})
	s.PointerDown()
	s.PointerMove(30, 0, 100)
	s.PointerLeave()

	assert.Equal(t, SliderIdle, s.State())
	assert.InDelta(t, 30.0, s.Reveal(), 1e-9)

	s.PointerMove(80, 0, 100)
	assert.InDelta(t, 30.0, s.Reveal(), 1e-9)
}

func TestSlider_ZeroWidthContainer(t *testing.T) {
	s := NewSlider(media.View{})
	s.PointerDown()
	s.PointerMove(10, 0, 0)
	assert.Equal(t, DefaultReveal, s.Reveal())
}

func TestSlider_AdvanceWraps(t *testing.T) {
	s := NewSlider(media.View{BeforeImages: images("b0", "b1"), AfterImages: images("a0", "a1", "a2")})

	for i := 0; i < 3; i++ {
		s.AdvanceAfter()
	}
	assert.Equal(t, 0, s.AfterIndex())

	s.AdvanceBefore()
	img, ok := s.CurrentBefore()
	require.True(t, ok)
	assert.Equal(t, "b1", img.Src)
	s.AdvanceBefore()
	assert.Equal(t, 0, s.BeforeIndex())
}

func TestSlider_RetreatWraps(t *testing.T) {
	s := NewSlider(media.View{AfterImages: images("a0", "a1", "a2")})
	s.RetreatAfter()
	assert.Equal(t, 2, s.AfterIndex())
	s.RetreatBefore()
	assert.Equal(t, 0, s.BeforeIndex())
}

func TestSlider_AdvanceWhileDragging(t *testing.T) {
	s := NewSlider(media.View{BeforeImages: images("b0", "b1"), AfterImages: images("a0", "a1")})
	s.PointerDown()
	s.PointerMove(70, 0, 100)
	s.AdvanceAfter()
	s.AdvanceBefore()

	assert.Equal(t, SliderDragging, s.State())
	assert.Equal(t, 1, s.AfterIndex())
	assert.Equal(t, 1, s.BeforeIndex())
	assert.InDelta(t, 70.0, s.Reveal(), 1e-9)
}

func TestSlider_EmptySide(t *testing.T) {
	s := NewSlider(media.View{BeforeImages: images("b0", "b1"), AfterImages: []media.Image{}})

	s.AdvanceAfter()
	assert.Equal(t, 0, s.AfterIndex())
	_, ok := s.CurrentAfter()
	assert.False(t, ok)
	assert.True(t, s.HasNavigation())

	single := NewSlider(media.View{BeforeImages: images("b"), AfterImages: images("a")})
	assert.False(t, single.HasNavigation())
}
