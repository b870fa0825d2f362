package presentation

import (
	"fmt"
	"sync"

	"github.com/rpupo63/transitions-site-backend/media"
)

// ScrollLock suspends and restores background scrolling of the page
type ScrollLock interface {
	Suspend()
	Restore()
}

// Lightbox pages through every image of a project, before images first.
type Lightbox struct {
	images  []media.Image
	index   int
	scroll  ScrollLock
	closed  bool
	mu      sync.Mutex
	restore sync.Once
}

// OpenLightbox shows the image at start and suspends background scroll. An out
// of range start is clamped.
func OpenLightbox(view media.View, start int, scroll ScrollLock) *Lightbox {
	images := make([]media.Image, 0, len(view.BeforeImages)+len(view.AfterImages))
	images = append(images, view.BeforeImages...)
	images = append(images, view.AfterImages...)

	lb := &Lightbox{images: images, scroll: scroll}
	lb.index = lb.clamp(start)
	if scroll != nil {
		scroll.Suspend()
	}
	return lb
}

func (lb *Lightbox) clamp(i int) int {
	if i < 0 || len(lb.images) == 0 {
		return 0
	}
	if i >= len(lb.images) {
		return len(lb.images) - 1
	}
	return i
}

func (lb *Lightbox) Index() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.index
}

func (lb *Lightbox) Len() int { return len(lb.images) }

// Current returns the image on display, false when there is none
func (lb *Lightbox) Current() (media.Image, bool) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if len(lb.images) == 0 {
		return media.Image{}, false
	}
	return lb.images[lb.index], true
}

// HasNext and HasPrevious drive the arrow buttons
func (lb *Lightbox) HasNext() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.index < len(lb.images)-1
}

func (lb *Lightbox) HasPrevious() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.index > 0
}

// Next is a no-op on the last image
func (lb *Lightbox) Next() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.index < len(lb.images)-1 {
		lb.index++
	}
}

// Previous is a no-op on the first image
func (lb *Lightbox) Previous() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.index > 0 {
		lb.index--
	}
}

// Counter renders the 1-based position, e.g. "3 / 7"
func (lb *Lightbox) Counter() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if len(lb.images) == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", lb.index+1, len(lb.images))
}

// HandleKey maps keyboard input. It reports whether the key was consumed; a
// closed lightbox consumes nothing.
func (lb *Lightbox) HandleKey(key string) bool {
	if lb.Closed() {
		return false
	}
	switch key {
	case "Escape":
		lb.Close()
	case "ArrowLeft":
		lb.Previous()
	case "ArrowRight":
		lb.Next()
	default:
		return false
	}
	return true
}

// Close hides the lightbox. Background scroll is restored exactly once no
// matter how many close paths fire.
func (lb *Lightbox) Close() {
	lb.mu.Lock()
	lb.closed = true
	lb.mu.Unlock()

	lb.restore.Do(func() {
		if lb.scroll != nil {
			lb.scroll.Restore()
		}
	})
}

func (lb *Lightbox) Closed() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.closed
}
