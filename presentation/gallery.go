package presentation

import (
	"fmt"

	"github.com/rpupo63/transitions-site-backend/media"
)

// Frame is one lightbox page as sent to the browser
type Frame struct {
	Index int         `json:"index"`
	Group string      `json:"group"`
	Image media.Image `json:"image"`
	Label string      `json:"label"`
}

// GalleryFrames lays out the lightbox pages of a view: before images then after
// images, each labelled with its 1-based position.
func GalleryFrames(view media.View) []Frame {
	total := len(view.BeforeImages) + len(view.AfterImages)
	frames := make([]Frame, 0, total)
	add := func(group string, images []media.Image) {
		for _, img := range images {
			i := len(frames)
			frames = append(frames, Frame{
				Index: i,
				Group: group,
				Image: img,
				Label: fmt.Sprintf("%d / %d", i+1, total),
			})
		}
	}
	add("before", view.BeforeImages)
	add("after", view.AfterImages)
	return frames
}
