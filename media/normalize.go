// Package media turns raw media rows of a project into the ordered,
// classified view that the portfolio surfaces render.
package media

import (
	"bytes"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/models"
)

// Image is one display record of an image group
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// View is the normalized media of one project.
//
// Image groups are never nil: an empty group is an empty slice and encodes
// as []. An absent video is nil and encodes as null.
type View struct {
	BeforeImages []Image `json:"before"`
	AfterImages  []Image `json:"after"`
	BeforeVideo  *Video  `json:"beforeVideo"`
	AfterVideo   *Video  `json:"afterVideo"`
}

// Stats counts what Normalize kept and dropped
type Stats struct {
	Kept           int
	UnknownKind    int
	EmptySource    int
	ForeignProject int
}

// Dropped is the number of rows excluded from the view
func (s Stats) Dropped() int {
	return s.UnknownKind + s.EmptySource + s.ForeignProject
}

// Normalize builds the view for projectID from an unordered snapshot of its
// media rows. It never fails: rows of another project, rows with an unknown
// kind and image rows without a source are left out.
func Normalize(items []models.MediaItem, projectID uuid.UUID) View {
	view, _ := NormalizeWithStats(items, projectID)
	return view
}

// NormalizeWithStats is Normalize that also reports excluded rows so callers
// can log them.
func NormalizeWithStats(items []models.MediaItem, projectID uuid.UUID) (View, Stats) {
	var (
		stats                     Stats
		before, after             []models.MediaItem
		beforeVideos, afterVideos []models.MediaItem
	)

	for _, item := range items {
		if item.ProjectID != projectID {
			stats.ForeignProject++
			continue
		}
		switch item.Kind {
		case models.KindBeforeImage:
			if isBlank(item.URL) {
				stats.EmptySource++
				continue
			}
			before = append(before, item)
		case models.KindAfterImage:
			if isBlank(item.URL) {
				stats.EmptySource++
				continue
			}
			after = append(after, item)
		case models.KindBeforeVideo:
			beforeVideos = append(beforeVideos, item)
		case models.KindAfterVideo:
			afterVideos = append(afterVideos, item)
		default:
			stats.UnknownKind++
			continue
		}
		stats.Kept++
	}

	view := View{
		BeforeImages: orderImages(before),
		AfterImages:  orderImages(after),
		BeforeVideo:  pickVideo(beforeVideos),
		AfterVideo:   pickVideo(afterVideos),
	}
	return view, stats
}

// orderImages sorts main rows first, then by order index, creation time and id.
func orderImages(rows []models.MediaItem) []Image {
	sorted := make([]models.MediaItem, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsMain != b.IsMain {
			return a.IsMain
		}
		return positionLess(a, b)
	})

	images := make([]Image, 0, len(sorted))
	for _, row := range sorted {
		images = append(images, Image{Src: strings.TrimSpace(row.URL), Alt: row.Alt})
	}
	return images
}

// pickVideo returns the first row with a source by order index, or nil.
func pickVideo(rows []models.MediaItem) *Video {
	var first *models.MediaItem
	for i := range rows {
		if isBlank(rows[i].URL) {
			continue
		}
		if first == nil || positionLess(rows[i], *first) {
			first = &rows[i]
		}
	}
	if first == nil {
		return nil
	}
	video := ClassifyVideo(first.URL)
	video.IsVertical = first.IsVertical
	return &video
}

func positionLess(a, b models.MediaItem) bool {
	if a.OrderIndex != b.OrderIndex {
		return a.OrderIndex < b.OrderIndex
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
