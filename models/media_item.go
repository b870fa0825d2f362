package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaKind tags a media row with its group. The set is closed.
type MediaKind string

const (
	KindBeforeImage MediaKind = "before_image"
	KindAfterImage  MediaKind = "after_image"
	KindBeforeVideo MediaKind = "before_video"
	KindAfterVideo  MediaKind = "after_video"
)

// MediaKinds lists every recognized kind
var MediaKinds = []MediaKind{KindBeforeImage, KindAfterImage, KindBeforeVideo, KindAfterVideo}

// Valid reports whether k is one of the four recognized kinds
func (k MediaKind) Valid() bool {
	switch k {
	case KindBeforeImage, KindAfterImage, KindBeforeVideo, KindAfterVideo:
		return true
	}
	return false
}

// IsImage reports whether k is an image kind
func (k MediaKind) IsImage() bool {
	return k == KindBeforeImage || k == KindAfterImage
}

// IsVideo reports whether k is a video kind
func (k MediaKind) IsVideo() bool {
	return k == KindBeforeVideo || k == KindAfterVideo
}

// MediaItem represents one image or video attached to a project
type MediaItem struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	ProjectID   uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index:idx_result_media_project_kind,priority:1"`
	Kind        MediaKind `json:"kind" db:"kind" gorm:"type:text;not null;index:idx_result_media_project_kind,priority:2"`
	OrderIndex  int       `json:"order_index" db:"order_index" gorm:"type:integer;not null;default:0"`
	URL         string    `json:"url" db:"url" gorm:"type:text;not null"`
	StoragePath string    `json:"storage_path,omitempty" db:"storage_path" gorm:"type:text;not null;default:''"`
	Alt         string    `json:"alt" db:"alt" gorm:"type:text;not null;default:''"`
	Caption     string    `json:"caption" db:"caption" gorm:"type:text;not null;default:''"`
	IsVertical  bool      `json:"is_vertical" db:"is_vertical" gorm:"not null;default:false"`
	IsMain      bool      `json:"is_main" db:"is_main" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

func (MediaItem) TableName() string {
	return "result_media"
}

func (m *MediaItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
