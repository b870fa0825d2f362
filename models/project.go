package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category groups projects on the results page
type Category string

const (
	CategoryTransitions  Category = "Transitions"
	CategoryOrganization Category = "Organization"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryTransitions, CategoryOrganization:
		return true
	}
	return false
}

// Project represents one before/after portfolio entry
type Project struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title       string         `json:"title" db:"title" gorm:"type:text;not null"`
	Category    Category       `json:"category" db:"category" gorm:"type:text;not null;default:'Transitions'"`
	Slug        string         `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_result_project_slug"`
	Description string         `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	Location    string         `json:"location" db:"location" gorm:"type:text;not null;default:''"`
	SortDate    datatypes.Date `json:"sort_date" db:"sort_date" gorm:"type:date;not null;default:CURRENT_DATE;index:idx_result_project_sort_date"`
	IsPublished bool           `json:"is_published" db:"is_published" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
	Media       []MediaItem    `json:"media,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table name used by the hosted backend
func (Project) TableName() string {
	return "result_projects"
}

// BeforeCreate assigns a client-side ID when none is set
func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
