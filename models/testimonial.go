package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role describes who gave a testimonial
type Role string

const (
	RoleLovedOne        Role = "Loved One"
	RoleResident        Role = "Resident"
	RoleReferralPartner Role = "Referral Partner"
	RoleClient          Role = "Client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleLovedOne, RoleResident, RoleReferralPartner, RoleClient:
		return true
	}
	return false
}

// Testimonial represents a quote shown on the results page
type Testimonial struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Quote       string    `json:"quote" db:"quote" gorm:"type:text;not null"`
	Role        Role      `json:"role" db:"role" gorm:"type:text;not null;default:'Client'"`
	Name        *string   `json:"name,omitempty" db:"name" gorm:"type:text"`
	City        *string   `json:"city,omitempty" db:"city" gorm:"type:text"`
	Category    *Category `json:"category,omitempty" db:"category" gorm:"type:text"`
	Featured    bool      `json:"featured" db:"featured" gorm:"not null;default:false"`
	OrderIndex  int       `json:"order_index" db:"order_index" gorm:"type:integer;not null;default:0;index"`
	IsPublished bool      `json:"is_published" db:"is_published" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

func (t *Testimonial) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Attribution renders "Role, Name, City" skipping empty parts
func (t Testimonial) Attribution() string {
	out := string(t.Role)
	if t.Name != nil && *t.Name != "" {
		out += ", " + *t.Name
	}
	if t.City != nil && *t.City != "" {
		out += ", " + *t.City
	}
	return out
}
