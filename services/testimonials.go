package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/events"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TestimonialStore interface {
	FindAll(ctx context.Context) ([]models.Testimonial, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	Add(ctx context.Context, t *models.Testimonial) error
	Update(ctx context.Context, t *models.Testimonial) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TestimonialInput struct {
	Quote       string           `json:"quote"`
	Role        models.Role      `json:"role"`
	Name        *string          `json:"name"`
	City        *string          `json:"city"`
	Category    *models.Category `json:"category"`
	Featured    bool             `json:"featured"`
	OrderIndex  int              `json:"order_index"`
	IsPublished *bool            `json:"is_published"`
}

type TestimonialService struct {
	testimonials TestimonialStore
	changes      changeFeed
}

func NewTestimonialService(store TestimonialStore, publisher events.Publisher, cache Invalidator) *TestimonialService {
	return &TestimonialService{
		testimonials: store,
		changes:      newChangeFeed(publisher, cache, log.With().Str("service", "testimonials").Logger()),
	}
}

// List returns every testimonial by order_index desc
func (s *TestimonialService) List(ctx context.Context) ([]models.Testimonial, error) {
	all, err := s.testimonials.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "testimonials", err)
	}
	if all == nil {
		all = []models.Testimonial{}
	}
	return all, nil
}

func (s *TestimonialService) Create(ctx context.Context, in TestimonialInput) (*models.Testimonial, error) {
	t := &models.Testimonial{IsPublished: true}
	if err := applyTestimonial(t, in); err != nil {
		return nil, err
	}
	if err := s.testimonials.Add(ctx, t); err != nil {
		return nil, errs.NewDatabaseError("create", "testimonial", err)
	}
	s.changes.record(ctx, events.EntityTestimonial, events.Created, t.ID, uuid.Nil)
	return t, nil
}

func (s *TestimonialService) Update(ctx context.Context, id uuid.UUID, in TestimonialInput) (*models.Testimonial, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyTestimonial(t, in); err != nil {
		return nil, err
	}
	if err := s.testimonials.Update(ctx, t); err != nil {
		return nil, mapTestimonialErr("update", err)
	}
	s.changes.record(ctx, events.EntityTestimonial, events.Updated, t.ID, uuid.Nil)
	return t, nil
}

// ToggleFeatured flips the featured flag and returns the updated record
func (s *TestimonialService) ToggleFeatured(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Featured = !t.Featured
	if err := s.testimonials.SetFeatured(ctx, id, t.Featured); err != nil {
		return nil, mapTestimonialErr("update", err)
	}
	s.changes.record(ctx, events.EntityTestimonial, events.Featured, t.ID, uuid.Nil)
	return t, nil
}

func (s *TestimonialService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.testimonials.Delete(ctx, id); err != nil {
		return mapTestimonialErr("delete", err)
	}
	s.changes.record(ctx, events.EntityTestimonial, events.Deleted, id, uuid.Nil)
	return nil
}

func (s *TestimonialService) find(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	t, err := s.testimonials.FindByID(ctx, id)
	if err != nil {
		return nil, mapTestimonialErr("find", err)
	}
	return t, nil
}

func applyTestimonial(t *models.Testimonial, in TestimonialInput) error {
	quote := strings.TrimSpace(in.Quote)
	if quote == "" {
		return errs.NewMissingRequiredFieldError("quote")
	}
	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	if !role.Valid() {
		return errs.NewInvalidFieldError("role", "must be Loved One, Resident, Referral Partner or Client")
	}
	if in.Category != nil && *in.Category != "" && !in.Category.Valid() {
		return errs.NewInvalidFieldError("category", "must be Transitions or Organization")
	}

	t.Quote = quote
	t.Role = role
	t.Name = optional(in.Name)
	t.City = optional(in.City)
	t.Category = nil
	if in.Category != nil && *in.Category != "" {
		c := *in.Category
		t.Category = &c
	}
	t.Featured = in.Featured
	t.OrderIndex = in.OrderIndex
	if in.IsPublished != nil {
		t.IsPublished = *in.IsPublished
	}
	return nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func mapTestimonialErr(operation string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound("testimonial")
	}
	return errs.NewDatabaseError(operation, "testimonial", err)
}
