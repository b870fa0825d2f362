package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/models"
	"gorm.io/gorm"
)

type TestimonialRepo struct {
	db *gorm.DB
}

func NewTestimonialRepo(db *gorm.DB) *TestimonialRepo {
	return &TestimonialRepo{db}
}

// FindAll returns every testimonial by order_index desc
func (r *TestimonialRepo) FindAll(ctx context.Context) ([]models.Testimonial, error) {
	var out []models.Testimonial
	err := r.db.WithContext(ctx).Order("order_index DESC").Order("created_at DESC").Find(&out).Error
	return out, err
}

// FindPublished returns published testimonials by order_index desc
func (r *TestimonialRepo) FindPublished(ctx context.Context) ([]models.Testimonial, error) {
	var out []models.Testimonial
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("order_index DESC").Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *TestimonialRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestimonialRepo) Add(ctx context.Context, t *models.Testimonial) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TestimonialRepo) Update(ctx context.Context, t *models.Testimonial) error {
	res := r.db.WithContext(ctx).Model(t).
		Select("quote", "role", "name", "city", "category", "featured", "order_index", "is_published").
		Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetFeatured flips the featured flag of one testimonial
func (r *TestimonialRepo) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	res := r.db.WithContext(ctx).Model(&models.Testimonial{}).Where("id = ?", id).Update("featured", featured)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TestimonialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Testimonial{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
