package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// FindAll returns every project, newest sort date first
func (r *ProjectRepo) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Order("sort_date DESC").Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindPublished returns published projects by sort date desc. An empty
// category returns every category.
func (r *ProjectRepo) FindPublished(ctx context.Context, category models.Category) ([]models.Project, error) {
	var projects []models.Project
	q := r.db.WithContext(ctx).Where("is_published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("sort_date DESC").Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindBySlug returns a project by its slug
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SlugExists reports whether another project already uses slug
func (r *ProjectRepo) SlugExists(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Model(&models.Project{}).
		Where("slug = ? AND id <> ?", slug, except).
		Count(&n).Error
	return n > 0, err
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).
		Select("title", "category", "slug", "description", "location", "sort_date", "is_published").
		Updates(project)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a project and its media rows in one transaction. It returns
// the storage paths of the removed media so the caller can drop the objects.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MediaItem{}).
			Where("project_id = ? AND storage_path <> ''", id).
			Pluck("storage_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.MediaItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
