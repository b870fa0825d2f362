package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type MediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) *MediaRepo {
	return &MediaRepo{db}
}

// FindByProject returns every media row of a project, all kinds, unordered
func (r *MediaRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]models.MediaItem, error) {
	var items []models.MediaItem
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&items).Error
	return items, err
}

func (r *MediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByURL looks up an existing row for the same source within (project, kind)
func (r *MediaRepo) FindByURL(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, url string) (*models.MediaItem, error) {
	var item models.MediaItem
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Where("project_id = ? AND kind = ? AND url = ?", projectID, kind, url).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CountByKind returns how many rows a project has of one kind
func (r *MediaRepo) CountByKind(ctx context.Context, projectID uuid.UUID, kind models.MediaKind) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Model(&models.MediaItem{}).
		Where("project_id = ? AND kind = ?", projectID, kind).
		Count(&n).Error
	return int(n), err
}

func (r *MediaRepo) Add(ctx context.Context, item *models.MediaItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *MediaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.MediaItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetMain marks one row as main and clears every other main of the same
// (project, kind), atomically.
func (r *MediaRepo) SetMain(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MediaItem{}).
			Where("project_id = ? AND kind = ? AND id <> ? AND is_main", item.ProjectID, item.Kind, item.ID).
			Update("is_main", false).Error; err != nil {
			return err
		}
		item.IsMain = true
		return tx.Model(&item).Update("is_main", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Reorder rewrites order_index to the position of each id in ids. Every row of
// the (project, kind) must be listed exactly once.
func (r *MediaRepo) Reorder(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, ids []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uuid.UUID
		if err := tx.Model(&models.MediaItem{}).
			Where("project_id = ? AND kind = ?", projectID, kind).
			Pluck("id", &existing).Error; err != nil {
			return err
		}
		if err := sameIDs(existing, ids); err != nil {
			return err
		}
		for i, id := range ids {
			if err := tx.Model(&models.MediaItem{}).Where("id = ?", id).Update("order_index", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateDetails changes the descriptive fields of a row
func (r *MediaRepo) UpdateDetails(ctx context.Context, id uuid.UUID, alt, caption string, isVertical bool) (*models.MediaItem, error) {
	var item models.MediaItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.MediaItem{}).Where("id = ?", id).Updates(map[string]any{
			"alt":         alt,
			"caption":     caption,
			"is_vertical": isVertical,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&item, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ErrOrderMismatch is returned when a reorder does not list the exact row set
var ErrOrderMismatch = errors.New("order must list every media item of the kind exactly once")

func sameIDs(existing, ordered []uuid.UUID) error {
	if len(existing) != len(ordered) {
		return ErrOrderMismatch
	}
	seen := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		seen[id] = false
	}
	for _, id := range ordered {
		used, ok := seen[id]
		if !ok || used {
			return ErrOrderMismatch
		}
		seen[id] = true
	}
	return nil
}
