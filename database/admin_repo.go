package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type AdminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db}
}

// FindByEmail matches case-insensitively; emails are stored lower-cased
func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the admin or replaces its password hash
func (r *AdminRepo) Upsert(ctx context.Context, email, passwordHash string) (*models.AdminUser, error) {
	u := models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]any{"password_hash": passwordHash, "updated_at": time.Now()}),
	}).Create(&u).Error
	if err != nil {
		return nil, err
	}
	return r.FindByEmail(ctx, u.Email)
}

type MagicLinkRepo struct {
	db *gorm.DB
}

func NewMagicLinkRepo(db *gorm.DB) *MagicLinkRepo {
	return &MagicLinkRepo{db}
}

func (r *MagicLinkRepo) Add(ctx context.Context, link *models.MagicLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Consume marks a link used and returns it. Unknown, used and expired links
// fail with the matching magic link error.
func (r *MagicLinkRepo) Consume(ctx context.Context, token string, now time.Time) (*models.MagicLink, error) {
	var link models.MagicLink
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&link, "token = ?", token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewMagicLinkError(errs.ErrMagicLinkInvalid)
		}
		if err != nil {
			return err
		}
		if link.UsedAt != nil {
			return errs.NewMagicLinkError(errs.ErrMagicLinkUsed)
		}
		if !now.Before(link.ExpiresAt) {
			return errs.NewMagicLinkError(errs.ErrMagicLinkExpired)
		}
		link.UsedAt = &now
		return tx.Model(&link).Update("used_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteExpired removes links that expired before cutoff
func (r *MagicLinkRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.MagicLink{})
	return res.RowsAffected, res.Error
}
