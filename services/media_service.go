package services

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/database"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/events"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type MediaStore interface {
	MediaReader
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error)
	FindByURL(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, url string) (*models.MediaItem, error)
	CountByKind(ctx context.Context, projectID uuid.UUID, kind models.MediaKind) (int, error)
	Add(ctx context.Context, item *models.MediaItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetMain(ctx context.Context, id uuid.UUID) (*models.MediaItem, error)
	Reorder(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, ids []uuid.UUID) error
	UpdateDetails(ctx context.Context, id uuid.UUID, alt, caption string, isVertical bool) (*models.MediaItem, error)
}

// ProjectFinder confirms a project exists before media is attached
type ProjectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// Upload is one file handed to AddUpload
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type MediaService struct {
	projects ProjectFinder
	media    MediaStore
	store    storage.ObjectStore
	changes  changeFeed
	logger   zerolog.Logger
	now      func() time.Time
}

func NewMediaService(projects ProjectFinder, mediaStore MediaStore, store storage.ObjectStore, publisher events.Publisher, cache Invalidator) *MediaService {
	logger := log.With().Str("service", "media").Logger()
	return &MediaService{
		projects: projects,
		media:    mediaStore,
		store:    store,
		changes:  newChangeFeed(publisher, cache, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// AddUpload stores an image and records it as the last item of its kind. If
// the row cannot be written the uploaded object is removed again.
func (s *MediaService) AddUpload(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, up Upload) (*models.MediaItem, error) {
	if !kind.IsImage() {
		return nil, errs.NewInvalidFieldError("kind", "uploads must be before_image or after_image")
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return nil, errs.NewUnsupportedMediaTypeError(up.ContentType, []string{"image/*"})
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	objectPath := storage.ObjectPath(projectID, kind, s.now(), up.Filename)
	publicURL := s.store.PublicURL(objectPath)
	if existing, err := s.existing(ctx, projectID, kind, publicURL); err != nil || existing != nil {
		return existing, err
	}

	publicURL, err := s.store.Upload(ctx, objectPath, up.Body, up.Size, up.ContentType)
	if err != nil {
		return nil, err
	}

	item, err := s.insert(ctx, &models.MediaItem{
		ProjectID:   projectID,
		Kind:        kind,
		URL:         publicURL,
		StoragePath: objectPath,
	})
	if err != nil {
		if rmErr := s.store.Remove(ctx, objectPath); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("path", objectPath).Msg("orphaned object after failed media insert")
		}
		return nil, err
	}
	return item, nil
}

// AddVideoLink records a hosted video URL. The same URL added twice to the
// same (project, kind) returns the first row.
func (s *MediaService) AddVideoLink(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, rawURL string, isVertical bool) (*models.MediaItem, error) {
	if !kind.IsVideo() {
		return nil, errs.NewInvalidFieldError("kind", "video links must be before_video or after_video")
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errs.NewMissingRequiredFieldError("url")
	}
	if u, err := url.Parse(rawURL); err != nil || u.Host == "" {
		return nil, errs.NewInvalidFieldError("url", "must be an absolute URL")
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	if existing, err := s.existing(ctx, projectID, kind, rawURL); err != nil || existing != nil {
		return existing, err
	}
	return s.insert(ctx, &models.MediaItem{
		ProjectID:  projectID,
		Kind:       kind,
		URL:        rawURL,
		IsVertical: isVertical,
	})
}

// SetMain makes one image the main image of its group
func (s *MediaService) SetMain(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Kind.IsImage() {
		return nil, errs.NewInvalidFieldError("kind", "only images can be main")
	}
	item, err := s.media.SetMain(ctx, id)
	if err != nil {
		return nil, s.mapErr("update", err)
	}
	s.changes.record(ctx, events.EntityMedia, events.MainSet, item.ID, item.ProjectID)
	return item, nil
}

// Delete removes the row, then its stored object. A linked video has no
// object. Removal failures are logged.
func (s *MediaService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return s.mapErr("delete", err)
	}

	objectPath := item.StoragePath
	if objectPath == "" {
		objectPath, _ = s.store.PathFromURL(item.URL)
	}
	if objectPath != "" {
		if err := s.store.Remove(ctx, objectPath); err != nil {
			s.logger.Warn().Err(err).Str("path", objectPath).Msg("orphaned object after media delete")
		}
	}
	s.changes.record(ctx, events.EntityMedia, events.Deleted, item.ID, item.ProjectID)
	return nil
}

// Reorder sets order_index to each id's position in ids
func (s *MediaService) Reorder(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, ids []uuid.UUID) error {
	if !kind.Valid() {
		return errs.NewInvalidFieldError("kind", "unknown media kind")
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	if err := s.media.Reorder(ctx, projectID, kind, ids); err != nil {
		if errors.Is(err, database.ErrOrderMismatch) {
			return errs.NewInvalidFieldError("ids", err.Error())
		}
		return s.mapErr("reorder", err)
	}
	s.changes.record(ctx, events.EntityMedia, events.Reordered, projectID, projectID)
	return nil
}

func (s *MediaService) UpdateDetails(ctx context.Context, id uuid.UUID, alt, caption string, isVertical bool) (*models.MediaItem, error) {
	item, err := s.media.UpdateDetails(ctx, id, strings.TrimSpace(alt), strings.TrimSpace(caption), isVertical)
	if err != nil {
		return nil, s.mapErr("update", err)
	}
	s.changes.record(ctx, events.EntityMedia, events.Updated, item.ID, item.ProjectID)
	return item, nil
}

func (s *MediaService) insert(ctx context.Context, item *models.MediaItem) (*models.MediaItem, error) {
	n, err := s.media.CountByKind(ctx, item.ProjectID, item.Kind)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "media", err)
	}
	item.OrderIndex = n
	if err := s.media.Add(ctx, item); err != nil {
		return nil, errs.NewDatabaseError("create", "media", err)
	}
	s.changes.record(ctx, events.EntityMedia, events.Created, item.ID, item.ProjectID)
	return item, nil
}

func (s *MediaService) existing(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, rawURL string) (*models.MediaItem, error) {
	item, err := s.media.FindByURL(ctx, projectID, kind, rawURL)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "media", err)
	}
	return item, nil
}

func (s *MediaService) requireProject(ctx context.Context, projectID uuid.UUID) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFound("project")
		}
		return errs.NewDatabaseError("find", "project", err)
	}
	return nil
}

func (s *MediaService) find(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	item, err := s.media.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapErr("find", err)
	}
	return item, nil
}

func (s *MediaService) mapErr(operation string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound("media item")
	}
	return errs.NewDatabaseError(operation, "media", err)
}
