package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/events"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStore interface {
	FindAll(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	SlugExists(ctx context.Context, slug string, except uuid.UUID) (bool, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

// ProjectInput is the editable part of a project
type ProjectInput struct {
	Title       string          `json:"title"`
	Category    models.Category `json:"category"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	SortDate    string          `json:"sort_date"`
	IsPublished *bool           `json:"is_published"`
}

type ProjectService struct {
	projects ProjectStore
	media    MediaReader
	store    storage.ObjectStore
	changes  changeFeed
	now      func() time.Time
}

func NewProjectService(projects ProjectStore, mediaReader MediaReader, store storage.ObjectStore, publisher events.Publisher, cache Invalidator) *ProjectService {
	return &ProjectService{
		projects: projects,
		media:    mediaReader,
		store:    store,
		changes:  newChangeFeed(publisher, cache, log.With().Str("service", "projects").Logger()),
		now:      time.Now,
	}
}

// List returns every project, published or not, newest sort date first
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projects.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Get returns a project with its raw media rows
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.media.FindByProject(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "media", err)
	}
	if rows == nil {
		rows = []models.MediaItem{}
	}
	project.Media = rows
	return project, nil
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	project := &models.Project{IsPublished: true}
	if err := s.apply(ctx, project, in); err != nil {
		return nil, err
	}
	if err := s.projects.Add(ctx, project); err != nil {
		return nil, errs.NewDatabaseError("create", "project", err)
	}
	s.changes.record(ctx, events.EntityProject, events.Created, project.ID, project.ID)
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, project, in); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	s.changes.record(ctx, events.EntityProject, events.Updated, project.ID, project.ID)
	return project, nil
}

// Delete removes the project, its media rows, then their stored objects.
// Object removal failures are logged and do not fail the delete.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	paths, err := s.projects.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFound("project")
		}
		return errs.NewDatabaseError("delete", "project", err)
	}
	for _, p := range paths {
		if err := s.store.Remove(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Str("projectId", id.String()).Msg("orphaned object after project delete")
		}
	}
	s.changes.record(ctx, events.EntityProject, events.Deleted, id, id)
	return nil
}

func (s *ProjectService) find(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("project")
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return project, nil
}

func (s *ProjectService) apply(ctx context.Context, project *models.Project, in ProjectInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}

	category := in.Category
	if category == "" {
		category = models.CategoryTransitions
	}
	if !category.Valid() {
		return errs.NewInvalidFieldError("category", "must be Transitions or Organization")
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return errs.NewInvalidFieldError("slug", "needs at least one letter or digit")
	}
	taken, err := s.projects.SlugExists(ctx, slug, project.ID)
	if err != nil {
		return errs.NewDatabaseError("check", "slug", err)
	}
	if taken {
		conflict := errs.NewConflictError("slug already in use")
		conflict.Field = "slug"
		return conflict
	}

	sortDate := datatypes.Date(s.now())
	if in.SortDate != "" {
		d, err := time.Parse(time.DateOnly, in.SortDate)
		if err != nil {
			return errs.NewInvalidFieldError("sort_date", "must be YYYY-MM-DD")
		}
		sortDate = datatypes.Date(d)
	} else if !time.Time(project.SortDate).IsZero() {
		sortDate = project.SortDate
	}

	project.Title = title
	project.Category = category
	project.Slug = slug
	project.Description = strings.TrimSpace(in.Description)
	project.Location = strings.TrimSpace(in.Location)
	project.SortDate = sortDate
	if in.IsPublished != nil {
		project.IsPublished = *in.IsPublished
	}
	return nil
}
