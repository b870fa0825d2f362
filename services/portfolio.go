package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/cache"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/media"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/presentation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	portfolioCachePrefix = "portfolio:"
	mediaFetchLimit      = 8
)

type ProjectReader interface {
	FindPublished(ctx context.Context, category models.Category) ([]models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
}

// MediaReader returns every media row of a project, unordered
type MediaReader interface {
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]models.MediaItem, error)
}

type TestimonialReader interface {
	FindPublished(ctx context.Context) ([]models.Testimonial, error)
}

// ProjectView is a published project with its normalized media
type ProjectView struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Category    models.Category `json:"category"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	SortDate    datatypes.Date  `json:"sort_date"`
	Media       media.View      `json:"media"`
}

// ProjectDetail adds the lightbox layout and share link to a ProjectView
type ProjectDetail struct {
	ProjectView
	Gallery []presentation.Frame `json:"gallery"`
	URL     string               `json:"url,omitempty"`
}

// TestimonialsView splits published testimonials for the results page
type TestimonialsView struct {
	Featured *models.Testimonial  `json:"featured"`
	Regular  []models.Testimonial `json:"regular"`
}

type PortfolioService struct {
	projects     ProjectReader
	media        MediaReader
	testimonials TestimonialReader
	cache        cache.Cache
	siteURL      string
	logger       zerolog.Logger
}

func NewPortfolioService(projects ProjectReader, mediaReader MediaReader, testimonials TestimonialReader, c cache.Cache, siteURL string) *PortfolioService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PortfolioService{
		projects:     projects,
		media:        mediaReader,
		testimonials: testimonials,
		cache:        c,
		siteURL:      siteURL,
		logger:       log.With().Str("service", "portfolio").Logger(),
	}
}

// ListPublished returns published projects newest first, each with its
// normalized media. An empty category returns every category.
func (s *PortfolioService) ListPublished(ctx context.Context, category models.Category) ([]ProjectView, error) {
	if category != "" && !category.Valid() {
		return nil, errs.NewInvalidFieldError("category", "must be Transitions or Organization")
	}
	key := portfolioCachePrefix + "projects:" + strings.ToLower(string(category))
	var cached []ProjectView
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	projects, err := s.projects.FindPublished(ctx, category)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}

	views := make([]ProjectView, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mediaFetchLimit)
	for i := range projects {
		i := i
		g.Go(func() error {
			view, err := s.normalizedMedia(gctx, projects[i].ID)
			if err != nil {
				return err
			}
			views[i] = projectView(projects[i], view)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, key, views)
	return views, nil
}

// GetPublishedBySlug returns one published project with its gallery
func (s *PortfolioService) GetPublishedBySlug(ctx context.Context, slug string) (*ProjectDetail, error) {
	key := portfolioCachePrefix + "project:" + slug
	var cached ProjectDetail
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	project, err := s.projects.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("project")
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if !project.IsPublished {
		return nil, errs.NewNotFound("project")
	}

	view, err := s.normalizedMedia(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	detail := &ProjectDetail{
		ProjectView: projectView(*project, view),
		Gallery:     presentation.GalleryFrames(view),
		URL:         ProjectURL(s.siteURL, project.Slug),
	}
	s.toCache(ctx, key, detail)
	return detail, nil
}

// Testimonials returns the first featured testimonial and the non-featured
// rest, both in order_index desc.
func (s *PortfolioService) Testimonials(ctx context.Context) (*TestimonialsView, error) {
	key := portfolioCachePrefix + "testimonials"
	var cached TestimonialsView
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	all, err := s.testimonials.FindPublished(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "testimonials", err)
	}
	view := SplitTestimonials(all)
	s.toCache(ctx, key, view)
	return view, nil
}

// SplitTestimonials picks the first featured entry; the regular list holds
// only non-featured entries.
func SplitTestimonials(all []models.Testimonial) *TestimonialsView {
	view := &TestimonialsView{Regular: make([]models.Testimonial, 0, len(all))}
	for i := range all {
		if all[i].Featured {
			if view.Featured == nil {
				t := all[i]
				view.Featured = &t
			}
			continue
		}
		view.Regular = append(view.Regular, all[i])
	}
	return view
}

// Invalidate drops every cached portfolio response
func (s *PortfolioService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, portfolioCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("could not invalidate portfolio cache")
	}
}

func (s *PortfolioService) normalizedMedia(ctx context.Context, projectID uuid.UUID) (media.View, error) {
	rows, err := s.media.FindByProject(ctx, projectID)
	if err != nil {
		return media.View{}, errs.NewDatabaseError("list", "media", err)
	}
	view, stats := media.NormalizeWithStats(rows, projectID)
	if stats.Dropped() > 0 {
		s.logger.Debug().
			Str("projectId", projectID.String()).
			Int("unknownKind", stats.UnknownKind).
			Int("emptySource", stats.EmptySource).
			Int("foreignProject", stats.ForeignProject).
			Msg("skipped malformed media rows")
	}
	return view, nil
}

func (s *PortfolioService) fromCache(ctx context.Context, key string, dst any) bool {
	err := s.cache.Get(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	return false
}

func (s *PortfolioService) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func projectView(p models.Project, view media.View) ProjectView {
	return ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Slug:        p.Slug,
		Description: p.Description,
		Location:    p.Location,
		SortDate:    p.SortDate,
		Media:       view,
	}
}
