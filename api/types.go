package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler      healthHandler
	portfolioHandler   portfolioHandler
	contactHandler     contactHandler
	authHandler        authHandler
	projectHandler     projectHandler
	mediaHandler       mediaHandler
	testimonialHandler testimonialHandler
}

type portfolioReader interface {
	ListPublished(ctx context.Context, category models.Category) ([]services.ProjectView, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*services.ProjectDetail, error)
	Testimonials(ctx context.Context) (*services.TestimonialsView, error)
}

type projectAdmin interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, in services.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, in services.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type mediaAdmin interface {
	AddUpload(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, up services.Upload) (*models.MediaItem, error)
	AddVideoLink(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, url string, isVertical bool) (*models.MediaItem, error)
	SetMain(ctx context.Context, id uuid.UUID) (*models.MediaItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, projectID uuid.UUID, kind models.MediaKind, ids []uuid.UUID) error
	UpdateDetails(ctx context.Context, id uuid.UUID, alt, caption string, isVertical bool) (*models.MediaItem, error)
}

type testimonialAdmin interface {
	List(ctx context.Context) ([]models.Testimonial, error)
	Create(ctx context.Context, in services.TestimonialInput) (*models.Testimonial, error)
	Update(ctx context.Context, id uuid.UUID, in services.TestimonialInput) (*models.Testimonial, error)
	ToggleFeatured(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactSubmitter interface {
	Submit(ctx context.Context, in services.Inquiry) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}
