package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type portfolioHandler struct {
	portfolio portfolioReader
	responder Responder
	logger    zerolog.Logger
}

func newPortfolioHandler(portfolio portfolioReader) portfolioHandler {
	logger := log.With().Str("handlerName", "portfolioHandler").Logger()
	return portfolioHandler{
		portfolio: portfolio,
		responder: NewResponder(logger),
		logger:    logger,
	}
}

// listProjects returns published projects with their slider media
// @Summary List published projects
// @Tags portfolio
// @Produce json
// @Param category query string false "Transitions or Organization"
// @Success 200 {array} services.ProjectView
// @Failure 400 {object} ErrorResponse
// @Router /portfolio/projects [get]
func (h portfolioHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := models.Category(strings.TrimSpace(r.URL.Query().Get("category")))

		projects, err := h.portfolio.ListPublished(r.Context(), category)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

// getProject returns one published project with its lightbox gallery
// @Summary Get a published project by slug
// @Tags portfolio
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} services.ProjectDetail
// @Failure 404 {object} ErrorResponse
// @Router /portfolio/projects/{slug} [get]
func (h portfolioHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("slug"))
			return
		}

		project, err := h.portfolio.GetPublishedBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// testimonials returns the featured testimonial and the rest
func (h portfolioHandler) testimonials() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.portfolio.Testimonials(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, view)
	}
}
