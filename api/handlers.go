package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		healthHandler:      newHealthHandler(deps.Health, startupTime),
		portfolioHandler:   newPortfolioHandler(deps.Portfolio),
		contactHandler:     newContactHandler(deps.Contact),
		authHandler:        newAuthHandler(deps.Auth, deps.MagicLinkRedirect),
		projectHandler:     newProjectHandler(deps.Projects),
		mediaHandler:       newMediaHandler(deps.Media, deps.MaxUploadBytes),
		testimonialHandler: newTestimonialHandler(deps.Testimonials),
	}
}

// uuidParam parses a UUID route parameter
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a UUID")
	}
	return id, nil
}

// actor names the signed-in admin for log lines
func actor(r *http.Request) string {
	if session, ok := ctxGetSession(r.Context()); ok {
		return session.Email
	}
	return ""
}

type healthHandler struct {
	db          pinger
	startupTime time.Time
	responder   Responder
	logger      zerolog.Logger
}

func newHealthHandler(db pinger, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		db:          db,
		startupTime: startupTime,
		responder:   NewResponder(logger),
		logger:      logger,
	}
}

// health reports uptime and database reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, database := http.StatusOK, "ok"
		if h.db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.db.Ping(ctx); err != nil {
				h.logger.Warn().Err(err).Msg("database ping failed")
				status, database = http.StatusServiceUnavailable, "unavailable"
			}
		}
		h.responder.WriteJSONStatus(w, status, map[string]string{
			"status":   http.StatusText(status),
			"database": database,
			"uptime":   time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
