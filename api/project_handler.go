package api

import (
	"net/http"

	"github.com/rpupo63/transitions-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	projects  projectAdmin
	responder Responder
	logger    zerolog.Logger
}

func newProjectHandler(projects projectAdmin) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()
	return projectHandler{
		projects:  projects,
		responder: NewResponder(logger),
		logger:    logger,
	}
}

// getAllProjects retrieves all projects, drafts included
// @Summary Get all projects
// @Description Retrieve every project for the admin console
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project
// @Failure 401 {object} ErrorResponse
// @Router /admin/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

// getProject retrieves a specific project with its media
// @Summary Get project by ID
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Get(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project body services.ProjectInput true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.ProjectInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectID", project.ID.String()).Str("slug", project.Slug).Str("by", actor(r)).Msg("project created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, project)
	}
}

func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.ProjectInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Update(r.Context(), projectID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject removes a project, its media rows and stored files
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectID", projectID.String()).Str("by", actor(r)).Msg("project deleted")

		w.WriteHeader(http.StatusNoContent)
	}
}
