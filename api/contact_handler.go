package api

import (
	"net/http"

	"github.com/rpupo63/transitions-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	contact   contactSubmitter
	responder Responder
	logger    zerolog.Logger
}

func newContactHandler(contact contactSubmitter) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()
	return contactHandler{
		contact:   contact,
		responder: NewResponder(logger),
		logger:    logger,
	}
}

// submit delivers a contact form inquiry
// @Summary Submit the contact form
// @Tags contact
// @Accept json
// @Produce json
// @Param inquiry body services.Inquiry true "Inquiry"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /contact [post]
func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var inquiry services.Inquiry
		if err := decodeJSON(w, r, &inquiry); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.contact.Submit(r.Context(), inquiry); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("service", inquiry.Service).Msg("contact inquiry delivered")
		h.responder.WriteJSONStatus(w, http.StatusAccepted, map[string]string{"status": "received"})
	}
}
