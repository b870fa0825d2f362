package api

import (
	"net/http"

	"github.com/rpupo63/transitions-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type testimonialHandler struct {
	testimonials testimonialAdmin
	responder    Responder
	logger       zerolog.Logger
}

func newTestimonialHandler(testimonials testimonialAdmin) testimonialHandler {
	logger := log.With().Str("handlerName", "testimonialHandler").Logger()
	return testimonialHandler{
		testimonials: testimonials,
		responder:    NewResponder(logger),
		logger:       logger,
	}
}

func (h testimonialHandler) getAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testimonials, err := h.testimonials.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, testimonials)
	}
}

func (h testimonialHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.TestimonialInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial, err := h.testimonials.Create(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, testimonial)
	}
}

func (h testimonialHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "testimonialID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.TestimonialInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial, err := h.testimonials.Update(r.Context(), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, testimonial)
	}
}

func (h testimonialHandler) toggleFeatured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "testimonialID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial, err := h.testimonials.ToggleFeatured(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, testimonial)
	}
}

func (h testimonialHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "testimonialID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.testimonials.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
