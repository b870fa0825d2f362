package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/transitions-site-backend/auth"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sseHeartbeat = 25 * time.Second

type authHandler struct {
	provider          auth.Provider
	magicLinkRedirect string
	responder         Responder
	logger            zerolog.Logger
}

func newAuthHandler(provider auth.Provider, magicLinkRedirect string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	return authHandler{
		provider:          provider,
		magicLinkRedirect: magicLinkRedirect,
		responder:         NewResponder(logger),
		logger:            logger,
	}
}

type passwordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type magicLinkRequest struct {
	Email       string `json:"email"`
	RedirectURL string `json:"redirect_url"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// signInWithPassword
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 401 {object} ErrorResponse
// @Router /auth/password [post]
func (h authHandler) signInWithPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		session, err := h.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, session)
	}
}

// sendMagicLink answers 202 for any well-formed request, known admin or not
func (h authHandler) sendMagicLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req magicLinkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		redirect := req.RedirectURL
		if redirect == "" {
			redirect = h.magicLinkRedirect
		}

		if err := h.provider.SignInWithMagicLink(r.Context(), req.Email, redirect); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusAccepted, map[string]string{"status": "sent"})
	}
}

func (h authHandler) verifyMagicLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Token == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("token"))
			return
		}

		session, err := h.provider.VerifyMagicLink(r.Context(), req.Token)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, session)
	}
}

// session returns the session behind the Bearer token
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		session, err := h.provider.GetSession(r.Context(), token)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, session)
	}
}

func (h authHandler) signOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := h.provider.SignOut(r.Context(), token); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// sessionEvents streams sign-in and sign-out events as server-sent events
// until the client disconnects.
func (h authHandler) sessionEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// the stream outlives the server write timeout
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			h.logger.Debug().Err(err).Msg("could not clear write deadline")
		}

		events, unsubscribe := h.provider.Subscribe()
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			h.logger.Error().Err(err).Msg("streaming unsupported")
			return
		}

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case event, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					h.logger.Error().Err(err).Msg("error marshaling session event")
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
