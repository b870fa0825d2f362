package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	responder := NewResponder(zerolog.Nop())

	tests := []struct {
		name      string
		err       error
		status    int
		field     string
		wantCause bool
	}{
		{"not found", errs.NewNotFound("project"), http.StatusNotFound, "", false},
		{"conflict", errs.NewConflictError("slug already in use"), http.StatusConflict, "", false},
		{"invalid field", errs.NewInvalidFieldError("kind", "must be an image kind"), http.StatusBadRequest, "kind", false},
		{"malformed", errs.NewMalformedPayloadError("json", errors.New("unexpected EOF")), http.StatusBadRequest, "payload", true},
		{"missing token", errs.NewMissingTokenError(), http.StatusUnauthorized, "authorization", false},
		{"storage", errs.NewStorageError(errs.ErrStorageUpload, "projects/x", errors.New("timeout")), http.StatusBadGateway, "", false},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			responder.WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.field, body.Field)
			assert.Equal(t, tt.wantCause, body.Cause != "")
		})
	}
}

func TestWriteJSONStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponder(zerolog.Nop()).WriteJSONStatus(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
