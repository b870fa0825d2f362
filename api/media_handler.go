package api

import (
	"bufio"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxUploadBytes = 25 << 20
	multipartMemory       = 8 << 20
	sniffLen              = 512
)

type mediaHandler struct {
	media          mediaAdmin
	maxUploadBytes int64
	responder      Responder
	logger         zerolog.Logger
}

func newMediaHandler(media mediaAdmin, maxUploadBytes int64) mediaHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	logger := log.With().Str("handlerName", "mediaHandler").Logger()
	return mediaHandler{
		media:          media,
		maxUploadBytes: maxUploadBytes,
		responder:      NewResponder(logger),
		logger:         logger,
	}
}

type videoLinkRequest struct {
	Kind       models.MediaKind `json:"kind"`
	URL        string           `json:"url"`
	IsVertical bool             `json:"is_vertical"`
}

type reorderRequest struct {
	Kind models.MediaKind `json:"kind"`
	IDs  []uuid.UUID      `json:"ids"`
}

type mediaDetailsRequest struct {
	Alt        string `json:"alt"`
	Caption    string `json:"caption"`
	IsVertical bool   `json:"is_vertical"`
}

type uploadResponse struct {
	Items []*models.MediaItem `json:"items"`
}

// upload stores every file in the multipart field "files" under the form kind
// @Summary Upload project images
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param kind formData string true "before_image or after_image"
// @Param files formData file true "Image files"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /admin/projects/{projectID}/media [post]
func (h mediaHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if r.ContentLength > h.maxUploadBytes {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUploadBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUploadBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		kind := models.MediaKind(r.FormValue("kind"))
		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("files"))
			return
		}

		items := make([]*models.MediaItem, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
				return
			}

			body := bufio.NewReaderSize(f, sniffLen)
			contentType := fh.Header.Get("Content-Type")
			if contentType == "" || contentType == "application/octet-stream" {
				head, _ := body.Peek(sniffLen)
				contentType = http.DetectContentType(head)
			}

			item, err := h.media.AddUpload(r.Context(), projectID, kind, services.Upload{
				Filename:    fh.Filename,
				ContentType: contentType,
				Size:        fh.Size,
				Body:        body,
			})
			f.Close()
			if err != nil {
				h.logger.Warn().Err(err).Str("filename", fh.Filename).Int("stored", len(items)).Msg("upload stopped")
				h.responder.WriteError(w, err)
				return
			}
			items = append(items, item)
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, uploadResponse{Items: items})
	}
}

// addVideoLink attaches an external or hosted video URL
func (h mediaHandler) addVideoLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req videoLinkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		item, err := h.media.AddVideoLink(r.Context(), projectID, req.Kind, req.URL, req.IsVertical)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, item)
	}
}

// reorder rewrites order_index for one kind of a project's media
func (h mediaHandler) reorder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req reorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.media.Reorder(r.Context(), projectID, req.Kind, req.IDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h mediaHandler) updateDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, err := uuidParam(r, "mediaID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req mediaDetailsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		item, err := h.media.UpdateDetails(r.Context(), mediaID, req.Alt, req.Caption, req.IsVertical)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, item)
	}
}

func (h mediaHandler) setMain() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, err := uuidParam(r, "mediaID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		item, err := h.media.SetMain(r.Context(), mediaID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, item)
	}
}

func (h mediaHandler) deleteMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, err := uuidParam(r, "mediaID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.media.Delete(r.Context(), mediaID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
