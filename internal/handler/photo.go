package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/githsimon/Findr/internal/model"
	"github.com/githsimon/Findr/internal/photo"
)

// maxPhotoUpload caps multipart photo uploads at 10 MB.
const maxPhotoUpload = 10 << 20

// PhotoHandler serves photo upload and retrieval.
type PhotoHandler struct {
	photos *photo.Store
	logger *slog.Logger
}

func NewPhotoHandler(photos *photo.Store, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		photos: photos,
		logger: logger.With("component", "photo_handler"),
	}
}

// Upload accepts a multipart form with a "photo" field and returns the stored
// key as photo_ref.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUpload)
	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		respondError(w, h.logger, &model.ValidationError{Field: "photo", Reason: "invalid multipart form or file too large"})
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, h.logger, &model.ValidationError{Field: "photo", Reason: "missing photo field"})
		return
	}
	defer file.Close()

	key, err := h.photos.Save(file)
	if err != nil {
		respondError(w, h.logger, &model.ValidationError{Field: "photo", Reason: err.Error()})
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"photo_ref": key})
}

// Get streams the photo bytes for a key.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc, mime, err := h.photos.Open(r.PathValue("key"))
	if errors.Is(err, os.ErrNotExist) {
		respondError(w, h.logger, model.ErrNotFound)
		return
	}
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("stream photo", "error", err)
	}
}

// Delete removes a stored photo.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.photos.Delete(r.PathValue("key")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
