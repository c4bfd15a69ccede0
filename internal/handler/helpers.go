// Package handler implements the HTTP API over the catalog, query engine,
// search history, photos, and backups.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/githsimon/Findr/internal/metrics"
	"github.com/githsimon/Findr/internal/model"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func errorStatus(err error) int {
	var ve *model.ValidationError
	var de *model.HasDependentsError
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &de):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		msg = "internal server error"
	}
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondMutation handles the write-through contract: a PersistenceError means
// the change is applied in memory but was not saved, so the entity is still
// returned alongside a warning instead of an error status.
func respondMutation(w http.ResponseWriter, logger *slog.Logger, m *metrics.Collector, status int, entity any, err error) {
	var pe *model.PersistenceError
	switch {
	case err == nil:
		respondJSON(w, status, entity)
	case errors.As(err, &pe):
		if m != nil {
			m.RecordPersistFailure()
		}
		if status == http.StatusNoContent {
			status = http.StatusOK
		}
		respondJSON(w, status, map[string]any{
			"data":    entity,
			"warning": "change applied but not saved to disk: " + pe.Error(),
		})
	default:
		respondError(w, logger, err)
	}
}

func isPersistWarning(err error) bool {
	var pe *model.PersistenceError
	return errors.As(err, &pe)
}

// decodeBody parses and validates a JSON request body.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &model.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	if err := validate.Struct(dst); err != nil {
		return &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
