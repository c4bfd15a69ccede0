package handler

import (
	"log/slog"
	"net/http"

	"github.com/githsimon/Findr/internal/history"
	"github.com/githsimon/Findr/internal/metrics"
)

// HistoryHandler serves the search history endpoints.
type HistoryHandler struct {
	log     *history.Log
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewHistoryHandler(log *history.Log, m *metrics.Collector, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		log:     log,
		metrics: m,
		logger:  logger.With("component", "history_handler"),
	}
}

// List returns the history entries, most recent first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.log.List())
}

// Remove deletes one entry by id.
func (h *HistoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.log.Remove(r.PathValue("id"))
	respondMutation(w, h.logger, h.metrics, http.StatusNoContent, nil, err)
}

// Clear empties the log.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.log.Clear()
	respondMutation(w, h.logger, h.metrics, http.StatusNoContent, nil, err)
}
