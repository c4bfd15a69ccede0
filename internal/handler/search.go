package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/githsimon/Findr/internal/catalog"
	"github.com/githsimon/Findr/internal/history"
	"github.com/githsimon/Findr/internal/metrics"
	"github.com/githsimon/Findr/internal/model"
	"github.com/githsimon/Findr/internal/query"
)

// SearchHandler evaluates searches over a catalog snapshot and records them
// in the history log.
type SearchHandler struct {
	store   *catalog.Store
	log     *history.Log
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewSearchHandler(store *catalog.Store, log *history.Log, m *metrics.Collector, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		store:   store,
		log:     log,
		metrics: m,
		logger:  logger.With("component", "search_handler"),
	}
}

type searchResponse struct {
	Query  string       `json:"query"`
	Filter string       `json:"filter"`
	Sort   query.Sort   `json:"sort"`
	Count  int          `json:"count"`
	Items  []model.Item `json:"items"`
}

// Search handles GET /api/search?q=&filter=&sort=&browse=.
// Non-empty queries are recorded in history; history failures never fail the
// search itself.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	sel, err := query.ParseSelector(params.Get("filter"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	srt, err := query.ParseSort(params.Get("sort"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	browse := params.Get("browse") == "true" || params.Get("browse") == "1"
	q := strings.TrimSpace(params.Get("q"))

	start := time.Now()
	items := query.Search(h.store.Items(), h.store.Locations(), q, sel, query.Options{Sort: srt, Browse: browse})
	h.metrics.RecordSearch(time.Since(start))

	if q != "" {
		if _, err := h.log.Record(q, sel.String()); err != nil {
			h.logger.Warn("record search history", "error", err)
			h.metrics.RecordPersistFailure()
		} else {
			h.metrics.RecordHistory()
		}
	}

	respondJSON(w, http.StatusOK, searchResponse{
		Query:  q,
		Filter: sel.String(),
		Sort:   srt,
		Count:  len(items),
		Items:  items,
	})
}
