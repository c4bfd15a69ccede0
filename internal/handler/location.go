package handler

import (
	"log/slog"
	"net/http"

	"github.com/githsimon/Findr/internal/catalog"
	"github.com/githsimon/Findr/internal/metrics"
)

// LocationHandler serves the location endpoints. The delete policy comes from
// configuration and applies to every delete uniformly.
type LocationHandler struct {
	store   *catalog.Store
	policy  catalog.DeletePolicy
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewLocationHandler(store *catalog.Store, policy catalog.DeletePolicy, m *metrics.Collector, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		store:   store,
		policy:  policy,
		metrics: m,
		logger:  logger.With("component", "location_handler"),
	}
}

type createLocationRequest struct {
	Name         string   `json:"name" validate:"required"`
	Icon         string   `json:"icon"`
	ColorTag     string   `json:"color_tag"`
	ParentID     *string  `json:"parent_id"`
	Sublocations []string `json:"sublocations"`
}

type updateLocationRequest struct {
	Name         *string   `json:"name"`
	Icon         *string   `json:"icon"`
	ColorTag     *string   `json:"color_tag"`
	ParentID     *string   `json:"parent_id"`
	ClearParent  bool      `json:"clear_parent"`
	Sublocations *[]string `json:"sublocations"`
}

type addSublocationRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Locations())
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc, err := h.store.GetLocation(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, loc)
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	loc, err := h.store.CreateLocation(catalog.LocationDraft{
		Name:         req.Name,
		Icon:         req.Icon,
		ColorTag:     req.ColorTag,
		ParentID:     req.ParentID,
		Sublocations: req.Sublocations,
	})
	respondMutation(w, h.logger, h.metrics, http.StatusCreated, loc, err)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	loc, err := h.store.UpdateLocation(r.PathValue("id"), catalog.LocationPatch{
		Name:         req.Name,
		Icon:         req.Icon,
		ColorTag:     req.ColorTag,
		ParentID:     req.ParentID,
		ClearParent:  req.ClearParent,
		Sublocations: req.Sublocations,
	})
	respondMutation(w, h.logger, h.metrics, http.StatusOK, loc, err)
}

// Delete removes a location under the configured policy. Under reject, a
// location still referenced by items or child locations answers 409.
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteLocation(r.PathValue("id"), h.policy)
	respondMutation(w, h.logger, h.metrics, http.StatusNoContent, nil, err)
}

// AddSublocation appends one named sublocation and returns the updated location.
func (h *LocationHandler) AddSublocation(w http.ResponseWriter, r *http.Request) {
	var req addSublocationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	loc, err := h.store.AddSublocation(r.PathValue("id"), req.Name)
	respondMutation(w, h.logger, h.metrics, http.StatusOK, loc, err)
}
