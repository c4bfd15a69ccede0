package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/githsimon/Findr/internal/catalog"
	"github.com/githsimon/Findr/internal/metrics"
	"github.com/githsimon/Findr/internal/model"
	"github.com/githsimon/Findr/internal/photo"
)

// ItemHandler serves the item endpoints.
type ItemHandler struct {
	store   *catalog.Store
	photos  *photo.Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewItemHandler(store *catalog.Store, photos *photo.Store, m *metrics.Collector, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		store:   store,
		photos:  photos,
		metrics: m,
		logger:  logger.With("component", "item_handler"),
	}
}

type createItemRequest struct {
	Name             string   `json:"name" validate:"required"`
	Category         string   `json:"category" validate:"required"`
	LocationID       *string  `json:"location_id"`
	Sublocation      string   `json:"sublocation"`
	SpecificLocation string   `json:"specific_location"`
	Notes            string   `json:"notes"`
	Tags             []string `json:"tags"`
	PhotoRef         string   `json:"photo_ref"`
	Favorite         bool     `json:"favorite"`
}

type updateItemRequest struct {
	Name             *string   `json:"name"`
	Category         *string   `json:"category"`
	LocationID       *string   `json:"location_id"`
	ClearLocation    bool      `json:"clear_location"`
	Sublocation      *string   `json:"sublocation"`
	SpecificLocation *string   `json:"specific_location"`
	Notes            *string   `json:"notes"`
	Tags             *[]string `json:"tags"`
	PhotoRef         *string   `json:"photo_ref"`
	Favorite         *bool     `json:"favorite"`
}

// List returns all items, or only those at ?location_id=.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if locID := r.URL.Query().Get("location_id"); locID != "" {
		respondJSON(w, http.StatusOK, h.store.ItemsByLocation(locID))
		return
	}
	respondJSON(w, http.StatusOK, h.store.Items())
}

// Recent returns the most recently added items, newest first.
func (h *ItemHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, h.logger, &model.ValidationError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = n
	}
	respondJSON(w, http.StatusOK, h.store.RecentItems(limit))
}

// Categories returns the fixed category list.
func (h *ItemHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, model.Categories)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetItem(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	item, err := h.store.CreateItem(catalog.ItemDraft{
		Name:             req.Name,
		Category:         model.Category(req.Category),
		LocationID:       req.LocationID,
		Sublocation:      req.Sublocation,
		SpecificLocation: req.SpecificLocation,
		Notes:            req.Notes,
		Tags:             req.Tags,
		PhotoRef:         req.PhotoRef,
		Favorite:         req.Favorite,
	})
	respondMutation(w, h.logger, h.metrics, http.StatusCreated, item, err)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	patch := catalog.ItemPatch{
		Name:             req.Name,
		LocationID:       req.LocationID,
		ClearLocation:    req.ClearLocation,
		Sublocation:      req.Sublocation,
		SpecificLocation: req.SpecificLocation,
		Notes:            req.Notes,
		Tags:             req.Tags,
		PhotoRef:         req.PhotoRef,
		Favorite:         req.Favorite,
	}
	if req.Category != nil {
		c := model.Category(*req.Category)
		patch.Category = &c
	}

	item, err := h.store.UpdateItem(r.PathValue("id"), patch)
	respondMutation(w, h.logger, h.metrics, http.StatusOK, item, err)
}

// Delete removes the item and, best effort, its stored photo.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := h.store.GetItem(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	err = h.store.DeleteItem(id)
	if err == nil || isPersistWarning(err) {
		if item.PhotoRef != "" {
			if perr := h.photos.Delete(item.PhotoRef); perr != nil {
				h.logger.Warn("delete orphaned photo", "key", item.PhotoRef, "error", perr)
			}
		}
	}
	respondMutation(w, h.logger, h.metrics, http.StatusNoContent, nil, err)
}

// ToggleFavorite flips the favorite flag on an item.
func (h *ItemHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.ToggleFavorite(r.PathValue("id"))
	respondMutation(w, h.logger, h.metrics, http.StatusOK, item, err)
}
