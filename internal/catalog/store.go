// Package catalog owns the authoritative in-memory collections of items and
// locations. Every mutation is validated, applied, written through to the
// persistence backend, and announced to subscribers. Reads hand out copies;
// nothing outside this package mutates the collections.
package catalog

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/githsimon/Findr/internal/model"
	"github.com/githsimon/Findr/internal/persist"
)

// DeletePolicy controls what happens when a location with dependents is
// deleted.
type DeletePolicy string

const (
	// DeleteRejectIfReferenced fails the delete with HasDependentsError.
	DeleteRejectIfReferenced DeletePolicy = "reject"
	// DeleteCascadeClear clears the location reference on dependent items,
	// then deletes.
	DeleteCascadeClear DeletePolicy = "cascade"
)

// Event describes a committed mutation.
type Event struct {
	Entity string // "item" or "location"
	Action string // "created", "updated", "deleted"
	ID     string
}

// Store holds the catalog collections.
type Store struct {
	mu        sync.RWMutex
	backend   persist.Backend
	items     []model.Item
	locations []model.Location
	logger    *slog.Logger

	subMu sync.RWMutex
	subs  []func(Event)
}

// NewStore loads the persisted collections into memory.
func NewStore(backend persist.Backend, logger *slog.Logger) (*Store, error) {
	items, err := backend.LoadItems()
	if err != nil {
		return nil, err
	}
	locations, err := backend.LoadLocations()
	if err != nil {
		return nil, err
	}
	return &Store{
		backend:   backend,
		items:     items,
		locations: locations,
		logger:    logger,
	}, nil
}

// Subscribe registers fn to be called after every committed mutation.
// Subscribers run synchronously on the mutating call; keep them cheap.
func (s *Store) Subscribe(fn func(Event)) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

// notify fires after the collection lock has been released, so subscribers
// may call back into the store.
func (s *Store) notify(ev Event) {
	s.subMu.RLock()
	subs := s.subs
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// ItemDraft is the input for CreateItem.
type ItemDraft struct {
	Name             string
	Category         model.Category
	LocationID       *string
	Sublocation      string
	SpecificLocation string
	Notes            string
	Tags             []string
	PhotoRef         string
	Favorite         bool
}

// ItemPatch updates only the fields whose pointers are set. ClearLocation
// moves the item back to unassigned and wins over LocationID.
type ItemPatch struct {
	Name             *string
	Category         *model.Category
	LocationID       *string
	ClearLocation    bool
	Sublocation      *string
	SpecificLocation *string
	Notes            *string
	Tags             *[]string
	PhotoRef         *string
	Favorite         *bool
}

// normalizeTags trims each tag, drops empties, and removes exact duplicates
// while preserving first-seen order.
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CreateItem validates the draft, appends the item, and persists.
func (s *Store) CreateItem(draft ItemDraft) (*model.Item, error) {
	item, err := s.createItemLocked(draft)
	if item != nil {
		s.notify(Event{Entity: "item", Action: "created", ID: item.ID})
	}
	return item, err
}

func (s *Store) createItemLocked(draft ItemDraft) (*model.Item, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !draft.Category.Valid() {
		return nil, &model.ValidationError{Field: "category", Reason: "unknown category"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.LocationID != nil && s.findLocation(*draft.LocationID) < 0 {
		return nil, &model.ValidationError{Field: "location_id", Reason: "location does not exist"}
	}

	now := time.Now().UTC()
	item := model.Item{
		ID:               uuid.New().String(),
		Name:             name,
		Category:         draft.Category,
		LocationID:       draft.LocationID,
		Sublocation:      strings.TrimSpace(draft.Sublocation),
		SpecificLocation: strings.TrimSpace(draft.SpecificLocation),
		Notes:            draft.Notes,
		Tags:             normalizeTags(draft.Tags),
		PhotoRef:         draft.PhotoRef,
		Favorite:         draft.Favorite,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.items = append(s.items, item)

	out := cloneItem(item)
	return &out, s.persistItems("create item")
}

// UpdateItem applies the patch and refreshes updated_at.
func (s *Store) UpdateItem(id string, patch ItemPatch) (*model.Item, error) {
	item, err := s.updateItemLocked(id, patch)
	if item != nil {
		s.notify(Event{Entity: "item", Action: "updated", ID: id})
	}
	return item, err
}

func (s *Store) updateItemLocked(id string, patch ItemPatch) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findItem(id)
	if idx < 0 {
		return nil, model.ErrNotFound
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		patch.Name = &name
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return nil, &model.ValidationError{Field: "category", Reason: "unknown category"}
	}
	if !patch.ClearLocation && patch.LocationID != nil && s.findLocation(*patch.LocationID) < 0 {
		return nil, &model.ValidationError{Field: "location_id", Reason: "location does not exist"}
	}

	item := &s.items[idx]
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.ClearLocation {
		item.LocationID = nil
	} else if patch.LocationID != nil {
		item.LocationID = patch.LocationID
	}
	if patch.Sublocation != nil {
		item.Sublocation = strings.TrimSpace(*patch.Sublocation)
	}
	if patch.SpecificLocation != nil {
		item.SpecificLocation = strings.TrimSpace(*patch.SpecificLocation)
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		item.Tags = normalizeTags(*patch.Tags)
	}
	if patch.PhotoRef != nil {
		item.PhotoRef = *patch.PhotoRef
	}
	if patch.Favorite != nil {
		item.Favorite = *patch.Favorite
	}
	item.UpdatedAt = time.Now().UTC()

	out := cloneItem(*item)
	return &out, s.persistItems("update item")
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(id string) (*model.Item, error) {
	existing, err := s.GetItem(id)
	if err != nil {
		return nil, err
	}
	fav := !existing.Favorite
	return s.UpdateItem(id, ItemPatch{Favorite: &fav})
}

// DeleteItem removes the item and persists.
func (s *Store) DeleteItem(id string) error {
	err := s.deleteItemLocked(id)
	if err == nil || isPersistenceError(err) {
		s.notify(Event{Entity: "item", Action: "deleted", ID: id})
	}
	return err
}

func (s *Store) deleteItemLocked(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findItem(id)
	if idx < 0 {
		return model.ErrNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return s.persistItems("delete item")
}

// GetItem returns a copy of the item.
func (s *Store) GetItem(id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findItem(id)
	if idx < 0 {
		return nil, model.ErrNotFound
	}
	out := cloneItem(s.items[idx])
	return &out, nil
}

// Items returns a snapshot of all items in insertion order.
func (s *Store) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Item, len(s.items))
	for i, it := range s.items {
		out[i] = cloneItem(it)
	}
	return out
}

// ItemsByLocation returns a snapshot of the items assigned to the location.
func (s *Store) ItemsByLocation(locationID string) []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Item{}
	for _, it := range s.items {
		if it.LocationID != nil && *it.LocationID == locationID {
			out = append(out, cloneItem(it))
		}
	}
	return out
}

// RecentItems returns up to limit items, newest first.
func (s *Store) RecentItems(limit int) []model.Item {
	items := s.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// LocationDraft is the input for CreateLocation.
type LocationDraft struct {
	Name         string
	Icon         string
	ColorTag     string
	ParentID     *string
	Sublocations []string
}

// LocationPatch updates only the fields whose pointers are set. Sublocations,
// when set, replaces the whole ordered list; entries matching an existing
// sublocation name keep their id.
type LocationPatch struct {
	Name         *string
	Icon         *string
	ColorTag     *string
	ParentID     *string
	ClearParent  bool
	Sublocations *[]string
}

// normalizeSublocations trims names, drops empties, and rejects duplicates.
func normalizeSublocations(names []string, existing []model.Sublocation) ([]model.Sublocation, error) {
	byName := make(map[string]string, len(existing))
	for _, sub := range existing {
		byName[sub.Name] = sub.ID
	}

	out := []model.Sublocation{}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, &model.ValidationError{Field: "sublocations", Reason: "duplicate name " + name}
		}
		seen[name] = struct{}{}

		id, ok := byName[name]
		if !ok {
			id = uuid.New().String()
		}
		out = append(out, model.Sublocation{ID: id, Name: name})
	}
	return out, nil
}

// CreateLocation validates the draft, appends the location, and persists.
func (s *Store) CreateLocation(draft LocationDraft) (*model.Location, error) {
	loc, err := s.createLocationLocked(draft)
	if loc != nil {
		s.notify(Event{Entity: "location", Action: "created", ID: loc.ID})
	}
	return loc, err
}

func (s *Store) createLocationLocked(draft LocationDraft) (*model.Location, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	subs, err := normalizeSublocations(draft.Sublocations, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.ParentID != nil && s.findLocation(*draft.ParentID) < 0 {
		return nil, &model.ValidationError{Field: "parent_id", Reason: "parent location does not exist"}
	}

	loc := model.Location{
		ID:           uuid.New().String(),
		Name:         name,
		Icon:         draft.Icon,
		ColorTag:     draft.ColorTag,
		ParentID:     draft.ParentID,
		Sublocations: subs,
	}
	s.locations = append(s.locations, loc)

	out := cloneLocation(loc)
	return &out, s.persistLocations("create location")
}

// UpdateLocation applies the patch and persists.
func (s *Store) UpdateLocation(id string, patch LocationPatch) (*model.Location, error) {
	loc, err := s.updateLocationLocked(id, patch)
	if loc != nil {
		s.notify(Event{Entity: "location", Action: "updated", ID: id})
	}
	return loc, err
}

func (s *Store) updateLocationLocked(id string, patch LocationPatch) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocation(id)
	if idx < 0 {
		return nil, model.ErrNotFound
	}
	loc := &s.locations[idx]

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		patch.Name = &name
	}
	if !patch.ClearParent && patch.ParentID != nil {
		if *patch.ParentID == id {
			return nil, &model.ValidationError{Field: "parent_id", Reason: "location cannot be its own parent"}
		}
		if s.findLocation(*patch.ParentID) < 0 {
			return nil, &model.ValidationError{Field: "parent_id", Reason: "parent location does not exist"}
		}
	}
	var subs []model.Sublocation
	if patch.Sublocations != nil {
		var err error
		subs, err = normalizeSublocations(*patch.Sublocations, loc.Sublocations)
		if err != nil {
			return nil, err
		}
	}

	if patch.Name != nil {
		loc.Name = *patch.Name
	}
	if patch.Icon != nil {
		loc.Icon = *patch.Icon
	}
	if patch.ColorTag != nil {
		loc.ColorTag = *patch.ColorTag
	}
	if patch.ClearParent {
		loc.ParentID = nil
	} else if patch.ParentID != nil {
		loc.ParentID = patch.ParentID
	}
	if patch.Sublocations != nil {
		loc.Sublocations = subs
	}

	out := cloneLocation(*loc)
	return &out, s.persistLocations("update location")
}

// AddSublocation appends one sublocation to a location.
func (s *Store) AddSublocation(locationID, name string) (*model.Location, error) {
	existing, err := s.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(existing.Sublocations)+1)
	for _, sub := range existing.Sublocations {
		names = append(names, sub.Name)
	}
	names = append(names, name)
	return s.UpdateLocation(locationID, LocationPatch{Sublocations: &names})
}

// DeleteLocation removes the location under the given policy. Under reject,
// it fails with HasDependentsError counting dependent items and child
// locations. Under cascade, dependent items become unassigned and child
// locations become roots first.
func (s *Store) DeleteLocation(id string, policy DeletePolicy) error {
	err := s.deleteLocationLocked(id, policy)
	if err == nil || isPersistenceError(err) {
		s.notify(Event{Entity: "location", Action: "deleted", ID: id})
	}
	return err
}

func (s *Store) deleteLocationLocked(id string, policy DeletePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocation(id)
	if idx < 0 {
		return model.ErrNotFound
	}

	dependents := 0
	for _, it := range s.items {
		if it.LocationID != nil && *it.LocationID == id {
			dependents++
		}
	}
	children := 0
	for _, loc := range s.locations {
		if loc.ParentID != nil && *loc.ParentID == id {
			children++
		}
	}

	if policy == DeleteRejectIfReferenced && dependents+children > 0 {
		return &model.HasDependentsError{Count: dependents + children}
	}

	if dependents > 0 {
		now := time.Now().UTC()
		for i := range s.items {
			if s.items[i].LocationID != nil && *s.items[i].LocationID == id {
				s.items[i].LocationID = nil
				s.items[i].UpdatedAt = now
			}
		}
	}
	for i := range s.locations {
		if s.locations[i].ParentID != nil && *s.locations[i].ParentID == id {
			s.locations[i].ParentID = nil
		}
	}
	s.locations = append(s.locations[:idx], s.locations[idx+1:]...)

	var perr error
	if dependents > 0 {
		perr = s.persistItems("cascade clear items")
	}
	if err := s.persistLocations("delete location"); err != nil && perr == nil {
		perr = err
	}
	return perr
}

// GetLocation returns a copy of the location.
func (s *Store) GetLocation(id string) (*model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findLocation(id)
	if idx < 0 {
		return nil, model.ErrNotFound
	}
	out := cloneLocation(s.locations[idx])
	return &out, nil
}

// Locations returns a snapshot of all locations in insertion order.
func (s *Store) Locations() []model.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Location, len(s.locations))
	for i, loc := range s.locations {
		out[i] = cloneLocation(loc)
	}
	return out
}

// findItem and findLocation require the caller to hold s.mu.
func (s *Store) findItem(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findLocation(id string) int {
	for i, loc := range s.locations {
		if loc.ID == id {
			return i
		}
	}
	return -1
}

// persistItems writes through to the backend. The in-memory mutation stays
// applied on failure; the caller gets a PersistenceError to surface.
func (s *Store) persistItems(op string) error {
	if err := s.backend.SaveItems(s.items); err != nil {
		s.logger.Error("persist failed", "op", op, "error", err)
		return &model.PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (s *Store) persistLocations(op string) error {
	if err := s.backend.SaveLocations(s.locations); err != nil {
		s.logger.Error("persist failed", "op", op, "error", err)
		return &model.PersistenceError{Op: op, Err: err}
	}
	return nil
}

func isPersistenceError(err error) bool {
	var pe *model.PersistenceError
	return errors.As(err, &pe)
}

func cloneItem(it model.Item) model.Item {
	out := it
	out.Tags = append([]string(nil), it.Tags...)
	if it.LocationID != nil {
		id := *it.LocationID
		out.LocationID = &id
	}
	return out
}

func cloneLocation(loc model.Location) model.Location {
	out := loc
	out.Sublocations = append([]model.Sublocation(nil), loc.Sublocations...)
	if loc.ParentID != nil {
		id := *loc.ParentID
		out.ParentID = &id
	}
	return out
}
