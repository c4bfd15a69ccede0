// Package query computes the filtered, sorted view of items for a search.
// Every call is a fresh, stateless evaluation over a snapshot of the catalog.
package query

import (
	"sort"
	"strings"

	"github.com/githsimon/Findr/internal/model"
)

// Filter names the field a search is constrained to.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterName     Filter = "name"
	FilterLocation Filter = "location"
	FilterTag      Filter = "tag"
)

// Selector is the active search constraint: a field filter, or a category
// (which intersects category equality with the all-fields text match).
type Selector struct {
	Field    Filter
	Category model.Category
}

// String renders the selector in the form stored in search history.
func (s Selector) String() string {
	if s.Category != "" {
		return string(s.Category)
	}
	return string(s.Field)
}

// ParseSelector accepts "all", "name", "location", "tag", or a category name.
// An empty string means "all".
func ParseSelector(raw string) (Selector, error) {
	switch Filter(raw) {
	case "", FilterAll:
		return Selector{Field: FilterAll}, nil
	case FilterName, FilterLocation, FilterTag:
		return Selector{Field: Filter(raw)}, nil
	}
	if c := model.Category(raw); c.Valid() {
		return Selector{Field: FilterAll, Category: c}, nil
	}
	return Selector{}, &model.ValidationError{Field: "filter", Reason: "unknown selector " + raw}
}

// Sort names a result ordering.
type Sort string

const (
	SortNewest   Sort = "newest"
	SortOldest   Sort = "oldest"
	SortNameAsc  Sort = "nameAsc"
	SortNameDesc Sort = "nameDesc"
)

// ParseSort accepts the named sorts; empty means newest.
func ParseSort(raw string) (Sort, error) {
	switch Sort(raw) {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortNameAsc, SortNameDesc:
		return Sort(raw), nil
	}
	return "", &model.ValidationError{Field: "sort", Reason: "unknown sort " + raw}
}

// Options tune a search. Browse opts into listing everything when the query
// text is empty; without it an empty unfiltered query returns nothing.
type Options struct {
	Sort   Sort
	Browse bool
}

// Search returns the items matching the query under the selector, sorted.
// Matching is case-insensitive substring containment. Items whose location
// reference no longer resolves match as if the location name were empty.
func Search(items []model.Item, locations []model.Location, queryText string, sel Selector, opts Options) []model.Item {
	q := strings.ToLower(strings.TrimSpace(queryText))
	if q == "" && sel.Category == "" && !opts.Browse {
		return []model.Item{}
	}

	locNames := make(map[string]string, len(locations))
	for _, loc := range locations {
		locNames[loc.ID] = loc.Name
	}

	out := []model.Item{}
	for _, it := range items {
		if sel.Category != "" && it.Category != sel.Category {
			continue
		}
		if q != "" && !matches(it, locNames, q, sel.Field) {
			continue
		}
		out = append(out, it)
	}

	sortItems(out, opts.Sort)
	return out
}

func matches(it model.Item, locNames map[string]string, q string, field Filter) bool {
	switch field {
	case FilterName:
		return contains(it.Name, q)
	case FilterLocation:
		return matchesLocation(it, locNames, q)
	case FilterTag:
		return matchesTag(it, q)
	default:
		return contains(it.Name, q) ||
			contains(it.Notes, q) ||
			matchesTag(it, q) ||
			matchesLocation(it, locNames, q)
	}
}

func matchesTag(it model.Item, q string) bool {
	for _, tag := range it.Tags {
		if contains(tag, q) {
			return true
		}
	}
	return false
}

func matchesLocation(it model.Item, locNames map[string]string, q string) bool {
	name := ""
	if it.LocationID != nil {
		name = locNames[*it.LocationID]
	}
	return contains(name, q) ||
		contains(it.Sublocation, q) ||
		contains(it.SpecificLocation, q)
}

func contains(s, q string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), q)
}

func sortItems(items []model.Item, s Sort) {
	switch s {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	case SortNameAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) > strings.ToLower(items[j].Name)
		})
	default: // newest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}
