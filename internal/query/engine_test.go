package query

import (
	"testing"
	"time"

	"github.com/githsimon/Findr/internal/model"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testItem(name string, opts ...func(*model.Item)) model.Item {
	it := model.Item{
		ID:        name,
		Name:      name,
		Category:  model.CategoryOther,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	for _, opt := range opts {
		opt(&it)
	}
	return it
}

func inLocation(id string) func(*model.Item) { return func(it *model.Item) { it.LocationID = &id } }

func withTags(tags ...string) func(*model.Item) {
	return func(it *model.Item) { it.Tags = tags }
}
func withCategory(c model.Category) func(*model.Item) {
	return func(it *model.Item) { it.Category = c }
}
func withNotes(n string) func(*model.Item)   { return func(it *model.Item) { it.Notes = n } }
func withSub(s string) func(*model.Item)     { return func(it *model.Item) { it.Sublocation = s } }
func createdAt(t time.Time) func(*model.Item) {
	return func(it *model.Item) { it.CreatedAt = t }
}

func names(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestEmptyQueryReturnsNothing(t *testing.T) {
	items := []model.Item{testItem("Whisk")}

	got := Search(items, nil, "", Selector{Field: FilterAll}, Options{})
	if len(got) != 0 {
		t.Errorf("empty query without browse must return nothing, got %v", names(got))
	}
	got = Search(items, nil, "   ", Selector{Field: FilterAll}, Options{})
	if len(got) != 0 {
		t.Errorf("whitespace query must behave like empty, got %v", names(got))
	}
}

func TestBrowseListsEverything(t *testing.T) {
	items := []model.Item{testItem("a"), testItem("b")}
	got := Search(items, nil, "", Selector{Field: FilterAll}, Options{Browse: true})
	if len(got) != 2 {
		t.Errorf("browse must list all items, got %v", names(got))
	}
}

func TestCaseInsensitiveSubstring(t *testing.T) {
	items := []model.Item{testItem("Balloon Whisk")}
	for _, q := range []string{"whisk", "WHISK", "  Whisk ", "loon w"} {
		got := Search(items, nil, q, Selector{Field: FilterAll}, Options{})
		if len(got) != 1 {
			t.Errorf("query %q: expected a match", q)
		}
	}
	if got := Search(items, nil, "spatula", Selector{Field: FilterAll}, Options{}); len(got) != 0 {
		t.Error("unrelated query must not match")
	}
}

func TestFieldFilters(t *testing.T) {
	kitchen := model.Location{ID: "loc-kitchen", Name: "Kitchen"}
	items := []model.Item{
		testItem("Whisk", inLocation(kitchen.ID), withCategory(model.CategoryKitchen)),
		testItem("Kitchen scale manual", withNotes("in the binder")),
	}
	locs := []model.Location{kitchen}

	// "kitchen" on the all filter finds both: one by location, one by name.
	got := Search(items, locs, "kitchen", Selector{Field: FilterAll}, Options{})
	if len(got) != 2 {
		t.Fatalf("all filter: got %v", names(got))
	}

	// The location filter only finds the item stored in the kitchen.
	got = Search(items, locs, "kitchen", Selector{Field: FilterLocation}, Options{})
	if len(got) != 1 || got[0].Name != "Whisk" {
		t.Errorf("location filter: got %v", names(got))
	}

	// The name filter only finds the item named after the kitchen.
	got = Search(items, locs, "kitchen", Selector{Field: FilterName}, Options{})
	if len(got) != 1 || got[0].Name != "Kitchen scale manual" {
		t.Errorf("name filter: got %v", names(got))
	}
}

func TestTagFilterDistinguishes(t *testing.T) {
	items := []model.Item{
		testItem("Claw hammer", withTags("rubber grip")),
		testItem("Rubber mallet"),
	}

	got := Search(items, nil, "rubber", Selector{Field: FilterTag}, Options{})
	if len(got) != 1 || got[0].Name != "Claw hammer" {
		t.Errorf("tag filter: got %v", names(got))
	}
	got = Search(items, nil, "rubber", Selector{Field: FilterAll}, Options{})
	if len(got) != 2 {
		t.Errorf("all filter should match tag and name: got %v", names(got))
	}
}

func TestSublocationMatchesLocationFilter(t *testing.T) {
	items := []model.Item{testItem("Screws", withSub("Top drawer"))}
	got := Search(items, nil, "drawer", Selector{Field: FilterLocation}, Options{})
	if len(got) != 1 {
		t.Errorf("sublocation text must match the location filter, got %v", names(got))
	}
}

func TestDanglingLocationReference(t *testing.T) {
	items := []model.Item{testItem("Whisk", inLocation("gone"))}

	// Must not panic, and the missing location contributes no text.
	got := Search(items, nil, "gone", Selector{Field: FilterLocation}, Options{})
	if len(got) != 0 {
		t.Errorf("dangling reference must not match by id, got %v", names(got))
	}
	got = Search(items, nil, "whisk", Selector{Field: FilterAll}, Options{})
	if len(got) != 1 {
		t.Error("item with dangling reference must still match by name")
	}
}

func TestCategorySelector(t *testing.T) {
	items := []model.Item{
		testItem("Whisk", withCategory(model.CategoryKitchen)),
		testItem("Kettle", withCategory(model.CategoryKitchen)),
		testItem("Hammer", withCategory(model.CategoryTools)),
	}

	// Empty query + category acts as a pure category listing.
	got := Search(items, nil, "", Selector{Field: FilterAll, Category: model.CategoryKitchen}, Options{})
	if len(got) != 2 {
		t.Errorf("category listing: got %v", names(got))
	}

	// Query + category intersects.
	got = Search(items, nil, "whisk", Selector{Field: FilterAll, Category: model.CategoryKitchen}, Options{})
	if len(got) != 1 || got[0].Name != "Whisk" {
		t.Errorf("category intersect: got %v", names(got))
	}
	got = Search(items, nil, "hammer", Selector{Field: FilterAll, Category: model.CategoryKitchen}, Options{})
	if len(got) != 0 {
		t.Errorf("category must exclude other categories: got %v", names(got))
	}
}

func TestSorts(t *testing.T) {
	items := []model.Item{
		testItem("banana", createdAt(baseTime.Add(1*time.Hour))),
		testItem("Apple", createdAt(baseTime.Add(3*time.Hour))),
		testItem("cherry", createdAt(baseTime.Add(2*time.Hour))),
	}
	opts := func(s Sort) Options { return Options{Sort: s, Browse: true} }

	tests := []struct {
		sort Sort
		want []string
	}{
		{SortNewest, []string{"Apple", "cherry", "banana"}},
		{SortOldest, []string{"banana", "cherry", "Apple"}},
		{SortNameAsc, []string{"Apple", "banana", "cherry"}},
		{SortNameDesc, []string{"cherry", "banana", "Apple"}},
	}
	for _, tt := range tests {
		got := names(Search(items, nil, "", Selector{Field: FilterAll}, opts(tt.sort)))
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %v", tt.sort, got)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.sort, got, tt.want)
				break
			}
		}
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	items := []model.Item{
		testItem("b", createdAt(baseTime.Add(time.Hour))),
		testItem("a", createdAt(baseTime.Add(2*time.Hour))),
	}
	Search(items, nil, "", Selector{Field: FilterAll}, Options{Sort: SortNameAsc, Browse: true})
	if items[0].Name != "b" {
		t.Error("search must sort a copy, not the caller's slice")
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw  string
		want Selector
	}{
		{"", Selector{Field: FilterAll}},
		{"all", Selector{Field: FilterAll}},
		{"name", Selector{Field: FilterName}},
		{"location", Selector{Field: FilterLocation}},
		{"tag", Selector{Field: FilterTag}},
		{"kitchen", Selector{Field: FilterAll, Category: model.CategoryKitchen}},
	}
	for _, tt := range tests {
		got, err := ParseSelector(tt.raw)
		if err != nil {
			t.Errorf("ParseSelector(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSelector(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}

	if _, err := ParseSelector("bogus"); err == nil {
		t.Error("unknown selector must be rejected")
	}

	if s := (Selector{Field: FilterAll, Category: model.CategoryKitchen}).String(); s != "kitchen" {
		t.Errorf("category selector renders as %q", s)
	}
	if s := (Selector{Field: FilterTag}).String(); s != "tag" {
		t.Errorf("field selector renders as %q", s)
	}
}

func TestParseSort(t *testing.T) {
	if s, err := ParseSort(""); err != nil || s != SortNewest {
		t.Errorf("empty sort: %v, %v", s, err)
	}
	if _, err := ParseSort("sideways"); err == nil {
		t.Error("unknown sort must be rejected")
	}
}
