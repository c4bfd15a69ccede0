package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/githsimon/Findr/internal/config"
	"github.com/githsimon/Findr/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:            "0",
		LogLevel:        "error",
		DataDir:         t.TempDir(),
		Storage:         "json",
		DeletePolicy:    "cascade",
		HistoryLimit:    10,
		RateLimitPerMin: 6000,
		RateLimitBurst:  1000,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestItemLifecycle(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := doJSON(t, h, "POST", "/api/items", map[string]any{
		"name":     "Whisk",
		"category": "kitchen",
		"tags":     []string{"baking"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created model.Item
	decodeInto(t, rec, &created)
	if created.ID == "" || created.Name != "Whisk" {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, h, "GET", "/api/items", nil)
	var items []model.Item
	decodeInto(t, rec, &items)
	if len(items) != 1 {
		t.Fatalf("list: %v", items)
	}

	rec = doJSON(t, h, "PATCH", "/api/items/"+created.ID, map[string]any{"notes": "drawer by the stove"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated model.Item
	decodeInto(t, rec, &updated)
	if updated.Notes != "drawer by the stove" || updated.Name != "Whisk" {
		t.Fatalf("updated = %+v", updated)
	}

	rec = doJSON(t, h, "POST", "/api/items/"+created.ID+"/favorite", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("favorite: %d", rec.Code)
	}
	var fav model.Item
	decodeInto(t, rec, &fav)
	if !fav.Favorite {
		t.Error("favorite not toggled")
	}

	rec = doJSON(t, h, "DELETE", "/api/items/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, "GET", "/api/items/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
}

func TestItemValidation(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := doJSON(t, h, "POST", "/api/items", map[string]any{"name": "Chair", "category": "furniture"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad category: %d", rec.Code)
	}
	rec = doJSON(t, h, "POST", "/api/items", map[string]any{"category": "other"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: %d", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/items", bytes.NewReader([]byte("{not json")))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: %d", rec2.Code)
	}
}

func TestSearchRecordsHistory(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	doJSON(t, h, "POST", "/api/items", map[string]any{"name": "Whisk", "category": "kitchen"})
	doJSON(t, h, "POST", "/api/items", map[string]any{"name": "Hammer", "category": "tools"})

	rec := doJSON(t, h, "GET", "/api/search?q=whisk", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Count int          `json:"count"`
		Items []model.Item `json:"items"`
	}
	decodeInto(t, rec, &res)
	if res.Count != 1 || res.Items[0].Name != "Whisk" {
		t.Fatalf("search result: %+v", res)
	}

	// Empty query without browse returns nothing and is not recorded.
	rec = doJSON(t, h, "GET", "/api/search?q=", nil)
	decodeInto(t, rec, &res)
	if res.Count != 0 {
		t.Errorf("empty query count = %d", res.Count)
	}

	rec = doJSON(t, h, "GET", "/api/history", nil)
	var entries []model.SearchEntry
	decodeInto(t, rec, &entries)
	if len(entries) != 1 || entries[0].Query != "whisk" {
		t.Fatalf("history: %v", entries)
	}

	rec = doJSON(t, h, "DELETE", "/api/history", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear history: %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/history", nil)
	decodeInto(t, rec, &entries)
	if len(entries) != 0 {
		t.Error("history not cleared")
	}
}

func TestSearchRejectsUnknownSelector(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	rec := doJSON(t, h, "GET", "/api/search?q=x&filter=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown filter: %d", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/search?q=x&sort=sideways", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown sort: %d", rec.Code)
	}
}

func TestLocationDeletePolicies(t *testing.T) {
	// Reject policy answers 409 while items reference the location.
	cfg := testConfig(t)
	cfg.DeletePolicy = "reject"
	h := newTestServer(t, cfg)

	rec := doJSON(t, h, "POST", "/api/locations", map[string]any{"name": "Garage"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create location: %d %s", rec.Code, rec.Body.String())
	}
	var loc model.Location
	decodeInto(t, rec, &loc)

	doJSON(t, h, "POST", "/api/items", map[string]any{
		"name": "Hammer", "category": "tools", "location_id": loc.ID,
	})

	rec = doJSON(t, h, "DELETE", "/api/locations/"+loc.ID, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("reject policy: %d %s", rec.Code, rec.Body.String())
	}

	// Cascade policy clears the reference and deletes.
	cfg2 := testConfig(t)
	h2 := newTestServer(t, cfg2)

	rec = doJSON(t, h2, "POST", "/api/locations", map[string]any{"name": "Garage"})
	decodeInto(t, rec, &loc)
	rec = doJSON(t, h2, "POST", "/api/items", map[string]any{
		"name": "Hammer", "category": "tools", "location_id": loc.ID,
	})
	var item model.Item
	decodeInto(t, rec, &item)

	rec = doJSON(t, h2, "DELETE", "/api/locations/"+loc.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cascade delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h2, "GET", "/api/items/"+item.ID, nil)
	var got model.Item
	decodeInto(t, rec, &got)
	if got.LocationID != nil {
		t.Error("cascade must unassign the item")
	}
}

func TestSublocationEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := doJSON(t, h, "POST", "/api/locations", map[string]any{
		"name": "Kitchen", "sublocations": []string{"Top drawer"},
	})
	var loc model.Location
	decodeInto(t, rec, &loc)

	rec = doJSON(t, h, "POST", "/api/locations/"+loc.ID+"/sublocations", map[string]any{"name": "Shelf"})
	if rec.Code != http.StatusOK {
		t.Fatalf("add sublocation: %d %s", rec.Code, rec.Body.String())
	}
	var updated model.Location
	decodeInto(t, rec, &updated)
	if len(updated.Sublocations) != 2 || updated.Sublocations[1].Name != "Shelf" {
		t.Fatalf("sublocations: %v", updated.Sublocations)
	}
}

func TestCategoriesAndHealth(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := doJSON(t, h, "GET", "/api/items/categories", nil)
	var cats []model.Category
	decodeInto(t, rec, &cats)
	if len(cats) != len(model.Categories) {
		t.Errorf("categories: %v", cats)
	}

	rec = doJSON(t, h, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: %d", rec.Code)
	}

	rec = doJSON(t, h, "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: %d", rec.Code)
	}
}

func TestBackupNotConfigured(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := doJSON(t, h, "GET", "/api/backup/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var st struct {
		State string `json:"state"`
	}
	decodeInto(t, rec, &st)
	if st.State != "disabled" {
		t.Errorf("state = %q, want disabled", st.State)
	}

	rec = doJSON(t, h, "POST", "/api/backup/run", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("run without config: %d", rec.Code)
	}
}
