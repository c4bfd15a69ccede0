package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/githsimon/Findr/internal/model"
)

type fakeBackend struct {
	history   []model.SearchEntry
	failSaves bool
}

func (f *fakeBackend) LoadItems() ([]model.Item, error)          { return nil, nil }
func (f *fakeBackend) SaveItems([]model.Item) error              { return nil }
func (f *fakeBackend) LoadLocations() ([]model.Location, error)  { return nil, nil }
func (f *fakeBackend) SaveLocations([]model.Location) error      { return nil }
func (f *fakeBackend) LoadHistory() ([]model.SearchEntry, error) { return f.history, nil }

func (f *fakeBackend) SaveHistory(entries []model.SearchEntry) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	f.history = append([]model.SearchEntry(nil), entries...)
	return nil
}

func (f *fakeBackend) SnapshotTo(ctx context.Context, path string) error { return nil }
func (f *fakeBackend) Close() error                                      { return nil }

func newTestLog(t *testing.T, limit int) (*Log, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	l, err := New(fb, limit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, fb
}

func TestRecordMostRecentFirst(t *testing.T) {
	l, _ := newTestLog(t, 10)

	l.Record("whisk", "all")
	l.Record("hammer", "tools")

	entries := l.List()
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].Query != "hammer" || entries[1].Query != "whisk" {
		t.Errorf("order: %v", entries)
	}
}

func TestRecordDedupesQueryFilterPair(t *testing.T) {
	l, _ := newTestLog(t, 10)

	first, _ := l.Record("whisk", "all")
	l.Record("hammer", "all")
	again, _ := l.Record("whisk", "all")

	entries := l.List()
	if len(entries) != 2 {
		t.Fatalf("duplicate pair must collapse, got %d entries", len(entries))
	}
	if entries[0].Query != "whisk" {
		t.Error("re-recorded query must move to the front")
	}
	if again.ID == first.ID {
		t.Error("re-recording creates a fresh entry")
	}
	if entries[0].ID != again.ID {
		t.Error("front entry must be the fresh one")
	}

	// Same query under a different filter is a distinct pair.
	l.Record("whisk", "kitchen")
	if len(l.List()) != 3 {
		t.Error("same query with different filter must not dedupe")
	}
}

func TestRecordBounded(t *testing.T) {
	l, _ := newTestLog(t, 3)

	for i := 0; i < 5; i++ {
		l.Record(fmt.Sprintf("q%d", i), "all")
	}

	entries := l.List()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].Query != "q4" || entries[2].Query != "q2" {
		t.Errorf("oldest entries must be evicted: %v", entries)
	}
}

func TestRemoveAndClear(t *testing.T) {
	l, fb := newTestLog(t, 10)

	entry, _ := l.Record("whisk", "all")
	l.Record("hammer", "all")

	if err := l.Remove(entry.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(l.List()) != 1 {
		t.Error("entry not removed")
	}
	if err := l.Remove(entry.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("removing a missing id: %v", err)
	}

	if err := l.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(l.List()) != 0 || len(fb.history) != 0 {
		t.Error("clear must empty memory and the backend")
	}
}

func TestLoadTruncatesToLimit(t *testing.T) {
	fb := &fakeBackend{}
	for i := 0; i < 6; i++ {
		fb.history = append(fb.history, model.SearchEntry{ID: fmt.Sprintf("e%d", i), Query: fmt.Sprintf("q%d", i)})
	}
	l, err := New(fb, 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(l.List()) != 4 {
		t.Errorf("loaded %d entries, want 4", len(l.List()))
	}
}

func TestPersistFailureKeepsEntry(t *testing.T) {
	l, fb := newTestLog(t, 10)
	fb.failSaves = true

	entry, err := l.Record("whisk", "all")
	var pe *model.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if entry == nil {
		t.Fatal("entry must still be returned")
	}
	if len(l.List()) != 1 {
		t.Error("in-memory entry must survive a persist failure")
	}
}
