package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/githsimon/Findr/internal/model"
)

const (
	itemsFile     = "items.json"
	locationsFile = "locations.json"
	historyFile   = "search_history.json"
)

// JSONFileBackend stores each collection as a JSON file in a directory,
// overwriting the whole file on every save. Writes go through a temp file and
// rename so a crash mid-write never corrupts the previous state.
type JSONFileBackend struct {
	dir string
}

// NewJSONFileBackend creates the data directory if needed.
func NewJSONFileBackend(dir string) (*JSONFileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONFileBackend{dir: dir}, nil
}

func (b *JSONFileBackend) LoadItems() ([]model.Item, error) {
	var items []model.Item
	if err := b.load(itemsFile, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *JSONFileBackend) SaveItems(items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	return b.save(itemsFile, items)
}

func (b *JSONFileBackend) LoadLocations() ([]model.Location, error) {
	var locations []model.Location
	if err := b.load(locationsFile, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (b *JSONFileBackend) SaveLocations(locations []model.Location) error {
	if locations == nil {
		locations = []model.Location{}
	}
	return b.save(locationsFile, locations)
}

func (b *JSONFileBackend) LoadHistory() ([]model.SearchEntry, error) {
	var entries []model.SearchEntry
	if err := b.load(historyFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (b *JSONFileBackend) SaveHistory(entries []model.SearchEntry) error {
	if entries == nil {
		entries = []model.SearchEntry{}
	}
	return b.save(historyFile, entries)
}

// snapshot is the single-document form written by SnapshotTo.
type snapshot struct {
	CreatedAt time.Time           `json:"created_at"`
	Items     []model.Item        `json:"items"`
	Locations []model.Location    `json:"locations"`
	History   []model.SearchEntry `json:"history"`
}

func (b *JSONFileBackend) SnapshotTo(ctx context.Context, path string) error {
	items, err := b.LoadItems()
	if err != nil {
		return err
	}
	locations, err := b.LoadLocations()
	if err != nil {
		return err
	}
	history, err := b.LoadHistory()
	if err != nil {
		return err
	}

	snap := snapshot{
		CreatedAt: time.Now().UTC(),
		Items:     items,
		Locations: locations,
		History:   history,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (b *JSONFileBackend) Close() error { return nil }

func (b *JSONFileBackend) load(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (b *JSONFileBackend) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	target := filepath.Join(b.dir, name)
	tmp, err := os.CreateTemp(b.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
