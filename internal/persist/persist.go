// Package persist defines the storage port the catalog store and search
// history write through, plus file-based and SQLite implementations.
package persist

import (
	"context"

	"github.com/githsimon/Findr/internal/model"
)

// Backend persists whole collections. Every Save replaces the stored
// collection with the given one; Load returns an empty slice when nothing has
// been stored yet. Implementations must round-trip collections field-by-field,
// including tag and sublocation order.
type Backend interface {
	LoadItems() ([]model.Item, error)
	SaveItems(items []model.Item) error

	LoadLocations() ([]model.Location, error)
	SaveLocations(locations []model.Location) error

	LoadHistory() ([]model.SearchEntry, error)
	SaveHistory(entries []model.SearchEntry) error

	// SnapshotTo writes a single-file snapshot of all stored data to path,
	// suitable for backup.
	SnapshotTo(ctx context.Context, path string) error

	Close() error
}
