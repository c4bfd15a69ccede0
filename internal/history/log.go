// Package history keeps the bounded, most-recent-first log of past searches.
package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/githsimon/Findr/internal/model"
	"github.com/githsimon/Findr/internal/persist"
)

// DefaultLimit is the observed history depth of the original app.
const DefaultLimit = 10

// Log owns its entry list independently of the catalog. The caller decides
// when a search is worth recording (debounce, non-empty query); the log just
// performs the operation.
type Log struct {
	mu      sync.Mutex
	backend persist.Backend
	entries []model.SearchEntry
	limit   int
	logger  *slog.Logger
}

// New loads persisted entries. A limit of zero or less falls back to
// DefaultLimit.
func New(backend persist.Backend, limit int, logger *slog.Logger) (*Log, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	entries, err := backend.LoadHistory()
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return &Log{backend: backend, entries: entries, limit: limit, logger: logger}, nil
}

// Record inserts a new entry at the front, dropping any older entry with the
// same (query, filter) pair and truncating to the limit.
func (l *Log) Record(query, filter string) (*model.SearchEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.Query == query && e.Filter == filter {
			continue
		}
		kept = append(kept, e)
	}

	entry := model.SearchEntry{
		ID:        uuid.New().String(),
		Query:     query,
		Filter:    filter,
		Timestamp: time.Now().UTC(),
	}
	l.entries = append([]model.SearchEntry{entry}, kept...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}

	return &entry, l.persist("record search")
}

// Remove deletes a single entry by id.
func (l *Log) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.ErrNotFound
	}
	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	return l.persist("remove history entry")
}

// Clear empties the log.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = l.entries[:0]
	return l.persist("clear history")
}

// List returns a snapshot, most recent first.
func (l *Log) List() []model.SearchEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.SearchEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) persist(op string) error {
	if err := l.backend.SaveHistory(l.entries); err != nil {
		l.logger.Error("persist failed", "op", op, "error", err)
		return &model.PersistenceError{Op: op, Err: err}
	}
	return nil
}
