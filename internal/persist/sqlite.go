package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/githsimon/Findr/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeFormat is how timestamps are stored; RFC 3339 with nanoseconds
// round-trips exactly and sorts lexically within UTC.
const timeFormat = time.RFC3339Nano

// SQLiteBackend stores the collections in an embedded SQLite database. Each
// Save rewrites the collection's tables inside one transaction, preserving
// insertion order through an explicit position column.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Close() error { return b.db.Close() }

func (b *SQLiteBackend) LoadItems() ([]model.Item, error) {
	rows, err := b.db.Query(
		`SELECT id, name, category, location_id, sublocation, specific_location,
		        notes, photo_ref, favorite, created_at, updated_at
		 FROM items ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		var locationID sql.NullString
		var favorite int
		var createdAt, updatedAt string
		err := rows.Scan(
			&it.ID, &it.Name, &it.Category, &locationID, &it.Sublocation,
			&it.SpecificLocation, &it.Notes, &it.PhotoRef, &favorite,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if locationID.Valid {
			it.LocationID = &locationID.String
		}
		it.Favorite = favorite != 0
		if it.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if it.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	for i := range items {
		tags, err := b.loadTags(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Tags = tags
	}
	return items, nil
}

func (b *SQLiteBackend) loadTags(itemID string) ([]string, error) {
	rows, err := b.db.Query(`SELECT tag FROM item_tags WHERE item_id = ? ORDER BY position`, itemID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (b *SQLiteBackend) SaveItems(items []model.Item) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM item_tags`); err != nil {
		return fmt.Errorf("clear item_tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	for i, it := range items {
		var locationID sql.NullString
		if it.LocationID != nil {
			locationID = sql.NullString{String: *it.LocationID, Valid: true}
		}
		var favorite int
		if it.Favorite {
			favorite = 1
		}
		_, err := tx.Exec(
			`INSERT INTO items (id, position, name, category, location_id, sublocation,
			                    specific_location, notes, photo_ref, favorite, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, i, it.Name, string(it.Category), locationID, it.Sublocation,
			it.SpecificLocation, it.Notes, it.PhotoRef, favorite,
			it.CreatedAt.Format(timeFormat), it.UpdatedAt.Format(timeFormat),
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		for j, tag := range it.Tags {
			if _, err := tx.Exec(
				`INSERT INTO item_tags (item_id, position, tag) VALUES (?, ?, ?)`,
				it.ID, j, tag,
			); err != nil {
				return fmt.Errorf("insert tag: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) LoadLocations() ([]model.Location, error) {
	rows, err := b.db.Query(
		`SELECT id, name, icon, color_tag, parent_id FROM locations ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var loc model.Location
		var parentID sql.NullString
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Icon, &loc.ColorTag, &parentID); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		if parentID.Valid {
			loc.ParentID = &parentID.String
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}

	for i := range locations {
		subs, err := b.loadSublocations(locations[i].ID)
		if err != nil {
			return nil, err
		}
		locations[i].Sublocations = subs
	}
	return locations, nil
}

func (b *SQLiteBackend) loadSublocations(locationID string) ([]model.Sublocation, error) {
	rows, err := b.db.Query(
		`SELECT id, name FROM sublocations WHERE location_id = ? ORDER BY position`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("load sublocations: %w", err)
	}
	defer rows.Close()

	subs := []model.Sublocation{}
	for rows.Next() {
		var s model.Sublocation
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan sublocation: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (b *SQLiteBackend) SaveLocations(locations []model.Location) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sublocations`); err != nil {
		return fmt.Errorf("clear sublocations: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM locations`); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}

	for i, loc := range locations {
		var parentID sql.NullString
		if loc.ParentID != nil {
			parentID = sql.NullString{String: *loc.ParentID, Valid: true}
		}
		_, err := tx.Exec(
			`INSERT INTO locations (id, position, name, icon, color_tag, parent_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			loc.ID, i, loc.Name, loc.Icon, loc.ColorTag, parentID,
		)
		if err != nil {
			return fmt.Errorf("insert location: %w", err)
		}
		for j, sub := range loc.Sublocations {
			if _, err := tx.Exec(
				`INSERT INTO sublocations (location_id, position, id, name) VALUES (?, ?, ?, ?)`,
				loc.ID, j, sub.ID, sub.Name,
			); err != nil {
				return fmt.Errorf("insert sublocation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) LoadHistory() ([]model.SearchEntry, error) {
	rows, err := b.db.Query(
		`SELECT id, query, filter, recorded_at FROM search_history ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var entries []model.SearchEntry
	for rows.Next() {
		var e model.SearchEntry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.Query, &e.Filter, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if e.Timestamp, err = time.Parse(timeFormat, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (b *SQLiteBackend) SaveHistory(entries []model.SearchEntry) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM search_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for i, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO search_history (id, position, query, filter, recorded_at)
			 VALUES (?, ?, ?, ?, ?)`,
			e.ID, i, e.Query, e.Filter, e.Timestamp.Format(timeFormat),
		); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SnapshotTo checkpoints the WAL and copies the database file.
func (b *SQLiteBackend) SnapshotTo(ctx context.Context, path string) error {
	if _, err := b.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return copyFile(b.path, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
