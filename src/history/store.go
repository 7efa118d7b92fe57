// Package history provides persistent rotation and wallpaper state
package history

import (
	"context"
	"database/sql"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
	_ "modernc.org/sqlite"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Entry is one recorded wallpaper change attempt
type Entry struct {
	ID         int64     `json:"id"`
	Path       string    `json:"path"`
	Resolution string    `json:"resolution"`
	Success    bool      `json:"success"`
	UsedAt     time.Time `json:"used_at"`
}

// Store keeps the rotation's used set, the captured default wallpaper and the
// change history in SQLite so they survive between scheduler invocations.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex // protects database operations
	logger *slog.Logger
}

// NewStore opens (and creates if needed) the database at dbPath
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", errors.ErrStateStore, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", errors.ErrStateStore, err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	store := &Store{db: db, logger: logger}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: initialize database: %v", errors.ErrStateStore, err)
	}

	return store, nil
}

// initialize creates the database schema
func (s *Store) initialize() error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS used_images (
		id TEXT PRIMARY KEY,
		marked_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS usage_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		resolution TEXT,
		success BOOLEAN NOT NULL,
		used_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS default_wallpaper (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		path TEXT NOT NULL,
		captured_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_history_used_at ON usage_history(used_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Used returns the identifiers shown since the last reset
func (s *Store) Used(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM used_images ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query used images: %v", errors.ErrStateStore, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan used image: %v", errors.ErrStateStore, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkUsed adds id to the used set
func (s *Store) MarkUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO used_images (id, marked_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET marked_at = excluded.marked_at
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("%w: mark used: %v", errors.ErrStateStore, err)
	}
	return nil
}

// UnmarkUsed removes id from the used set
func (s *Store) UnmarkUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM used_images WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: unmark used: %v", errors.ErrStateStore, err)
	}
	return nil
}

// ResetUsed empties the used set
func (s *Store) ResetUsed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM used_images`); err != nil {
		return fmt.Errorf("%w: reset used images: %v", errors.ErrStateStore, err)
	}
	return nil
}

// RecordChange appends a wallpaper change attempt to the history
func (s *Store) RecordChange(ctx context.Context, path string, success bool) error {
	resolution, err := getImageResolution(path)
	if err != nil {
		s.logger.Debug("Failed to get image resolution", "path", path, "error", err)
		resolution = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO usage_history (path, resolution, success, used_at)
		VALUES (?, ?, ?, ?)
	`, path, resolution, success, time.Now())
	if err != nil {
		return fmt.Errorf("%w: insert usage history: %v", errors.ErrStateStore, err)
	}
	return nil
}

// History returns the most recent change attempts, newest first
func (s *Store) History(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, COALESCE(resolution, ''), success, used_at
		FROM usage_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query usage history: %v", errors.ErrStateStore, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Path, &e.Resolution, &e.Success, &e.UsedAt); err != nil {
			return nil, fmt.Errorf("%w: scan usage history: %v", errors.ErrStateStore, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DefaultWallpaper returns the wallpaper captured before the first change, if any
func (s *Store) DefaultWallpaper(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var path string
	err := s.db.QueryRowContext(ctx, `SELECT path FROM default_wallpaper WHERE id = 1`).Scan(&path)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: query default wallpaper: %v", errors.ErrStateStore, err)
	}
	return path, true, nil
}

// SaveDefaultWallpaper stores path unless a default was already captured
func (s *Store) SaveDefaultWallpaper(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO default_wallpaper (id, path, captured_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, path, time.Now())
	if err != nil {
		return fmt.Errorf("%w: save default wallpaper: %v", errors.ErrStateStore, err)
	}
	return nil
}

// ClearDefaultWallpaper forgets the captured default
func (s *Store) ClearDefaultWallpaper(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM default_wallpaper`); err != nil {
		return fmt.Errorf("%w: clear default wallpaper: %v", errors.ErrStateStore, err)
	}
	return nil
}

// getImageResolution returns the resolution of an image as "WIDTHxHEIGHT"
func getImageResolution(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%dx%d", img.Width, img.Height), nil
}
