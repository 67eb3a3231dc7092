// Package storage persists enrolled files and their generated metadata
// between sessions, so a reopened project shows earlier results.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stocktag/internal/catalog"
	"stocktag/internal/provider"
)

// Record is one persisted project file with its latest generated metadata.
type Record struct {
	ItemID      string
	Path        string
	Filename    string
	Kind        string
	Status      string
	Title       string
	Description string
	Keywords    []string
	Category    string
	TitleLength int
	TagsCount   int
	Provider    string
	LastErr     string
	UpdatedAt   time.Time
}

// ProjectStore implements persistence on SQLite.
type ProjectStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the project database at dbPath.
func Open(dbPath string) (*ProjectStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The database file may not exist until the first write
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		db.Close()
		return nil, fmt.Errorf("failed to set database permissions: %w", err)
	}

	store := &ProjectStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *ProjectStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS project_files (
		item_id TEXT PRIMARY KEY,
		filepath TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT '[]',
		category TEXT NOT NULL DEFAULT '',
		title_length INTEGER NOT NULL DEFAULT 0,
		tags_count INTEGER NOT NULL DEFAULT 0,
		provider TEXT NOT NULL DEFAULT '',
		last_err TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create project_files table: %w", err)
	}
	return nil
}

// RecordStatus upserts the item row with its current lifecycle state.
// Generated metadata columns are left untouched.
func (s *ProjectStore) RecordStatus(item catalog.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO project_files (item_id, filepath, filename, kind, status, last_err, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(item_id) DO UPDATE SET
		status = excluded.status,
		last_err = excluded.last_err,
		updated_at = excluded.updated_at
	`
	_, err := s.db.Exec(query,
		item.ID, item.Path, item.Filename, string(item.Kind),
		string(item.Status), item.LastErr, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record item status: %w", err)
	}
	return nil
}

// RecordResult stores the generated metadata for an item alongside the
// derived title length and tag count.
func (s *ProjectStore) RecordResult(item catalog.MediaItem, result provider.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keywordsJSON, err := json.Marshal(result.Meta.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	query := `
	INSERT INTO project_files (item_id, filepath, filename, kind, status,
		title, description, keywords, category, title_length, tags_count,
		provider, last_err, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(item_id) DO UPDATE SET
		status = excluded.status,
		title = excluded.title,
		description = excluded.description,
		keywords = excluded.keywords,
		category = excluded.category,
		title_length = excluded.title_length,
		tags_count = excluded.tags_count,
		provider = excluded.provider,
		last_err = excluded.last_err,
		updated_at = excluded.updated_at
	`
	_, err = s.db.Exec(query,
		item.ID, item.Path, item.Filename, string(item.Kind), string(item.Status),
		result.Meta.Title, result.Meta.Description, string(keywordsJSON),
		result.Meta.Category, result.Meta.TitleLength(), result.Meta.TagsCount(),
		result.Provider, item.LastErr, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

// Get returns the persisted record for one item.
func (s *ProjectStore) Get(itemID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
	SELECT item_id, filepath, filename, kind, status, title, description,
		keywords, category, title_length, tags_count, provider, last_err, updated_at
	FROM project_files WHERE item_id = ?`, itemID)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// GetAll returns every persisted record ordered by path.
func (s *ProjectStore) GetAll() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
	SELECT item_id, filepath, filename, kind, status, title, description,
		keywords, category, title_length, tags_count, provider, last_err, updated_at
	FROM project_files ORDER BY filepath`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Delete removes the record for an item.
func (s *ProjectStore) Delete(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM project_files WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *ProjectStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var keywordsJSON string
	err := row.Scan(
		&record.ItemID, &record.Path, &record.Filename, &record.Kind,
		&record.Status, &record.Title, &record.Description, &keywordsJSON,
		&record.Category, &record.TitleLength, &record.TagsCount,
		&record.Provider, &record.LastErr, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywordsJSON), &record.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	return &record, nil
}
