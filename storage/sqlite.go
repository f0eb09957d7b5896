package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	db *sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		if directory != "" {
			if err := os.MkdirAll(directory, 0755); err != nil {
				return nil, fmt.Errorf("creating directory: %w", err)
			}
		}
		sourceName = filepath.Join(directory, "ptv.db")
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS cache_entry (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    payload TEXT NOT NULL,
PRIMARY KEY (namespace, key)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache_entry table: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		db: db,
	}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Load() (*Document, error) {
	rows, err := s.db.Query(`
SELECT
    namespace,
    key,
    timestamp,
    payload
FROM cache_entry`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	doc := NewDocument()
	for rows.Next() {
		var row entryRow
		err := rows.Scan(
			&row.Namespace,
			&row.Key,
			&row.Timestamp,
			&row.Payload,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		doc.addRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache entries: %w", err)
	}

	return doc, nil
}

func (s *SQLiteStorage) Save(doc *Document) error {
	entries, err := documentRows(doc)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM cache_entry`)
	if err != nil {
		return fmt.Errorf("clearing cache entries: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO cache_entry (
    namespace,
    key,
    timestamp,
    payload
)
VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err = stmt.Exec(e.Namespace, e.Key, e.Timestamp, e.Payload)
		if err != nil {
			return fmt.Errorf("inserting %s %s: %w", e.Namespace, e.Key, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}
