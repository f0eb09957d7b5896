package storage

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PSQLStorage struct {
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`DROP TABLE IF EXISTS cache_entry;`)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS cache_entry (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL,
    payload TEXT NOT NULL,
    PRIMARY KEY (namespace, key)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache_entry table: %w", err)
	}

	return &PSQLStorage{
		db: db,
	}, nil
}

func (s *PSQLStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

func (s *PSQLStorage) Load() (*Document, error) {
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
		row.Timestamp = row.Timestamp.UTC()
		doc.addRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache entries: %w", err)
	}

	return doc, nil
}

// Replaces all rows in a single transaction, using COPY for the
// inserts.
func (s *PSQLStorage) Save(doc *Document) error {
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

	stmt, err := tx.Prepare(pq.CopyIn("cache_entry", "namespace", "key", "timestamp", "payload"))
	if err != nil {
		return fmt.Errorf("preparing copy: %w", err)
	}

	for _, e := range entries {
		_, err = stmt.Exec(e.Namespace, e.Key, e.Timestamp, e.Payload)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("copying %s %s: %w", e.Namespace, e.Key, err)
		}
	}

	_, err = stmt.Exec()
	if err != nil {
		stmt.Close()
		return fmt.Errorf("flushing copy: %w", err)
	}

	err = stmt.Close()
	if err != nil {
		return fmt.Errorf("closing copy: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}
