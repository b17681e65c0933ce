package fetch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// index is the persistent artifact index backing the cache. Entries map
// URL digests to local paths; a missing path at lookup time simply means
// a re-fetch.
type index struct {
	db *sql.DB
}

func openIndex(path string) (*index, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS artifacts (
		key        TEXT PRIMARY KEY,
		url        TEXT NOT NULL,
		kind       TEXT NOT NULL,
		path       TEXT NOT NULL,
		size       INTEGER NOT NULL,
		fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create artifacts table: %w", err)
	}

	return &index{db: db}, nil
}

func (i *index) get(ctx context.Context, key string) (string, bool, error) {
	var p string
	err := i.db.QueryRowContext(ctx, "SELECT path FROM artifacts WHERE key = ?", key).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query artifact: %w", err)
	}
	return p, true, nil
}

func (i *index) put(ctx context.Context, key, url, kind, path string, size int64) error {
	_, err := i.db.ExecContext(ctx, `
		INSERT INTO artifacts (key, url, kind, path, size)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			kind = excluded.kind,
			path = excluded.path,
			size = excluded.size,
			fetched_at = CURRENT_TIMESTAMP`,
		key, url, kind, path, size)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

func (i *index) Close() error {
	return i.db.Close()
}
