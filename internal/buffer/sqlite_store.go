package buffer

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

const sqliteStoreSchema = `
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY,
    content TEXT NOT NULL
);
`

// sqliteStore keeps every spilled page of a session as a row in a single
// SQLite database inside the session directory.
type sqliteStore struct {
	db *sql.DB
}

func openSQLiteStore(dir string) (*sqliteStore, error) {
	dsn := filepath.Join(dir, "pages.db") +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap database: %w", err)
	}
	// One session, one writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to swap database: %w", err)
	}
	if _, err := db.Exec(sqliteStoreSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create swap schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Write(id uint64, content []rune) error {
	_, err := s.db.Exec(
		`INSERT INTO pages(id, content) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET content = excluded.content`,
		int64(id), string(content))
	if err != nil {
		return fmt.Errorf("failed to write swap page %d: %w", id, err)
	}
	return nil
}

func (s *sqliteStore) Read(id uint64) ([]rune, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM pages WHERE id = ?`, int64(id)).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read swap page %d: %w", id, err)
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("swap page %d is not valid UTF-8: %w", id, ErrCorruptPage)
	}
	return []rune(content), nil
}

func (s *sqliteStore) Remove(id uint64) error {
	if _, err := s.db.Exec(`DELETE FROM pages WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("failed to remove swap page %d: %w", id, err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
