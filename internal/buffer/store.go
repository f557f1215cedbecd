package buffer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Swap backends accepted by NewPageStore.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// PageStore persists evicted pages for one swap session. Pages are keyed by a
// stable id that does not change when page indices shift.
type PageStore interface {
	Write(id uint64, content []rune) error
	// Read returns ErrPageNotFound when nothing was written for id.
	Read(id uint64) ([]rune, error)
	Remove(id uint64) error
	// Close releases the store. It does not delete the session directory.
	Close() error
}

// NewPageStore opens the backend named by backend inside dir.
func NewPageStore(backend, dir string) (PageStore, error) {
	switch backend {
	case "", BackendFiles:
		return &fileStore{dir: dir}, nil
	case BackendSQLite:
		return openSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown swap backend %q", backend)
	}
}

// fileStore keeps one UTF-8 file per page in the session directory.
type fileStore struct {
	dir string
}

func (s *fileStore) path(id uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("page_%06d.tmp", id))
}

// Write goes through a temporary file and a rename so a failed write never
// clobbers the previous copy of the page.
func (s *fileStore) Write(id uint64, content []rune) error {
	f, err := os.CreateTemp(s.dir, "page_*.partial")
	if err != nil {
		return fmt.Errorf("failed to create swap file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.WriteString(string(content)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write swap page %d: %w", id, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close swap page %d: %w", id, err)
	}
	if err := os.Rename(tmp, s.path(id)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit swap page %d: %w", id, err)
	}
	return nil
}

func (s *fileStore) Read(id uint64) ([]rune, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to read swap page %d: %w", id, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("swap page %d is not valid UTF-8: %w", id, ErrCorruptPage)
	}
	return []rune(string(data)), nil
}

func (s *fileStore) Remove(id uint64) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove swap page %d: %w", id, err)
	}
	return nil
}

func (s *fileStore) Close() error { return nil }
