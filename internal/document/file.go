package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/logger"
)

const (
	loadChunkRunes = 32 * 1024
	ioBufferSize   = 64 * 1024
)

// Open loads path into a new document. The buffer implementation is chosen
// from the file size and opts. On failure no document is returned and any
// swap files created for it are removed.
func Open(path string, opts buffer.Options, events *event.Manager) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory", path)
	}

	buf, err := buffer.New(info.Size(), opts)
	if err != nil {
		return nil, err
	}
	d := newDocument(buf)
	d.events = events
	d.path = path
	d.originalSize = info.Size()
	d.state = StateLoading

	start := time.Now()
	if err := d.load(path); err != nil {
		if cerr := buf.Close(); cerr != nil {
			logger.WarnTagf("document", "Open: releasing buffer for '%s': %v", path, cerr)
		}
		return nil, fmt.Errorf("failed to load '%s': %w", path, err)
	}
	d.state = StateClean
	d.modified = false
	d.lastModified = info.ModTime()
	logger.InfoTagf("document", "Loaded '%s' (%d runes) into %s in %v",
		path, d.Len(), buffer.Kind(buf), time.Since(start))

	events.Dispatch(event.TypeDocumentLoaded, event.FileData{FilePath: path})
	return d, nil
}

// load streams the file into the buffer a chunk at a time so a paged buffer
// never holds the whole file in memory. Invalid UTF-8 decodes to U+FFFD.
func (d *Document) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, ioBufferSize)
	chunk := make([]rune, 0, loadChunkRunes)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		err := d.buf.Insert(string(chunk))
		chunk = chunk[:0]
		return err
	}
	for {
		ch, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		chunk = append(chunk, ch)
		if len(chunk) == cap(chunk) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	d.buf.MoveTo(0)
	d.invalidate()
	return nil
}

// Save writes the document to its current path.
func (d *Document) Save() error {
	return d.SaveAs(d.path)
}

// SaveAs writes the document to path and adopts it as the document's path.
// A failed save leaves the document dirty and in the error state; the
// original file is untouched because the content goes to a temporary file
// that replaces it only once fully written.
func (d *Document) SaveAs(path string) error {
	if path == "" {
		return ErrNoPath
	}
	if d.closed {
		return buffer.ErrClosed
	}
	prev := d.state
	if prev == StateLoading || prev == StateSaving {
		return ErrNotEditable
	}
	d.state = StateSaving

	if err := writeAtomic(path, d.buf); err != nil {
		d.state = StateError
		d.lastErr = err
		logger.Errorf("Save '%s' failed: %v", path, err)
		return fmt.Errorf("failed to save '%s': %w", path, err)
	}

	d.path = path
	d.modified = false
	d.lastErr = nil
	d.lastModified = time.Now()
	if prev == StateReadOnly {
		d.state = StateReadOnly
	} else {
		d.state = StateClean
	}
	logger.InfoTagf("document", "Saved '%s' (%d runes)", path, d.Len())

	d.events.Dispatch(event.TypeDocumentSaved, event.FileData{FilePath: path})
	return nil
}

// writeAtomic writes b to a temporary file beside path, syncs it and renames
// it over path. An existing file's permissions are kept.
func writeAtomic(path string, b buffer.TextBuffer) (err error) {
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriterSize(tmp, ioBufferSize)
	var writeErr error
	if err = b.Scan(0, func(r rune) bool {
		_, writeErr = w.WriteRune(r)
		return writeErr == nil
	}); err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
