// Package document ties a text buffer to its line index, file and dirty
// state. It is the surface the rest of the editor edits through.
package document

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rivo/uniseg"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/logger"
	"github.com/bethropolis/tangent/internal/types"
)

// State is the lifecycle state of a document.
type State int

const (
	StateClean    State = iota // no unsaved changes
	StateDirty                 // edited since the last load or save
	StateLoading               // reading from disk
	StateSaving                // writing to disk
	StateReadOnly              // edits refused
	StateError                 // the last load or save failed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateLoading:
		return "loading"
	case StateSaving:
		return "saving"
	case StateReadOnly:
		return "read-only"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotEditable is returned by edits while loading, saving or read-only.
	ErrNotEditable = errors.New("document is not editable")

	// ErrNoPath is returned by Save on an untitled document.
	ErrNoPath = errors.New("no file path specified")
)

// Document is not safe for concurrent use; hosts must serialize calls.
type Document struct {
	buf       buffer.TextBuffer
	lines     *LineIndex
	lineCache map[int]string

	state    State
	modified bool
	lastErr  error

	path         string
	originalSize int64
	lastModified time.Time

	events *event.Manager
	closed bool
}

// New creates an empty, untitled document.
func New(opts buffer.Options) (*Document, error) {
	buf, err := buffer.New(0, opts)
	if err != nil {
		return nil, err
	}
	return newDocument(buf), nil
}

// NewWithBuffer wraps an existing, empty buffer.
func NewWithBuffer(buf buffer.TextBuffer) *Document {
	return newDocument(buf)
}

func newDocument(buf buffer.TextBuffer) *Document {
	return &Document{
		buf:          buf,
		lines:        NewLineIndex(),
		lineCache:    make(map[int]string),
		state:        StateClean,
		lastModified: time.Now(),
	}
}

// SetEventManager sets where change notifications are dispatched. A nil
// manager disables notifications.
func (d *Document) SetEventManager(m *event.Manager) {
	d.events = m
}

// SetFilePath sets where Save writes. Nothing is read or written.
func (d *Document) SetFilePath(path string) { d.path = path }

// SetReadOnly toggles whether edits are accepted.
func (d *Document) SetReadOnly(readOnly bool) {
	switch {
	case readOnly:
		d.state = StateReadOnly
	case d.state == StateReadOnly && d.modified:
		d.state = StateDirty
	case d.state == StateReadOnly:
		d.state = StateClean
	}
}

func (d *Document) State() State              { return d.state }
func (d *Document) IsDirty() bool             { return d.modified }
func (d *Document) IsUntitled() bool          { return d.path == "" }
func (d *Document) FilePath() string          { return d.path }
func (d *Document) LastModified() time.Time   { return d.lastModified }
func (d *Document) LastError() error          { return d.lastErr }
func (d *Document) Buffer() buffer.TextBuffer { return d.buf }
func (d *Document) Len() int                  { return d.buf.Len() }
func (d *Document) Cursor() int               { return d.buf.Position() }

// IsEditable reports whether edits are currently accepted. A document in the
// error state stays editable so the user can fix things and retry.
func (d *Document) IsEditable() bool {
	switch d.state {
	case StateClean, StateDirty, StateError:
		return !d.closed
	default:
		return false
	}
}

// CharAt returns the rune at index i; out-of-range reads are errors.
func (d *Document) CharAt(i int) (rune, error) {
	return d.buf.CharAt(i)
}

// Slice returns the runes in [start, end), clamped to the document.
func (d *Document) Slice(start, end int) ([]rune, error) {
	return buffer.Slice(d.buf, start, end)
}

// Text returns the whole content.
func (d *Document) Text() (string, error) {
	return buffer.Text(d.buf)
}

// MoveCursor moves the cursor, clamped to [0, Len()].
func (d *Document) MoveCursor(position int) {
	d.buf.MoveTo(position)
}

// InsertRune inserts r at the cursor.
func (d *Document) InsertRune(r rune) error {
	if !d.IsEditable() {
		return ErrNotEditable
	}
	line := d.changeLine()
	if err := d.buf.InsertRune(r); err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	d.afterEdit(line, r == '\n')
	return nil
}

// Insert inserts text at the cursor and advances it past the text.
func (d *Document) Insert(text string) error {
	if !d.IsEditable() {
		return ErrNotEditable
	}
	if text == "" {
		return nil
	}
	line := d.changeLine()
	if err := d.buf.Insert(text); err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	d.afterEdit(line, strings.ContainsRune(text, '\n'))
	return nil
}

// Delete removes up to count runes after (Forward) or before (Backward) the
// cursor.
func (d *Document) Delete(count int, dir buffer.Direction) error {
	if !d.IsEditable() {
		return ErrNotEditable
	}
	if count <= 0 {
		return nil
	}
	line := d.changeLine()
	newlineDeleted := false
	if d.events != nil {
		start, end := d.Cursor(), d.Cursor()+count
		if dir == buffer.Backward {
			start, end = d.Cursor()-count, d.Cursor()
		}
		removed, err := d.Slice(max(start, 0), min(end, d.Len()))
		if err != nil {
			return err
		}
		newlineDeleted = containsNewline(removed)
	}
	if err := d.buf.Delete(count, dir); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	d.afterEdit(line, newlineDeleted)
	return nil
}

func containsNewline(runes []rune) bool {
	for _, r := range runes {
		if r == '\n' {
			return true
		}
	}
	return false
}

// changeLine returns the 0-based cursor line for change notifications. It is
// only computed when someone is listening.
func (d *Document) changeLine() int {
	if d.events == nil {
		return -1
	}
	pos, err := d.lines.OffsetToLineColumn(d.buf, d.Cursor())
	if err != nil {
		return -1
	}
	return pos.Line - 1
}

func (d *Document) afterEdit(line int, structural bool) {
	d.invalidate()
	d.modified = true
	d.state = StateDirty
	d.lastModified = time.Now()

	if d.events == nil {
		return
	}
	if structural || line < 0 {
		d.events.Dispatch(event.TypeDocumentChanged, event.ChangeData{Change: types.Change{Kind: types.FullInvalidate}})
		return
	}
	d.events.Dispatch(event.TypeLineChanged, event.ChangeData{Change: types.Change{Kind: types.LineChanged, Line: line}})
}

func (d *Document) invalidate() {
	d.lines.Invalidate()
	clear(d.lineCache)
}

// LineIndexValid reports whether the line index is current.
func (d *Document) LineIndexValid() bool { return d.lines.Valid() }

// LineCount returns the number of lines (newlines + 1).
func (d *Document) LineCount() (int, error) {
	return d.lines.LineCount(d.buf)
}

// LineLength returns the rune length of a 1-based line without its newline.
func (d *Document) LineLength(line int) (int, error) {
	return d.lines.LineLength(d.buf, line)
}

// LinePosition converts a 1-based line and column to an offset, clamping the
// column to the line and a missing line to the end of the document.
func (d *Document) LinePosition(line, column int) (int, error) {
	return d.lines.LineToOffset(d.buf, line, column)
}

// LineColumn converts an offset into a 1-based line and column.
func (d *Document) LineColumn(offset int) (types.Position, error) {
	return d.lines.OffsetToLineColumn(d.buf, offset)
}

// CursorLineColumn returns the cursor's 1-based line and column.
func (d *Document) CursorLineColumn() (types.Position, error) {
	return d.LineColumn(d.Cursor())
}

// Line returns the text of a 1-based line without its newline, or "" when the
// line does not exist.
func (d *Document) Line(line int) (string, error) {
	if s, ok := d.lineCache[line]; ok {
		return s, nil
	}
	count, err := d.LineCount()
	if err != nil {
		return "", err
	}
	if line < 1 || line > count {
		return "", nil
	}
	start, err := d.LinePosition(line, 1)
	if err != nil {
		return "", err
	}
	length, err := d.LineLength(line)
	if err != nil {
		return "", err
	}
	runes, err := d.Slice(start, start+length)
	if err != nil {
		return "", err
	}
	s := string(runes)
	d.lineCache[line] = s
	return s, nil
}

// DisplayColumn returns the 0-based terminal cell column of the cursor,
// measuring grapheme clusters and expanding tabs to tabWidth stops.
func (d *Document) DisplayColumn(tabWidth int) (int, error) {
	if tabWidth <= 0 {
		tabWidth = 1
	}
	pos, err := d.CursorLineColumn()
	if err != nil {
		return 0, err
	}
	prefix, err := d.Slice(d.Cursor()-(pos.Col-1), d.Cursor())
	if err != nil {
		return 0, err
	}
	col := 0
	g := uniseg.NewGraphemes(string(prefix))
	for g.Next() {
		if g.Str() == "\t" {
			col += tabWidth - col%tabWidth
			continue
		}
		col += g.Width()
	}
	return col, nil
}

// PerformanceInfo summarizes the document for a debug status line.
func (d *Document) PerformanceInfo() string {
	lines := "?"
	if n, err := d.LineCount(); err == nil {
		lines = humanize.Comma(int64(n))
	}
	indexState := "Stale"
	if d.lines.Valid() {
		indexState = "Active"
	}
	info := fmt.Sprintf("File: %s, Buffer: %s, Chars: %s, Lines: %s, LineIndex: %s",
		humanize.IBytes(uint64(max(d.originalSize, 0))), buffer.Kind(d.buf),
		humanize.Comma(int64(d.Len())), lines, indexState)
	if pb, ok := d.buf.(*buffer.PagedBuffer); ok {
		info += fmt.Sprintf(", Pages: %d/%d resident (%s)", pb.ResidentPages(), pb.PageCount(), pb.Backend())
	}
	return info
}

// Close releases the buffer, including any swap files. Safe to call twice.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.lines.Invalidate()
	d.lineCache = nil
	if err := d.buf.Close(); err != nil {
		logger.WarnTagf("document", "Document: close %q: %v", d.path, err)
		return err
	}
	return nil
}
