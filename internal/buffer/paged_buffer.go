package buffer

import (
	"container/list"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/bethropolis/tangent/internal/logger"
)

// pageInfo is the always-resident record of one logical page.
type pageInfo struct {
	id     uint64
	length int
}

// PagedBuffer splits its content into pages of at most pageSize runes. Only
// maxResident pages live in memory; the least recently used page is spilled to
// the session's PageStore when the bound is exceeded.
//
// Page indices are contiguous from 0 and shift when pages are split or merged.
// Spilled data is keyed by a page's stable id, so a shift only re-keys the
// in-memory maps and never renames anything on disk.
type PagedBuffer struct {
	pageSize    int
	maxResident int

	infos    []pageInfo
	pages    map[int]*Page // resident pages by index
	lru      *list.List    // *Page, most recently used at the front
	lruElems map[uint64]*list.Element

	store      PageStore
	backend    string
	sessionDir string
	nextID     uint64

	totalLength int
	position    int
	closed      bool
}

// NewPagedBuffer creates an empty paged buffer and its swap session
// directory.
func NewPagedBuffer(opts Options) (*PagedBuffer, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	switch {
	case opts.MaxResidentPages <= 0:
		opts.MaxResidentPages = DefaultMaxResidentPages
	case opts.MaxResidentPages < MinResidentPages:
		// A split needs the page being split and its new sibling resident.
		opts.MaxResidentPages = MinResidentPages
	}
	parent := opts.SwapDir
	if parent == "" {
		parent = os.TempDir()
	}
	sessionDir := filepath.Join(parent, "tangent_swap_"+uuid.NewString()[:8])
	if err := os.MkdirAll(sessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create swap session directory: %w", err)
	}
	store, err := NewPageStore(opts.SwapBackend, sessionDir)
	if err != nil {
		os.RemoveAll(sessionDir)
		return nil, err
	}
	backend := opts.SwapBackend
	if backend == "" {
		backend = BackendFiles
	}

	b := &PagedBuffer{
		pageSize:    opts.PageSize,
		maxResident: opts.MaxResidentPages,
		pages:       make(map[int]*Page),
		lru:         list.New(),
		lruElems:    make(map[uint64]*list.Element),
		store:       store,
		backend:     backend,
		sessionDir:  sessionDir,
	}
	b.infos = []pageInfo{{id: b.allocID()}}
	logger.DebugTagf("swap", "PagedBuffer: session %s (%s, page %d, resident %d)",
		sessionDir, backend, b.pageSize, b.maxResident)
	return b, nil
}

func (b *PagedBuffer) allocID() uint64 {
	b.nextID++
	return b.nextID
}

func (b *PagedBuffer) Len() int      { return b.totalLength }
func (b *PagedBuffer) Position() int { return b.position }

// PageCount returns the number of logical pages, resident or not.
func (b *PagedBuffer) PageCount() int { return len(b.infos) }

// ResidentPages returns how many pages are currently in memory.
func (b *PagedBuffer) ResidentPages() int { return len(b.pages) }

// SessionDir returns the directory holding this buffer's spilled pages.
func (b *PagedBuffer) SessionDir() string { return b.sessionDir }

// Backend returns the name of the swap backend in use.
func (b *PagedBuffer) Backend() string { return b.backend }

// locate maps a global offset to (page index, offset in page). For reads the
// page must contain the offset; for inserts an offset on a page boundary maps
// to the end of the earlier page unless that page is full.
func (b *PagedBuffer) locate(offset int, forInsert bool) (int, int) {
	start := 0
	for i, info := range b.infos {
		end := start + info.length
		if offset < end || (forInsert && offset == end) {
			if forInsert && offset == end && info.length >= b.pageSize && i+1 < len(b.infos) {
				return i + 1, 0
			}
			return i, offset - start
		}
		start = end
	}
	last := len(b.infos) - 1
	return last, b.infos[last].length
}

// touch marks p as most recently used.
func (b *PagedBuffer) touch(p *Page) {
	if el, ok := b.lruElems[p.ID]; ok {
		b.lru.MoveToFront(el)
		return
	}
	b.lruElems[p.ID] = b.lru.PushFront(p)
}

// getPage returns the page at index, loading it from the store when it is not
// resident, and then enforces the residency bound.
func (b *PagedBuffer) getPage(index int) (*Page, error) {
	if p, ok := b.pages[index]; ok {
		b.touch(p)
		return p, nil
	}
	if index < 0 || index >= len(b.infos) {
		return nil, fmt.Errorf("page %d of %d: %w", index, len(b.infos), ErrIndexOutOfBounds)
	}

	info := b.infos[index]
	p := newPage(index, info.id, b.pageSize)
	data, err := b.store.Read(info.id)
	switch {
	case err == nil:
		if len(data) != info.length {
			return nil, fmt.Errorf("swap page %d holds %d runes, expected %d: %w",
				index, len(data), info.length, ErrCorruptPage)
		}
		p.Load(data)
		logger.DebugTagf("swap", "PagedBuffer: loaded page %d (%d runes)", index, len(data))
	case errors.Is(err, ErrPageNotFound):
		if info.length != 0 {
			return nil, fmt.Errorf("swap page %d missing (%d runes lost): %w", index, info.length, ErrCorruptPage)
		}
	default:
		return nil, err
	}

	b.pages[index] = p
	b.touch(p)
	if err := b.evictIfNeeded(); err != nil {
		return nil, err
	}
	return p, nil
}

// evictIfNeeded spills least recently used pages until the resident set fits.
// A dirty page leaves memory only after its write succeeded.
func (b *PagedBuffer) evictIfNeeded() error {
	for b.lru.Len() > b.maxResident {
		el := b.lru.Back()
		p := el.Value.(*Page)
		if p.Dirty {
			if err := b.store.Write(p.ID, p.Runes()); err != nil {
				return fmt.Errorf("failed to evict page %d: %w", p.Index, err)
			}
			p.MarkClean()
		}
		b.lru.Remove(el)
		delete(b.lruElems, p.ID)
		delete(b.pages, p.Index)
		logger.DebugTagf("swap", "PagedBuffer: evicted page %d", p.Index)
	}
	return nil
}

// dropResident forgets p without persisting it.
func (b *PagedBuffer) dropResident(p *Page) {
	if el, ok := b.lruElems[p.ID]; ok {
		b.lru.Remove(el)
		delete(b.lruElems, p.ID)
	}
	delete(b.pages, p.Index)
}

// shiftResident moves every resident page with index >= from by delta.
func (b *PagedBuffer) shiftResident(from, delta int) {
	var moved []*Page
	for idx, p := range b.pages {
		if idx >= from {
			moved = append(moved, p)
			delete(b.pages, idx)
		}
	}
	for _, p := range moved {
		p.Index += delta
		b.pages[p.Index] = p
	}
}

// CharAt returns the rune at global index i.
func (b *PagedBuffer) CharAt(i int) (rune, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if i < 0 || i >= b.totalLength {
		return 0, fmt.Errorf("paged buffer read at %d (len %d): %w", i, b.totalLength, ErrIndexOutOfBounds)
	}
	idx, off := b.locate(i, false)
	p, err := b.getPage(idx)
	if err != nil {
		return 0, err
	}
	return p.CharAt(off)
}

// MoveTo only moves the logical cursor; no page is touched.
func (b *PagedBuffer) MoveTo(p int) {
	b.position = clamp(p, 0, b.totalLength)
}

func (b *PagedBuffer) InsertRune(r rune) error {
	return b.insert([]rune{r})
}

func (b *PagedBuffer) Insert(s string) error {
	if s == "" {
		return nil
	}
	return b.insert([]rune(s))
}

// insert fills the target page, splitting it whenever it is full, until all
// runes are placed.
func (b *PagedBuffer) insert(runes []rune) error {
	if b.closed {
		return ErrClosed
	}
	for len(runes) > 0 {
		idx, off := b.locate(b.position, true)
		p, err := b.getPage(idx)
		if err != nil {
			return err
		}
		if p.IsFull() {
			if err := b.split(idx, off); err != nil {
				return err
			}
			if p, err = b.getPage(idx); err != nil {
				return err
			}
			if p.IsFull() {
				// Split at the very end: the new page after it is empty.
				idx, off = idx+1, 0
				if p, err = b.getPage(idx); err != nil {
					return err
				}
			}
		}

		n := min(p.Free(), len(runes))
		if err := p.Insert(off, runes[:n]); err != nil {
			return err
		}
		b.infos[idx].length = p.Len()
		b.totalLength += n
		b.position += n
		runes = runes[n:]
	}
	return nil
}

// split moves the content of page idx after offset into a new page inserted
// right after it. Every later page index shifts up by one.
func (b *PagedBuffer) split(idx, offset int) error {
	p, err := b.getPage(idx)
	if err != nil {
		return err
	}
	tail := p.SplitAfter(offset)
	b.infos[idx].length = p.Len()

	info := pageInfo{id: b.allocID(), length: len(tail)}
	b.shiftResident(idx+1, 1)
	b.infos = slices.Insert(b.infos, idx+1, info)

	np := newPage(idx+1, info.id, b.pageSize)
	np.Append(tail)
	b.pages[idx+1] = np
	b.touch(np)
	logger.DebugTagf("swap", "PagedBuffer: split page %d at %d (%d runes moved)", idx, offset, len(tail))
	return b.evictIfNeeded()
}

// Delete removes up to count runes. Backward deletes consume the runes before
// the cursor and move it back by the same amount.
func (b *PagedBuffer) Delete(count int, dir Direction) error {
	if b.closed {
		return ErrClosed
	}
	if count <= 0 {
		return nil
	}
	if dir == Backward {
		count = min(count, b.position)
		b.position -= count
	} else {
		count = min(count, b.totalLength-b.position)
	}

	for count > 0 {
		idx, off := b.locate(b.position, false)
		p, err := b.getPage(idx)
		if err != nil {
			return err
		}
		n := p.DeleteRange(off, count)
		if n == 0 {
			return fmt.Errorf("delete at %d made no progress: %w", b.position, ErrIndexOutOfBounds)
		}
		b.infos[idx].length = p.Len()
		b.totalLength -= n
		count -= n

		if p.Len() < b.pageSize/4 {
			if err := b.tryMerge(idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// tryMerge folds page idx into its predecessor when both fit in one page.
// The first page never merges.
func (b *PagedBuffer) tryMerge(idx int) error {
	if idx == 0 || idx >= len(b.infos) {
		return nil
	}
	if b.infos[idx-1].length+b.infos[idx].length > b.pageSize {
		return nil
	}
	cur, err := b.getPage(idx)
	if err != nil {
		return err
	}
	prev, err := b.getPage(idx - 1)
	if err != nil {
		return err
	}
	prev.Append(cur.Runes())
	b.infos[idx-1].length = prev.Len()

	b.dropResident(cur)
	if err := b.store.Remove(cur.ID); err != nil {
		// The id is never reused, so a leftover copy is harmless.
		logger.WarnTagf("swap", "PagedBuffer: %v", err)
	}
	b.infos = slices.Delete(b.infos, idx, idx+1)
	b.shiftResident(idx+1, -1)
	logger.DebugTagf("swap", "PagedBuffer: merged page %d into %d", idx, idx-1)
	return nil
}

// Scan streams the content page by page.
func (b *PagedBuffer) Scan(from int, fn func(r rune) bool) error {
	if b.closed {
		return ErrClosed
	}
	from = max(from, 0)
	start := 0
	for i := 0; i < len(b.infos); i++ {
		length := b.infos[i].length
		end := start + length
		if end <= from || length == 0 {
			start = end
			continue
		}
		p, err := b.getPage(i)
		if err != nil {
			return err
		}
		for _, r := range p.Runes()[max(from-start, 0):] {
			if !fn(r) {
				return nil
			}
		}
		start = end
	}
	return nil
}

// Flush writes every dirty resident page to the store without evicting it.
func (b *PagedBuffer) Flush() error {
	if b.closed {
		return ErrClosed
	}
	var errs []error
	for _, p := range b.pages {
		if !p.Dirty {
			continue
		}
		if err := b.store.Write(p.ID, p.Runes()); err != nil {
			errs = append(errs, err)
			continue
		}
		p.MarkClean()
	}
	return errors.Join(errs...)
}

// Close flushes dirty pages and removes the session directory. Directory
// removal is attempted even if flushing fails. Calling Close again is a no-op.
func (b *PagedBuffer) Close() error {
	if b.closed {
		return nil
	}
	errs := []error{b.Flush()}
	b.closed = true
	errs = append(errs, b.store.Close())
	if err := os.RemoveAll(b.sessionDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove swap session: %w", err))
	}
	b.pages = nil
	b.lru.Init()
	b.lruElems = nil
	logger.DebugTagf("swap", "PagedBuffer: closed session %s", b.sessionDir)
	return errors.Join(errs...)
}

var _ TextBuffer = (*PagedBuffer)(nil)
