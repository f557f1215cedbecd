package buffer

import "fmt"

// Page is a bounded run of text, the unit of residency and spill in a
// PagedBuffer. A page never points back at its buffer; it only knows its
// position in the page sequence and the id its spilled copy is stored under.
type Page struct {
	Index   int
	ID      uint64
	content []rune
	maxSize int
	Dirty   bool
}

func newPage(index int, id uint64, maxSize int) *Page {
	return &Page{
		Index:   index,
		ID:      id,
		content: make([]rune, 0, min(maxSize, 1024)),
		maxSize: maxSize,
	}
}

// Len returns the number of runes in the page.
func (p *Page) Len() int { return len(p.content) }

// IsFull reports whether the page has reached its capacity.
func (p *Page) IsFull() bool { return len(p.content) >= p.maxSize }

// Free returns how many runes still fit.
func (p *Page) Free() int { return max(p.maxSize-len(p.content), 0) }

// CharAt returns the rune at offset within the page.
func (p *Page) CharAt(offset int) (rune, error) {
	if offset < 0 || offset >= len(p.content) {
		return 0, fmt.Errorf("page %d read at %d (len %d): %w", p.Index, offset, len(p.content), ErrIndexOutOfBounds)
	}
	return p.content[offset], nil
}

// Insert places runes at offset. The caller guarantees they fit.
func (p *Page) Insert(offset int, runes []rune) error {
	if offset < 0 || offset > len(p.content) {
		return fmt.Errorf("page %d insert at %d (len %d): %w", p.Index, offset, len(p.content), ErrIndexOutOfBounds)
	}
	if len(runes) == 0 {
		return nil
	}
	p.content = append(p.content, runes...)
	copy(p.content[offset+len(runes):], p.content[offset:len(p.content)-len(runes)])
	copy(p.content[offset:], runes)
	p.Dirty = true
	return nil
}

// DeleteRange removes n runes starting at offset, clamped to the page.
func (p *Page) DeleteRange(offset, n int) int {
	if offset < 0 || offset >= len(p.content) || n <= 0 {
		return 0
	}
	n = min(n, len(p.content)-offset)
	p.content = append(p.content[:offset], p.content[offset+n:]...)
	p.Dirty = true
	return n
}

// SplitAfter cuts the page at offset and returns the removed tail.
func (p *Page) SplitAfter(offset int) []rune {
	if offset >= len(p.content) {
		return nil
	}
	tail := make([]rune, len(p.content)-offset)
	copy(tail, p.content[offset:])
	p.content = p.content[:offset]
	p.Dirty = true
	return tail
}

// Append adds runes to the end of the page.
func (p *Page) Append(runes []rune) {
	if len(runes) == 0 {
		return
	}
	p.content = append(p.content, runes...)
	p.Dirty = true
}

// Load replaces the content with data read back from the store. The page is
// clean afterwards.
func (p *Page) Load(data []rune) {
	p.content = append(p.content[:0], data...)
	p.Dirty = false
}

// Runes returns the page content. The slice aliases the page.
func (p *Page) Runes() []rune { return p.content }

// MarkClean clears the dirty flag after a successful write.
func (p *Page) MarkClean() { p.Dirty = false }

func (p *Page) String() string { return string(p.content) }
