package document

import (
	"sort"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/types"
)

// LineIndex caches the offset at which every line starts. It goes stale on
// any structural edit and is rebuilt by one linear scan the next time a
// line-oriented query needs it.
type LineIndex struct {
	starts []int // strictly increasing, starts[0] == 0
	valid  bool
}

// NewLineIndex returns a valid index for empty content.
func NewLineIndex() *LineIndex {
	return &LineIndex{starts: []int{0}, valid: true}
}

// Invalidate marks the index stale.
func (li *LineIndex) Invalidate() {
	li.valid = false
	li.starts = nil
}

// Valid reports whether the index reflects the current content.
func (li *LineIndex) Valid() bool { return li.valid }

// Rebuild rescans b, recording the offset just after every newline.
func (li *LineIndex) Rebuild(b buffer.TextBuffer) error {
	starts := make([]int, 1, 64)
	offset := 0
	err := b.Scan(0, func(r rune) bool {
		offset++
		if r == '\n' {
			starts = append(starts, offset)
		}
		return true
	})
	if err != nil {
		return err
	}
	li.starts = starts
	li.valid = true
	return nil
}

func (li *LineIndex) ensure(b buffer.TextBuffer) error {
	if li.valid {
		return nil
	}
	return li.Rebuild(b)
}

// LineCount returns the number of lines; content with k newlines has k+1.
func (li *LineIndex) LineCount(b buffer.TextBuffer) (int, error) {
	if err := li.ensure(b); err != nil {
		return 0, err
	}
	return len(li.starts), nil
}

// lineLength returns the rune count of 0-based line k, excluding its newline.
// The index must be valid.
func (li *LineIndex) lineLength(b buffer.TextBuffer, k int) int {
	start := li.starts[k]
	end := b.Len()
	if k+1 < len(li.starts) {
		end = li.starts[k+1] - 1
	}
	return max(end-start, 0)
}

// LineLength returns the length of the 1-based line, or 0 when out of range.
func (li *LineIndex) LineLength(b buffer.TextBuffer, line int) (int, error) {
	if err := li.ensure(b); err != nil {
		return 0, err
	}
	if line < 1 || line > len(li.starts) {
		return 0, nil
	}
	return li.lineLength(b, line-1), nil
}

// LineToOffset converts a 1-based line and column to an absolute offset. The
// column is clamped to the line; a line outside the document maps to the end
// of the buffer.
func (li *LineIndex) LineToOffset(b buffer.TextBuffer, line, column int) (int, error) {
	if err := li.ensure(b); err != nil {
		return 0, err
	}
	k := line - 1
	if k < 0 || k >= len(li.starts) {
		return b.Len(), nil
	}
	col := min(max(column-1, 0), li.lineLength(b, k))
	return li.starts[k] + col, nil
}

// OffsetToLineColumn converts an offset to a 1-based position. With a valid
// index this is a binary search; otherwise it falls back to an O(n) scan from
// the start of the buffer and leaves the index stale. The slow path is meant
// for occasional queries such as cursor display, not for loops.
func (li *LineIndex) OffsetToLineColumn(b buffer.TextBuffer, offset int) (types.Position, error) {
	offset = min(max(offset, 0), b.Len())
	if li.valid {
		k := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
		return types.Position{Line: k + 1, Col: offset - li.starts[k] + 1}, nil
	}

	pos := types.Position{Line: 1, Col: 1}
	seen := 0
	if offset == 0 {
		return pos, nil
	}
	err := b.Scan(0, func(r rune) bool {
		if r == '\n' {
			pos.Line++
			pos.Col = 1
		} else {
			pos.Col++
		}
		seen++
		return seen < offset
	})
	return pos, err
}
