// internal/buffer/buffer.go
package buffer

import (
	"errors"
	"strings"
)

// Direction selects which side of the cursor a delete consumes.
type Direction int

const (
	// Forward consumes characters at and after the cursor (the Delete key).
	Forward Direction = iota
	// Backward consumes characters before the cursor (backspace).
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Errors returned by buffer operations.
var (
	// ErrIndexOutOfBounds indicates a read outside [0, Len()).
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrCorruptPage indicates a spilled page could not be restored intact.
	ErrCorruptPage = errors.New("corrupt swap page")

	// ErrPageNotFound is returned by a PageStore that holds no data for an id.
	ErrPageNotFound = errors.New("swap page not found")

	// ErrClosed indicates an operation on a buffer that was already closed.
	ErrClosed = errors.New("buffer is closed")
)

// TextBuffer is the capability contract shared by every buffer implementation.
// Offsets and lengths count runes. Position is always within [0, Len()].
type TextBuffer interface {
	Len() int
	Position() int
	// CharAt returns the rune at index i. Reads outside [0, Len()) fail with
	// ErrIndexOutOfBounds and are never clamped.
	CharAt(i int) (rune, error)
	InsertRune(r rune) error
	Insert(s string) error
	Delete(count int, dir Direction) error
	// MoveTo clamps p to [0, Len()].
	MoveTo(p int)
	// Scan calls fn for every rune from offset from onwards, in order, until fn
	// returns false.
	Scan(from int, fn func(r rune) bool) error
	// Close releases any resources held by the buffer. Safe to call twice.
	Close() error
}

// Text returns the whole content of b as a string.
func Text(b TextBuffer) (string, error) {
	var sb strings.Builder
	sb.Grow(b.Len())
	err := b.Scan(0, func(r rune) bool {
		sb.WriteRune(r)
		return true
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Slice returns the runes in [start, end) of b, clamped to the buffer.
func Slice(b TextBuffer, start, end int) ([]rune, error) {
	if start < 0 {
		start = 0
	}
	if end > b.Len() {
		end = b.Len()
	}
	if start >= end {
		return nil, nil
	}
	out := make([]rune, 0, end-start)
	err := b.Scan(start, func(r rune) bool {
		out = append(out, r)
		return len(out) < end-start
	})
	return out, err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
