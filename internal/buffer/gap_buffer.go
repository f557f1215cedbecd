package buffer

import (
	"fmt"

	"github.com/bethropolis/tangent/internal/logger"
)

const (
	DefaultInitialCapacity = 1024
	DefaultMinGap          = 32
)

// GapBuffer keeps text in a single rune array with an empty region (the gap)
// parked at the cursor, so edits near the cursor never shift the whole array.
//
// Invariants: 0 <= gapStart <= gapEnd <= len(data), the runes in
// [gapStart, gapEnd) are garbage, and the cursor is always gapStart.
type GapBuffer struct {
	data     []rune
	gapStart int
	gapEnd   int
	minGap   int
}

// NewGapBuffer creates an empty gap buffer whose whole capacity is gap.
func NewGapBuffer(initialCapacity, minGap int) *GapBuffer {
	if initialCapacity <= 0 {
		initialCapacity = DefaultInitialCapacity
	}
	if minGap <= 0 {
		minGap = DefaultMinGap
	}
	return &GapBuffer{
		data:   make([]rune, initialCapacity),
		gapEnd: initialCapacity,
		minGap: minGap,
	}
}

// NewGapBufferFromString creates a gap buffer holding s with the cursor at 0.
func NewGapBufferFromString(s string) *GapBuffer {
	g := NewGapBuffer(len(s)+DefaultMinGap, DefaultMinGap)
	_ = g.Insert(s)
	g.MoveTo(0)
	return g
}

func (g *GapBuffer) gapLen() int { return g.gapEnd - g.gapStart }

// Len returns the number of runes stored.
func (g *GapBuffer) Len() int { return len(g.data) - g.gapLen() }

// Position returns the cursor, which is always the gap start.
func (g *GapBuffer) Position() int { return g.gapStart }

// Cap returns the size of the backing array.
func (g *GapBuffer) Cap() int { return len(g.data) }

// CharAt returns the rune at logical index i.
func (g *GapBuffer) CharAt(i int) (rune, error) {
	if i < 0 || i >= g.Len() {
		return 0, fmt.Errorf("gap buffer read at %d (len %d): %w", i, g.Len(), ErrIndexOutOfBounds)
	}
	if i < g.gapStart {
		return g.data[i], nil
	}
	return g.data[i+g.gapLen()], nil
}

// MoveTo relocates the gap so it starts at p. Cost is proportional to the
// distance moved.
func (g *GapBuffer) MoveTo(p int) {
	p = clamp(p, 0, g.Len())
	switch {
	case p < g.gapStart:
		n := g.gapStart - p
		copy(g.data[g.gapEnd-n:g.gapEnd], g.data[p:g.gapStart])
		g.gapStart = p
		g.gapEnd -= n
	case p > g.gapStart:
		n := p - g.gapStart
		copy(g.data[g.gapStart:g.gapStart+n], g.data[g.gapEnd:g.gapEnd+n])
		g.gapStart = p
		g.gapEnd += n
	}
}

// ensureGap grows the backing array when the gap cannot hold n more runes.
func (g *GapBuffer) ensureGap(n int) {
	if g.gapLen() >= n {
		return
	}
	g.grow(max(n, g.minGap))
}

// grow adds extra runes of gap at the current gap position.
func (g *GapBuffer) grow(extra int) {
	oldCap := len(g.data)
	next := make([]rune, oldCap+extra)
	copy(next, g.data[:g.gapStart])
	tail := oldCap - g.gapEnd
	newGapEnd := g.gapEnd + extra
	copy(next[newGapEnd:], g.data[g.gapEnd:])
	g.data = next
	g.gapEnd = newGapEnd
	logger.DebugTagf("buffer", "GapBuffer: grew %d -> %d (tail %d)", oldCap, len(g.data), tail)
}

// InsertRune writes r at the cursor and advances it.
func (g *GapBuffer) InsertRune(r rune) error {
	g.ensureGap(1)
	g.data[g.gapStart] = r
	g.gapStart++
	return nil
}

// Insert writes s at the cursor and advances it by the rune count of s.
func (g *GapBuffer) Insert(s string) error {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	g.ensureGap(len(runes))
	copy(g.data[g.gapStart:], runes)
	g.gapStart += len(runes)
	return nil
}

// Delete removes up to count runes on the given side of the cursor.
func (g *GapBuffer) Delete(count int, dir Direction) error {
	if count <= 0 {
		return nil
	}
	if dir == Backward {
		g.gapStart -= min(count, g.gapStart)
		return nil
	}
	g.gapEnd += min(count, g.Len()-g.gapStart)
	return nil
}

// Scan walks the content from offset from, skipping over the gap.
func (g *GapBuffer) Scan(from int, fn func(r rune) bool) error {
	if from < 0 {
		from = 0
	}
	for i := from; i < g.gapStart; i++ {
		if !fn(g.data[i]) {
			return nil
		}
	}
	start := g.gapEnd
	if from > g.gapStart {
		start += from - g.gapStart
	}
	for i := start; i < len(g.data); i++ {
		if !fn(g.data[i]) {
			return nil
		}
	}
	return nil
}

// String returns the logical content.
func (g *GapBuffer) String() string {
	out := make([]rune, 0, g.Len())
	out = append(out, g.data[:g.gapStart]...)
	out = append(out, g.data[g.gapEnd:]...)
	return string(out)
}

// Close drops the backing array.
func (g *GapBuffer) Close() error {
	g.data = nil
	g.gapStart, g.gapEnd = 0, 0
	return nil
}

var _ TextBuffer = (*GapBuffer)(nil)
