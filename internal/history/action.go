// Package history provides undo/redo through reversible actions.
package history

import (
	"fmt"
	"unicode/utf8"

	"github.com/bethropolis/tangent/internal/buffer"
)

// Target is the editable surface actions apply to. *document.Document
// satisfies it.
type Target interface {
	Len() int
	Cursor() int
	MoveCursor(position int)
	Insert(text string) error
	Delete(count int, dir buffer.Direction) error
	Slice(start, end int) ([]rune, error)
}

// Action is a reversible edit. Undo must restore the content and cursor that
// existed before Do.
type Action interface {
	Do() error
	Undo() error
}

// InsertAction inserts text at a fixed position.
type InsertAction struct {
	target       Target
	position     int
	text         string
	length       int
	cursorBefore int
}

// NewInsertAction records an insertion of text at position. Nothing changes
// until Do is called.
func NewInsertAction(t Target, position int, text string) *InsertAction {
	return &InsertAction{
		target:       t,
		position:     position,
		text:         text,
		length:       utf8.RuneCountInString(text),
		cursorBefore: t.Cursor(),
	}
}

func (a *InsertAction) Do() error {
	if a.position > a.target.Len() {
		return outOfSync("insert", a.position, a.target.Len())
	}
	a.cursorBefore = a.target.Cursor()
	a.target.MoveCursor(a.position)
	return a.target.Insert(a.text)
}

func (a *InsertAction) Undo() error {
	if a.position+a.length > a.target.Len() {
		return outOfSync("undo insert", a.position+a.length, a.target.Len())
	}
	a.target.MoveCursor(a.position)
	if err := a.target.Delete(a.length, buffer.Forward); err != nil {
		return err
	}
	a.target.MoveCursor(a.cursorBefore)
	return nil
}

// Text returns the inserted text.
func (a *InsertAction) Text() string { return a.text }

// DeleteAction removes up to count runes on one side of a position. The
// removed text is captured on every Do so Undo can put it back.
type DeleteAction struct {
	target       Target
	position     int
	count        int
	dir          buffer.Direction
	removed      []rune
	start        int
	cursorBefore int
}

// NewDeleteAction records a deletion of count runes from position in dir.
func NewDeleteAction(t Target, position, count int, dir buffer.Direction) *DeleteAction {
	return &DeleteAction{
		target:       t,
		position:     position,
		count:        count,
		dir:          dir,
		cursorBefore: t.Cursor(),
	}
}

func (a *DeleteAction) Do() error {
	n := a.target.Len()
	if a.position > n {
		return outOfSync("delete", a.position, n)
	}
	start, end := a.position, min(a.position+a.count, n)
	if a.dir == buffer.Backward {
		start, end = max(a.position-a.count, 0), a.position
	}
	removed, err := a.target.Slice(start, end)
	if err != nil {
		return err
	}

	a.cursorBefore = a.target.Cursor()
	a.target.MoveCursor(a.position)
	if err := a.target.Delete(a.count, a.dir); err != nil {
		return err
	}
	// Backward captures are already in document order; start accounts for
	// fewer runes being available than requested.
	a.removed = removed
	a.start = start
	return nil
}

func (a *DeleteAction) Undo() error {
	if a.start > a.target.Len() {
		return outOfSync("undo delete", a.start, a.target.Len())
	}
	a.target.MoveCursor(a.start)
	if err := a.target.Insert(string(a.removed)); err != nil {
		return err
	}
	a.target.MoveCursor(a.cursorBefore)
	return nil
}

// Removed returns the text taken out by the last Do.
func (a *DeleteAction) Removed() string { return string(a.removed) }

// Compound groups actions that undo and redo as one step.
type Compound struct {
	name    string
	actions []Action
}

// NewCompound creates an empty group. The name only appears in logs.
func NewCompound(name string) *Compound {
	return &Compound{name: name}
}

// Add appends a sub-action without applying it.
func (c *Compound) Add(a Action) { c.actions = append(c.actions, a) }

// Len returns the number of sub-actions.
func (c *Compound) Len() int { return len(c.actions) }

// Do applies the sub-actions in order, stopping at the first failure.
func (c *Compound) Do() error {
	for i, a := range c.actions {
		if err := a.Do(); err != nil {
			return fmt.Errorf("%s: step %d: %w", c.name, i, err)
		}
	}
	return nil
}

// Undo reverts the sub-actions in reverse order.
func (c *Compound) Undo() error {
	for i := len(c.actions) - 1; i >= 0; i-- {
		if err := c.actions[i].Undo(); err != nil {
			return fmt.Errorf("%s: undo step %d: %w", c.name, i, err)
		}
	}
	return nil
}

func (c *Compound) String() string {
	return fmt.Sprintf("%s (%d actions)", c.name, len(c.actions))
}

func outOfSync(op string, offset, length int) error {
	return fmt.Errorf("%s at %d with length %d: %w", op, offset, length, buffer.ErrIndexOutOfBounds)
}
