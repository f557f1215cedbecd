package history

import (
	"errors"
	"fmt"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/logger"
)

const DefaultLimit = 1000

// Log holds the undo and redo stacks.
type Log struct {
	undo   []Action
	redo   []Action
	limit  int
	events *event.Manager
}

// NewLog creates a log keeping at most limit undo steps.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// SetEventManager sets where TypeHistoryChanged is dispatched.
func (l *Log) SetEventManager(m *event.Manager) { l.events = m }

// Perform applies a and records it. Nothing is recorded if Do fails.
func (l *Log) Perform(a Action) error {
	if err := a.Do(); err != nil {
		return err
	}
	l.Push(a)
	return nil
}

// Push records an action that has already been applied.
func (l *Log) Push(a Action) {
	l.undo = append(l.undo, a)
	if over := len(l.undo) - l.limit; over > 0 {
		l.undo = append(l.undo[:0], l.undo[over:]...)
	}
	clear(l.redo)
	l.redo = l.redo[:0]
	logger.DebugTagf("history", "History: pushed %T, undo=%d", a, len(l.undo))
}

// Undo reverts the most recent action. It reports false when there was
// nothing to undo. A failed undo leaves the action on the undo stack.
func (l *Log) Undo() (bool, error) {
	if len(l.undo) == 0 {
		return false, nil
	}
	a := l.undo[len(l.undo)-1]
	if err := l.replay("undo", a.Undo); err != nil {
		return false, err
	}
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, a)
	logger.DebugTagf("history", "History: undo %T, undo=%d redo=%d", a, len(l.undo), len(l.redo))
	l.events.Dispatch(event.TypeHistoryChanged, event.HistoryData{Undo: true})
	return true, nil
}

// Redo reapplies the most recently undone action.
func (l *Log) Redo() (bool, error) {
	if len(l.redo) == 0 {
		return false, nil
	}
	a := l.redo[len(l.redo)-1]
	if err := l.replay("redo", a.Do); err != nil {
		return false, err
	}
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, a)
	logger.DebugTagf("history", "History: redo %T, undo=%d redo=%d", a, len(l.undo), len(l.redo))
	l.events.Dispatch(event.TypeHistoryChanged, event.HistoryData{Undo: false})
	return true, nil
}

// replay runs fn. A bounds error means the log no longer matches the
// document, which cannot be recovered from.
func (l *Log) replay(op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if errors.Is(err, buffer.ErrIndexOutOfBounds) {
		panic(fmt.Sprintf("history: %s out of sync with document: %v", op, err))
	}
	logger.Errorf("History: %s failed: %v", op, err)
	return fmt.Errorf("%s failed: %w", op, err)
}

func (l *Log) CanUndo() bool  { return len(l.undo) > 0 }
func (l *Log) CanRedo() bool  { return len(l.redo) > 0 }
func (l *Log) UndoCount() int { return len(l.undo) }
func (l *Log) RedoCount() int { return len(l.redo) }
func (l *Log) Limit() int     { return l.limit }

// Clear drops all history, e.g. after loading a new file.
func (l *Log) Clear() {
	clear(l.undo)
	clear(l.redo)
	l.undo = l.undo[:0]
	l.redo = l.redo[:0]
}
