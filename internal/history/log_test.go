package history

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/document"
	"github.com/bethropolis/tangent/internal/event"
)

func newTarget(t *testing.T, content string) *document.Document {
	t.Helper()
	opts := buffer.DefaultOptions()
	opts.SwapDir = t.TempDir()
	d, err := document.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Insert(content); err != nil {
		t.Fatal(err)
	}
	return d
}

func contentOf(t *testing.T, d *document.Document) string {
	t.Helper()
	s, err := d.Text()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestInsertActionUndoRestoresCursor(t *testing.T) {
	d := newTarget(t, "hello world")
	d.MoveCursor(2)
	a := NewInsertAction(d, 5, ",")
	if err := a.Do(); err != nil {
		t.Fatal(err)
	}
	if got := contentOf(t, d); got != "hello, world" {
		t.Fatalf("after Do: %q", got)
	}
	if d.Cursor() != 6 {
		t.Fatalf("cursor after Do = %d, want 6", d.Cursor())
	}
	if err := a.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := contentOf(t, d); got != "hello world" {
		t.Fatalf("after Undo: %q", got)
	}
	if d.Cursor() != 2 {
		t.Fatalf("cursor after Undo = %d, want 2", d.Cursor())
	}
}

func TestDeleteActionDirections(t *testing.T) {
	tests := []struct {
		name      string
		position  int
		count     int
		dir       buffer.Direction
		want      string
		wantGone  string
		cursorNow int
	}{
		{"forward", 2, 3, buffer.Forward, "ab", "cde", 2},
		{"backward", 4, 2, buffer.Backward, "abe", "cd", 2},
		{"forward clamped", 3, 10, buffer.Forward, "abc", "de", 3},
		{"backward clamped", 2, 10, buffer.Backward, "cde", "ab", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTarget(t, "abcde")
			d.MoveCursor(1)
			a := NewDeleteAction(d, tt.position, tt.count, tt.dir)
			if err := a.Do(); err != nil {
				t.Fatal(err)
			}
			if got := contentOf(t, d); got != tt.want {
				t.Fatalf("after Do = %q, want %q", got, tt.want)
			}
			if a.Removed() != tt.wantGone {
				t.Fatalf("Removed() = %q, want %q", a.Removed(), tt.wantGone)
			}
			if d.Cursor() != tt.cursorNow {
				t.Fatalf("cursor after Do = %d, want %d", d.Cursor(), tt.cursorNow)
			}
			if err := a.Undo(); err != nil {
				t.Fatal(err)
			}
			if got := contentOf(t, d); got != "abcde" {
				t.Fatalf("after Undo = %q", got)
			}
			if d.Cursor() != 1 {
				t.Fatalf("cursor after Undo = %d, want 1", d.Cursor())
			}
		})
	}
}

// recorder is an action that logs its calls.
type recorder struct {
	name  string
	calls *[]string
	err   error
}

func (r recorder) Do() error {
	*r.calls = append(*r.calls, "do "+r.name)
	return r.err
}

func (r recorder) Undo() error {
	*r.calls = append(*r.calls, "undo "+r.name)
	return r.err
}

func TestCompoundOrder(t *testing.T) {
	var calls []string
	c := NewCompound("test")
	for _, n := range []string{"a", "b", "c"} {
		c.Add(recorder{name: n, calls: &calls})
	}
	if err := c.Do(); err != nil {
		t.Fatal(err)
	}
	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	want := "do a,do b,do c,undo c,undo b,undo a"
	if got := strings.Join(calls, ","); got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}
}

func TestLogUndoRedo(t *testing.T) {
	d := newTarget(t, "")
	log := NewLog(10)
	events := event.NewManager()
	log.SetEventManager(events)
	var undos, redos int
	events.Subscribe(event.TypeHistoryChanged, func(e event.Event) bool {
		if e.Data.(event.HistoryData).Undo {
			undos++
		} else {
			redos++
		}
		return false
	})

	if ok, err := log.Undo(); ok || err != nil {
		t.Fatalf("Undo on empty log = %v, %v", ok, err)
	}

	for _, s := range []string{"one", " two", " three"} {
		if err := log.Perform(NewInsertAction(d, d.Len(), s)); err != nil {
			t.Fatal(err)
		}
	}
	steps := []struct {
		op   func() (bool, error)
		want string
	}{
		{log.Undo, "one two"},
		{log.Undo, "one"},
		{log.Redo, "one two"},
		{log.Undo, "one"},
		{log.Undo, ""},
		{log.Redo, "one"},
	}
	for i, s := range steps {
		ok, err := s.op()
		if err != nil || !ok {
			t.Fatalf("step %d: %v, %v", i, ok, err)
		}
		if got := contentOf(t, d); got != s.want {
			t.Fatalf("step %d: content %q, want %q", i, got, s.want)
		}
	}
	if undos != 4 || redos != 2 {
		t.Fatalf("history events: %d undo, %d redo", undos, redos)
	}

	// A new action clears redo.
	if err := log.Perform(NewInsertAction(d, d.Len(), "!")); err != nil {
		t.Fatal(err)
	}
	if log.CanRedo() {
		t.Fatal("redo stack survived a new action")
	}
}

func TestLogPushDoesNotReapply(t *testing.T) {
	d := newTarget(t, "")
	log := NewLog(0)
	a := NewInsertAction(d, 0, "typed")
	if err := a.Do(); err != nil {
		t.Fatal(err)
	}
	log.Push(a)
	if got := contentOf(t, d); got != "typed" {
		t.Fatalf("Push reapplied the action: %q", got)
	}
	if _, err := log.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := contentOf(t, d); got != "" {
		t.Fatalf("after Undo: %q", got)
	}
}

func TestLogLimit(t *testing.T) {
	var calls []string
	log := NewLog(3)
	for i := 0; i < 5; i++ {
		log.Push(recorder{name: string(rune('a' + i)), calls: &calls})
	}
	if log.UndoCount() != 3 {
		t.Fatalf("UndoCount = %d, want 3", log.UndoCount())
	}
	for log.CanUndo() {
		if _, err := log.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	if got := strings.Join(calls, ","); got != "undo e,undo d,undo c" {
		t.Fatalf("undone %s", got)
	}
}

func TestLogFailedUndoKeepsAction(t *testing.T) {
	var calls []string
	log := NewLog(10)
	ioErr := errors.New("disk full")
	log.Push(recorder{name: "a", calls: &calls, err: ioErr})

	if _, err := log.Undo(); !errors.Is(err, ioErr) {
		t.Fatalf("Undo error = %v, want %v", err, ioErr)
	}
	if log.UndoCount() != 1 || log.RedoCount() != 0 {
		t.Fatalf("stacks changed after failed undo: undo=%d redo=%d", log.UndoCount(), log.RedoCount())
	}
}

func TestLogPanicsWhenOutOfSync(t *testing.T) {
	d := newTarget(t, "abc")
	log := NewLog(10)
	if err := log.Perform(NewInsertAction(d, 3, "def")); err != nil {
		t.Fatal(err)
	}
	// Edit behind the log's back so the recorded insert no longer fits.
	d.MoveCursor(0)
	if err := d.Delete(6, buffer.Forward); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Undo of an out-of-sync action did not panic")
		}
	}()
	log.Undo()
}

func TestUndoRedoInverseLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := newTarget(t, "The quick brown fox\njumps over\nthe lazy dog.")
	log := NewLog(1000)

	var snapshots []string
	for i := 0; i < 200; i++ {
		snapshots = append(snapshots, contentOf(t, d))
		pos := rng.Intn(d.Len() + 1)
		var a Action
		switch rng.Intn(3) {
		case 0:
			a = NewInsertAction(d, pos, strings.Repeat("x", 1+rng.Intn(4)))
		case 1:
			a = NewDeleteAction(d, pos, 1+rng.Intn(5), buffer.Forward)
		default:
			c := NewCompound("mixed")
			c.Add(NewInsertAction(d, pos, "yz"))
			c.Add(NewDeleteAction(d, pos+2, 1+rng.Intn(3), buffer.Backward))
			a = c
		}
		if err := log.Perform(a); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	final := contentOf(t, d)

	for i := len(snapshots) - 1; i >= 0; i-- {
		if _, err := log.Undo(); err != nil {
			t.Fatal(err)
		}
		if got := contentOf(t, d); got != snapshots[i] {
			t.Fatalf("undo to step %d: got %q, want %q", i, got, snapshots[i])
		}
	}
	for log.CanRedo() {
		if _, err := log.Redo(); err != nil {
			t.Fatal(err)
		}
	}
	if got := contentOf(t, d); got != final {
		t.Fatalf("redo all: got %q, want %q", got, final)
	}
}
