// Package editor implements modal editing operations on a document with
// undo support.
package editor

import (
	"strings"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/clipboard"
	"github.com/bethropolis/tangent/internal/config"
	"github.com/bethropolis/tangent/internal/document"
	"github.com/bethropolis/tangent/internal/history"
	"github.com/bethropolis/tangent/internal/logger"
)

// Session edits one document. Edits made through the Type and Backspace
// methods accumulate into an insert session that EndInsert records as a single
// undo step; the other operations are undone one at a time.
type Session struct {
	doc      *document.Document
	log      *history.Log
	clip     *clipboard.Clipboard
	insert   *history.Compound
	tabWidth int
}

// NewSession wires a document to an undo log and clipboard. Nil log or
// clipboard get defaults.
func NewSession(doc *document.Document, log *history.Log, clip *clipboard.Clipboard) *Session {
	if log == nil {
		log = history.NewLog(config.DefaultHistoryLimit)
	}
	if clip == nil {
		clip = clipboard.New(false)
	}
	return &Session{doc: doc, log: log, clip: clip, tabWidth: config.DefaultTabWidth}
}

// NewSessionFromConfig builds a session using the [editor] settings.
func NewSessionFromConfig(doc *document.Document, cfg *config.Config) *Session {
	s := NewSession(doc, history.NewLog(cfg.Editor.HistoryLimit), clipboard.New(cfg.Editor.SystemClipboard))
	s.tabWidth = cfg.Editor.TabWidth
	return s
}

func (s *Session) Document() *document.Document    { return s.doc }
func (s *Session) History() *history.Log           { return s.log }
func (s *Session) Clipboard() *clipboard.Clipboard { return s.clip }

// Inserting reports whether an insert session is open.
func (s *Session) Inserting() bool { return s.insert != nil }

// record applies a immediately so the change is visible, and adds it to the
// open insert session.
func (s *Session) record(a history.Action) error {
	if err := a.Do(); err != nil {
		return err
	}
	if s.insert == nil {
		s.insert = history.NewCompound("insert")
	}
	s.insert.Add(a)
	return nil
}

// TypeRune inserts r at the cursor as part of the insert session.
func (s *Session) TypeRune(r rune) error {
	return s.TypeString(string(r))
}

// TypeString inserts text at the cursor as part of the insert session.
func (s *Session) TypeString(text string) error {
	if text == "" {
		return nil
	}
	return s.record(history.NewInsertAction(s.doc, s.doc.Cursor(), text))
}

// TypeTab inserts spaces up to the configured tab width.
func (s *Session) TypeTab() error {
	return s.TypeString(strings.Repeat(" ", s.tabWidth))
}

// Backspace removes the rune before the cursor.
func (s *Session) Backspace() error {
	pos := s.doc.Cursor()
	if pos == 0 {
		return nil
	}
	return s.record(history.NewDeleteAction(s.doc, pos-1, 1, buffer.Forward))
}

// DeleteBackward removes the rune before the cursor with a backward delete.
func (s *Session) DeleteBackward() error {
	if s.doc.Cursor() == 0 {
		return nil
	}
	return s.record(history.NewDeleteAction(s.doc, s.doc.Cursor(), 1, buffer.Backward))
}

// EndInsert closes the insert session and records it as one undo step
// without applying it again. The cursor steps back onto the last typed rune
// unless it sits at the start of a line.
func (s *Session) EndInsert() {
	if s.insert == nil {
		return
	}
	if s.insert.Len() > 0 {
		s.log.Push(s.insert)
		logger.DebugTagf("editor", "Session: recorded %v", s.insert)
	}
	s.insert = nil

	pos := s.doc.Cursor()
	if pos > 0 {
		if r, err := s.doc.CharAt(pos - 1); err == nil && r != '\n' {
			s.doc.MoveCursor(pos - 1)
		}
	}
}

// DeleteChar removes the rune under the cursor.
func (s *Session) DeleteChar() error {
	s.EndInsert()
	if s.doc.Cursor() >= s.doc.Len() {
		return nil
	}
	return s.log.Perform(history.NewDeleteAction(s.doc, s.doc.Cursor(), 1, buffer.Forward))
}

// DeleteLine removes the cursor's line together with its newline.
func (s *Session) DeleteLine() error {
	s.EndInsert()
	pos, err := s.doc.CursorLineColumn()
	if err != nil {
		return err
	}
	start, err := s.doc.LinePosition(pos.Line, 1)
	if err != nil {
		return err
	}
	length, err := s.doc.LineLength(pos.Line)
	if err != nil {
		return err
	}
	if start+length < s.doc.Len() {
		length++
	}
	if length == 0 {
		return nil
	}
	return s.log.Perform(history.NewDeleteAction(s.doc, start, length, buffer.Forward))
}

// YankLine copies the cursor's line, without its newline, to the clipboard.
func (s *Session) YankLine() error {
	pos, err := s.doc.CursorLineColumn()
	if err != nil {
		return err
	}
	line, err := s.doc.Line(pos.Line)
	if err != nil {
		return err
	}
	s.clip.Set(line)
	return nil
}

// Paste inserts the clipboard content at the cursor as one undo step.
func (s *Session) Paste() error {
	s.EndInsert()
	text, ok := s.clip.Get()
	if !ok || text == "" {
		return nil
	}
	return s.log.Perform(history.NewInsertAction(s.doc, s.doc.Cursor(), text))
}

// Undo closes any insert session and reverts the last step.
func (s *Session) Undo() (bool, error) {
	s.EndInsert()
	return s.log.Undo()
}

// Redo closes any insert session and reapplies the last undone step.
func (s *Session) Redo() (bool, error) {
	s.EndInsert()
	return s.log.Redo()
}
