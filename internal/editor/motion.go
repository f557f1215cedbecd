package editor

// MoveLeft moves the cursor one rune left.
func (s *Session) MoveLeft() {
	if pos := s.doc.Cursor(); pos > 0 {
		s.doc.MoveCursor(pos - 1)
	}
}

// MoveRight moves the cursor one rune right.
func (s *Session) MoveRight() {
	if pos := s.doc.Cursor(); pos < s.doc.Len() {
		s.doc.MoveCursor(pos + 1)
	}
}

// MoveUp moves to the same column on the previous line, clamped to its length.
func (s *Session) MoveUp() error {
	return s.moveLines(-1)
}

// MoveDown moves to the same column on the next line, clamped to its length.
func (s *Session) MoveDown() error {
	return s.moveLines(1)
}

func (s *Session) moveLines(delta int) error {
	pos, err := s.doc.CursorLineColumn()
	if err != nil {
		return err
	}
	count, err := s.doc.LineCount()
	if err != nil {
		return err
	}
	target := pos.Line + delta
	if target < 1 || target > count {
		return nil
	}
	offset, err := s.doc.LinePosition(target, pos.Col)
	if err != nil {
		return err
	}
	s.doc.MoveCursor(offset)
	return nil
}

// LineStart moves to the first column of the cursor's line.
func (s *Session) LineStart() error {
	pos, err := s.doc.CursorLineColumn()
	if err != nil {
		return err
	}
	offset, err := s.doc.LinePosition(pos.Line, 1)
	if err != nil {
		return err
	}
	s.doc.MoveCursor(offset)
	return nil
}

// LineEnd moves just past the last rune of the cursor's line.
func (s *Session) LineEnd() error {
	pos, err := s.doc.CursorLineColumn()
	if err != nil {
		return err
	}
	length, err := s.doc.LineLength(pos.Line)
	if err != nil {
		return err
	}
	offset, err := s.doc.LinePosition(pos.Line, length+1)
	if err != nil {
		return err
	}
	s.doc.MoveCursor(offset)
	return nil
}

func (s *Session) DocumentStart() { s.doc.MoveCursor(0) }
func (s *Session) DocumentEnd()   { s.doc.MoveCursor(s.doc.Len()) }
