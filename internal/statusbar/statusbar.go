// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/bethropolis/tangent/internal/types"
)

// DefaultMessageTimeout is how long a temporary message replaces the default text.
const DefaultMessageTimeout = 4 * time.Second

// StatusBar holds the text of the status line. It is updated from document
// events and rendered to a fixed cell width.
type StatusBar struct {
	messageTimeout time.Duration
	now            func() time.Time

	filePath   string
	cursorPos  types.Position
	isModified bool
	lineCount  int
	editorMode string

	tempMessage     string
	tempMessageTime time.Time
}

// New creates a StatusBar. A non-positive timeout uses DefaultMessageTimeout.
func New(messageTimeout time.Duration) *StatusBar {
	if messageTimeout <= 0 {
		messageTimeout = DefaultMessageTimeout
	}
	return &StatusBar{messageTimeout: messageTimeout, now: time.Now}
}

// SetFileInfo updates the file path and modified indicator.
func (sb *StatusBar) SetFileInfo(path string, modified bool) {
	sb.filePath = path
	sb.isModified = modified
}

// SetCursorInfo updates the 1-based cursor position shown.
func (sb *StatusBar) SetCursorInfo(pos types.Position) { sb.cursorPos = pos }

// SetLineCount updates the total line count shown.
func (sb *StatusBar) SetLineCount(n int) { sb.lineCount = n }

// SetEditorMode updates the displayed editor mode.
func (sb *StatusBar) SetEditorMode(mode string) { sb.editorMode = mode }

// SetTemporaryMessage displays a message for the configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...any) {
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempMessageTime = sb.now()
}

// ResetTemporaryMessage clears any temporary message being displayed.
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

// Message returns the active temporary message, if any.
func (sb *StatusBar) Message() string {
	if sb.tempMessageTime.IsZero() || sb.now().Sub(sb.tempMessageTime) > sb.messageTimeout {
		return ""
	}
	return sb.tempMessage
}

func (sb *StatusBar) defaultText() string {
	fPath := sb.filePath
	if fPath == "" {
		fPath = "[No Name]"
	}
	modifiedIndicator := ""
	if sb.isModified {
		modifiedIndicator = " [Modified]"
	}
	modeIndicator := ""
	if sb.editorMode != "" {
		modeIndicator = fmt.Sprintf(" -- %s", sb.editorMode)
	}
	return fmt.Sprintf("%s%s -- Line: %d/%d, Col: %d%s",
		fPath, modifiedIndicator, sb.cursorPos.Line, sb.lineCount, sb.cursorPos.Col, modeIndicator)
}

// Render returns the status text cut or padded to exactly width cells.
// Grapheme clusters that would straddle the edge are dropped.
func (sb *StatusBar) Render(width int) string {
	if width <= 0 {
		return ""
	}
	text := sb.Message()
	if text == "" {
		sb.ResetTemporaryMessage()
		text = sb.defaultText()
	}

	var out strings.Builder
	used := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if used+w > width {
			break
		}
		out.WriteString(gr.Str())
		used += w
	}
	out.WriteString(strings.Repeat(" ", width-used))
	return out.String()
}
