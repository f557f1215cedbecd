package app

import (
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/logger"
)

// handleDocumentModified marks the status line for recomputation when it is
// next read.
func (a *App) handleDocumentModified(e event.Event) bool {
	a.statusStale = true
	return false
}

func (a *App) handleDocumentSaved(e event.Event) bool {
	if data, ok := e.Data.(event.FileData); ok {
		a.statusBar.SetTemporaryMessage("Wrote %s", data.FilePath)
	}
	a.statusStale = true
	return false
}

func (a *App) handleHistoryChanged(e event.Event) bool {
	if data, ok := e.Data.(event.HistoryData); ok {
		if data.Undo {
			a.statusBar.SetTemporaryMessage("Undo")
		} else {
			a.statusBar.SetTemporaryMessage("Redo")
		}
	}
	a.statusStale = true
	return false
}

// refreshStatus copies document state into the status bar. Cursor motion
// dispatches no events, so the cursor is always re-read.
func (a *App) refreshStatus() {
	mode := "NORMAL"
	if a.session.Inserting() {
		mode = "INSERT"
	}
	a.statusBar.SetEditorMode(mode)
	if pos, err := a.doc.CursorLineColumn(); err == nil {
		a.statusBar.SetCursorInfo(pos)
	} else {
		logger.Warnf("App: cursor position unavailable: %v", err)
	}
	if !a.statusStale {
		return
	}
	a.statusBar.SetFileInfo(a.doc.FilePath(), a.doc.IsDirty())
	if n, err := a.doc.LineCount(); err == nil {
		a.statusBar.SetLineCount(n)
	}
	a.statusStale = false
}
