// internal/event/event.go
package event

import "github.com/bethropolis/tangent/internal/types"

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	TypeLineChanged     // a single line's text changed
	TypeDocumentChanged // lines were added or removed
	TypeDocumentLoaded  // a document finished loading from disk
	TypeDocumentSaved   // a document was written to disk
	TypeHistoryChanged  // an undo or redo step was applied
)

func (t Type) String() string {
	switch t {
	case TypeLineChanged:
		return "LineChanged"
	case TypeDocumentChanged:
		return "DocumentChanged"
	case TypeDocumentLoaded:
		return "DocumentLoaded"
	case TypeDocumentSaved:
		return "DocumentSaved"
	case TypeHistoryChanged:
		return "HistoryChanged"
	default:
		return "Unknown"
	}
}

// Event is the structure passed to handlers.
type Event struct {
	Type Type
	Data interface{}
}

// ChangeData accompanies TypeLineChanged and TypeDocumentChanged.
type ChangeData struct {
	Change types.Change
}

// FileData accompanies TypeDocumentLoaded and TypeDocumentSaved.
type FileData struct {
	FilePath string
}

// HistoryData accompanies TypeHistoryChanged.
type HistoryData struct {
	Undo bool // false for redo
}
