package types

// ChangeKind says how much of a rendered view an edit invalidates.
type ChangeKind int

const (
	// LineChanged means only one line changed; Change.Line names it.
	LineChanged ChangeKind = iota
	// FullInvalidate means lines were added or removed.
	FullInvalidate
)

func (k ChangeKind) String() string {
	if k == FullInvalidate {
		return "full"
	}
	return "line"
}

// Change describes the effect of one edit on the line structure.
type Change struct {
	Kind ChangeKind
	Line int // 0-based, meaningful for LineChanged
}
