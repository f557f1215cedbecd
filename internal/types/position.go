// internal/types/position.go
package types

import "fmt"

// Position is a line/column location in a document. Both are 1-based and the
// column counts runes.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
