// Package clipboard holds yanked text for paste.
package clipboard

import (
	sysclip "github.com/atotto/clipboard"

	"github.com/bethropolis/tangent/internal/logger"
)

// Clipboard keeps the last yanked text in an internal register and, when
// enabled, mirrors it to the system clipboard.
type Clipboard struct {
	register  string
	hasValue  bool
	useSystem bool
}

// New creates a clipboard. useSystem is ignored where the platform has no
// clipboard utility.
func New(useSystem bool) *Clipboard {
	if useSystem && sysclip.Unsupported {
		logger.WarnTagf("clipboard", "Clipboard: system clipboard unsupported, using internal register")
		useSystem = false
	}
	return &Clipboard{useSystem: useSystem}
}

// UsesSystem reports whether the system clipboard is mirrored.
func (c *Clipboard) UsesSystem() bool { return c.useSystem }

// Set replaces the clipboard content.
func (c *Clipboard) Set(text string) {
	c.register = text
	c.hasValue = true
	if !c.useSystem {
		return
	}
	if err := sysclip.WriteAll(text); err != nil {
		logger.WarnTagf("clipboard", "Clipboard: system write failed, kept internal copy: %v", err)
	}
}

// Get returns the clipboard content. The system clipboard wins when enabled
// and readable; otherwise the internal register is used. ok is false when
// nothing has been yanked.
func (c *Clipboard) Get() (text string, ok bool) {
	if c.useSystem {
		s, err := sysclip.ReadAll()
		if err == nil && s != "" {
			return s, true
		}
		if err != nil {
			logger.WarnTagf("clipboard", "Clipboard: system read failed, using internal copy: %v", err)
		}
	}
	return c.register, c.hasValue
}

// Clear empties the internal register.
func (c *Clipboard) Clear() {
	c.register = ""
	c.hasValue = false
}
