// internal/plugin/plugin.go
package plugin

import (
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/types"
)

// CommandFunc defines the signature for commands registered by plugins.
type CommandFunc func(args []string) error

// EditorAPI is the part of the editor plugins may use.
type EditorAPI interface {
	// --- Document Access ---
	GetBufferLine(line int) (string, error) // 1-based, without newline
	GetBufferLineCount() (int, error)
	GetBufferText() (string, error)
	GetBufferLength() int // in runes
	GetBufferFilePath() string
	IsBufferModified() bool
	SaveBuffer() error

	// --- Cursor ---
	GetCursor() (types.Position, error)

	// --- Event Bus Interaction ---
	SubscribeEvent(eventType event.Type, handler event.Handler)

	// --- Command Registration ---
	RegisterCommand(name string, cmdFunc CommandFunc) error

	// --- Status Bar ---
	SetStatusMessage(format string, args ...interface{})

	// --- Configuration ---
	// GetPluginConfigValue reads key from the [plugins.<name>] config table.
	GetPluginConfigValue(pluginName, key string) (interface{}, bool)
}

// Plugin defines the interface that all plugins must implement.
type Plugin interface {
	// Name returns the unique identifier name of the plugin.
	Name() string

	// Initialize is called once after the document is ready. Plugins
	// subscribe to events and register commands here.
	Initialize(api EditorAPI) error

	// Shutdown is called once before the document is closed.
	Shutdown() error
}
