// internal/app/editor_api.go
package app

import (
	"fmt"

	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/plugin"
	"github.com/bethropolis/tangent/internal/types"
)

// Ensure appEditorAPI implements the plugin.EditorAPI interface.
var _ plugin.EditorAPI = (*appEditorAPI)(nil)

// appEditorAPI exposes the App to plugins.
type appEditorAPI struct {
	app *App
}

func newEditorAPI(app *App) *appEditorAPI {
	return &appEditorAPI{app: app}
}

// --- Document Access ---

func (api *appEditorAPI) GetBufferLine(line int) (string, error) {
	return api.app.doc.Line(line)
}

func (api *appEditorAPI) GetBufferLineCount() (int, error) {
	return api.app.doc.LineCount()
}

func (api *appEditorAPI) GetBufferText() (string, error) {
	return api.app.doc.Text()
}

func (api *appEditorAPI) GetBufferLength() int {
	return api.app.doc.Len()
}

func (api *appEditorAPI) GetBufferFilePath() string {
	return api.app.doc.FilePath()
}

func (api *appEditorAPI) IsBufferModified() bool {
	return api.app.doc.IsDirty()
}

func (api *appEditorAPI) SaveBuffer() error {
	return api.app.doc.Save()
}

// --- Cursor ---

func (api *appEditorAPI) GetCursor() (types.Position, error) {
	return api.app.doc.CursorLineColumn()
}

// --- Event Bus Interaction ---

func (api *appEditorAPI) SubscribeEvent(eventType event.Type, handler event.Handler) {
	api.app.eventManager.Subscribe(eventType, handler)
}

// --- Command Registration ---

// RegisterCommand adds a plugin command. Plugins may not replace existing
// commands.
func (api *appEditorAPI) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	if _, exists := api.app.commands[name]; exists {
		return fmt.Errorf("command '%s' already registered", name)
	}
	api.app.RegisterCommand(name, func(args []string, _ string) error {
		return cmdFunc(args)
	})
	return nil
}

// --- Status Bar ---

func (api *appEditorAPI) SetStatusMessage(format string, args ...interface{}) {
	api.app.statusBar.SetTemporaryMessage(format, args...)
}

// --- Configuration ---

func (api *appEditorAPI) GetPluginConfigValue(pluginName, key string) (interface{}, bool) {
	return api.app.cfg.PluginValue(pluginName, key)
}
