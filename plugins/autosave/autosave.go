package autosave

import (
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/logger"
	"github.com/bethropolis/tangent/internal/plugin"
)

// Ensure AutoSave implements plugin.Plugin
var _ plugin.Plugin = (*AutoSave)(nil)

const (
	defaultEnabled    = false
	defaultAfterEdits = 100
)

// AutoSave writes a modified document back to its file after a number of
// edits. Edits are counted from change events, so saving happens on the
// editing goroutine between operations.
type AutoSave struct {
	api plugin.EditorAPI

	enabled    bool
	afterEdits int

	pending int
	saves   int
}

// New creates a new instance of the AutoSave plugin.
func New() plugin.Plugin {
	return &AutoSave{
		enabled:    defaultEnabled,
		afterEdits: defaultAfterEdits,
	}
}

func (p *AutoSave) Name() string {
	return "autosave"
}

// Initialize reads [plugins.autosave] and subscribes to change events when
// enabled.
func (p *AutoSave) Initialize(api plugin.EditorAPI) error {
	p.api = api
	pluginName := p.Name()

	if enabledVal, ok := api.GetPluginConfigValue(pluginName, "enabled"); ok {
		if boolVal, isBool := enabledVal.(bool); isBool {
			p.enabled = boolVal
		} else {
			logger.Warnf("%s: Invalid type for 'enabled' config (%T), using default (%v)", pluginName, enabledVal, p.enabled)
		}
	}

	if countVal, ok := api.GetPluginConfigValue(pluginName, "after_edits"); ok {
		n, isInt := countVal.(int64)
		switch {
		case !isInt:
			logger.Warnf("%s: Invalid type for 'after_edits' config (%T), using default (%d)", pluginName, countVal, p.afterEdits)
		case n <= 0:
			logger.Warnf("%s: 'after_edits' must be positive (%d), using default (%d)", pluginName, n, p.afterEdits)
		default:
			p.afterEdits = int(n)
		}
	}

	logger.Infof("%s initialized. Enabled: %v, After edits: %d", pluginName, p.enabled, p.afterEdits)
	if !p.enabled {
		return nil
	}
	api.SubscribeEvent(event.TypeLineChanged, p.handleEdit)
	api.SubscribeEvent(event.TypeDocumentChanged, p.handleEdit)
	api.SubscribeEvent(event.TypeDocumentSaved, p.handleSaved)
	return nil
}

func (p *AutoSave) Shutdown() error {
	if p.pending > 0 {
		logger.Debugf("%s: %d edits not auto-saved at shutdown", p.Name(), p.pending)
	}
	return nil
}

// Saves returns how many automatic saves succeeded.
func (p *AutoSave) Saves() int { return p.saves }

func (p *AutoSave) handleEdit(e event.Event) bool {
	p.pending++
	if p.pending >= p.afterEdits {
		p.saveIfModified()
	}
	return false
}

// handleSaved resets the counter after any save, manual or automatic.
func (p *AutoSave) handleSaved(e event.Event) bool {
	p.pending = 0
	return false
}

func (p *AutoSave) saveIfModified() {
	p.pending = 0
	if !p.api.IsBufferModified() {
		logger.Debugf("%s: Buffer not modified, skipping auto-save.", p.Name())
		return
	}
	filePath := p.api.GetBufferFilePath()
	if filePath == "" {
		logger.Debugf("%s: Buffer is modified but has no name, skipping auto-save.", p.Name())
		return
	}

	logger.Infof("%s: Auto-saving modified buffer: %s", p.Name(), filePath)
	if err := p.api.SaveBuffer(); err != nil {
		logger.Errorf("%s: Auto-save failed for '%s': %v", p.Name(), filePath, err)
		p.api.SetStatusMessage("%s: Auto-save failed: %v", p.Name(), err)
		return
	}
	p.saves++
}
