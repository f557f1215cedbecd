// internal/app/app.go
package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/bethropolis/tangent/internal/config"
	"github.com/bethropolis/tangent/internal/document"
	"github.com/bethropolis/tangent/internal/editor"
	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/logger"
	"github.com/bethropolis/tangent/internal/plugin"
	"github.com/bethropolis/tangent/internal/statusbar"
)

// App wires a document, its editing session and the event manager together
// and runs editing commands against them.
type App struct {
	cfg           *config.Config
	eventManager  *event.Manager
	pluginManager *plugin.Manager
	doc           *document.Document
	session       *editor.Session
	statusBar     *statusbar.StatusBar
	statusStale   bool
	commands      map[string]CommandFunc
	out           io.Writer
}

// New opens filePath, or starts an empty document that will be saved there
// when the file does not exist yet. Command output goes to out.
func New(cfg *config.Config, filePath string, out io.Writer) (*App, error) {
	if out == nil {
		out = io.Discard
	}
	eventManager := event.NewManager()

	var doc *document.Document
	if filePath != "" {
		d, err := document.Open(filePath, cfg.BufferOptions(), eventManager)
		switch {
		case err == nil:
			doc = d
		case errors.Is(err, fs.ErrNotExist):
			logger.Infof("App: '%s' does not exist, starting empty", filePath)
		default:
			return nil, err
		}
	}
	if doc == nil {
		d, err := document.New(cfg.BufferOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to create document: %w", err)
		}
		d.SetFilePath(filePath)
		doc = d
	}
	doc.SetEventManager(eventManager)

	session := editor.NewSessionFromConfig(doc, cfg)
	session.History().SetEventManager(eventManager)

	a := &App{
		cfg:           cfg,
		eventManager:  eventManager,
		pluginManager: plugin.NewManager(),
		doc:           doc,
		session:       session,
		statusBar:     statusbar.New(0),
		statusStale:   true,
		commands:      make(map[string]CommandFunc),
		out:           out,
	}
	a.registerCommands()

	eventManager.Subscribe(event.TypeLineChanged, a.handleDocumentModified)
	eventManager.Subscribe(event.TypeDocumentChanged, a.handleDocumentModified)
	eventManager.Subscribe(event.TypeDocumentSaved, a.handleDocumentSaved)
	eventManager.Subscribe(event.TypeHistoryChanged, a.handleHistoryChanged)

	// Plugins subscribe after the App so status updates run first.
	if err := registerPlugins(a.pluginManager); err != nil {
		logger.Warnf("App: %v", err)
	}
	a.pluginManager.InitializePlugins(newEditorAPI(a))

	logger.Debugf("App: ready, %s", doc.PerformanceInfo())
	return a, nil
}

func (a *App) Document() *document.Document { return a.doc }
func (a *App) Session() *editor.Session      { return a.session }
func (a *App) Events() *event.Manager        { return a.eventManager }
func (a *App) Plugins() *plugin.Manager      { return a.pluginManager }

// Status renders the status line at the given width.
func (a *App) Status(width int) string {
	a.refreshStatus()
	return a.statusBar.Render(width)
}

// Close ends any insert session, shuts plugins down and releases the
// document.
func (a *App) Close() error {
	a.session.EndInsert()
	return errors.Join(a.pluginManager.ShutdownPlugins(), a.doc.Close())
}
