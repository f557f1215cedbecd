package app

import (
	"fmt"

	"github.com/bethropolis/tangent/internal/logger"
	"github.com/bethropolis/tangent/internal/plugin"
	"github.com/bethropolis/tangent/plugins/autosave"
	"github.com/bethropolis/tangent/plugins/wordcount"
)

// builtinPlugins lists the constructors of the plugins compiled in.
var builtinPlugins = []func() plugin.Plugin{
	wordcount.New,
	autosave.New,
}

// registerPlugins registers every built-in plugin with pm and returns the
// first registration error.
func registerPlugins(pm *plugin.Manager) error {
	var finalErr error
	for _, newPlugin := range builtinPlugins {
		p := newPlugin()
		if err := pm.Register(p); err != nil {
			wrappedErr := fmt.Errorf("failed to register plugin '%s': %w", p.Name(), err)
			logger.Errorf("%v", wrappedErr)
			if finalErr == nil {
				finalErr = wrappedErr
			}
		}
	}
	return finalErr
}
