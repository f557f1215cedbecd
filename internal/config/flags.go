// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/bethropolis/tangent/internal/logger"
)

// Flags holds values parsed from command-line flags.
// Pointers distinguish unset flags from zero values.
type Flags struct {
	fs *flag.FlagSet

	ConfigFilePath   *string
	Version          *bool
	LogLevel         *string
	LogFilePath      *string
	EnableTags       *string
	DisableTags      *string
	EnablePkgs       *string
	DisablePkgs      *string
	PageSize         *int
	MaxResidentPages *int
	SwapDir          *string
	SwapBackend      *string
	Paged            *bool
	HistoryLimit     *int
	SystemClipboard  *bool
	Script           *string
}

// NewFlags defines the command-line flags on a new FlagSet named name.
func NewFlags(name string) *Flags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &Flags{fs: fs}
	f.ConfigFilePath = fs.String("config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	f.Version = fs.Bool("version", false, "Show version information and exit")
	f.LogLevel = fs.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = fs.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.EnableTags = fs.String("log-tags", "", "Comma-separated list of tags to enable")
	f.DisableTags = fs.String("log-disable-tags", "", "Comma-separated list of tags to disable")
	f.EnablePkgs = fs.String("log-packages", "", "Comma-separated list of packages to enable")
	f.DisablePkgs = fs.String("log-disable-packages", "", "Comma-separated list of packages to disable")
	f.PageSize = fs.Int("page-size", 0, "Runes per swap page - Overrides config file")
	f.MaxResidentPages = fs.Int("resident-pages", 0, "Pages kept in memory by the paged buffer - Overrides config file")
	f.SwapDir = fs.String("swap-dir", "", "Parent directory for swap sessions - Overrides config file")
	f.SwapBackend = fs.String("swap-backend", "", "Swap backend (files, sqlite) - Overrides config file")
	f.Paged = fs.Bool("paged", false, "Always use the paged buffer")
	f.HistoryLimit = fs.Int("history", 0, "Maximum undo steps - Overrides config file")
	f.SystemClipboard = fs.Bool("system-clipboard", false, "Use the system clipboard for yank and paste")
	f.Script = fs.String("script", "", "Run editing commands from a file (use '-' for stdin)")
	return f
}

// Parse parses args and returns the remaining non-flag arguments.
func (f *Flags) Parse(args []string) ([]string, error) {
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	return f.fs.Args(), nil
}

// ApplyOverrides updates cfg with values from flags that were actually set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		logger.DebugTagf("config", "Applying flag override: %s=%s", fl.Name, fl.Value)
		switch fl.Name {
		case "loglevel":
			if *f.LogLevel != "" {
				cfg.Logger.LogLevel = *f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = *f.LogFilePath
		case "log-tags":
			cfg.Logger.EnabledTags = splitCommaList(*f.EnableTags)
		case "log-disable-tags":
			cfg.Logger.DisabledTags = splitCommaList(*f.DisableTags)
		case "log-packages":
			cfg.Logger.EnabledPackages = splitCommaList(*f.EnablePkgs)
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = splitCommaList(*f.DisablePkgs)
		case "page-size":
			if *f.PageSize > 0 {
				cfg.Buffer.PageSize = *f.PageSize
			}
		case "resident-pages":
			if *f.MaxResidentPages > 0 {
				cfg.Buffer.MaxResidentPages = *f.MaxResidentPages
			}
		case "swap-dir":
			cfg.Buffer.SwapDir = *f.SwapDir
		case "swap-backend":
			if *f.SwapBackend != "" {
				cfg.Buffer.SwapBackend = *f.SwapBackend
			}
		case "paged":
			cfg.Buffer.ForcePaged = *f.Paged
		case "history":
			if *f.HistoryLimit > 0 {
				cfg.Editor.HistoryLimit = *f.HistoryLimit
			}
		case "system-clipboard":
			cfg.Editor.SystemClipboard = *f.SystemClipboard
		}
	})
}

func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
