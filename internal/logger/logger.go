// internal/logger/logger.go
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})))
}

// Init installs a logger writing to output with the level and filters from
// cfg. It may be called again to reconfigure.
func Init(cfg Config, output io.Writer) {
	if output == nil {
		output = io.Discard
	}
	cfg.process()

	opts := slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.SourceKey:
				if source, ok := a.Value.Any().(*slog.Source); ok && source != nil {
					source.File = filepath.Base(source.File)
				}
			case slog.TimeKey:
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	}
	handler := newFilteringHandler(slog.NewTextHandler(output, &opts), &cfg)
	current.Store(slog.New(handler))
}

// Setup opens the output named by cfg.LogFilePath and calls Init. The
// returned closer must be closed on exit; it is a no-op for stderr and for
// discarded output.
func Setup(cfg Config) (io.Closer, error) {
	switch cfg.LogFilePath {
	case "":
		Init(cfg, io.Discard)
		return io.NopCloser(nil), nil
	case "-":
		Init(cfg, os.Stderr)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", cfg.LogFilePath, err)
	}
	Init(cfg, f)
	return f, nil
}

// logAtLevel builds a record with the caller of the exported wrapper as its
// source so package and file filters see the right frame.
func logAtLevel(level slog.Level, tag string, format string, args ...any) {
	l := current.Load()
	if !l.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// runtime.Callers, logAtLevel, the exported wrapper.
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	if tag != "" {
		r.AddAttrs(slog.String(tagKey, tag))
	}
	_ = l.Handler().Handle(context.Background(), r)
}

// Debugf logs a debug message using Printf-style formatting.
func Debugf(format string, args ...any) { logAtLevel(slog.LevelDebug, "", format, args...) }

// Infof logs an info message using Printf-style formatting.
func Infof(format string, args ...any) { logAtLevel(slog.LevelInfo, "", format, args...) }

// Warnf logs a warning message using Printf-style formatting.
func Warnf(format string, args ...any) { logAtLevel(slog.LevelWarn, "", format, args...) }

// Errorf logs an error message using Printf-style formatting.
func Errorf(format string, args ...any) { logAtLevel(slog.LevelError, "", format, args...) }

// DebugTagf logs a debug message carrying a filter tag.
func DebugTagf(tag, format string, args ...any) { logAtLevel(slog.LevelDebug, tag, format, args...) }

// InfoTagf logs an info message carrying a filter tag.
func InfoTagf(tag, format string, args ...any) { logAtLevel(slog.LevelInfo, tag, format, args...) }

// WarnTagf logs a warning carrying a filter tag.
func WarnTagf(tag, format string, args ...any) { logAtLevel(slog.LevelWarn, tag, format, args...) }

// Get returns the active logger.
func Get() *slog.Logger {
	return current.Load()
}
