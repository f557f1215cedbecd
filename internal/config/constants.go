package config

import "github.com/bethropolis/tangent/internal/buffer"

// Base application details
const AppName = "tangent"
const AppVersion = "0.1.0"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "tangent.log"

// Undo history
const DefaultHistoryLimit = 1000

// Editing
const DefaultTabWidth = 4
const SystemClipboard = false

// Buffer tuning defaults mirror the buffer package.
const DefaultPageSize = buffer.DefaultPageSize
const DefaultMaxResidentPages = buffer.DefaultMaxResidentPages
const DefaultPagedThreshold = buffer.DefaultPagedThreshold
