package buffer

import (
	"fmt"

	"github.com/bethropolis/tangent/internal/logger"
)

const (
	DefaultPageSize         = 64 * 1024 // runes per page
	DefaultMaxResidentPages = 16
	MinResidentPages        = 2
	DefaultPagedThreshold   = 5 * 1024 * 1024 // bytes on disk
)

// Options tunes both buffer implementations and the choice between them.
type Options struct {
	InitialCapacity int
	MinGap          int

	PageSize         int
	MaxResidentPages int
	// PagedThreshold is the file size in bytes at or above which New picks a
	// PagedBuffer.
	PagedThreshold int64
	// SwapDir is the parent of per-session swap directories. Empty means
	// os.TempDir().
	SwapDir     string
	SwapBackend string
	ForcePaged  bool
}

// DefaultOptions returns the built-in tuning.
func DefaultOptions() Options {
	return Options{
		InitialCapacity:  DefaultInitialCapacity,
		MinGap:           DefaultMinGap,
		PageSize:         DefaultPageSize,
		MaxResidentPages: DefaultMaxResidentPages,
		PagedThreshold:   DefaultPagedThreshold,
		SwapBackend:      BackendFiles,
	}
}

// New returns an empty buffer suited to content of the given size in bytes:
// a GapBuffer below the paging threshold, a PagedBuffer at or above it.
func New(size int64, opts Options) (TextBuffer, error) {
	if opts.ForcePaged || (opts.PagedThreshold > 0 && size >= opts.PagedThreshold) {
		pb, err := NewPagedBuffer(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create paged buffer: %w", err)
		}
		logger.DebugTagf("buffer", "Using paged buffer for %d bytes (threshold %d)", size, opts.PagedThreshold)
		return pb, nil
	}
	initial := opts.InitialCapacity
	if size > 0 && int(size) > initial {
		// Byte count is an upper bound on the rune count.
		initial = int(size) + max(opts.MinGap, DefaultMinGap)
	}
	return NewGapBuffer(initial, opts.MinGap), nil
}

// Kind names the implementation behind b, for diagnostics.
func Kind(b TextBuffer) string {
	switch b.(type) {
	case *GapBuffer:
		return "gap buffer"
	case *PagedBuffer:
		return "paged buffer"
	default:
		return fmt.Sprintf("%T", b)
	}
}
