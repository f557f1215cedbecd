// plugins/wordcount/wordcount.go
package wordcount

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bethropolis/tangent/internal/plugin"
)

// Ensure WordCount implements plugin.Plugin
var _ plugin.Plugin = (*WordCount)(nil)

// WordCount registers the "wc" command, which reports line, word and
// character counts in the status bar.
type WordCount struct {
	api plugin.EditorAPI
}

// New creates a new instance of the WordCount plugin.
func New() plugin.Plugin {
	return &WordCount{}
}

func (p *WordCount) Name() string {
	return "wordcount"
}

func (p *WordCount) Initialize(api plugin.EditorAPI) error {
	p.api = api
	if err := api.RegisterCommand("wc", p.executeWordCount); err != nil {
		return fmt.Errorf("failed to register 'wc' command: %w", err)
	}
	return nil
}

func (p *WordCount) Shutdown() error {
	return nil
}

// Stats holds the counts reported by "wc".
type Stats struct {
	Lines int
	Words int
	Chars int
	Bytes int
}

func (s Stats) String() string {
	return fmt.Sprintf("Lines: %s, Words: %s, Chars: %s, Bytes: %s",
		humanize.Comma(int64(s.Lines)), humanize.Comma(int64(s.Words)),
		humanize.Comma(int64(s.Chars)), humanize.Comma(int64(s.Bytes)))
}

// Count returns the statistics for the current document.
func (p *WordCount) Count() (Stats, error) {
	if p.api == nil {
		return Stats{}, fmt.Errorf("wordcount plugin not initialized with API")
	}
	text, err := p.api.GetBufferText()
	if err != nil {
		return Stats{}, err
	}
	lines, err := p.api.GetBufferLineCount()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Lines: lines,
		Words: len(strings.Fields(text)),
		Chars: p.api.GetBufferLength(),
		Bytes: len(text),
	}, nil
}

func (p *WordCount) executeWordCount(args []string) error {
	stats, err := p.Count()
	if err != nil {
		return err
	}
	p.api.SetStatusMessage("%s", stats)
	return nil
}
