package wordcount

import (
	"strings"
	"testing"

	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/plugin"
	"github.com/bethropolis/tangent/internal/types"
)

type fakeAPI struct {
	text     string
	commands map[string]plugin.CommandFunc
	message  string
}

var _ plugin.EditorAPI = (*fakeAPI)(nil)

func (f *fakeAPI) GetBufferLine(int) (string, error) { return "", nil }
func (f *fakeAPI) GetBufferLineCount() (int, error) {
	return strings.Count(f.text, "\n") + 1, nil
}
func (f *fakeAPI) GetBufferText() (string, error)                          { return f.text, nil }
func (f *fakeAPI) GetBufferLength() int                                    { return len([]rune(f.text)) }
func (f *fakeAPI) GetBufferFilePath() string                               { return "" }
func (f *fakeAPI) IsBufferModified() bool                                  { return false }
func (f *fakeAPI) SaveBuffer() error                                       { return nil }
func (f *fakeAPI) GetCursor() (types.Position, error)                      { return types.Position{}, nil }
func (f *fakeAPI) SubscribeEvent(event.Type, event.Handler)                {}
func (f *fakeAPI) GetPluginConfigValue(string, string) (interface{}, bool) { return nil, false }

func (f *fakeAPI) RegisterCommand(name string, fn plugin.CommandFunc) error {
	f.commands[name] = fn
	return nil
}

func (f *fakeAPI) SetStatusMessage(format string, args ...interface{}) {
	f.message = args[0].(Stats).String()
}

func TestWordCountCommand(t *testing.T) {
	api := &fakeAPI{
		text:     "héllo wörld\n\tsecond  line\n",
		commands: make(map[string]plugin.CommandFunc),
	}
	p := New()
	if err := p.Initialize(api); err != nil {
		t.Fatal(err)
	}
	wc, ok := api.commands["wc"]
	if !ok {
		t.Fatal("wc command not registered")
	}
	if err := wc(nil); err != nil {
		t.Fatal(err)
	}
	want := "Lines: 3, Words: 4, Chars: 26, Bytes: 28"
	if api.message != want {
		t.Fatalf("message = %q, want %q", api.message, want)
	}
}

func TestCountBeforeInitialize(t *testing.T) {
	if _, err := New().(*WordCount).Count(); err == nil {
		t.Fatal("Count without an API succeeded")
	}
}
