package autosave

import (
	"errors"
	"testing"

	"github.com/bethropolis/tangent/internal/event"
	"github.com/bethropolis/tangent/internal/plugin"
	"github.com/bethropolis/tangent/internal/types"
)

// fakeAPI records saves and routes subscriptions through a real manager.
type fakeAPI struct {
	events   *event.Manager
	config   map[string]interface{}
	path     string
	modified bool
	saveErr  error
	saved    int
	message  string
}

var _ plugin.EditorAPI = (*fakeAPI)(nil)

func newFakeAPI(config map[string]interface{}) *fakeAPI {
	return &fakeAPI{events: event.NewManager(), config: config, path: "doc.txt", modified: true}
}

func (f *fakeAPI) GetBufferLine(int) (string, error)  { return "", nil }
func (f *fakeAPI) GetBufferLineCount() (int, error)   { return 1, nil }
func (f *fakeAPI) GetBufferText() (string, error)     { return "", nil }
func (f *fakeAPI) GetBufferLength() int               { return 0 }
func (f *fakeAPI) GetBufferFilePath() string          { return f.path }
func (f *fakeAPI) IsBufferModified() bool             { return f.modified }
func (f *fakeAPI) GetCursor() (types.Position, error) { return types.Position{Line: 1, Col: 1}, nil }

func (f *fakeAPI) SaveBuffer() error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved++
	f.modified = false
	f.events.Dispatch(event.TypeDocumentSaved, event.FileData{FilePath: f.path})
	return nil
}

func (f *fakeAPI) SubscribeEvent(t event.Type, h event.Handler) { f.events.Subscribe(t, h) }

func (f *fakeAPI) RegisterCommand(string, plugin.CommandFunc) error { return nil }

func (f *fakeAPI) SetStatusMessage(format string, args ...interface{}) { f.message = format }

func (f *fakeAPI) GetPluginConfigValue(name, key string) (interface{}, bool) {
	if name != "autosave" {
		return nil, false
	}
	v, ok := f.config[key]
	return v, ok
}

func (f *fakeAPI) edit(n int) {
	for i := 0; i < n; i++ {
		f.modified = true
		f.events.Dispatch(event.TypeLineChanged, event.ChangeData{})
	}
}

func TestAutoSaveAfterEdits(t *testing.T) {
	api := newFakeAPI(map[string]interface{}{"enabled": true, "after_edits": int64(3)})
	p := New().(*AutoSave)
	if err := p.Initialize(api); err != nil {
		t.Fatal(err)
	}

	api.edit(2)
	if api.saved != 0 {
		t.Fatal("saved before the threshold")
	}
	api.edit(1)
	if api.saved != 1 || p.Saves() != 1 {
		t.Fatalf("saved = %d after 3 edits", api.saved)
	}
	api.edit(5)
	if api.saved != 2 {
		t.Fatalf("saved = %d after 8 edits, want 2", api.saved)
	}
}

func TestAutoSaveDisabledByDefault(t *testing.T) {
	api := newFakeAPI(nil)
	p := New().(*AutoSave)
	if err := p.Initialize(api); err != nil {
		t.Fatal(err)
	}
	api.edit(defaultAfterEdits * 2)
	if api.saved != 0 {
		t.Fatalf("disabled autosave saved %d times", api.saved)
	}
}

func TestAutoSaveSkipsUntitledAndReportsFailures(t *testing.T) {
	api := newFakeAPI(map[string]interface{}{"enabled": true, "after_edits": int64(1)})
	api.path = ""
	p := New().(*AutoSave)
	if err := p.Initialize(api); err != nil {
		t.Fatal(err)
	}
	api.edit(2)
	if api.saved != 0 {
		t.Fatal("saved an untitled document")
	}

	api.path = "doc.txt"
	api.saveErr = errors.New("read-only file system")
	api.edit(1)
	if api.message == "" {
		t.Fatal("failed auto-save left no status message")
	}
	if p.Saves() != 0 {
		t.Fatalf("Saves = %d after a failure", p.Saves())
	}
}

func TestAutoSaveInvalidConfig(t *testing.T) {
	api := newFakeAPI(map[string]interface{}{"enabled": "yes", "after_edits": int64(-4)})
	p := New().(*AutoSave)
	if err := p.Initialize(api); err != nil {
		t.Fatal(err)
	}
	if p.enabled || p.afterEdits != defaultAfterEdits {
		t.Fatalf("enabled=%v afterEdits=%d, want defaults", p.enabled, p.afterEdits)
	}
}
