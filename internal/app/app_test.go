package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bethropolis/tangent/internal/config"
)

func newTestApp(t *testing.T, path string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Buffer.SwapDir = t.TempDir()
	var out bytes.Buffer
	a, err := New(cfg, path, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, &out
}

func TestRunScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	a, out := newTestApp(t, path)
	if a.Document().FilePath() != path {
		t.Fatalf("FilePath = %q", a.Document().FilePath())
	}

	script := strings.Join([]string{
		"# build two lines, drop the first, then bring it back",
		`i hello\nworld`,
		"esc",
		"",
		"gg",
		"dd",
		"print",
		"u",
		"print 2",
		"w",
	}, "\n")
	if err := a.Run(strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "worldworld\n" {
		t.Fatalf("output = %q", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\nworld" {
		t.Fatalf("saved %q", data)
	}
	if a.Document().IsDirty() {
		t.Fatal("document dirty after w")
	}
}

func TestRunOpensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, out := newTestApp(t, path)
	script := "goto 2 3\ni -\nesc\nprint 2\nx\nprint 2"
	if err := a.Run(strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "be-ta\nbeta\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	a, _ := newTestApp(t, "")
	if err := a.Execute("frobnicate now"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Execute unknown = %v", err)
	}
	if err := a.Execute("goto x"); err == nil {
		t.Fatal("goto with a bad line succeeded")
	}
	if err := a.Execute("w"); err == nil {
		t.Fatal("w on an untitled document succeeded")
	}

	err := a.Run(strings.NewReader("i ok\nbogus\ni never"))
	if err == nil || !strings.HasPrefix(err.Error(), "line 2:") {
		t.Fatalf("Run error = %v", err)
	}
	if text, _ := a.Document().Text(); text != "ok" {
		t.Fatalf("text = %q, commands after the failure ran", text)
	}
}

func TestRegisterCommand(t *testing.T) {
	a, _ := newTestApp(t, "")
	var got []string
	a.RegisterCommand("echo", func(args []string, raw string) error {
		got = append(got, raw)
		return nil
	})
	if err := a.Execute("echo  two  spaces"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != " two  spaces" {
		t.Fatalf("raw = %q", got)
	}
}

func TestStatusFollowsEdits(t *testing.T) {
	a, _ := newTestApp(t, "")
	if got := a.Status(80); !strings.Contains(got, "Line: 1/1, Col: 1 -- NORMAL") {
		t.Fatalf("initial status = %q", got)
	}

	if err := a.Execute(`i ab\ncd`); err != nil {
		t.Fatal(err)
	}
	got := a.Status(80)
	if !strings.Contains(got, "[Modified]") || !strings.Contains(got, "Line: 2/2, Col: 3 -- INSERT") {
		t.Fatalf("status after insert = %q", got)
	}

	if err := a.Execute("u"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimRight(a.Status(80), " "); got != "Undo" {
		t.Fatalf("status after undo = %q", got)
	}
}

func TestBuiltinPlugins(t *testing.T) {
	a, _ := newTestApp(t, "")
	if _, ok := a.Plugins().GetPlugin("wordcount"); !ok {
		t.Fatal("wordcount plugin not registered")
	}
	if err := a.Run(strings.NewReader("i one two\\nthree\nwc")); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimRight(a.Status(80), " "); got != "Lines: 2, Words: 3, Chars: 13, Bytes: 13" {
		t.Fatalf("status after wc = %q", got)
	}
}

func TestAutoSaveFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.txt")
	cfg := config.NewDefaultConfig()
	cfg.Buffer.SwapDir = t.TempDir()
	cfg.Plugins = map[string]map[string]interface{}{
		"autosave": {"enabled": true, "after_edits": int64(2)},
	}
	a, err := New(cfg, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Run(strings.NewReader("i a\ni b")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("auto-save did not write the file: %v", err)
	}
	if string(data) != "ab" {
		t.Fatalf("saved %q", data)
	}
	if a.Document().IsDirty() {
		t.Fatal("document dirty after auto-save")
	}
}
