package buffer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestPaged(t *testing.T, backend string, pageSize, resident int) *PagedBuffer {
	t.Helper()
	opts := DefaultOptions()
	opts.PageSize = pageSize
	opts.MaxResidentPages = resident
	opts.SwapDir = t.TempDir()
	opts.SwapBackend = backend
	b, err := NewPagedBuffer(opts)
	if err != nil {
		t.Fatalf("NewPagedBuffer: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

var backends = []string{BackendFiles, BackendSQLite}

func TestPagedBufferMatchesGapBuffer(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			for seed := int64(1); seed <= 3; seed++ {
				paged := newTestPaged(t, backend, 8, 2)
				gap := NewGapBuffer(8, 4)
				want := randomEdits(t, gap, seed, 1500)
				got := randomEdits(t, paged, seed, 1500)
				if string(got) != string(want) {
					t.Fatalf("seed %d: paged and gap buffers diverged", seed)
				}
				if paged.ResidentPages() > 2 {
					t.Fatalf("seed %d: %d pages resident, limit 2", seed, paged.ResidentPages())
				}
			}
		})
	}
}

func TestPagedBufferEvictionRoundTrip(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			b := newTestPaged(t, backend, 16, 3)
			var want strings.Builder
			for i := 0; i < 200; i++ {
				want.WriteString("line ")
				want.WriteRune(rune('a' + i%26))
				want.WriteString("\n")
			}
			if err := b.Insert(want.String()); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if b.PageCount() < 10 {
				t.Fatalf("PageCount() = %d, expected content to span many pages", b.PageCount())
			}
			if b.ResidentPages() > 3 {
				t.Fatalf("ResidentPages() = %d, limit 3", b.ResidentPages())
			}

			// Random access across pages forces reloads from the store.
			text := []rune(want.String())
			for _, i := range []int{0, len(text) - 1, len(text) / 2, 3, len(text) / 3} {
				r, err := b.CharAt(i)
				if err != nil {
					t.Fatalf("CharAt(%d): %v", i, err)
				}
				if r != text[i] {
					t.Fatalf("CharAt(%d) = %q, want %q", i, r, text[i])
				}
			}
			if got := mustText(t, b); got != want.String() {
				t.Fatalf("content changed across eviction")
			}
		})
	}
}

func TestPagedBufferEditInMiddle(t *testing.T) {
	b := newTestPaged(t, BackendFiles, 4, 2)
	if err := b.Insert("hello world"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	b.MoveTo(5)
	if err := b.Insert(","); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := mustText(t, b); got != "hello, world" {
		t.Fatalf("text = %q", got)
	}
	b.MoveTo(6)
	if err := b.Delete(6, Forward); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := mustText(t, b); got != "hello," {
		t.Fatalf("text = %q", got)
	}
	if err := b.Delete(1, Backward); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := mustText(t, b); got != "hello" || b.Position() != 5 {
		t.Fatalf("text = %q, position %d", got, b.Position())
	}
}

func TestPagedBufferCorruptPage(t *testing.T) {
	b := newTestPaged(t, BackendFiles, 4, 2)
	if err := b.Insert(strings.Repeat("abcd", 10)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	files, err := filepath.Glob(filepath.Join(b.SessionDir(), "page_*.tmp"))
	if err != nil || len(files) == 0 {
		t.Fatalf("expected spilled pages, got %v (%v)", files, err)
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := Text(b); !errors.Is(err, ErrCorruptPage) {
		t.Fatalf("Text error = %v, want ErrCorruptPage", err)
	}
}

func TestPagedBufferMissingPage(t *testing.T) {
	b := newTestPaged(t, BackendFiles, 4, 2)
	if err := b.Insert(strings.Repeat("abcd", 10)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(b.SessionDir(), "page_*.tmp"))
	for _, f := range files {
		os.Remove(f)
	}
	if _, err := b.CharAt(0); !errors.Is(err, ErrCorruptPage) {
		t.Fatalf("CharAt error = %v, want ErrCorruptPage", err)
	}
}

func TestPagedBufferInvalidUTF8(t *testing.T) {
	b := newTestPaged(t, BackendFiles, 4, 2)
	if err := b.Insert(strings.Repeat("abcd", 10)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(b.SessionDir(), "page_*.tmp"))
	for _, f := range files {
		os.WriteFile(f, []byte{0xff, 0xfe, 'a', 'b'}, 0o600)
	}
	if _, err := b.CharAt(0); !errors.Is(err, ErrCorruptPage) {
		t.Fatalf("CharAt error = %v, want ErrCorruptPage", err)
	}
}

func TestPagedBufferCloseRemovesSession(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			b := newTestPaged(t, backend, 4, 2)
			if err := b.Insert(strings.Repeat("xyz\n", 20)); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			dir := b.SessionDir()
			if _, err := os.Stat(dir); err != nil {
				t.Fatalf("session dir missing before Close: %v", err)
			}
			if err := b.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("session dir still present after Close: %v", err)
			}
			if err := b.Close(); err != nil {
				t.Fatalf("second Close: %v", err)
			}
			if err := b.Insert("a"); !errors.Is(err, ErrClosed) {
				t.Fatalf("Insert after Close = %v, want ErrClosed", err)
			}
		})
	}
}

func TestPagedBufferMergesSmallPages(t *testing.T) {
	b := newTestPaged(t, BackendFiles, 8, 4)
	if err := b.Insert(strings.Repeat("a", 40)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	before := b.PageCount()
	b.MoveTo(8)
	if err := b.Delete(30, Forward); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if b.PageCount() >= before {
		t.Fatalf("PageCount() = %d after large delete, was %d", b.PageCount(), before)
	}
	if got := mustText(t, b); got != strings.Repeat("a", 10) {
		t.Fatalf("text = %q", got)
	}
}

func TestPagedBufferResidentMinimum(t *testing.T) {
	b := newTestPaged(t, BackendFiles, 4, 1)
	if err := b.Insert(strings.Repeat("ab", 20)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if b.ResidentPages() > MinResidentPages {
		t.Fatalf("ResidentPages() = %d, want at most %d", b.ResidentPages(), MinResidentPages)
	}
	if got := mustText(t, b); got != strings.Repeat("ab", 20) {
		t.Fatalf("text = %q", got)
	}
}

func TestNewChoosesImplementation(t *testing.T) {
	opts := DefaultOptions()
	opts.SwapDir = t.TempDir()
	opts.PagedThreshold = 100

	small, err := New(99, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer small.Close()
	if Kind(small) != "gap buffer" {
		t.Errorf("New(99) = %s, want gap buffer", Kind(small))
	}

	large, err := New(100, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer large.Close()
	if Kind(large) != "paged buffer" {
		t.Errorf("New(100) = %s, want paged buffer", Kind(large))
	}

	opts.ForcePaged = true
	forced, err := New(0, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer forced.Close()
	if _, ok := forced.(*PagedBuffer); !ok {
		t.Errorf("ForcePaged returned %T", forced)
	}
}
