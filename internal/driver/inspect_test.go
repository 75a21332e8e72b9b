package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"amend/internal/config"
	"amend/internal/diag"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestListFilesSkipsHiddenAndFilters(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.txt":        "b\n",
		"a.md":         "a\n",
		"sub/c.txt":    "c\n",
		".git/d.txt":   "d\n",
		"image.png":    "x",
		"sub/.e/f.txt": "f\n",
	})
	files, err := ListFiles(dir, config.Default().MatchesExtension)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.txt"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, files[i], want[i])
		}
	}
}

func TestInspectParallelKeepsOrder(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"1.txt": "clean\n",
		"2.txt": "trail  \n",
		"3.txt": "\tindent\nno newline",
	})
	paths, err := Expand([]string{dir}, config.Default())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	_, results, err := Inspect(context.Background(), paths, Options{Config: config.Default(), Jobs: 2, BaseDir: dir})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	wantCounts := []int{0, 1, 2}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d out of order: %s", i, r.Path)
		}
		if len(r.Diagnostics) != wantCounts[i] {
			t.Errorf("%s: expected %d diagnostics, got %d", r.Path, wantCounts[i], len(r.Diagnostics))
		}
	}
	if got := len(Diagnostics(results)); got != 3 {
		t.Fatalf("expected 3 diagnostics overall, got %d", got)
	}
}

func TestInspectReportsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "gone.txt")
	_, results, err := Inspect(context.Background(), []string{missing}, Options{Config: config.Default()})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if results[0].LoadErr == nil {
		t.Fatal("expected a load error")
	}
}

func TestInspectRejectsUnknownRule(t *testing.T) {
	cfg := config.Default()
	cfg.Inspect.Disable = []string{"nope"}
	if _, _, err := Inspect(context.Background(), nil, Options{Config: cfg}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInspectUsesDiskCache(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "x  \n"})
	cache, err := OpenDiskCache(t.TempDir(), "amend")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	paths := []string{filepath.Join(dir, "a.txt")}
	opts := Options{Config: config.Default(), Cache: cache}

	_, first, err := Inspect(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if first[0].Cached {
		t.Fatal("first run cannot be cached")
	}

	_, second, err := Inspect(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !second[0].Cached {
		t.Fatal("expected a cache hit")
	}
	got, want := second[0].Diagnostics, first[0].Diagnostics
	if len(got) != len(want) {
		t.Fatalf("cached %d diagnostics, fresh %d", len(got), len(want))
	}
	for i := range got {
		if got[i].Code != want[i].Code || got[i].Primary != want[i].Primary || got[i].Message != want[i].Message {
			t.Errorf("diagnostic %d differs: %+v vs %+v", i, got[i], want[i])
		}
		if len(got[i].Fixes) != 0 {
			t.Errorf("cached diagnostics must not carry fixes")
		}
	}

	cfg := config.Default()
	cfg.Inspect.Disable = []string{"trailing-whitespace"}
	_, third, err := Inspect(context.Background(), paths, Options{Config: cfg, Cache: cache})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if third[0].Cached || len(third[0].Diagnostics) != 0 {
		t.Fatalf("changed rule set must miss the cache: %+v", third[0])
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir(), "amend")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	var key Digest
	key[0] = 7

	var out DiskPayload
	if hit, err := cache.Get(key, &out); err != nil || hit {
		t.Fatalf("expected miss, got %v, %v", hit, err)
	}
	in := toPayload("a.txt", []diag.Diagnostic{{Severity: diag.SevWarning, Code: diag.StyTabIndent, Message: "tabs"}})
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if hit, err := cache.Get(key, &out); err != nil || !hit {
		t.Fatalf("expected hit, got %v, %v", hit, err)
	}
	if out.Path != "a.txt" || len(out.Diagnostics) != 1 || out.Diagnostics[0].Message != "tabs" {
		t.Fatalf("unexpected payload %+v", out)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Fatal("expected miss after DropAll")
	}
}
