package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"amend/internal/config"
	"amend/internal/fix"
	"amend/internal/source"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	return NewProject(context.Background(), t.TempDir(), config.Default())
}

func TestRunWriteActionCommitsToDisk(t *testing.T) {
	p := newTestProject(t)
	path := filepath.Join(p.Root, "notes.txt")
	if err := os.WriteFile(path, []byte("hello  \nworld\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := p.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	err = p.RunWriteAction("trim", func(wa *WriteAction) error {
		if p.WriteAction() != wa {
			t.Fatal("running write action not visible through the project")
		}
		wa.Delete(source.Span{File: f.ID, Start: 5, End: 7}, "  ")
		return nil
	})
	if err != nil {
		t.Fatalf("RunWriteAction: %v", err)
	}
	if p.WriteAction() != nil {
		t.Fatal("write action still active after return")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello\nworld\n" {
		t.Fatalf("unexpected disk content %q", data)
	}
	if got := string(p.Latest(f).Content); got != "hello\nworld\n" {
		t.Fatalf("file set not refreshed: %q", got)
	}

	commits := p.Commits()
	if len(commits) != 1 || commits[0].Name != "trim" || len(commits[0].Changes) != 1 {
		t.Fatalf("unexpected commits %+v", commits)
	}
}

func TestRunWriteActionRollsBackOnError(t *testing.T) {
	p := newTestProject(t)
	id := p.Files.AddVirtual("mem.txt", []byte("abc"))
	boom := errors.New("boom")

	err := p.RunWriteAction("broken", func(wa *WriteAction) error {
		wa.Insert(id, 0, "x")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := string(p.Latest(p.Files.Get(id)).Content); got != "abc" {
		t.Fatalf("rolled back action changed content: %q", got)
	}
	if len(p.Commits()) != 0 {
		t.Fatal("rolled back action recorded a commit")
	}
}

func TestRunWriteActionRejectsNesting(t *testing.T) {
	p := newTestProject(t)
	var inner error
	err := p.RunWriteAction("outer", func(*WriteAction) error {
		inner = p.RunWriteAction("inner", func(*WriteAction) error { return nil })
		return nil
	})
	if err != nil {
		t.Fatalf("outer: %v", err)
	}
	if !errors.Is(inner, ErrWriteActionActive) {
		t.Fatalf("expected ErrWriteActionActive, got %v", inner)
	}
}

func TestRunWriteActionGuardMismatch(t *testing.T) {
	p := newTestProject(t)
	id := p.Files.AddVirtual("mem.txt", []byte("abc"))

	err := p.RunWriteAction("guarded", func(wa *WriteAction) error {
		wa.Replace(source.Span{File: id, Start: 0, End: 1}, "z", "q")
		return nil
	})
	if !errors.Is(err, fix.ErrEditRejected) {
		t.Fatalf("expected ErrEditRejected, got %v", err)
	}
}

func TestRunWriteActionDryRunLeavesDisk(t *testing.T) {
	p := newTestProject(t)
	p.DryRun = true
	path := filepath.Join(p.Root, "a.txt")
	if err := os.WriteFile(path, []byte("a"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := p.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := p.RunWriteAction("newline", func(wa *WriteAction) error {
		wa.Insert(f.ID, 1, "\n")
		return nil
	}); err != nil {
		t.Fatalf("RunWriteAction: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a" {
		t.Fatalf("dry run wrote to disk: %q", data)
	}
	if got := string(p.Latest(f).Content); got != "a\n" {
		t.Fatalf("dry run should still update the file set, got %q", got)
	}
}

func TestRunWriteActionWithoutEdits(t *testing.T) {
	p := newTestProject(t)
	if err := p.RunWriteAction("noop", func(*WriteAction) error { return nil }); err != nil {
		t.Fatalf("RunWriteAction: %v", err)
	}
	if len(p.Commits()) != 0 {
		t.Fatal("empty write action must not record a commit")
	}
}

func TestRunWriteActionKeepsBOMAndCRLF(t *testing.T) {
	tests := []struct {
		name string
		disk string
		want string
	}{
		{"bom and crlf", "\ufeffone\r\ntwo  \r\nthree\r\n", "\ufeffone\r\ntwo\r\nthree\r\n"},
		{"crlf only", "one\r\ntwo  \r\nthree\r\n", "one\r\ntwo\r\nthree\r\n"},
		{"bom only", "\ufeffone\ntwo  \nthree\n", "\ufeffone\ntwo\nthree\n"},
		{"lone cr kept", "one\rx\r\ntwo  \r\nthree", "one\rx\r\ntwo\r\nthree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProject(t)
			path := filepath.Join(p.Root, "win.txt")
			if err := os.WriteFile(path, []byte(tt.disk), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			f, err := p.Open(path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			// "two  " is always line 2; drop its trailing spaces
			sp := f.LineSpan(2)
			err = p.RunWriteAction("trim", func(wa *WriteAction) error {
				wa.Delete(source.Span{File: f.ID, Start: sp.End - 2, End: sp.End}, "  ")
				return nil
			})
			if err != nil {
				t.Fatalf("RunWriteAction: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(data) != tt.want {
				t.Fatalf("disk content %q, want %q", data, tt.want)
			}
			latest := p.Latest(f)
			if latest.Flags != f.Flags {
				t.Fatalf("flags lost on refresh: %b vs %b", latest.Flags, f.Flags)
			}
		})
	}
}
