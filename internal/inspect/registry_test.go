package inspect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"amend/internal/config"
	"amend/internal/diag"
	"amend/internal/fix"
	"amend/internal/host"
	"amend/internal/intention"
	"amend/internal/source"
)

func openVirtual(t *testing.T, content string) (*host.Project, *source.File) {
	t.Helper()
	p := host.NewProject(context.Background(), t.TempDir(), testConfig())
	f := p.Files.Get(p.Files.AddVirtual("mem.txt", []byte(content)))
	return p, f
}

func caret(t *testing.T, f *source.File, line, col uint32) *host.Editor {
	t.Helper()
	ed, err := host.NewEditorAt(f, source.LineCol{Line: line, Col: col})
	if err != nil {
		t.Fatalf("NewEditorAt: %v", err)
	}
	return ed
}

func texts(actions []intention.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Text()
	}
	return out
}

func TestIntentionsMenuOrder(t *testing.T) {
	p, f := openVirtual(t, "\tfoo TODO  \nclean\n")
	actions, err := Intentions(p, caret(t, f, 1, 1), f)
	if err != nil {
		t.Fatalf("Intentions: %v", err)
	}
	want := []string{
		"Add TODO owner (alice)",
		"Convert indentation to spaces (tab width 4)",
		"Remove trailing whitespace",
		"Suppress 'tab-indent' for line",
		"Suppress 'todo-owner' for line",
	}
	got := texts(actions)
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
	for _, a := range actions[3:] {
		if !intention.IsLowPriority(a) {
			t.Errorf("%q should be low priority", a.Text())
		}
	}

	clean, err := Intentions(p, caret(t, f, 2, 1), f)
	if err != nil {
		t.Fatalf("Intentions: %v", err)
	}
	if len(clean) != 0 {
		t.Fatalf("expected no actions on a clean line, got %q", texts(clean))
	}
}

func TestIntentionInvokeEditsAndRefreshes(t *testing.T) {
	p, f := openVirtual(t, "x  \n")
	ed := caret(t, f, 1, 1)
	actions, err := Intentions(p, ed, f)
	if err != nil {
		t.Fatalf("Intentions: %v", err)
	}
	trim, ok := intention.Find(actions, "Remove trailing whitespace")
	if !ok {
		t.Fatalf("trim not offered: %q", texts(actions))
	}
	if err := intention.Invoke(p, ed, f, trim); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	latest := p.Latest(f)
	if string(latest.Content) != "x\n" {
		t.Fatalf("unexpected content %q", latest.Content)
	}

	// The same action value rebuilds its delegate and sees the new content.
	ok, err = trim.IsAvailable(p, ed, latest)
	if err != nil || ok {
		t.Fatalf("expected trim to be unavailable after invoking it, got %v, %v", ok, err)
	}
	if err := intention.Invoke(p, ed, latest, trim); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable, got %v", err)
	}
}

func TestIntentionInvokeWithoutFile(t *testing.T) {
	p, f := openVirtual(t, "a")
	ed := caret(t, f, 1, 1)
	actions, err := Intentions(p, ed, f)
	if err != nil {
		t.Fatalf("Intentions: %v", err)
	}
	nl, ok := intention.Find(actions, "Add final newline")
	if !ok {
		t.Fatalf("final newline not offered: %q", texts(actions))
	}
	if err := intention.Invoke(p, ed, nil, nl); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := string(p.Latest(f).Content); got != "a\n" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestSuppressActionAddsMarker(t *testing.T) {
	p, f := openVirtual(t, "\tx\n")
	ed := caret(t, f, 1, 1)
	actions, err := Intentions(p, ed, f)
	if err != nil {
		t.Fatalf("Intentions: %v", err)
	}
	sup, ok := intention.Find(actions, "Suppress 'tab-indent' for line")
	if !ok {
		t.Fatalf("suppress not offered: %q", texts(actions))
	}
	if err := intention.Invoke(p, ed, f, sup); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	latest := p.Latest(f)
	if got := string(latest.Content); got != "\tx amend:ignore tab-indent\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if diags := Run(latest, testConfig()); len(diags) != 0 {
		t.Fatalf("suppressed line still reported: %+v", diags)
	}
}

func TestFactoryFailureLeavesActionOut(t *testing.T) {
	p, f := openVirtual(t, "x  \n")
	target := Target{Project: p, Editor: caret(t, f, 1, 1), Path: "missing.txt"}
	_, err := intention.NewDelegating(TrailingWhitespace().Offers(target)[0].Factory)
	if !errors.Is(err, ErrStaleFile) {
		t.Fatalf("expected ErrStaleFile, got %v", err)
	}

	target = Target{Project: p, Path: f.Path}
	if _, err := intention.NewDelegating(TrailingWhitespace().Offers(target)[0].Factory); !errors.Is(err, ErrNoEditor) {
		t.Fatalf("expected ErrNoEditor, got %v", err)
	}
}

func TestRegistryValidate(t *testing.T) {
	r := Default()
	cfg := config.Default()
	cfg.Inspect.Disable = []string{"tab-indent"}
	if err := r.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.Inspect.Enable = []string{"no-such-rule"}
	if err := r.Validate(cfg); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}
	if _, err := NewRegistry(TabIndent(), TabIndent()); err == nil {
		t.Fatal("expected duplicate rule error")
	}
}

func TestRunHonoursConfig(t *testing.T) {
	f := virtualFile("\tx  \n")
	cfg := testConfig()
	if got := len(Run(f, cfg)); got != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", got)
	}
	cfg.Inspect.Disable = []string{RuleTabIndent}
	if got := len(Run(f, cfg)); got != 1 {
		t.Fatalf("expected 1 diagnostic with tab-indent disabled, got %d", got)
	}
	cfg = testConfig()
	cfg.Inspect.MaxDiagnostics = 1
	if got := len(Run(f, cfg)); got != 1 {
		t.Fatalf("expected the cap to apply, got %d", got)
	}
}

func TestLazyFixesApplyThroughEngine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("a  \n\tb\nc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	diags := Run(fs.Get(id), testConfig())
	for _, d := range diags {
		for _, fx := range d.Fixes {
			if fx.Thunk == nil {
				t.Fatalf("expected lazy fix, got %+v", fx)
			}
		}
	}

	res, err := fix.Apply(fs, diags, fix.ApplyOptions{Mode: fix.ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 3 {
		t.Fatalf("expected 3 applied fixes, got %+v", res.Applied)
	}
	if len(res.Skipped) != 1 || !strings.HasSuffix(res.Skipped[0].ID, "/suppress") {
		t.Fatalf("expected only the suppress fix to be held back, got %+v", res.Skipped)
	}
	if res.Skipped[0].Reason != "applicability is "+diag.FixApplicabilityManualReview.String() {
		t.Errorf("unexpected skip reason %q", res.Skipped[0].Reason)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "a\n    b\nc\n" {
		t.Fatalf("unexpected content %q", data)
	}
}
