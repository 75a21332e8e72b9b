package inspect

import (
	"testing"

	"amend/internal/config"
	"amend/internal/diag"
	"amend/internal/source"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Inspect.TodoOwner = "alice"
	return cfg
}

func virtualFile(content string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("mem.txt", []byte(content)))
}

func check(rule Rule, f *source.File, cfg config.Config) []diag.Diagnostic {
	bag := diag.NewBag(0)
	rule.Check(f, cfg, diag.BagReporter{Bag: bag})
	return bag.Items()
}

func TestRuleChecks(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		content string
		want    int
	}{
		{"trailing clean", TrailingWhitespace(), "a\nb\n", 0},
		{"trailing spaces", TrailingWhitespace(), "a  \nb\t\nc\n", 2},
		{"trailing suppressed", TrailingWhitespace(), "a amend:ignore trailing-whitespace  \n", 0},
		{"final newline present", FinalNewline(), "a\n", 0},
		{"final newline missing", FinalNewline(), "a\nb", 1},
		{"final newline empty file", FinalNewline(), "", 0},
		{"tab indent", TabIndent(), "\tx\n  y\n \tz\n", 2},
		{"tab inside line", TabIndent(), "x\ty\n", 0},
		{"tab suppressed", TabIndent(), "\tx amend:ignore tab-indent\n", 0},
		{"nfc clean", UnicodeNFC(), "caf\u00e9\n", 0},
		{"nfc decomposed", UnicodeNFC(), "cafe\u0301\n", 1},
		{"todo bare", TodoOwner(), "// TODO fix\n", 1},
		{"todo owned", TodoOwner(), "// TODO(bob) fix\n", 0},
		{"todo in word", TodoOwner(), "TODOS and XTODO\n", 0},
		{"todo twice", TodoOwner(), "TODO: a TODO\n", 2},
		{"todo bare marker", TodoOwner(), "TODO amend:ignore\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := check(tt.rule, virtualFile(tt.content), testConfig())
			if len(got) != tt.want {
				t.Fatalf("expected %d diagnostics, got %d: %+v", tt.want, len(got), got)
			}
			for _, d := range got {
				if d.Code != tt.rule.Code() {
					t.Errorf("diagnostic code %v, want %v", d.Code, tt.rule.Code())
				}
			}
		})
	}
}

func TestLineEdits(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		name    string
		rule    *lineRule
		content string
		want    string
	}{
		{"trailing", TrailingWhitespace().(*lineRule), "abc \t\n", "abc\n"},
		{"tabs to stops", TabIndent().(*lineRule), " \tx\n", "    x\n"},
		{"nfc", UnicodeNFC().(*lineRule), "cafe\u0301!\n", "caf\u00e9!\n"},
		{"todo", TodoOwner().(*lineRule), "TODO x TODO\n", "TODO(alice) x TODO(alice)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := virtualFile(tt.content)
			edits := tt.rule.edits(f, 1, cfg)
			if len(edits) == 0 {
				t.Fatal("expected edits")
			}
			if got := applyEdits(f.Content, edits); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// applyEdits applies non-overlapping edits back to front.
func applyEdits(content []byte, edits []diag.TextEdit) string {
	out := string(content)
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		out = out[:e.Span.Start] + e.NewText + out[e.Span.End:]
	}
	return out
}

func TestSuppressed(t *testing.T) {
	tests := []struct {
		line string
		rule string
		want bool
	}{
		{"x", "tab-indent", false},
		{"x // amend:ignore", "tab-indent", true},
		{"x // amend:ignore tab-indent", "tab-indent", true},
		{"x // amend:ignore todo-owner", "tab-indent", false},
		{"x // amend:ignore todo-owner,tab-indent", "tab-indent", true},
		{"x amend:ignore todo-owner amend:ignore tab-indent", "tab-indent", true},
	}
	for _, tt := range tests {
		if got := suppressed(tt.line, tt.rule); got != tt.want {
			t.Errorf("suppressed(%q, %q) = %v, want %v", tt.line, tt.rule, got, tt.want)
		}
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"\t", 4, "    "},
		{"  \t", 4, "    "},
		{"\t\t", 2, "    "},
		{"   \t", 4, "    "},
		{"    \t", 4, "        "},
	}
	for _, tt := range tests {
		if got := expandTabs(tt.in, tt.width); got != tt.want {
			t.Errorf("expandTabs(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestTodoOwnerFallsBackToUser(t *testing.T) {
	t.Setenv("USER", "carol")
	if got := todoOwner(config.Default()); got != "carol" {
		t.Fatalf("todoOwner = %q", got)
	}
	t.Setenv("USER", "")
	if got := todoOwner(config.Default()); got != "owner" {
		t.Fatalf("todoOwner = %q", got)
	}
}
