package inspect

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"amend/internal/config"
	"amend/internal/diag"
	"amend/internal/fix"
	"amend/internal/intention"
	"amend/internal/source"
)

// Rule ids as they appear in amend.toml and fix ids.
const (
	RuleTrailingWhitespace = "trailing-whitespace"
	RuleFinalNewline       = "final-newline"
	RuleTabIndent          = "tab-indent"
	RuleUnicodeNFC         = "unicode-nfc"
	RuleTodoOwner          = "todo-owner"
)

func static(s string) func(config.Config) string {
	return func(config.Config) string { return s }
}

// TrailingWhitespace reports spaces and tabs before the end of a line.
func TrailingWhitespace() Rule {
	return &lineRule{
		id:            RuleTrailingWhitespace,
		code:          diag.StyTrailingWhitespace,
		severity:      diag.SevWarning,
		message:       "trailing whitespace",
		family:        "Remove trailing whitespace",
		applicability: diag.FixApplicabilityAlwaysSafe,
		title:         static("Remove trailing whitespace"),
		scan: func(line string, _ config.Config) []hit {
			trimmed := len(strings.TrimRight(line, " \t"))
			if trimmed == len(line) {
				return nil
			}
			return []hit{{start: trimmed, end: len(line), editStart: trimmed, editEnd: len(line)}}
		},
	}
}

// TabIndent reports tab characters in leading indentation.
func TabIndent() Rule {
	return &lineRule{
		id:            RuleTabIndent,
		code:          diag.StyTabIndent,
		severity:      diag.SevWarning,
		message:       "indentation contains tabs",
		family:        "Convert indentation to spaces",
		applicability: diag.FixApplicabilityAlwaysSafe,
		suppressible:  true,
		title: func(cfg config.Config) string {
			return fmt.Sprintf("Convert indentation to spaces (tab width %d)", cfg.Inspect.TabWidth)
		},
		scan: func(line string, cfg config.Config) []hit {
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			if !strings.Contains(line[:indent], "\t") {
				return nil
			}
			return []hit{{
				start:       0,
				end:         indent,
				editStart:   0,
				editEnd:     indent,
				replacement: expandTabs(line[:indent], cfg.Inspect.TabWidth),
			}}
		},
	}
}

// expandTabs replaces tabs in a run of indentation with spaces up to the
// next tab stop.
func expandTabs(indent string, width int) string {
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	col := 0
	for _, r := range indent {
		if r == '\t' {
			pad := width - col%width
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// UnicodeNFC reports lines that are not in Unicode normalization form C.
func UnicodeNFC() Rule {
	return &lineRule{
		id:            RuleUnicodeNFC,
		code:          diag.StyNotNFC,
		severity:      diag.SevWarning,
		message:       "line is not in Unicode NFC form",
		family:        "Normalize line to NFC",
		applicability: diag.FixApplicabilityAlwaysSafe,
		title:         static("Normalize line to NFC"),
		scan: func(line string, _ config.Config) []hit {
			if norm.NFC.IsNormalString(line) {
				return nil
			}
			first := norm.NFC.QuickSpanString(line)
			return []hit{{
				start:       first,
				end:         len(line),
				editStart:   0,
				editEnd:     len(line),
				replacement: norm.NFC.String(line),
			}}
		},
	}
}

// TodoOwner reports TODO markers that do not name an owner as TODO(name).
func TodoOwner() Rule {
	return &lineRule{
		id:            RuleTodoOwner,
		code:          diag.StyTodoWithoutOwner,
		severity:      diag.SevInfo,
		message:       "TODO without an owner",
		family:        "Add TODO owner",
		applicability: diag.FixApplicabilitySafeWithHeuristics,
		suppressible:  true,
		title: func(cfg config.Config) string {
			return fmt.Sprintf("Add TODO owner (%s)", todoOwner(cfg))
		},
		scan: func(line string, cfg config.Config) []hit {
			var out []hit
			owner := "(" + todoOwner(cfg) + ")"
			for from := 0; ; {
				idx := strings.Index(line[from:], "TODO")
				if idx < 0 {
					return out
				}
				start := from + idx
				end := start + len("TODO")
				from = end
				if start > 0 && isWordByte(line[start-1]) {
					continue
				}
				if end < len(line) && (isWordByte(line[end]) || line[end] == '(') {
					continue
				}
				out = append(out, hit{start: start, end: end, editStart: end, editEnd: end, replacement: owner})
			}
		},
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// todoOwner is read on every call so a changed config or environment shows
// up in the next factory result.
func todoOwner(cfg config.Config) string {
	if cfg.Inspect.TodoOwner != "" {
		return cfg.Inspect.TodoOwner
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "owner"
}

// finalNewline reports files whose last byte is not '\n'.
type finalNewline struct{}

// FinalNewline reports a missing newline at the end of a non-empty file.
func FinalNewline() Rule { return finalNewline{} }

func (finalNewline) ID() string      { return RuleFinalNewline }
func (finalNewline) Code() diag.Code { return diag.StyMissingFinalNewline }

func (finalNewline) edits(f *source.File) []diag.TextEdit {
	n := len(f.Content)
	if n == 0 || f.Content[n-1] == '\n' {
		return nil
	}
	end := lineOffset(0, n)
	if suppressed(f.GetLine(f.LineCount()), RuleFinalNewline) {
		return nil
	}
	return []diag.TextEdit{{Span: source.Span{File: f.ID, Start: end, End: end}, NewText: "\n"}}
}

func (r finalNewline) Check(f *source.File, _ config.Config, rep diag.Reporter) {
	edits := r.edits(f)
	if len(edits) == 0 {
		return
	}
	id := RuleFinalNewline + ":" + f.Path
	fileID := f.ID
	thunk := diag.FixThunkFunc{Key: id, Fn: func(ctx diag.FixBuildContext) (diag.Fix, error) {
		cur := ctx.FileSet.Get(fileID)
		if cur == nil {
			return diag.Fix{}, fmt.Errorf("%s: %w", id, ErrStaleFile)
		}
		return diag.Fix{Edits: r.edits(cur)}, nil
	}}
	diag.ReportWarning(rep, diag.StyMissingFinalNewline, edits[0].Span, "no newline at end of file").
		WithFixSuggestion(fix.Lazy("Add final newline", thunk, fix.WithID(id), fix.Preferred())).
		Emit()
}

// Offers the fix anywhere in the file, not only on the last line.
func (r finalNewline) Offers(t Target) []Offer {
	return []Offer{{Factory: func() (intention.Action, error) {
		f, _, err := t.resolve()
		if err != nil {
			return nil, err
		}
		return &lineAction{
			family: "Add final newline",
			text:   "Add final newline",
			path:   f.Path,
			edits: func(cur *source.File, _ uint32) []diag.TextEdit {
				return r.edits(cur)
			},
		}, nil
	}}}
}
