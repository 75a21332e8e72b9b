package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"amend/internal/source"
)

// Location is a resolved, printable diagnostic position.
type Location struct {
	Path   string
	Line   uint32
	Column uint32
}

type shortDiagnostic struct {
	Severity string
	Code     string
	Location
	Message string
}

// FormatShort renders diagnostics one per line, sorted by path, line,
// column, severity, code and message:
//
//	warning STY1001 dir/file.txt:3:7 trailing whitespace
func FormatShort(diags []Diagnostic, fs *source.FileSet) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		loc, ok := Resolve(fs, d.Primary)
		if !ok {
			continue
		}
		rendered = append(rendered, shortDiagnostic{
			Severity: SeverityLabel(d.Severity),
			Code:     d.Code.ID(),
			Location: loc,
			Message:  sanitizeMessage(d.Message),
		})
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Resolve maps a span to a printable location; ok is false for unknown files.
func Resolve(fs *source.FileSet, span source.Span) (Location, bool) {
	file := fs.Get(span.File)
	if file == nil || int(span.Start) > len(file.Content) {
		return Location{}, false
	}
	start, _ := fs.Resolve(span)
	return Location{
		Path:   normalizePath(file.FormatPath("relative", fs.BaseDir())),
		Line:   start.Line,
		Column: start.Col,
	}, true
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

// SeverityLabel returns the lower-case label used in short output.
func SeverityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
