package inspect

import "strings"

const (
	suppressMarker = "amend:ignore"
	suppressFamily = "Suppress inspection"
)

// suppressed reports whether line carries an amend:ignore marker naming
// rule. A bare marker silences every rule on the line.
func suppressed(line, rule string) bool {
	idx := strings.Index(line, suppressMarker)
	if idx < 0 {
		return false
	}
	named := false
	for _, field := range strings.FieldsFunc(line[idx:], func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	}) {
		if field == suppressMarker {
			continue
		}
		if field == rule {
			return true
		}
		named = true
	}
	return !named
}

func suppressComment(rule string) string {
	return " " + suppressMarker + " " + rule
}

func suppressTitle(rule string) string {
	return "Suppress '" + rule + "' for line"
}
