// Package diag defines the diagnostic model shared by inspections, the fix
// engine and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with a stable string form (STY1001).
//   - Message – short, actionable text.
//   - Primary span – the source.Span pointing at the finding.
//   - Fixes – optional Fix records describing how to address the finding.
//
// # Fix suggestions
//
// Fix carries a Title, Kind, Applicability, an optional IsPreferred flag, and
// either concrete Edits or a Thunk that builds them on demand. Inspections
// attach thunks so that edits are computed against the file content at the
// time the fix is applied; Fix.Resolve and MaterializeFixes expand them.
//
// TextEdit spans are in source byte offsets. OldText is an optional guard the
// fix engine checks before applying an edit.
//
// # Emitting diagnostics
//
// Producers use a Reporter (usually a DedupReporter over a BagReporter) and
// ReportBuilder:
//
//	diag.ReportWarning(r, diag.StyTrailingWhitespace, sp, "trailing whitespace").
//		WithFixSuggestion(fix).
//		Emit()
//
// Package diag performs no IO. Rendering with colors lives in the CLI,
// application of fixes in internal/fix.
package diag
