package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"amend/internal/diag"
	"amend/internal/driver"
	"amend/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Report problems in files or directories",
	Long:  "Run every enabled inspection and print one line per finding. Exits non-zero when anything is reported.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	checkCmd.Flags().Bool("no-cache", false, "ignore the on-disk result cache")
	checkCmd.Flags().Bool("fix-ids", false, "list the ids of available fixes under each finding")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	showIDs, err := cmd.Flags().GetBool("fix-ids")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "short" {
		return fmt.Errorf("invalid --format value %q (expected pretty|short)", format)
	}
	if format == "short" && showIDs {
		return fmt.Errorf("--fix-ids needs --format pretty")
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	paths, err := driver.Expand(args, cfg)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	opts := driver.Options{Config: cfg, Jobs: jobs}
	// кэш хранит диагностики без фиксов
	if cfg.Cache.Enabled && !noCache && !showIDs {
		cache, err := driver.OpenDiskCache(cfg.Cache.Dir, "amend")
		if err != nil {
			return fmt.Errorf("check: open cache: %w", err)
		}
		opts.Cache = cache
	}

	fs, results, err := driver.Inspect(cmd.Context(), paths, opts)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.LoadErr != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s: %v\n",
				severityColor(diag.SevError).Sprint("error"), diag.IOLoadFileError.ID(), r.Path, r.LoadErr)
		}
	}
	diags := driver.Diagnostics(results)
	total := len(diags)
	if format == "short" {
		if text := diag.FormatShort(diags, fs); text != "" {
			fmt.Fprintln(out, text)
		}
	} else {
		for i := range diags {
			printDiagnostic(out, fs, &diags[i], cfg.Inspect.TabWidth, showIDs)
		}
	}

	if !quiet(cmd) {
		fmt.Fprintf(out, "%d finding(s) in %d file(s)\n", total, len(paths))
	}
	if total > 0 || failed > 0 {
		return errFindings
	}
	return nil
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

// printDiagnostic prints one finding with its column measured in terminal
// cells, so wide runes and tabs line up with what an editor shows. The short
// format keeps byte columns.
func printDiagnostic(out io.Writer, fs *source.FileSet, d *diag.Diagnostic, tabWidth int, showIDs bool) {
	loc, ok := diag.Resolve(fs, d.Primary)
	if !ok {
		return
	}
	col := int(loc.Column)
	if f := fs.Get(d.Primary.File); f != nil {
		col = source.DisplayCol(f.GetLine(loc.Line), loc.Column, tabWidth)
	}
	fmt.Fprintf(out, "%s %s %s:%d:%d %s\n",
		severityColor(d.Severity).Sprint(diag.SeverityLabel(d.Severity)),
		d.Code.ID(), loc.Path, loc.Line, col, d.Message)
	if !showIDs {
		return
	}
	for _, f := range d.Fixes {
		fmt.Fprintf(out, "    fix %s: %s (%s, %s)\n", f.ID, f.Title, f.Kind, f.Applicability)
	}
}
