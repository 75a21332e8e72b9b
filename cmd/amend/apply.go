package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"amend/internal/inspect"
	"amend/internal/intention"
	"amend/internal/ui"
)

var applyCmd = &cobra.Command{
	Use:   "apply [flags] <file>",
	Short: "Invoke one quick fix at a position",
	Long: `Build the quick fixes available at --at and invoke one of them.
Pick it with --index (1-based, as printed by "amend intentions") or --family;
otherwise an interactive picker is shown when the terminal allows it.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("at", "1:1", "caret position as line[:col]")
	applyCmd.Flags().Int("index", 0, "1-based index of the fix to apply")
	applyCmd.Flags().String("family", "", "apply the fix with this family name or text")
	applyCmd.Flags().String("ui", "auto", "interactive picker (auto|on|off)")
	applyCmd.Flags().Bool("dry-run", false, "show the result without writing files")
}

func runApply(cmd *cobra.Command, args []string) error {
	index, err := cmd.Flags().GetInt("index")
	if err != nil {
		return err
	}
	family, err := cmd.Flags().GetString("family")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if index != 0 && family != "" {
		return fmt.Errorf("--index and --family are mutually exclusive")
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	p, ed, file, err := openAt(cmd, args[0])
	if err != nil {
		return err
	}
	p.DryRun = dryRun

	actions, err := inspect.Intentions(p, ed, file)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	if len(actions) == 0 {
		return fmt.Errorf("apply: no quick fixes available at %s", cmd.Flag("at").Value)
	}

	var chosen intention.Action
	switch {
	case index != 0:
		if index < 1 || index > len(actions) {
			return fmt.Errorf("apply: --index %d out of range (1-%d)", index, len(actions))
		}
		chosen = actions[index-1]
	case family != "":
		a, ok := intention.Find(actions, family)
		if !ok {
			return fmt.Errorf("apply: no quick fix named %q", family)
		}
		chosen = a
	case len(actions) == 1:
		chosen = actions[0]
	case shouldUseTUI(mode):
		items := make([]ui.Item, len(actions))
		for i, a := range actions {
			items[i] = ui.Item{Label: a.Text(), Family: a.FamilyName(), LowPriority: intention.IsLowPriority(a)}
		}
		picked, err := ui.Pick("Quick fixes", items)
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		chosen = actions[picked]
	default:
		printActions(cmd.OutOrStdout(), actions)
		return fmt.Errorf("apply: several fixes available, choose one with --index or --family")
	}

	if err := intention.Invoke(p, ed, file, chosen); err != nil {
		return fmt.Errorf("apply: %s: %w", chosen.Text(), err)
	}

	out := cmd.OutOrStdout()
	for _, c := range p.Commits() {
		for _, ch := range c.Changes {
			if dryRun {
				fmt.Fprintf(out, "--- %s (dry run)\n%s", ch.Path, ch.Content)
				continue
			}
			if !quiet(cmd) {
				fmt.Fprintf(out, "%s: updated %s (%d edits)\n", c.Name, ch.Path, ch.EditCount)
			}
		}
	}
	return nil
}
