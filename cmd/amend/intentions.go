package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"amend/internal/inspect"
	"amend/internal/intention"
)

var intentionsCmd = &cobra.Command{
	Use:   "intentions [flags] <file>",
	Short: "List the quick fixes available at a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntentions,
}

func init() {
	intentionsCmd.Flags().String("at", "1:1", "caret position as line[:col]")
}

func runIntentions(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	p, ed, file, err := openAt(cmd, args[0])
	if err != nil {
		return err
	}
	actions, err := inspect.Intentions(p, ed, file)
	if err != nil {
		return fmt.Errorf("intentions: %w", err)
	}
	if len(actions) == 0 {
		if !quiet(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), "No quick fixes available.")
		}
		return nil
	}
	printActions(cmd.OutOrStdout(), actions)
	return nil
}

func printActions(out io.Writer, actions []intention.Action) {
	dim := color.New(color.Faint)
	for i, a := range actions {
		line := fmt.Sprintf("%2d. %s [%s]", i+1, a.Text(), a.FamilyName())
		if intention.IsLowPriority(a) {
			fmt.Fprintln(out, dim.Sprint(line))
			continue
		}
		fmt.Fprintln(out, line)
	}
}
