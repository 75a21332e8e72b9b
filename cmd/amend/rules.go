package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"amend/internal/inspect"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [path]",
	Short: "List inspections and whether amend.toml enables them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	cfg, err := loadConfig(cmd, base)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	off := color.New(color.Faint)
	for _, rule := range inspect.Default().Rules() {
		line := fmt.Sprintf("%s  %-20s", rule.Code().ID(), rule.ID())
		if cfg.RuleEnabled(rule.ID()) {
			fmt.Fprintf(out, "%s on\n", line)
			continue
		}
		fmt.Fprintln(out, off.Sprintf("%s off", line))
	}
	return nil
}
