package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amend/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove cached inspection results",
	Long:  "Remove every entry of the result cache configured for path (default: the current directory).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	cfg, err := loadConfig(cmd, base)
	if err != nil {
		return err
	}
	cache, err := driver.OpenDiskCache(cfg.Cache.Dir, "amend")
	if err != nil {
		return fmt.Errorf("clean: open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "removed cache entries in %s\n", cache.Dir())
	}
	return nil
}
