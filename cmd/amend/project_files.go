package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"amend/internal/config"
	"amend/internal/host"
	"amend/internal/inspect"
	"amend/internal/source"
)

// loadConfig reads --config, or discovers amend.toml from start upwards.
func loadConfig(cmd *cobra.Command, start string) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(start)
	}
	if err != nil {
		return config.Config{}, err
	}
	if err := inspect.Default().Validate(cfg); err != nil {
		if cfg.Path != "" {
			return config.Config{}, fmt.Errorf("%s: %w", cfg.Path, err)
		}
		return config.Config{}, err
	}
	return cfg, nil
}

// parseLineCol parses "line:col" or "line" (column 1).
func parseLineCol(value string) (source.LineCol, error) {
	lineStr, colStr, hasCol := strings.Cut(strings.TrimSpace(value), ":")
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return source.LineCol{}, fmt.Errorf("invalid position %q (expected line[:col])", value)
	}
	col := uint64(1)
	if hasCol {
		col, err = strconv.ParseUint(colStr, 10, 32)
		if err != nil || col == 0 {
			return source.LineCol{}, fmt.Errorf("invalid position %q (expected line[:col])", value)
		}
	}
	return source.LineCol{Line: uint32(line), Col: uint32(col)}, nil
}

// openAt loads path into a fresh project and places a caret at --at.
func openAt(cmd *cobra.Command, path string) (*host.Project, *host.Editor, *source.File, error) {
	at, err := cmd.Flags().GetString("at")
	if err != nil {
		return nil, nil, nil, err
	}
	pos, err := parseLineCol(at)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := loadConfig(cmd, filepath.Dir(path))
	if err != nil {
		return nil, nil, nil, err
	}
	p := host.NewProject(cmd.Context(), filepath.Dir(path), cfg)
	file, err := p.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	ed, err := host.NewEditorAt(file, pos)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, ed, file, nil
}
