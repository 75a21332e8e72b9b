// Package config loads amend.toml, the per-tree settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the settings file looked up from the target upwards.
const FileName = "amend.toml"

// Config is the decoded settings file with defaults applied.
type Config struct {
	Inspect InspectConfig `toml:"inspect"`
	Cache   CacheConfig   `toml:"cache"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type InspectConfig struct {
	Enable     []string `toml:"enable"`
	Disable    []string `toml:"disable"`
	TabWidth   int      `toml:"tab_width"`
	Extensions []string `toml:"extensions"`
	// MaxDiagnostics caps diagnostics per file; 0 means no limit.
	MaxDiagnostics int `toml:"max_diagnostics"`
	// TodoOwner is the name "Add TODO owner" inserts; $USER when empty.
	TodoOwner string `toml:"todo_owner"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the settings used when no amend.toml exists.
func Default() Config {
	return Config{
		Inspect: InspectConfig{
			TabWidth:   4,
			Extensions: []string{".txt", ".md", ".toml", ".yaml", ".yml", ".go", ".sh"},
		},
	}
}

// RuleEnabled reports whether the rule named id should run.
// An empty enable list means every rule not disabled.
func (c Config) RuleEnabled(id string) bool {
	if slices.Contains(c.Inspect.Disable, id) {
		return false
	}
	if len(c.Inspect.Enable) == 0 {
		return true
	}
	return slices.Contains(c.Inspect.Enable, id)
}

// MatchesExtension reports whether path has one of the configured extensions.
func (c Config) MatchesExtension(path string) bool {
	if len(c.Inspect.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(c.Inspect.Extensions, ext)
}

// Find walks up from startDir looking for amend.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover finds and loads the config governing startDir, falling back to
// Default when none exists.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Inspect.TabWidth < 1 || c.Inspect.TabWidth > 16 {
		return fmt.Errorf("[inspect].tab_width must be between 1 and 16, got %d", c.Inspect.TabWidth)
	}
	if c.Inspect.MaxDiagnostics < 0 {
		return fmt.Errorf("[inspect].max_diagnostics must not be negative")
	}
	for i, ext := range c.Inspect.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return fmt.Errorf("[inspect].extensions contains an empty entry")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Inspect.Extensions[i] = ext
	}
	for _, id := range c.Inspect.Enable {
		if slices.Contains(c.Inspect.Disable, id) {
			return fmt.Errorf("rule %q is both enabled and disabled", id)
		}
	}
	return nil
}
