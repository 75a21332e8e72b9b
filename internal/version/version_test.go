package version

import (
	"strings"
	"testing"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
	if !strings.HasSuffix(Version, "-dev") {
		t.Errorf("default version should be a dev build, got %q", Version)
	}
}

func TestVersionCanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123"
	BuildDate = "2026-01-15T10:30:00Z"
	if Version != "1.2.3" || GitCommit != "abc123" || BuildDate != "2026-01-15T10:30:00Z" {
		t.Fatalf("override failed: %q %q %q", Version, GitCommit, BuildDate)
	}
}
