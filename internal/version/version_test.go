package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestString(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })

	Version, GitCommit = "v1.2.3", "abc123"
	got := String()
	if !strings.HasPrefix(got, "blogfreeze v1.2.3 ") || !strings.Contains(got, "commit abc123") {
		t.Errorf("unexpected version string %q", got)
	}
}
