package freeze

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Ignored reports whether rel (a slash-separated path relative to the
// destination) matches one of the ignore patterns. A pattern without a slash
// matches the base name at any depth; a pattern with a slash matches the
// whole relative path.
func Ignored(rel string, patterns []string) bool {
	rel = strings.TrimPrefix(rel, "/")
	base := path.Base(rel)
	for _, pattern := range patterns {
		target := base
		if strings.Contains(pattern, "/") {
			pattern = strings.TrimPrefix(pattern, "/")
			target = rel
		}
		if ok, _ := path.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

// clean empties dir except for ignored entries. Ignored directories are kept
// whole; a directory is removed once nothing inside it was kept.
func clean(dir string, patterns []string) error {
	_, err := cleanDir(dir, "", patterns)
	return err
}

// cleanDir reports whether anything under dir survived.
func cleanDir(dir, rel string, patterns []string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	kept := false
	for _, entry := range entries {
		entryRel := path.Join(rel, entry.Name())
		full := filepath.Join(dir, entry.Name())

		if Ignored(entryRel, patterns) {
			kept = true
			continue
		}
		if !entry.IsDir() {
			if err := os.Remove(full); err != nil {
				return kept, err
			}
			continue
		}

		childKept, err := cleanDir(full, entryRel, patterns)
		if err != nil {
			return kept, err
		}
		if childKept {
			kept = true
			continue
		}
		if err := os.Remove(full); err != nil {
			return kept, err
		}
	}
	return kept, nil
}
