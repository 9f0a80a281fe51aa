// Package content discovers content files under a root directory.
package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
)

// File is one discovered content file.
type File struct {
	Path    string // Location on disk (root joined with RelPath)
	RelPath string // Slash-separated path relative to the content root
	Raw     []byte // File content as read at scan time
}

// Scanner walks a content root for files with a given extension.
type Scanner struct {
	root string
	ext  string
}

// NewScanner creates a scanner for files ending in ext (including the dot) under root.
func NewScanner(root, ext string) *Scanner {
	return &Scanner{root: root, ext: ext}
}

// Scan is shorthand for NewScanner(root, ext).Scan().
func Scan(root, ext string) ([]File, error) {
	return NewScanner(root, ext).Scan()
}

// Scan walks the root recursively and returns every matching file in lexical
// walk order. Non-matching and hidden entries are skipped. Any failure to read
// the root or a matching file is a ScanError: a partial scan is never returned.
func (s *Scanner) Scan() ([]File, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		msg := "content root unreadable"
		if os.IsNotExist(err) {
			msg = "content root not found"
		}
		return nil, errors.WrapError(err, errors.CategoryScan, msg).
			Fatal().
			WithContext("root", s.root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.ScanError("content root is not a directory").
			WithContext("root", s.root).
			Build()
	}

	var files []File
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path != s.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if filepath.Ext(d.Name()) != s.ext {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		files = append(files, File{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Raw:     raw,
		})
		slog.Debug("Discovered content file", logfields.File(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryScan, "content scan failed").
			Fatal().
			WithContext("root", s.root).
			Build()
	}

	slog.Info("Content scan complete", logfields.Root(s.root), logfields.Count(len(files)))
	return files, nil
}
