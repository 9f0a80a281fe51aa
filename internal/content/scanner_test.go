package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func TestScan_FindsMatchingFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"hello.md":         "date: 2021-01-01\n\nHi",
		"a/b/nested.md":    "date: 2021-01-02\n\nNested",
		"a/notes.txt":      "ignored",
		"a/UPPER.MD":       "extension match is exact",
		".git/HEAD.md":     "hidden dir",
		"a/.draft.md":      "hidden file",
		"images/photo.png": "png",
	})

	files, err := Scan(root, ".md")
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	assert.Equal(t, []string{"a/b/nested.md", "hello.md"}, rels)

	assert.Equal(t, filepath.Join(root, "hello.md"), files[1].Path)
	assert.Equal(t, "date: 2021-01-01\n\nHi", string(files[1].Raw))
}

func TestScan_OtherExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"one.text": "date: 2021-01-01\n\nx",
		"two.md":   "date: 2021-01-01\n\nx",
	})

	files, err := NewScanner(root, ".text").Scan()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "one.text", files[0].RelPath)
}

func TestScan_EmptyRootYieldsNoFiles(t *testing.T) {
	files, err := Scan(t.TempDir(), ".md")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScan_MissingRootIsScanError(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"), ".md")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryScan))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.SeverityFatal, ce.Severity())
	assert.Equal(t, "content root not found", ce.Message())
}

func TestScan_RootIsFileIsScanError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

	_, err := Scan(p, ".md")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryScan))
}
