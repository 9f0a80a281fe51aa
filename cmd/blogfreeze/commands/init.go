package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogfreeze/internal/config"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/frontmatter"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
)

const examplePostName = "hello-world"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	out := g.out()
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}

	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	written, err := writeExamplePost(cfg, time.Now())
	if err != nil {
		return err
	}
	if written != "" {
		_, _ = fmt.Fprintf(out, "Wrote example post %s\n", written)
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}

// writeExamplePost adds a first post when the content root holds no content
// files yet. It returns the written path, or "" when nothing was written.
func writeExamplePost(cfg *config.Config, now time.Time) (string, error) {
	if hasContent(cfg.Content.Root, cfg.Content.Extension) {
		return "", nil
	}

	header, err := frontmatter.FormatHeader(map[string]any{
		post.KeyTitle:     "Hello world",
		post.KeyDate:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		post.KeyPublished: false,
	})
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to format example header").Build()
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.WriteString("\nThis post is a draft. Set `published: true` to list it.\n")

	target := filepath.Join(cfg.Content.Root, examplePostName+cfg.Content.Extension)
	if err := os.MkdirAll(cfg.Content.Root, 0o750); err != nil {
		return "", errors.FileSystemError("failed to create content root").WithCause(err).
			WithContext("root", cfg.Content.Root).
			Build()
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o600); err != nil {
		return "", errors.FileSystemError("failed to write example post").WithCause(err).
			WithContext("file", target).
			Build()
	}
	return target, nil
}

func hasContent(root, ext string) bool {
	found := false
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && filepath.Ext(p) == ext {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
