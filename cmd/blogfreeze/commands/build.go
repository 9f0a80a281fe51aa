package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/blogfreeze/internal/freeze"
	"git.home.luguber.info/inful/blogfreeze/internal/server/httpserver"
	"git.home.luguber.info/inful/blogfreeze/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" name:"output" help:"Destination directory (default: output.directory)"`
	Debug    bool   `help:"Also export unpublished posts"`
	NoFollow bool   `name:"no-follow" help:"Export only enumerated pages, not pages they link to"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Debug {
		cfg.Debug = true
	}
	if b.NoFollow {
		cfg.Output.FollowLinks = false
	}

	s, err := site.Load(cfg, nil)
	if err != nil {
		return err
	}
	handler := httpserver.New(s, httpserver.Options{Logger: slog.Default()}).Handler()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := freeze.New(handler, freeze.SiteURLs(s), freeze.Options{
		Destination: cfg.Output.Directory,
		Ignore:      cfg.Output.Ignore,
		FollowLinks: cfg.Output.FollowLinks,
		BaseURL:     cfg.Site.BaseURL,
		Protected:   []string{cfg.Content.Root, cfg.Site.Templates, root.Config},
	}).Freeze(ctx)
	if err != nil {
		return err
	}

	out := g.out()
	for _, link := range report.BrokenLinks {
		_, _ = fmt.Fprintf(out, "warning: broken link %s\n", link)
	}
	_, _ = fmt.Fprintf(out, "Exported %d files (%d bytes) to %s in %s\n",
		len(report.Files), report.Bytes, report.Destination, report.Duration.Round(time.Millisecond))
	return nil
}
