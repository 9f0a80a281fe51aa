package commands

import (
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/blogfreeze/internal/frontmatter"
	"git.home.luguber.info/inful/blogfreeze/internal/site"
)

// PostsCmd implements the 'posts' command.
type PostsCmd struct {
	All bool `short:"a" help:"Include unpublished posts"`
}

func (p *PostsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Debug = p.All

	s, err := site.Load(cfg, nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tSTATUS\tPATH\tTITLE")
	for _, post := range s.Posts() {
		status := "published"
		if !post.Published {
			status = "draft"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			post.Date.Format(frontmatter.DateLayout), status, post.PagePath(), post.DisplayTitle())
	}
	return tw.Flush()
}
