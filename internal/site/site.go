// Package site is the application context shared by the page server, the
// feed and the static exporter: configuration, the post index and the page
// templates, built once at startup.
package site

import (
	"html/template"
	"log/slog"

	"git.home.luguber.info/inful/blogfreeze/internal/config"
	"git.home.luguber.info/inful/blogfreeze/internal/content"
	"git.home.luguber.info/inful/blogfreeze/internal/feed"
	"git.home.luguber.info/inful/blogfreeze/internal/index"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
	"git.home.luguber.info/inful/blogfreeze/internal/markdown"
	"git.home.luguber.info/inful/blogfreeze/internal/metrics"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
)

// Site holds everything needed to render pages.
type Site struct {
	cfg       *config.Config
	index     *index.Index
	templates *Templates
}

// PageData is passed to the page templates.
type PageData struct {
	Site     config.SiteConfig
	Title    string
	FeedPath string
	Preview  bool
	Posts    []*post.Post
	Post     *post.Post
	Content  template.HTML
}

// New assembles a site from already built parts.
func New(cfg *config.Config, idx *index.Index, tpl *Templates) *Site {
	return &Site{cfg: cfg, index: idx, templates: tpl}
}

// Load scans the content root, builds the index and parses the templates.
// Any failure is fatal for the process: nothing is served from a partial
// index.
func Load(cfg *config.Config, recorder metrics.Recorder) (*Site, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	var files []content.File
	err := metrics.Stage(recorder, metrics.StageScan, func() error {
		var scanErr error
		files, scanErr = content.Scan(cfg.Content.Root, cfg.Content.Extension)
		return scanErr
	})
	if err != nil {
		return nil, err
	}

	renderer := markdown.New(markdown.Options{
		HighlightStyle: cfg.Markdown.HighlightStyle,
		HardWraps:      cfg.Markdown.HardWraps,
	})

	var idx *index.Index
	err = metrics.Stage(recorder, metrics.StageIndex, func() error {
		var buildErr error
		idx, buildErr = index.Build(files, cfg.Content.Extension, renderer)
		return buildErr
	})
	if err != nil {
		return nil, err
	}

	tpl, err := LoadTemplates(cfg.Site.Templates)
	if err != nil {
		return nil, err
	}

	s := New(cfg, idx, tpl)
	visible := len(s.Posts())
	recorder.SetPostCount(idx.Len(), visible)
	slog.Info("Indexed posts",
		logfields.Root(cfg.Content.Root),
		logfields.Count(idx.Len()),
		slog.Int("visible", visible),
		slog.Bool("debug", cfg.Debug))
	return s, nil
}

// Config returns the site configuration.
func (s *Site) Config() *config.Config { return s.cfg }

// Index returns the post index.
func (s *Site) Index() *index.Index { return s.index }

// Preview reports whether unpublished posts are shown.
func (s *Site) Preview() bool { return s.cfg.Debug }

// Posts returns the listed posts, newest first.
func (s *Site) Posts() []*post.Post {
	return s.index.Ordered(s.cfg.Debug)
}

// Post looks up a post by urlpath. Unpublished posts are reachable by URL
// even when they are not listed.
func (s *Site) Post(urlpath string) (*post.Post, error) {
	return s.index.Get(urlpath)
}

// WatchedFiles lists the source files the preview supervisor reloads on.
func (s *Site) WatchedFiles() []string {
	return s.index.FilePaths()
}

// RenderIndex renders the post listing page.
func (s *Site) RenderIndex() ([]byte, error) {
	return s.templates.Execute(IndexTemplate, s.page(PageData{Posts: s.Posts()}))
}

// RenderPost renders a post page. A body that fails to render fails only
// this page.
func (s *Site) RenderPost(p *post.Post) ([]byte, error) {
	html, err := p.HTML()
	if err != nil {
		return nil, err
	}
	return s.templates.Execute(PostTemplate, s.page(PageData{
		Title:   p.DisplayTitle(),
		Post:    p,
		Content: html,
	}))
}

// RenderFeed renders the Atom feed of the newest listed posts.
func (s *Site) RenderFeed() ([]byte, error) {
	return feed.Render(s.Posts(), s.FeedOptions())
}

// FeedOptions describes the feed for this site.
func (s *Site) FeedOptions() feed.Options {
	return feed.Options{
		Title:   s.cfg.Feed.Title,
		Author:  s.cfg.Feed.Author,
		BaseURL: s.cfg.Site.BaseURL,
		Path:    s.cfg.Feed.Path,
		Limit:   s.cfg.Feed.Limit,
	}
}

func (s *Site) page(d PageData) PageData {
	d.Site = s.cfg.Site
	d.FeedPath = s.cfg.Feed.Path
	d.Preview = s.cfg.Debug
	return d
}
