// Package freeze exports the site as static files by rendering every page
// through the live HTTP handler, so exported bytes match what the preview
// server returns.
package freeze

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
	"git.home.luguber.info/inful/blogfreeze/internal/metrics"
	"git.home.luguber.info/inful/blogfreeze/internal/site"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Options configures an export.
type Options struct {
	// Destination is the output directory. It is created when missing.
	Destination string
	// Ignore lists glob patterns for destination paths that survive cleaning.
	Ignore []string
	// FollowLinks also exports internal pages linked from rendered HTML.
	FollowLinks bool
	// BaseURL is the site's canonical root; links to its host are internal.
	BaseURL string
	// Protected paths are never used as a destination.
	Protected []string
	// Recorder receives export metrics. Defaults to a no-op.
	Recorder metrics.Recorder
}

// Report summarises a finished export.
type Report struct {
	Destination string
	Files       []string // slash-separated, relative to Destination, in write order
	Bytes       int64
	// BrokenLinks lists followed internal links that the site does not serve.
	BrokenLinks []string
	Duration    time.Duration
}

// Freezer renders a fixed set of URLs, plus whatever they link to, into a
// directory.
type Freezer struct {
	handler http.Handler
	seeds   []string
	opts    Options
	base    *url.URL
}

// New creates a freezer for handler starting from seeds (site paths).
func New(handler http.Handler, seeds []string, opts Options) *Freezer {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	base, _ := url.Parse(opts.BaseURL)
	return &Freezer{handler: handler, seeds: seeds, opts: opts, base: base}
}

// SiteURLs enumerates the pages of s: the listing, each listed post and the
// feed.
func SiteURLs(s *site.Site) []string {
	posts := s.Posts()
	urls := make([]string, 0, len(posts)+2)
	urls = append(urls, "/")
	for _, p := range posts {
		urls = append(urls, p.PagePath())
	}
	return append(urls, s.Config().Feed.Path)
}

// Freeze cleans the destination and writes every page. The export is
// sequential and stops at the first failure; the context is checked between
// pages.
func (f *Freezer) Freeze(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Destination: f.opts.Destination}

	err := metrics.Stage(f.opts.Recorder, metrics.StageExport, func() error {
		if err := f.prepare(); err != nil {
			return err
		}
		return f.run(ctx, report)
	})
	report.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}

	f.opts.Recorder.ObserveExport(len(report.Files), report.Bytes)
	slog.Info("Exported site",
		logfields.Output(report.Destination),
		logfields.Count(len(report.Files)),
		slog.Int64("bytes", report.Bytes),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

func (f *Freezer) prepare() error {
	dest := filepath.Clean(f.opts.Destination)
	if dest == "." || dest == string(filepath.Separator) || f.opts.Destination == "" {
		return errors.ExportError("refusing to export into this destination").
			WithContext("output", f.opts.Destination).
			Build()
	}
	resolvedDest, err := resolvePath(dest)
	if err != nil {
		return errors.FileSystemError("failed to resolve destination").WithCause(err).
			WithContext("output", dest).
			Build()
	}
	// Cleaning the working directory or one of its parents would take the
	// site's sources with it.
	if cwd, err := resolvePath("."); err == nil && within(cwd, resolvedDest) {
		return errors.ExportError("refusing to export into the working directory or a parent of it").
			WithContext("output", f.opts.Destination).
			Build()
	}
	for _, p := range f.opts.Protected {
		if p == "" {
			continue
		}
		resolved, err := resolvePath(p)
		if err != nil {
			return errors.FileSystemError("failed to resolve protected path").WithCause(err).
				WithContext("path", p).
				Build()
		}
		if within(resolvedDest, resolved) || within(resolved, resolvedDest) {
			return errors.ExportError("destination overlaps a protected path").
				WithContext("output", f.opts.Destination).
				WithContext("path", p).
				Build()
		}
	}

	if err := os.MkdirAll(dest, dirMode); err != nil {
		return errors.FileSystemError("failed to create destination").WithCause(err).
			WithContext("output", dest).
			Build()
	}
	if err := clean(dest, f.opts.Ignore); err != nil {
		return errors.FileSystemError("failed to clean destination").WithCause(err).
			WithContext("output", dest).
			Build()
	}
	return nil
}

type queued struct {
	path     string
	followed bool // discovered in a page rather than enumerated
}

func (f *Freezer) run(ctx context.Context, report *Report) error {
	queue := make([]queued, 0, len(f.seeds))
	seen := map[string]bool{}
	written := map[string]string{}
	for _, s := range f.seeds {
		s = cleanURLPath(s)
		if !seen[s] {
			seen[s] = true
			queue = append(queue, queued{path: s})
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return errors.WrapError(err, errors.CategoryExport, "export canceled").Build()
		}
		item := queue[0]
		queue = queue[1:]

		rel, err := FileFor(item.path)
		if err != nil {
			return err
		}
		if prev, dup := written[rel]; dup {
			slog.Debug("Skipping URL mapped to an already written file",
				logfields.URL(item.path), logfields.Path(rel), slog.String("first", prev))
			continue
		}

		status, contentType, body := f.render(item.path)
		if status == http.StatusNotFound && item.followed {
			slog.Warn("Broken internal link", logfields.URL(item.path))
			report.BrokenLinks = append(report.BrokenLinks, item.path)
			continue
		}
		if status != http.StatusOK {
			return errors.ExportError("page did not render").
				WithContext("url", item.path).
				WithContext("status", status).
				Build()
		}

		if err := writeFile(f.opts.Destination, rel, body); err != nil {
			return err
		}
		written[rel] = item.path
		report.Files = append(report.Files, rel)
		report.Bytes += int64(len(body))
		slog.Debug("Exported page", logfields.URL(item.path), logfields.Path(rel))

		if f.opts.FollowLinks && isHTML(contentType) {
			for _, next := range f.links(item.path, body) {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, queued{path: next, followed: true})
				}
			}
		}
	}
	return nil
}

// render requests p from the handler in-process.
func (f *Freezer) render(p string) (int, string, []byte) {
	target := (&url.URL{Path: p}).RequestURI()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if f.base != nil && f.base.Host != "" {
		req.Host = f.base.Host
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec.Code, rec.Header().Get("Content-Type"), rec.Body.Bytes()
}

func (f *Freezer) links(pagePath string, body []byte) []string {
	hrefs, err := extractLinks(bytes.NewReader(body))
	if err != nil {
		slog.Warn("Failed to parse page for links", logfields.URL(pagePath), logfields.Error(err))
		return nil
	}
	var out []string
	for _, href := range hrefs {
		if p, ok := internalPath(pagePath, href, f.base); ok {
			out = append(out, p)
		}
	}
	return out
}

// FileFor maps a site path to the file it is exported to: "/" and paths
// ending in "/" become index.html files; everything else mirrors the path.
func FileFor(urlPath string) (string, error) {
	p := cleanURLPath(urlPath)
	if strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	rel := strings.TrimPrefix(p, "/")
	if rel == "" || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", errors.ExportError("URL does not map to a file").
			WithContext("url", urlPath).
			Build()
	}
	return rel, nil
}

func writeFile(dest, rel string, body []byte) error {
	full := filepath.Join(dest, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), dirMode); err != nil {
		return errors.FileSystemError("failed to create directory").WithCause(err).
			WithContext("path", filepath.Dir(full)).
			Build()
	}
	//nolint:gosec // exported pages are public
	if err := os.WriteFile(full, body, fileMode); err != nil {
		return errors.FileSystemError("failed to write page").WithCause(err).
			WithContext("path", full).
			Build()
	}
	return nil
}

// resolvePath returns the absolute, symlink-free form of p. Missing trailing
// components are kept as given below their nearest existing ancestor.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return filepath.Join(append([]string{abs}, missing...)...), nil
		}
		missing = append([]string{filepath.Base(abs)}, missing...)
		abs = parent
	}
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}
