// Package post turns scanned content files into typed blog posts.
package post

import (
	"fmt"
	"html/template"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/blogfreeze/internal/content"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/frontmatter"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
	"git.home.luguber.info/inful/blogfreeze/internal/markdown"
)

// Header keys with a meaning of their own. Everything else is kept in Params.
const (
	KeyDate      = "date"
	KeyTitle     = "title"
	KeySubtitle  = "subtitle"
	KeyPublished = "published"
	KeyUID       = "uid"
)

// PagePrefix is the URL prefix under which post pages are served.
const PagePrefix = "/blog/"

// Post is one parsed content file.
type Post struct {
	URLPath   string
	FilePath  string
	Date      time.Time
	Title     string
	Subtitle  string
	Published bool
	// Params holds every header key as parsed, including the ones above.
	Params map[string]any
	// Fingerprint identifies the post content; it changes whenever the header
	// values or the body change.
	Fingerprint string

	body     []byte
	renderer markdown.Renderer

	once sync.Once
	html template.HTML
	err  error
}

// New returns a post with the given body and renderer. Parse is the usual
// constructor; New exists for callers that already hold the metadata.
func New(urlpath string, date time.Time, body []byte, r markdown.Renderer) *Post {
	return &Post{
		URLPath:  urlpath,
		Date:     date,
		Params:   map[string]any{},
		body:     body,
		renderer: r,
	}
}

// URLPathFor derives the index key of a content file from its path relative
// to the content root: separators become "/", surrounding separators are
// stripped and the extension is dropped. "a/b/hello.md" becomes "a/b/hello".
func URLPathFor(relPath, ext string) string {
	p := strings.ReplaceAll(relPath, `\`, "/")
	p = strings.Trim(p, "/")
	if ext != "" && strings.HasSuffix(p, ext) {
		return strings.TrimSuffix(p, ext)
	}
	return strings.TrimSuffix(p, path.Ext(p))
}

// PagePath returns the site-relative URL of the page for urlpath.
func PagePath(urlpath string) string {
	return PagePrefix + urlpath + ".html"
}

// Parse builds a post from a scanned file. The header block is parsed
// immediately; the body is kept and rendered on first use of HTML.
//
// Header problems are MetadataErrors carrying the file path.
func Parse(file content.File, ext string, r markdown.Renderer) (*Post, error) {
	header, body, err := frontmatter.SplitHeader(file.Raw)
	if err != nil {
		return nil, metadataError(file, "invalid metadata header", err)
	}
	fields, err := frontmatter.ParseHeader(header)
	if err != nil {
		return nil, metadataError(file, "invalid metadata header", err)
	}

	p := &Post{
		URLPath:  URLPathFor(file.RelPath, ext),
		FilePath: file.Path,
		Params:   fields,
		body:     trimBody(body),
		renderer: r,
	}

	raw, ok := fields[KeyDate]
	if !ok || raw == nil {
		return nil, metadataError(file, "missing date", nil)
	}
	if p.Date, err = parseDate(raw); err != nil {
		return nil, metadataError(file, "invalid date", err)
	}

	if v, ok := fields[KeyPublished]; ok {
		published, isBool := v.(bool)
		if !isBool {
			return nil, metadataError(file, "published must be true or false", fmt.Errorf("got %v", v))
		}
		p.Published = published
	}

	if p.Title, err = scalarString(fields, KeyTitle); err != nil {
		return nil, metadataError(file, "invalid title", err)
	}
	if p.Subtitle, err = scalarString(fields, KeySubtitle); err != nil {
		return nil, metadataError(file, "invalid subtitle", err)
	}
	if p.Title == "" {
		p.Title = fallbackTitle(p.URLPath)
		slog.Warn("Post has no title, using file name",
			logfields.File(file.Path),
			logfields.URLPath(p.URLPath),
			slog.String("title", p.Title))
	}

	p.Fingerprint = fingerprint(fields, header, p.body)
	return p, nil
}

// HTML returns the rendered body. Rendering happens once; later calls return
// the same result, including a failure.
func (p *Post) HTML() (template.HTML, error) {
	p.once.Do(func() {
		if p.renderer == nil {
			p.err = errors.RenderError("no renderer configured").
				WithContext("urlpath", p.URLPath).
				Build()
			return
		}
		out, err := p.renderer.Render(p.body)
		if err != nil {
			p.err = errors.WrapError(err, errors.CategoryRender, "failed to render post body").
				WithContext("urlpath", p.URLPath).
				WithContext("file", p.FilePath).
				Build()
			return
		}
		p.html = template.HTML(out) //nolint:gosec // post bodies are trusted author content
	})
	return p.html, p.err
}

// DisplayTitle is "Title: Subtitle", or the title alone.
func (p *Post) DisplayTitle() string {
	if p.Subtitle == "" {
		return p.Title
	}
	return p.Title + ": " + p.Subtitle
}

// PagePath returns the site-relative URL of the post page.
func (p *Post) PagePath() string {
	return PagePath(p.URLPath)
}

// Visible reports whether the post is listed, given whether unpublished
// posts are included.
func (p *Post) Visible(includeUnpublished bool) bool {
	return includeUnpublished || p.Published
}

// Param returns a raw header value.
func (p *Post) Param(key string) (any, bool) {
	v, ok := p.Params[key]
	return v, ok
}

// UID returns the uid header value, or "".
func (p *Post) UID() string {
	s, _ := p.Params[KeyUID].(string)
	return strings.TrimSpace(s)
}

func metadataError(file content.File, msg string, cause error) error {
	b := errors.MetadataError(msg).WithContext("file", file.Path)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b.Build()
}

func trimBody(body []byte) []byte {
	return []byte(strings.TrimSpace(string(body)))
}

func scalarString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	switch vv := v.(type) {
	case string:
		return strings.TrimSpace(vv), nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(vv), nil
	case time.Time:
		return vv.Format(frontmatter.DateLayout), nil
	default:
		return "", fmt.Errorf("%s must be a single value, got %T", key, v)
	}
}

func fallbackTitle(urlpath string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(path.Base(urlpath))
	return cases.Title(language.English).String(name)
}

func fingerprint(fields map[string]any, header, body []byte) string {
	canonical, err := frontmatter.FormatHeader(fields)
	if err != nil {
		canonical = header
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(canonical), "\n"), string(body))
}
