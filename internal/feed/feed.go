// Package feed projects the newest posts into an Atom document.
package feed

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
)

// DefaultLimit is the number of entries in a feed.
const DefaultLimit = 10

// ContentType is the media type of rendered feeds.
const ContentType = "application/atom+xml; charset=utf-8"

const atomNS = "http://www.w3.org/2005/Atom"

// Options describes the feed document.
type Options struct {
	Title   string
	Author  string
	BaseURL string // absolute site root without trailing slash
	Path    string // site-relative path the feed is served at
	Limit   int
}

// Build returns an Atom feed of the first Limit posts, in the order given.
// Callers pass posts newest first. Every entry embeds the rendered post HTML,
// so a post that fails to render fails the whole feed.
func Build(posts []*post.Post, opts Options) (*feeds.AtomFeed, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}

	siteURL := strings.TrimSuffix(opts.BaseURL, "/")
	af := &feeds.AtomFeed{
		Xmlns: atomNS,
		Title: opts.Title,
		Id:    siteURL + opts.Path,
		Link:  &feeds.AtomLink{Href: siteURL + "/", Rel: "alternate"},
	}
	if opts.Author != "" {
		af.Author = &feeds.AtomAuthor{AtomPerson: feeds.AtomPerson{Name: opts.Author}}
	}

	updated := time.Unix(0, 0).UTC()
	for i, p := range posts {
		html, err := p.HTML()
		if err != nil {
			return nil, err
		}
		link := siteURL + p.PagePath()
		stamp := p.Date.UTC().Format(time.RFC3339)
		entry := &feeds.AtomEntry{
			Title:     p.DisplayTitle(),
			Id:        EntryID(p, link),
			Updated:   stamp,
			Published: stamp,
			Links:     []feeds.AtomLink{{Href: link, Rel: "alternate"}},
			Content:   &feeds.AtomContent{Content: string(html), Type: "html"},
		}
		if opts.Author != "" {
			entry.Author = &feeds.AtomAuthor{AtomPerson: feeds.AtomPerson{Name: opts.Author}}
		}
		af.Entries = append(af.Entries, entry)
		if i == 0 || p.Date.After(updated) {
			updated = p.Date
		}
	}
	af.Updated = updated.UTC().Format(time.RFC3339)
	return af, nil
}

// Render builds the feed and serialises it as XML.
func Render(posts []*post.Post, opts Options) ([]byte, error) {
	af, err := Build(posts, opts)
	if err != nil {
		return nil, err
	}
	out, err := feeds.ToXML(&document{feed: af, self: af.Id})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to encode feed").
			WithContext("path", opts.Path).
			Build()
	}
	return []byte(out), nil
}

// document serialises an AtomFeed with a rel="self" link next to the
// alternate one; feeds.AtomFeed holds a single link.
type document struct {
	feed *feeds.AtomFeed
	self string
}

type atomDocument struct {
	XMLName xml.Name           `xml:"feed"`
	Xmlns   string             `xml:"xmlns,attr"`
	Title   string             `xml:"title"`
	ID      string             `xml:"id"`
	Updated string             `xml:"updated"`
	Links   []*feeds.AtomLink  `xml:"link"`
	Author  *feeds.AtomAuthor  `xml:"author,omitempty"`
	Entries []*feeds.AtomEntry `xml:"entry"`
}

// FeedXml implements feeds.XmlFeed.
func (d *document) FeedXml() interface{} { //nolint:revive // name fixed by feeds.XmlFeed
	links := []*feeds.AtomLink{{Href: d.self, Rel: "self"}}
	if d.feed.Link != nil {
		links = append([]*feeds.AtomLink{d.feed.Link}, links...)
	}
	return &atomDocument{
		Xmlns:   d.feed.Xmlns,
		Title:   d.feed.Title,
		ID:      d.feed.Id,
		Updated: d.feed.Updated,
		Links:   links,
		Author:  d.feed.Author,
		Entries: d.feed.Entries,
	}
}

// EntryID returns a stable Atom id for p. A post carrying a valid uid header
// keeps that identity across URL changes; otherwise the id is derived from
// the canonical link.
func EntryID(p *post.Post, link string) string {
	if uid := p.UID(); uid != "" {
		if parsed, err := uuid.Parse(uid); err == nil {
			return "urn:uuid:" + parsed.String()
		}
	}
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}
