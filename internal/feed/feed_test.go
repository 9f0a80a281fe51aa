package feed

import (
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
)

type stubRenderer struct{ err error }

func (s stubRenderer) Render(body []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("<p>" + string(body) + "</p>"), nil
}

type atomDoc struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Updated string `xml:"updated"`
	Links   []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
	Entries []struct {
		ID        string `xml:"id"`
		Title     string `xml:"title"`
		Updated   string `xml:"updated"`
		Published string `xml:"published"`
		Author    string `xml:"author>name"`
		Link      struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Content struct {
			Type string `xml:"type,attr"`
			Body string `xml:",chardata"`
		} `xml:"content"`
	} `xml:"entry"`
}

func opts() Options {
	return Options{
		Title:   "Recent Articles",
		Author:  "Jane Doe",
		BaseURL: "http://example.com",
		Path:    "/feed.atom",
		Limit:   DefaultLimit,
	}
}

func posts(n int) []*post.Post {
	out := make([]*post.Post, 0, n)
	start := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := range n {
		p := post.New(fmt.Sprintf("p%02d", i), start.AddDate(0, 0, -i), []byte(fmt.Sprintf("body %d", i)), stubRenderer{})
		p.Title = fmt.Sprintf("Post %d", i)
		p.Published = true
		out = append(out, p)
	}
	return out
}

func decode(t *testing.T, raw []byte) atomDoc {
	t.Helper()
	var doc atomDoc
	require.NoError(t, xml.Unmarshal(raw, &doc))
	return doc
}

func TestRender_LimitsToFirstTenInOrder(t *testing.T) {
	raw, err := Render(posts(15), opts())
	require.NoError(t, err)

	doc := decode(t, raw)
	require.Len(t, doc.Entries, 10)
	for i, e := range doc.Entries {
		require.Equal(t, fmt.Sprintf("Post %d", i), e.Title)
	}
}

func TestRender_FewerPostsThanLimit(t *testing.T) {
	raw, err := Render(posts(3), opts())
	require.NoError(t, err)
	require.Len(t, decode(t, raw).Entries, 3)
}

func TestRender_FeedLevelFields(t *testing.T) {
	raw, err := Render(posts(2), opts())
	require.NoError(t, err)

	doc := decode(t, raw)
	require.Equal(t, "Recent Articles", doc.Title)
	require.Equal(t, "http://example.com/feed.atom", doc.ID)
	require.Len(t, doc.Links, 2)
	require.Equal(t, "http://example.com/", doc.Links[0].Href)
	require.Equal(t, "alternate", doc.Links[0].Rel)
	require.Equal(t, "http://example.com/feed.atom", doc.Links[1].Href)
	require.Equal(t, "self", doc.Links[1].Rel)
	require.Equal(t, "2021-12-31T00:00:00Z", doc.Updated)
}

func TestRender_EntryFields(t *testing.T) {
	ps := posts(1)
	ps[0].Subtitle = "A Subtitle"

	raw, err := Render(ps, opts())
	require.NoError(t, err)

	e := decode(t, raw).Entries[0]
	require.Equal(t, "Post 0: A Subtitle", e.Title)
	require.Equal(t, "http://example.com/blog/p00.html", e.Link.Href)
	require.Equal(t, "2021-12-31T00:00:00Z", e.Updated)
	require.Equal(t, e.Updated, e.Published)
	require.Equal(t, "Jane Doe", e.Author)
	require.Equal(t, "html", e.Content.Type)
	require.Equal(t, "<p>body 0</p>", e.Content.Body)
}

func TestRender_IsDeterministic(t *testing.T) {
	a, err := Render(posts(4), opts())
	require.NoError(t, err)
	b, err := Render(posts(4), opts())
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestRender_Empty(t *testing.T) {
	raw, err := Render(nil, opts())
	require.NoError(t, err)
	doc := decode(t, raw)
	require.Empty(t, doc.Entries)
	require.Equal(t, "1970-01-01T00:00:00Z", doc.Updated)
}

func TestRender_RenderFailureFailsFeed(t *testing.T) {
	ps := posts(2)
	ps[1] = post.New("broken", ps[1].Date, nil, stubRenderer{err: stderrors.New("boom")})

	_, err := Render(ps, opts())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryRender))
}

func TestEntryID(t *testing.T) {
	p := post.New("x", time.Now(), nil, nil)
	link := "http://example.com/blog/x.html"

	derived := EntryID(p, link)
	require.Regexp(t, `^urn:uuid:[0-9a-f-]{36}$`, derived)
	require.Equal(t, derived, EntryID(p, link))
	require.NotEqual(t, derived, EntryID(p, "http://example.com/blog/y.html"))

	p.Params[post.KeyUID] = "1B4E28BA-2FA1-11D2-883F-0016D3CCA427"
	require.Equal(t, "urn:uuid:1b4e28ba-2fa1-11d2-883f-0016d3cca427", EntryID(p, link))

	p.Params[post.KeyUID] = "not-a-uuid"
	require.Equal(t, derived, EntryID(p, link))
}
