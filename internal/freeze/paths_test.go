package freeze

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFor(t *testing.T) {
	cases := map[string]string{
		"/":                "index.html",
		"/blog/":           "blog/index.html",
		"/blog/a/b.html":   "blog/a/b.html",
		"/feed.atom":       "feed.atom",
		"blog/x.html":      "blog/x.html",
		"/blog/../x.html":  "x.html",
		"/../../etc/x":     "etc/x",
		"/a//b/./c.html":   "a/b/c.html",
		"/deep/dir/":       "deep/dir/index.html",
		"/blog/with space": "blog/with space",
	}
	for in, want := range cases {
		got, err := FileFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestIgnored(t *testing.T) {
	patterns := []string{".git*", "CNAME", "assets/keep/*"}

	for rel, want := range map[string]bool{
		".git":                 true,
		".gitignore":           true,
		"sub/.gitkeep":         true,
		"CNAME":                true,
		"blog/CNAME":           true,
		"assets/keep/logo.png": true,
		"assets/other.png":     false,
		"index.html":           false,
		"blog/jan.html":        false,
	} {
		assert.Equal(t, want, Ignored(rel, patterns), rel)
	}
}

func TestExtractLinksAndInternalPath(t *testing.T) {
	page := `<html><head><link rel="alternate" href="/feed.atom"></head><body>
<a href="../jan.html">rel</a><a href="#top">frag</a><a href="http://octocat-cafe.me/blog/x.html?q=1#f">abs</a>
<a href="https://other.org/y">ext</a><a href="mailto:me@x">mail</a><img src="img/p.png"><a href="sub/">dir</a>
</body></html>`

	hrefs, err := extractLinks(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, hrefs, 8)

	base, _ := url.Parse("http://octocat-cafe.me")
	var internal []string
	for _, h := range hrefs {
		if p, ok := internalPath("/blog/notes/mar.html", h, base); ok {
			internal = append(internal, p)
		}
	}
	require.Equal(t, []string{
		"/feed.atom",
		"/blog/jan.html",
		"/blog/x.html",
		"/blog/notes/img/p.png",
		"/blog/notes/sub/",
	}, internal)
}
