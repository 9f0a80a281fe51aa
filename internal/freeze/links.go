package freeze

import (
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// linkAttrs lists the elements and attributes that reference other resources.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
}

// extractLinks returns every resource reference in an HTML document, in
// document order.
func extractLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := strings.TrimSpace(getAttr(n, attr)); v != "" {
					links = append(links, v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// internalPath resolves href against the page it appeared on and returns the
// site path it points to. Links to other hosts, bare fragments and non-http
// schemes are not internal.
func internalPath(pagePath, href string, base *url.URL) (string, bool) {
	if strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host != "" && (base == nil || !strings.EqualFold(u.Host, base.Host)) {
		return "", false
	}

	p := u.Path
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir(pagePath), p)
		if strings.HasSuffix(u.Path, "/") {
			p += "/"
		}
	}
	return cleanURLPath(p), true
}

// cleanURLPath normalises a site path, keeping a trailing slash.
func cleanURLPath(p string) string {
	trailing := strings.HasSuffix(p, "/")
	p = path.Clean("/" + p)
	if trailing && p != "/" {
		p += "/"
	}
	return p
}
