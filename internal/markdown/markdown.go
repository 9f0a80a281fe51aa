// Package markdown turns post bodies into HTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultHighlightStyle is the chroma style used for fenced code blocks.
const DefaultHighlightStyle = "friendly"

// Renderer converts a markup body into an HTML fragment.
type Renderer interface {
	Render(body []byte) ([]byte, error)
}

// Options controls the goldmark pipeline.
type Options struct {
	// HighlightStyle names a chroma style; empty selects DefaultHighlightStyle.
	HighlightStyle string
	// HardWraps renders single newlines inside paragraphs as <br>.
	HardWraps bool
}

// Goldmark renders GitHub-flavoured markdown with highlighted code blocks.
// A Goldmark is safe for concurrent use.
type Goldmark struct {
	md goldmark.Markdown
}

// New builds a goldmark renderer.
func New(opts Options) *Goldmark {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}

	htmlOpts := []renderer.Option{
		gmhtml.WithUnsafe(),
		gmhtml.WithXHTML(),
	}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, gmhtml.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(highlighting.WithStyle(style)),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Goldmark{md: md}
}

// Render converts body to HTML.
func (g *Goldmark) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
