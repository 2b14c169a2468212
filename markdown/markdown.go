// Package markdown renders post bodies to HTML with goldmark and exposes the
// result as a templ component.
package markdown

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the chroma style used for fenced code blocks.
const DefaultStyle = "dracula"

// Renderer converts markdown source into HTML.
type Renderer struct {
	md goldmark.Markdown
}

type options struct {
	style     string
	hardWraps bool
	unsafe    bool
}

// Option configures a Renderer.
type Option func(*options)

// WithStyle sets the chroma style for code highlighting.
func WithStyle(style string) Option {
	return func(o *options) {
		o.style = style
	}
}

// WithHardWraps turns single newlines inside a paragraph into <br>. On by default.
func WithHardWraps(on bool) Option {
	return func(o *options) {
		o.hardWraps = on
	}
}

// WithRawHTML lets raw HTML in the source pass through unescaped.
func WithRawHTML(on bool) Option {
	return func(o *options) {
		o.unsafe = on
	}
}

// New builds a Renderer with GFM, auto heading ids and code highlighting.
func New(opts ...Option) *Renderer {
	o := options{style: DefaultStyle, hardWraps: true}
	for _, opt := range opts {
		opt(&o)
	}

	htmlOpts := []renderer.Option{html.WithXHTML()}
	if o.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if o.unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(o.style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(htmlOpts...),
	)

	return &Renderer{md: md}
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HTML returns a templ.Component that writes already-rendered HTML as is.
func HTML(rendered string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rendered)
		return err
	})
}

// Markdown returns a templ.Component that renders md as HTML.
func (r *Renderer) Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render([]byte(md))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}
