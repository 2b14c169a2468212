package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the shared document shell: head, navigation, footer.
func Layout(site SiteConfig, meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}

		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><meta name="description"`)
		h.attr("content", desc)
		h.raw(`>`)
		if meta.Path != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", buildURL(site.URL, meta.Path))
			h.raw(`>`)
		}
		h.raw(`<link rel="stylesheet" href="/public/style.css">`)
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name)
		h.raw(` href="/feed.xml"></head><body>`)

		h.raw(`<header class="site-header"><a class="brand" href="/">`)
		h.text(site.Name)
		h.raw(`</a><nav><a href="/">Home</a><a href="/post/">Posts</a></nav></header>`)
		h.raw(`<main>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main><footer class="site-footer">`)
		if site.Author != "" {
			h.raw("&copy; ")
			h.text(site.Author)
		}
		h.raw(`</footer></body></html>`)
		return h.err
	})
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	return Layout(site, PageMeta{Title: "Not found"}, message("Page not found", "The page you were looking for does not exist."))
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	return Layout(site, PageMeta{Title: "Error"}, message("Something went wrong", "Please try again later."))
}

func message(heading, text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="message"><h1>`)
		h.text(heading)
		h.raw(`</h1><p>`)
		h.text(text)
		h.raw(`</p><p><a href="/">Back home</a></p></section>`)
		return h.err
	})
}
