package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
	"github.com/eringen/mdblog/paginate"
)

// PostList renders the full post list page.
func PostList(site SiteConfig, v ListView) templ.Component {
	meta := PageMeta{Title: "Posts", Path: "/post/"}
	if len(v.Active) > 0 {
		meta.Title = "Posts tagged " + JoinTags(v.Active)
	}
	return Layout(site, meta, PostListPartial(v))
}

// PostListPartial renders only the #post-list section, the fragment swapped in
// by htmx when tags or pages change.
func PostListPartial(v ListView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section id="post-list"><h1>Posts</h1>`)
		tagBar(h, v)
		switch {
		case len(v.Posts) > 0:
			h.raw(`<ul class="post-list">`)
			for _, p := range v.Posts {
				postItem(h, p)
			}
			h.raw(`</ul>`)
		case v.TotalPages == 0:
			h.raw(`<p class="empty">No posts match the selected tags.</p>`)
		default:
			h.raw(`<p class="empty">This page does not exist.</p>`)
		}
		paginator(h, v)
		h.raw(`</section>`)
		return h.err
	})
}

func tagBar(h *htmlWriter, v ListView) {
	if len(v.AllTags) == 0 {
		return
	}
	h.raw(`<nav class="tag-bar" aria-label="Filter by tag">`)
	for _, tag := range v.AllTags {
		active := contains(v.Active, tag)
		swapLink(h, v.Links.TagsURL(toggled(v.Active, tag)), TagClass(active))
		if active {
			h.raw(` aria-pressed="true"`)
		}
		h.raw(`>#`)
		h.text(tag)
		h.raw(`</a>`)
	}
	if len(v.Active) > 0 {
		swapLink(h, v.Links.TagsURL(nil), "tag tag-clear")
		h.raw(`>Clear</a>`)
	}
	h.raw(`</nav>`)
}

// paginator shows previous/next plus a window of page numbers around the
// current page. Hidden when nothing matched.
func paginator(h *htmlWriter, v ListView) {
	if v.TotalPages <= 0 {
		return
	}
	h.raw(`<nav class="paginator" aria-label="Pages">`)
	if v.Page > 0 {
		swapLink(h, v.Links.PageURL(v.Page-1, v.Active), "page-prev")
		h.raw(`>&lsaquo;</a>`)
	} else {
		h.raw(`<span class="page-prev disabled">&lsaquo;</span>`)
	}
	for _, n := range paginate.Window(v.Page, v.TotalPages, paginate.DefaultWindow) {
		if n == v.Page {
			h.raw(`<span class="page-current" aria-current="page">`, strconv.Itoa(n+1), `</span>`)
			continue
		}
		swapLink(h, v.Links.PageURL(n, v.Active), "page-number")
		h.raw(`>`, strconv.Itoa(n+1), `</a>`)
	}
	if v.Page < v.TotalPages-1 {
		swapLink(h, v.Links.PageURL(v.Page+1, v.Active), "page-next")
		h.raw(`>&rsaquo;</a>`)
	} else {
		h.raw(`<span class="page-next disabled">&rsaquo;</span>`)
	}
	h.raw(`</nav>`)
}

// swapLink opens an anchor that htmx upgrades to an in-place swap of
// #post-list. The caller closes the start tag.
func swapLink(h *htmlWriter, link, class string) {
	h.raw(`<a`)
	h.href(link)
	h.attr("class", class)
	h.attr("hx-get", link)
	h.raw(` hx-target="#post-list" hx-swap="outerHTML" hx-push-url="true"`)
}

func postItem(h *htmlWriter, p content.Post) {
	h.raw(`<li class="post-item"><a`)
	h.href(p.URL)
	h.raw(`><h2>`)
	h.text(p.Title)
	h.raw(`</h2>`)
	if p.Description != "" {
		h.raw(`<p>`)
		h.text(p.Description)
		h.raw(`</p>`)
	}
	h.raw(`</a>`)
	postMeta(h, p)
	h.raw(`</li>`)
}

func postMeta(h *htmlWriter, p content.Post) {
	h.raw(`<div class="post-meta">`)
	if p.Date != "" {
		h.raw(`<time`)
		h.attr("datetime", p.Date)
		h.raw(`>`)
		h.text(p.ShortDate())
		h.raw(`</time>`)
	}
	for _, tag := range p.Tags {
		h.raw(`<a class="tag"`)
		h.href("/tag/" + PathEscape(tag) + "/")
		h.raw(`>#`)
		h.text(tag)
		h.raw(`</a>`)
	}
	h.raw(`</div>`)
}

// PostDetail renders a single post with its related posts.
func PostDetail(site SiteConfig, p content.Post, related []content.Post) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<article class="post"><header><h1>`)
		h.text(p.Title)
		h.raw(`</h1>`)
		postMeta(h, p)
		h.raw(`</header><div class="post-body">`)
		if h.err == nil {
			h.err = markdown.HTML(p.Content).Render(ctx, w)
		}
		h.raw(`</div></article>`)
		if len(related) > 0 {
			h.raw(`<aside class="related"><h2>Related posts</h2><ul class="post-list">`)
			for _, r := range related {
				postItem(h, r)
			}
			h.raw(`</ul></aside>`)
		}
		return h.err
	})
	return Layout(site, PageMeta{Title: p.Title, Description: p.Description, Path: p.URL}, body)
}
