package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/profile"
)

// Home renders the landing page: the author profile followed by the most
// recent posts.
func Home(site SiteConfig, prof profile.Profile, latest []content.Post) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if !prof.IsZero() {
			intro(h, prof)
		}
		h.raw(`<section class="latest"><h2>Recent posts</h2>`)
		if len(latest) == 0 {
			h.raw(`<p class="empty">Nothing published yet.</p>`)
		} else {
			h.raw(`<ul class="post-list">`)
			for _, p := range latest {
				postItem(h, p)
			}
			h.raw(`</ul>`)
		}
		h.raw(`<p><a class="more" href="/post/">All posts &rsaquo;</a></p></section>`)
		return h.err
	})
	return Layout(site, PageMeta{Title: site.Name, Path: "/"}, body)
}

func intro(h *htmlWriter, p profile.Profile) {
	h.raw(`<section class="intro">`)
	if p.Avatar != "" {
		h.raw(`<img class="avatar" width="96" height="96"`)
		h.attr("src", string(templ.URL(p.Avatar)))
		h.attr("alt", p.Name)
		h.raw(`>`)
	}
	h.raw(`<div><h1>`)
	h.text(p.Name)
	h.raw(`</h1>`)
	if p.Role != "" {
		h.raw(`<p class="role">`)
		h.text(p.Role)
		h.raw(`</p>`)
	}
	if p.Bio != "" {
		h.raw(`<p class="bio">`)
		h.text(p.Bio)
		h.raw(`</p>`)
	}
	if p.GitHub != "" {
		h.raw(`<a class="github" rel="me"`)
		h.href(p.GitHub)
		h.raw(`>GitHub</a>`)
	}
	h.raw(`</div></section>`)

	if len(p.Contacts) > 0 {
		h.raw(`<section class="contacts"><h2>Contact</h2><ul>`)
		for _, c := range p.Contacts {
			h.raw(`<li><a rel="me"`)
			h.href(c.Link)
			h.raw(`>`)
			h.text(c.Name)
			h.raw(`</a></li>`)
		}
		h.raw(`</ul></section>`)
	}
	if len(p.Activities) > 0 {
		h.raw(`<section class="activities"><h2>Activities</h2><ul>`)
		for _, a := range p.Activities {
			h.raw(`<li>`)
			h.text(a.Name)
			h.raw(`</li>`)
		}
		h.raw(`</ul></section>`)
	}
	if len(p.Certifications) > 0 {
		h.raw(`<section class="certifications"><h2>Certifications</h2><ul>`)
		for _, c := range p.Certifications {
			h.raw(`<li>`)
			h.text(c.Name)
			h.raw(`</li>`)
		}
		h.raw(`</ul></section>`)
	}
}
