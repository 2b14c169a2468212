package views

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/eringen/mdblog/content"
)

// SiteConfig holds the site-wide settings templates need.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries the per-page <head> values.
type PageMeta struct {
	Title       string
	Description string
	Path        string // canonical path, joined onto SiteConfig.URL
}

// Links builds the URLs behind tag chips and paginator buttons.
type Links interface {
	// PageURL links to the zero-based page index under tags.
	PageURL(page int, tags []string) string
	// TagsURL links to the first page filtered by tags.
	TagsURL(tags []string) string
}

// QueryLinks encodes list state in query parameters. Used by the live server,
// where the visitor's state store remembers it between requests.
type QueryLinks struct{}

func (QueryLinks) PageURL(page int, tags []string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page+1))
	q.Set("tags", strings.Join(tags, ","))
	return "/post/?" + q.Encode()
}

func (QueryLinks) TagsURL(tags []string) string {
	q := url.Values{}
	q.Set("tags", strings.Join(tags, ","))
	return "/post/?" + q.Encode()
}

// PathLinks encodes list state in the path so every view exists as a file
// in a static export. Only a single tag filter is expressible; the most
// recently selected one wins.
type PathLinks struct{}

func (PathLinks) PageURL(page int, tags []string) string {
	prefix := "/post"
	if len(tags) > 0 {
		prefix = "/tag/" + PathEscape(tags[len(tags)-1])
	}
	if page <= 0 {
		return prefix + "/"
	}
	return prefix + "/page/" + strconv.Itoa(page+1) + "/"
}

func (l PathLinks) TagsURL(tags []string) string {
	return l.PageURL(0, tags)
}

// ListView is everything the post list page renders.
type ListView struct {
	Posts      []content.Post // posts on the current page; nil when out of range
	AllTags    []string
	Active     []string
	Page       int
	TotalPages int
	Links      Links
}
