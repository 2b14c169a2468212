// Package content loads blog posts from a directory of markdown files with
// front matter.
package content

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("post not found")

// Post is a single blog entry: front matter metadata plus the rendered body.
type Post struct {
	ID          int
	Title       string
	Description string
	Date        string
	PublishedAt time.Time
	Tags        []string
	Content     string // rendered HTML
	URL         string
	Source      string // file the post was loaded from, empty for snapshots
}

// HasTag reports whether the post carries tag exactly.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ShortDate returns the date as YYYY-MM-DD when it could be parsed,
// otherwise the raw front matter value.
func (p Post) ShortDate() string {
	if p.PublishedAt.IsZero() {
		return p.Date
	}
	return p.PublishedAt.Format("2006-01-02")
}

// Source produces the full post set.
type Source interface {
	LoadAll(ctx context.Context) ([]Post, error)
}

// PostURL returns the canonical path of the post with the given id.
func PostURL(id int) string {
	return "/post/" + strconv.Itoa(id) + "/"
}

// SplitTags turns a comma-delimited tag string into a slice, trimming each
// entry and dropping empties. Order is preserved.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
