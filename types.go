package mdblog

import (
	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/views"
)

// Post is the content type every handler works with.
type Post = content.Post

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = content.ErrNotFound

func (c SiteConfig) viewConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}
