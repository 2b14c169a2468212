// Package posts holds read-only queries over a loaded post set.
package posts

import (
	"fmt"
	"sort"

	"github.com/eringen/mdblog/content"
)

// ByID returns the post with the given id or an error wrapping
// content.ErrNotFound.
func ByID(list []content.Post, id int) (content.Post, error) {
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return content.Post{}, fmt.Errorf("post %d: %w", id, content.ErrNotFound)
}

// SortedByDate returns a copy of list ordered most recent first. Posts with
// equal dates keep their input order; posts without a parsable date go last.
func SortedByDate(list []content.Post) []content.Post {
	out := make([]content.Post, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PublishedAt, out[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return out
}

// FilterByTags keeps the posts carrying every tag in required. An empty
// required set returns list unchanged.
func FilterByTags(list []content.Post, required []string) []content.Post {
	if len(required) == 0 {
		return list
	}
	var out []content.Post
	for _, p := range list {
		if hasAll(p, required) {
			out = append(out, p)
		}
	}
	return out
}

func hasAll(p content.Post, required []string) bool {
	for _, t := range required {
		if !p.HasTag(t) {
			return false
		}
	}
	return true
}

// Tags returns every distinct tag in list, in first-seen order.
func Tags(list []content.Post) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range list {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// Latest returns at most n posts from the head of list.
func Latest(list []content.Post, n int) []content.Post {
	if n < 0 {
		n = 0
	}
	if n > len(list) {
		n = len(list)
	}
	return list[:n]
}

// Related finds posts that share at least one tag with current.
func Related(current content.Post, list []content.Post) []content.Post {
	tagSet := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		tagSet[t] = struct{}{}
	}
	var related []content.Post
	for _, p := range list {
		if p.ID == current.ID {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[t]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}
