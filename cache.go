package mdblog

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/posts"
)

// PostCache is an in-memory cache of the post set, sorted newest first, with
// its tag list. Entries expire after ttl or on Invalidate.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	tags    []string
	fetched time.Time
	ttl     time.Duration
	source  content.Source
}

// NewPostCache creates a PostCache backed by the given source.
func NewPostCache(src content.Source, ttl time.Duration) *PostCache {
	return &PostCache{source: src, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	all, err := c.source.LoadAll(ctx)
	if err != nil {
		return err
	}
	sorted := posts.SortedByDate(all)
	c.posts = sorted
	c.tags = posts.Tags(sorted)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and tags after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]Post, []string, error) {
	c.mu.RLock()
	if c.valid() {
		list, tags := c.posts, c.tags
		c.mu.RUnlock()
		return list, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.tags, nil
}

// ListPosts returns all posts newest first, narrowed to those carrying every
// tag in tags.
func (c *PostCache) ListPosts(ctx context.Context, tags ...string) ([]Post, error) {
	list, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return posts.FilterByTags(list, tags), nil
}

// ListTags returns every tag in first-seen order over the sorted posts.
func (c *PostCache) ListTags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// GetPost returns a single post by id from the cache.
func (c *PostCache) GetPost(ctx context.Context, id int) (Post, error) {
	list, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return Post{}, err
	}
	return posts.ByID(list, id)
}
