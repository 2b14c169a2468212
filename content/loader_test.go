package content_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
)

// echoRenderer wraps the body so tests can assert on what reached the renderer.
type echoRenderer struct{}

func (echoRenderer) Render(src []byte) (string, error) {
	return "<body>" + strings.TrimSpace(string(src)) + "</body>", nil
}

func writePost(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoader_LoadByID(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "3.md", `---
title: Spring Security
description: filters and chains
date: 2023-05-01
tags: Kotlin, Spring
---
Hello there`)

	l := content.NewLoader(dir, echoRenderer{})
	post, err := l.LoadByID(context.Background(), 3)
	require.NoError(t, err)

	require.Equal(t, 3, post.ID)
	require.Equal(t, "Spring Security", post.Title)
	require.Equal(t, "filters and chains", post.Description)
	require.Equal(t, "2023-05-01", post.Date)
	require.Equal(t, 2023, post.PublishedAt.Year())
	require.Equal(t, []string{"Kotlin", "Spring"}, post.Tags)
	require.Equal(t, "<body>Hello there</body>", post.Content)
	require.Equal(t, "/post/3/", post.URL)
	require.Equal(t, filepath.Join(dir, "3.md"), post.Source)
}

func TestLoader_LoadByIDNotFound(t *testing.T) {
	l := content.NewLoader(t.TempDir(), echoRenderer{})

	_, err := l.LoadByID(context.Background(), 42)
	require.ErrorIs(t, err, content.ErrNotFound)

	_, err = l.LoadByID(context.Background(), -1)
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestLoader_LoadByIDFallsBackToMDX(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "7.mdx", "---\ntitle: From MDX\ntags: [Go]\n---\nbody")

	post, err := content.NewLoader(dir, echoRenderer{}).LoadByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "From MDX", post.Title)
	require.Equal(t, []string{"Go"}, post.Tags)
}

func TestLoader_LoadByIDFindsEveryListedPost(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "007.md", "---\ntitle: Padded\n---\nbody")
	writePost(t, dir, "8.MD", "---\ntitle: Upper\n---\nbody")

	l := content.NewLoader(dir, echoRenderer{})
	all, err := l.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	for _, listed := range all {
		post, err := l.LoadByID(context.Background(), listed.ID)
		require.NoError(t, err, "post %d", listed.ID)
		require.Equal(t, listed.Title, post.Title)
		require.Equal(t, listed.Source, post.Source)
	}
	require.Equal(t, 7, all[0].ID)
	require.Equal(t, 8, all[1].ID)
}

func TestLoader_LoadByIDMissingDir(t *testing.T) {
	l := content.NewLoader(filepath.Join(t.TempDir(), "nope"), echoRenderer{})
	_, err := l.LoadByID(context.Background(), 1)
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "10.md", "---\ntitle: ten\ndate: 2023-01-10\ntags: a\n---\n")
	writePost(t, dir, "2.md", "---\ntitle: two\ndate: 2023.01.02\ntags:\n  - a\n  - b\n---\n")
	writePost(t, dir, "1.md", "---\ntitle: one\ndate: \"2023-01-01\"\ntags: \"\"\n---\n")
	writePost(t, dir, "README.md", "not a post")
	writePost(t, dir, "notes.txt", "not a post")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2"), 0o755))

	posts, err := content.NewLoader(dir, echoRenderer{}).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	require.Equal(t, []int{1, 2, 10}, []int{posts[0].ID, posts[1].ID, posts[2].ID})
	require.Empty(t, posts[0].Tags)
	require.Equal(t, []string{"a", "b"}, posts[1].Tags)
	require.Equal(t, "2023-01-02", posts[1].ShortDate())
	require.Equal(t, "2023-01-01", posts[0].Date)
}

func TestLoader_LoadAllDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "1.md", "---\ntitle: a\n---\n")
	writePost(t, dir, "1.mdx", "---\ntitle: b\n---\n")

	_, err := content.NewLoader(dir, echoRenderer{}).LoadAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate post id 1")
}

func TestLoader_LoadAllMissingDir(t *testing.T) {
	l := content.NewLoader(filepath.Join(t.TempDir(), "missing"), echoRenderer{})
	_, err := l.LoadAll(context.Background())
	require.Error(t, err)
}

func TestLoader_LoadAllCancelled(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "1.md", "---\ntitle: a\n---\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := content.NewLoader(dir, echoRenderer{}).LoadAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoader_RendersMarkdown(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "1.md", "---\ntitle: md\n---\n# Heading\n\nfirst line\nsecond line\n")

	post, err := content.NewLoader(dir, markdown.New()).LoadByID(context.Background(), 1)
	require.NoError(t, err)
	require.Contains(t, post.Content, `<h1 id="heading">Heading</h1>`)
	require.Contains(t, post.Content, "<br />")
}

func TestLoader_NextID(t *testing.T) {
	dir := t.TempDir()
	l := content.NewLoader(dir, echoRenderer{})

	next, err := l.NextID()
	require.NoError(t, err)
	require.Equal(t, 1, next)

	writePost(t, dir, "4.md", "---\ntitle: a\n---\n")
	writePost(t, dir, "9.mdx", "---\ntitle: b\n---\n")
	next, err = l.NextID()
	require.NoError(t, err)
	require.Equal(t, 10, next)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{"1.md", 1, true},
		{"12.mdx", 12, true},
		{"007.md", 7, true},
		{"1.MD", 1, true},
		{"-1.md", 0, false},
		{"+1.md", 0, false},
		{"abc.md", 0, false},
		{".md", 0, false},
		{"1.txt", 0, false},
	}
	for _, tt := range tests {
		id, ok := content.ParseID(tt.name)
		require.Equal(t, tt.ok, ok, tt.name)
		require.Equal(t, tt.id, id, tt.name)
	}
}

func TestSplitTags(t *testing.T) {
	require.Equal(t, []string{"Kotlin", "Spring"}, content.SplitTags("Kotlin, Spring"))
	require.Equal(t, []string{"a", "b"}, content.SplitTags(",a,,b,"))
	require.Nil(t, content.SplitTags(""))
}

func TestPost_HasTag(t *testing.T) {
	p := content.Post{Tags: []string{"Kotlin", "Spring"}}
	require.True(t, p.HasTag("Spring"))
	require.False(t, p.HasTag("spring"))
}
