package mdblog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "posts.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPosts() []Post {
	return []Post{
		{
			ID:          1,
			Title:       "First",
			Description: "The first post",
			Date:        "2023-01-10",
			PublishedAt: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
			Tags:        []string{"Go", "Web"},
			Content:     "<p>one</p>",
			URL:         "/post/1/",
		},
		{
			ID:      2,
			Title:   "Undated",
			Date:    "someday",
			Content: "<p>two</p>",
			URL:     "/post/2/",
		},
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

// storedPost returns the snapshot row for id, or false when there is none.
func storedPost(t *testing.T, s *Store, id int) (Post, bool) {
	t.Helper()
	list, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}

func TestReplaceAllRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, testPosts()); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	got, ok := storedPost(t, s, 1)
	if !ok {
		t.Fatal("post 1 missing")
	}
	want := testPosts()[0]
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.Description != want.Description {
		t.Errorf("Description = %q, want %q", got.Description, want.Description)
	}
	if got.Date != want.Date {
		t.Errorf("Date = %q, want %q", got.Date, want.Date)
	}
	if !got.PublishedAt.Equal(want.PublishedAt) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, want.PublishedAt)
	}
	if got.Content != want.Content {
		t.Errorf("Content = %q, want %q", got.Content, want.Content)
	}
	if got.URL != "/post/1/" {
		t.Errorf("URL = %q, want %q", got.URL, "/post/1/")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "Go" || got.Tags[1] != "Web" {
		t.Errorf("Tags = %v, want [Go Web]", got.Tags)
	}

	undated, ok := storedPost(t, s, 2)
	if !ok {
		t.Fatal("post 2 missing")
	}
	if !undated.PublishedAt.IsZero() {
		t.Errorf("PublishedAt = %v, want zero", undated.PublishedAt)
	}
	if undated.Tags != nil {
		t.Errorf("Tags = %v, want nil", undated.Tags)
	}
}

func TestEmptyStoreServesNoPosts(t *testing.T) {
	s := setupTestStore(t)
	list, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("LoadAll = %v, want none", list)
	}
}

func TestReplaceAllReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, testPosts()); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if err := s.ReplaceAll(ctx, testPosts()[1:]); err != nil {
		t.Fatalf("second ReplaceAll failed: %v", err)
	}

	list, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("ListPosts = %v, want only post 2", list)
	}
	if _, ok := storedPost(t, s, 1); ok {
		t.Error("post 1 should be gone")
	}
}

func TestReplaceAllDuplicateIDRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, testPosts()); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	dup := append(testPosts(), Post{ID: 1, Title: "Dup"})
	if err := s.ReplaceAll(ctx, dup); err == nil {
		t.Fatal("expected error for duplicate id")
	}

	list, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d, want previous snapshot of 2 posts", len(list))
	}
}

func TestListPostsOrderedByID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := []Post{{ID: 9, Title: "nine"}, {ID: 3, Title: "three"}, {ID: 5, Title: "five"}}
	if err := s.ReplaceAll(ctx, in); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	list, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	want := []int{3, 5, 9}
	for i, p := range list {
		if p.ID != want[i] {
			t.Errorf("list[%d].ID = %d, want %d", i, p.ID, want[i])
		}
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{",Go,Web,", []string{"Go", "Web"}},
		{"Go,Web", []string{"Go", "Web"}},
		{",single,", []string{"single"}},
		{"", nil},
		{",,", nil},
		{", spaced , tags ,", []string{"spaced", "tags"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseTags(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("ParseTags(%q) = %v, want %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestFormatTags(t *testing.T) {
	if got := FormatTags([]string{"Go", "Web"}); got != ",Go,Web," {
		t.Errorf("FormatTags = %q, want %q", got, ",Go,Web,")
	}
	if got := FormatTags(nil); got != "" {
		t.Errorf("FormatTags(nil) = %q, want empty", got)
	}
}
