package mdblog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/mdblog/content"
)

// Store wraps a SQLite database holding a snapshot of the rendered post set.
// Build writes it; the server can read from it instead of the content
// directory.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a build replaces the snapshot; the busy
	// timeout makes the writer wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    date TEXT NOT NULL,
    published_at TEXT NOT NULL,
    tags TEXT NOT NULL,
    content TEXT NOT NULL
);
`)
	return err
}

// ReplaceAll swaps the stored snapshot for list in a single transaction.
func (s *Store) ReplaceAll(ctx context.Context, list []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts (id, title, description, date, published_at, tags, content) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range list {
		publishedAt := ""
		if !p.PublishedAt.IsZero() {
			publishedAt = p.PublishedAt.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Description, p.Date, publishedAt, FormatTags(p.Tags), p.Content); err != nil {
			return fmt.Errorf("insert post %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// ListPosts returns every stored post in ascending id order.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, date, published_at, tags, content FROM posts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// LoadAll implements content.Source so a snapshot can back the post cache.
func (s *Store) LoadAll(ctx context.Context) ([]Post, error) {
	return s.ListPosts(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var p Post
	var publishedAt, tags string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Date, &publishedAt, &tags, &p.Content); err != nil {
		return Post{}, err
	}
	if publishedAt != "" {
		t, err := time.Parse(time.RFC3339, publishedAt)
		if err != nil {
			return Post{}, fmt.Errorf("post %d: published_at: %w", p.ID, err)
		}
		p.PublishedAt = t
	}
	p.Tags = ParseTags(tags)
	p.URL = content.PostURL(p.ID)
	return p, nil
}

// FormatTags encodes tags as ",a,b,", the inverse of ParseTags.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
