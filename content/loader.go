package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// Extensions lists the file extensions recognised as posts, in lookup order.
var Extensions = []string{".md", ".mdx"}

// Renderer turns a markdown body into HTML.
type Renderer interface {
	Render(src []byte) (string, error)
}

// frontMatter mirrors the metadata block at the top of a post file. Date and
// Tags stay loosely typed because authors write tags both as "a,b" and as a
// YAML list, and decoders disagree on whether an unquoted date is a string.
type frontMatter struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Date        any    `yaml:"date" toml:"date"`
	Tags        any    `yaml:"tags" toml:"tags"`
}

// Loader reads posts from a content directory.
type Loader struct {
	dir string
	md  Renderer
	log *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for skipped files and unparsable dates.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// NewLoader creates a Loader for dir that renders bodies with md.
func NewLoader(dir string, md Renderer, opts ...LoaderOption) *Loader {
	l := &Loader{dir: dir, md: md, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the content directory.
func (l *Loader) Dir() string {
	return l.dir
}

// LoadAll loads every post in the directory in ascending id order.
func (l *Loader) LoadAll(ctx context.Context) ([]Post, error) {
	files, err := l.index()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	posts := make([]Post, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.loadFile(id, files[id])
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// LoadByID loads the post with the given id. Any file LoadAll would pick up
// for that id is found, whatever its zero padding or extension case. A
// missing post yields an error wrapping ErrNotFound.
func (l *Loader) LoadByID(ctx context.Context, id int) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	files, err := l.index()
	if errors.Is(err, fs.ErrNotExist) {
		return Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Post{}, err
	}
	path, ok := files[id]
	if !ok {
		return Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return l.loadFile(id, path)
}

// NextID returns one more than the highest post id in the directory, or 1
// when the directory holds no posts.
func (l *Loader) NextID() (int, error) {
	files, err := l.index()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 1, nil
		}
		return 0, err
	}
	next := 1
	for id := range files {
		if id >= next {
			next = id + 1
		}
	}
	return next, nil
}

// index maps post ids to file paths.
func (l *Loader) index() (map[int]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", l.dir, err)
	}
	files := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := ParseID(e.Name())
		if !ok {
			l.log.Debug("skipping non-post file", zap.String("file", e.Name()))
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		if prev, dup := files[id]; dup {
			return nil, fmt.Errorf("duplicate post id %d: %s and %s", id, prev, path)
		}
		files[id] = path
	}
	return files, nil
}

func (l *Loader) loadFile(id int, path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, fmt.Errorf("read %s: %w", path, err)
	}

	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return Post{}, fmt.Errorf("parse front matter %s: %w", path, err)
	}

	rendered, err := l.md.Render(body)
	if err != nil {
		return Post{}, fmt.Errorf("render %s: %w", path, err)
	}

	date := normalizeDate(fm.Date)
	published, err := ParseDate(date)
	if err != nil && date != "" {
		l.log.Warn("unparsable post date", zap.Int("id", id), zap.String("date", date))
	}

	return Post{
		ID:          id,
		Title:       fm.Title,
		Description: fm.Description,
		Date:        date,
		PublishedAt: published,
		Tags:        normalizeTags(fm.Tags),
		Content:     rendered,
		URL:         PostURL(id),
		Source:      path,
	}, nil
}

// ParseID extracts the numeric id from a post file name such as "12.md".
func ParseID(name string) (int, bool) {
	ext := filepath.Ext(name)
	known := false
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			known = true
			break
		}
	}
	if !known {
		return 0, false
	}
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return 0, false
	}
	for _, r := range base {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(base)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseDate parses a front matter date. Dotted dates such as 2023.05.01 are
// accepted alongside ISO and RFC3339 forms.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return dateparse.ParseAny(s)
}

func normalizeDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(d)
	case time.Time:
		if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
			return d.Format("2006-01-02")
		}
		return d.Format(time.RFC3339)
	default:
		return fmt.Sprint(d)
	}
}

func normalizeTags(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return SplitTags(t)
	case []string:
		return SplitTags(strings.Join(t, ","))
	case []any:
		var tags []string
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return SplitTags(fmt.Sprint(t))
	}
}
