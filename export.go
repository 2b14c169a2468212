package mdblog

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/mdblog/paginate"
	"github.com/eringen/mdblog/views"
)

// exportTarget is one file of a static export: the URL path it will be
// served under and the request that renders it.
type exportTarget struct {
	path    string
	request string
	status  int
}

// Export renders every page of the site through the router and writes the
// responses under dir, one file per URL. List and tag pages use path-based
// links so the result works on any static file host. It returns the number
// of files written.
func (a *App) Export(ctx context.Context, dir string) (int, error) {
	if err := a.init(); err != nil {
		return 0, err
	}
	targets, err := a.exportTargets(ctx)
	if err != nil {
		return 0, err
	}
	log := a.log.Named("export")
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := a.exportOne(ctx, dir, t); err != nil {
			return 0, err
		}
		log.Debug("wrote", zap.String("path", t.path))
	}
	log.Info("export complete", zap.String("dir", dir), zap.Int("files", len(targets)))
	return len(targets), nil
}

func (a *App) exportTargets(ctx context.Context) ([]exportTarget, error) {
	all, err := a.Cache.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	links := views.PathLinks{}
	ok := func(p string) exportTarget { return exportTarget{path: p, request: p, status: http.StatusOK} }

	targets := []exportTarget{
		ok("/"),
		ok("/sitemap.xml"),
		ok("/feed.xml"),
		ok("/robots.txt"),
		ok("/public/style.css"),
		{path: "/404.html", request: "/404/", status: http.StatusNotFound},
	}

	// The first list page lives at /post/, which the server renders from
	// visitor state; export it from the stateless /post/page/1/ route.
	listPages := max(len(paginate.Pages(all, a.Config.PageSize)), 1)
	for i := 0; i < listPages; i++ {
		targets = append(targets, exportTarget{
			path:    links.PageURL(i, nil),
			request: "/post/page/" + strconv.Itoa(i+1) + "/",
			status:  http.StatusOK,
		})
	}

	for _, tag := range tags {
		tagged, err := a.Cache.ListPosts(ctx, tag)
		if err != nil {
			return nil, err
		}
		for i := range paginate.Pages(tagged, a.Config.PageSize) {
			targets = append(targets, ok(links.PageURL(i, []string{tag})))
		}
	}

	for _, p := range all {
		targets = append(targets, ok(p.URL))
		files, err := postFiles(a.Config.ContentDir, p.ID)
		if err != nil {
			return nil, err
		}
		for _, name := range files {
			targets = append(targets, ok(p.URL+url.PathEscape(name)))
		}
	}

	static, err := staticFiles(a.Config.StaticDir)
	if err != nil {
		return nil, err
	}
	for _, rel := range static {
		if rel == "style.css" {
			continue
		}
		targets = append(targets, ok("/public/"+escapePath(rel)))
	}
	return targets, nil
}

func (a *App) exportOne(ctx context.Context, dir string, t exportTarget) error {
	req := httptest.NewRequest(http.MethodGet, t.request, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != t.status {
		return fmt.Errorf("export %s: status %d, want %d", t.request, rec.Code, t.status)
	}

	p, err := url.PathUnescape(t.path)
	if err != nil {
		return fmt.Errorf("export %s: %w", t.path, err)
	}
	if strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	file := filepath.Join(dir, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, rec.Body.Bytes(), 0o644)
}

// postFiles lists the regular files in a post's asset directory.
func postFiles(contentDir string, id int) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(contentDir, strconv.Itoa(id)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// staticFiles lists every file under dir as slash-separated relative paths.
func staticFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}

func escapePath(rel string) string {
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// Build loads every post from the content directory and replaces the SQLite
// snapshot with them. It returns the number of posts stored.
func (a *App) Build(ctx context.Context) (int, error) {
	if err := a.init(); err != nil {
		return 0, err
	}
	list, err := a.loader.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("mdblog: build: %w", err)
	}

	store := a.Store
	if store == nil {
		store, err = NewStore(a.Config.DatabasePath)
		if err != nil {
			return 0, fmt.Errorf("mdblog: build: %w", err)
		}
		defer store.Close()
	}
	if err := store.ReplaceAll(ctx, list); err != nil {
		return 0, fmt.Errorf("mdblog: build: %w", err)
	}
	a.Cache.Invalidate()
	a.log.Named("build").Info("snapshot written", zap.String("db", a.Config.DatabasePath), zap.Int("posts", len(list)))
	return len(list), nil
}
