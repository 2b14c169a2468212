// Package scaffold creates new mdblog sites and posts from embedded
// text/template files.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// SiteData holds the variables passed to the site templates.
type SiteData struct {
	SiteName string
	Author   string
	Date     string
}

// PostData holds the variables passed to the post template.
type PostData struct {
	Title string
	Date  string
	Tags  []string
}

var funcs = template.FuncMap{
	// quote renders s as a double-quoted YAML scalar.
	"quote": strconv.Quote,
}

// Site writes a new site into dir and returns the created file paths.
func Site(dir string, data SiteData) ([]string, error) {
	const root = "templates/site"

	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		out := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		if err := render(p, out, data); err != nil {
			return err
		}
		created = append(created, out)
		return nil
	})
	return created, err
}

// Post writes a new post file. It refuses to overwrite an existing file.
func Post(file string, data PostData) error {
	return render("templates/post.md.tmpl", file, data)
}

func render(name, out string, data any) error {
	src, err := Templates.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	tmpl, err := template.New(path.Base(name)).Funcs(funcs).Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return f.Close()
}
