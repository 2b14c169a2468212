package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
	"github.com/eringen/mdblog/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new site or post",
}

var newSiteCmd = &cobra.Command{
	Use:   "site <dir>",
	Short: "Create a new blog in dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if _, err := os.Stat(dir); err == nil {
			return fmt.Errorf("directory %q already exists", dir)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = toTitle(filepath.Base(dir))
		}
		author, _ := cmd.Flags().GetString("author")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new mdblog site: %s\n\n", dir)
		files, err := scaffold.Site(dir, scaffold.SiteData{
			SiteName: name,
			Author:   author,
			Date:     time.Now().Format(time.DateOnly),
		})
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "  created %s\n", f)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Done! Next steps:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  cd %s\n", dir)
		fmt.Fprintln(out, "  mdblog serve --watch")
		return nil
	},
}

var newPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Create the next numbered post in the content directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		tags, _ := cmd.Flags().GetString("tags")

		loader := content.NewLoader(cfg.ContentDir, markdown.New())
		id, err := loader.NextID()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.ContentDir, 0o755); err != nil {
			return err
		}

		path := filepath.Join(cfg.ContentDir, strconv.Itoa(id)+".md")
		err = scaffold.Post(path, scaffold.PostData{
			Title: title,
			Date:  time.Now().Format(time.DateOnly),
			Tags:  content.SplitTags(tags),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	newSiteCmd.Flags().String("name", "", "site name (default derived from dir)")
	newSiteCmd.Flags().String("author", "", "author name")
	newPostCmd.Flags().String("title", "Untitled", "post title")
	newPostCmd.Flags().String("tags", "", "comma separated tags")

	newCmd.AddCommand(newSiteCmd, newPostCmd)
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
