package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/mdblog"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Snapshot the content directory into SQLite",
	Long: `The build command parses every post in the content directory and
replaces the SQLite snapshot with them. Serve the snapshot with
--source sqlite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		c.Source = mdblog.SourceDir
		app := mdblog.New(c, mdblog.WithLogger(logger))
		defer app.Close()

		start := time.Now()
		n, err := app.Build(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %d posts in %s (%s)\n", n, filepath.Clean(c.DatabasePath), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the whole site to static files",
	Long: `The export command renders every page, feed and asset to the output
directory. List and tag pages link by path so any static host can serve
the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := mdblog.New(cfg, mdblog.WithLogger(logger))
		defer app.Close()

		start := time.Now()
		n, err := app.Export(cmd.Context(), cfg.OutputDir)
		if err != nil {
			return err
		}
		logger.Debug("export finished", zap.Duration("took", time.Since(start)))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files to %s\n", n, filepath.Clean(cfg.OutputDir))
		return nil
	},
}

func init() {
	buildCmd.Flags().String("db", "", "snapshot database path")
	exportCmd.Flags().String("out", "", "output directory")
	exportCmd.Flags().String("source", "", `post source, "dir" or "sqlite"`)
}
