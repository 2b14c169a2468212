package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/mdblog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog over HTTP",
	Long: `The serve command starts the HTTP server. With --watch it also
watches the content directory and drops cached posts whenever a file
changes, so edits show up without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := mdblog.New(cfg, mdblog.WithLogger(logger))
		defer app.Close()

		logger.Info("serving",
			zap.String("addr", cfg.Addr),
			zap.String("url", cfg.URL),
			zap.String("source", cfg.Source),
			zap.String("content", cfg.ContentDir),
		)
		return app.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().Bool("watch", false, "reload posts when the content directory changes")
	serveCmd.Flags().String("source", "", `post source, "dir" or "sqlite"`)
}
