package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/mdblog"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
	cfg     mdblog.SiteConfig
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdblog",
	Short: "A personal markdown blog built with Go, Echo, and templ",
	Long: `mdblog serves a folder of numbered markdown posts as a blog with
tag filtering and pagination. It can also snapshot the posts into SQLite
and export the whole site as static files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return err
		}
		return initializeLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", mdblog.EnvOr("MDBLOG_CONFIG", ""), "config file (default is ./mdblog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().String("content", "", "post directory")

	rootCmd.AddCommand(serveCmd, buildCmd, exportCmd, newCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"content": "content_dir",
	"addr":    "addr",
	"watch":   "watch",
	"source":  "source",
	"db":      "database_path",
	"out":     "output_dir",
}

// initializeConfig layers defaults, mdblog.yaml, MDBLOG_* variables and
// flags, in increasing priority, into cfg.
func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()
	setDefaults(v, mdblog.DefaultConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("mdblog")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MDBLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// setDefaults registers every config key so AutomaticEnv can resolve it
// during Unmarshal.
func setDefaults(v *viper.Viper, d mdblog.SiteConfig) {
	v.SetDefault("name", d.Name)
	v.SetDefault("url", d.URL)
	v.SetDefault("description", d.Description)
	v.SetDefault("author", d.Author)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("content_dir", d.ContentDir)
	v.SetDefault("source", d.Source)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("profile_path", d.ProfilePath)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("latest_posts", d.LatestPosts)
	v.SetDefault("keep_page_on_filter", d.KeepPageOnFilter)
	v.SetDefault("image_max_width", d.ImageMaxWidth)
	v.SetDefault("code_style", d.CodeStyle)
	v.SetDefault("soft_wraps", d.SoftWraps)
	v.SetDefault("raw_html", d.RawHTML)
	v.SetDefault("session_secret", d.SessionSecret)
	v.SetDefault("cookie_secure", d.CookieSecure)
	v.SetDefault("post_cache_ttl", d.PostCacheTTL)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("visitor_idle", d.VisitorIdle)
	v.SetDefault("visitor_limit", d.VisitorLimit)
	v.SetDefault("visitor_window", d.VisitorWindow)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
}

func initializeLogger() error {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := loggerConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mdblog version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mdblog %s\n", version)
	},
}
