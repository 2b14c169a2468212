package mdblog

import (
	"time"

	"go.uber.org/zap"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
)

// Post sources selectable through SiteConfig.Source.
const (
	SourceDir    = "dir"    // parse the content directory on every reload
	SourceSQLite = "sqlite" // read the snapshot written by Build
)

// SiteConfig holds all configuration for an mdblog site. Field tags let viper
// unmarshal it from mdblog.yaml, MDBLOG_* variables and flags.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	ContentDir   string `mapstructure:"content_dir"`   // Post files (default "posts")
	Source       string `mapstructure:"source"`        // "dir" or "sqlite" (default "dir")
	DatabasePath string `mapstructure:"database_path"` // Snapshot path (default "data/posts.db")
	ProfilePath  string `mapstructure:"profile_path"`  // Author profile YAML (default "profile.yaml")
	StaticDir    string `mapstructure:"static_dir"`    // User static assets (default "public")
	OutputDir    string `mapstructure:"output_dir"`    // Export target (default "dist")

	PageSize         int  `mapstructure:"page_size"`           // Posts per list page (default 4)
	LatestPosts      int  `mapstructure:"latest_posts"`        // Posts on the home page (default 3)
	KeepPageOnFilter bool `mapstructure:"keep_page_on_filter"` // Stay on the current page when tags change
	ImageMaxWidth    int  `mapstructure:"image_max_width"`     // Post images are downscaled past this (default 800)

	CodeStyle string `mapstructure:"code_style"` // Chroma style for code blocks (default "dracula")
	SoftWraps bool   `mapstructure:"soft_wraps"` // Keep single newlines inside paragraphs as spaces
	RawHTML   bool   `mapstructure:"raw_html"`   // Pass raw HTML in posts through unescaped

	SessionSecret string `mapstructure:"session_secret"` // Cookie key; random per process when empty
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL    time.Duration `mapstructure:"post_cache_ttl"`   // Post cache TTL (default 5min)
	Watch           bool          `mapstructure:"watch"`            // Invalidate the cache on content changes
	VisitorIdle     time.Duration `mapstructure:"visitor_idle"`     // Drop visitor state after this (default 30min)
	VisitorLimit    int           `mapstructure:"visitor_limit"`    // New visitors per IP per window (default 30)
	VisitorWindow   time.Duration `mapstructure:"visitor_window"`   // Limiter window (default 1min)
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Graceful shutdown budget (default 10s)
}

// DefaultConfig returns a SiteConfig with every default applied. The CLI
// feeds it to viper as the base layer.
func DefaultConfig() SiteConfig {
	var cfg SiteConfig
	cfg.setDefaults()
	return cfg
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "posts"
	}
	if c.Source == "" {
		c.Source = SourceDir
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/posts.db"
	}
	if c.ProfilePath == "" {
		c.ProfilePath = "profile.yaml"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.PageSize == 0 {
		c.PageSize = 4
	}
	if c.LatestPosts == 0 {
		c.LatestPosts = 3
	}
	if c.CodeStyle == "" {
		c.CodeStyle = markdown.DefaultStyle
	}
	if c.ImageMaxWidth == 0 {
		c.ImageMaxWidth = 800
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.VisitorIdle == 0 {
		c.VisitorIdle = 30 * time.Minute
	}
	if c.VisitorLimit == 0 {
		c.VisitorLimit = 30
	}
	if c.VisitorWindow == 0 {
		c.VisitorWindow = time.Minute
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the root logger. Components log through named children.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithSource overrides the post source selected by SiteConfig.Source.
func WithSource(src content.Source) Option {
	return func(a *App) {
		a.source = src
	}
}
