// Package mdblog is a personal blog engine built with Go, Echo, and templ.
// Posts are markdown files with front matter; the site serves a profile home
// page, a paginated post list with tag filtering, post pages, RSS and a
// sitemap, and can export itself as static files.
package mdblog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
	"github.com/eringen/mdblog/profile"
	"github.com/eringen/mdblog/state"
)

// App is the central mdblog application. It wires together the post source,
// cache, visitor state, handlers, and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store // snapshot, open only when Source is "sqlite"
	Cache   *PostCache
	States  *state.Registry
	Profile profile.Profile

	log          *zap.Logger
	loader       *content.Loader
	source       content.Source
	limiter      *VisitorLimiter
	images       *ImageCache
	customRoutes []func(*App)
	ready        bool
}

// New creates a new mdblog App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}

	return a
}

// init builds every component and registers middleware and routes. It runs
// once; Start, Export and Build all call it.
func (a *App) init() error {
	if a.ready {
		return nil
	}

	if a.Config.SessionSecret == "" {
		a.Config.SessionSecret = randomSecret()
		a.log.Warn("no session secret configured, visitor state will not survive a restart")
	}

	md := markdown.New(
		markdown.WithStyle(a.Config.CodeStyle),
		markdown.WithHardWraps(!a.Config.SoftWraps),
		markdown.WithRawHTML(a.Config.RawHTML),
	)
	a.loader = content.NewLoader(a.Config.ContentDir, md, content.WithLogger(a.log.Named("content")))
	if a.source == nil {
		switch a.Config.Source {
		case SourceDir:
			a.source = a.loader
		case SourceSQLite:
			store, err := NewStore(a.Config.DatabasePath)
			if err != nil {
				return fmt.Errorf("mdblog: init store: %w", err)
			}
			a.Store = store
			a.source = store
		default:
			return fmt.Errorf("mdblog: unknown source %q", a.Config.Source)
		}
	}

	a.Cache = NewPostCache(a.source, a.Config.PostCacheTTL)

	prof, err := profile.Load(a.Config.ProfilePath)
	if err != nil {
		return fmt.Errorf("mdblog: %w", err)
	}
	a.Profile = prof

	a.States = state.NewRegistry(
		state.WithStoreOptions(state.WithPageReset(!a.Config.KeepPageOnFilter)),
		state.OnCreate(a.traceVisitor),
	)
	a.limiter = NewVisitorLimiter(a.Config.VisitorLimit, a.Config.VisitorWindow)
	a.images = NewImageCache(a.Config.ImageMaxWidth)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// traceVisitor logs every state transition of a new visitor at debug level.
func (a *App) traceVisitor(key string, s *state.Store) {
	log := a.log.Named("state").With(zap.String("visitor", key))
	log.Debug("visitor created")
	s.Subscribe(func(prev, next state.State, act state.Action) {
		log.Debug("dispatch",
			zap.String("action", fmt.Sprintf("%T", act)),
			zap.Int("page", next.Page),
			zap.Strings("tags", next.Tags),
		)
	})
}

// Start initializes the app and runs the server, the visitor sweeper, the
// limiter cleanup and, when enabled, the content watcher until ctx is done.
func (a *App) Start(ctx context.Context) error {
	if err := a.init(); err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.log.Info("listening", zap.String("addr", a.Config.Addr), zap.String("source", a.Config.Source))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mdblog: serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		a.log.Info("shutting down")
		return a.Echo.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		return a.States.Run(ctx, time.Minute, a.Config.VisitorIdle)
	})
	group.Go(func() error {
		return a.limiter.Run(ctx)
	})
	if a.Config.Watch {
		group.Go(func() error {
			return watchDir(ctx, a.Config.ContentDir, watchDebounce, a.invalidate, a.log.Named("watch"))
		})
	}
	return group.Wait()
}

// invalidate drops everything derived from the content directory.
func (a *App) invalidate() {
	a.Cache.Invalidate()
	a.images.Purge()
	a.log.Info("content changed, caches invalidated")
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
