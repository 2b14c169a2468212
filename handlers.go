package mdblog

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/paginate"
	"github.com/eringen/mdblog/posts"
	"github.com/eringen/mdblog/state"
	"github.com/eringen/mdblog/views"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// The stylesheet ships with the binary; everything else under /public
	// comes from the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/style.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/post/", a.handlePostList)
	e.GET("/post/page/:page/", a.handlePostPage)
	e.GET("/tag/:tag/", a.handleTag)
	e.GET("/tag/:tag/page/:page/", a.handleTag)
	e.GET("/post/:id/", a.handlePost)
	e.GET("/post/:id/:file", a.handlePostFile)
}

func (a *App) handleHome(c echo.Context) error {
	list, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	latest := posts.Latest(list, a.Config.LatestPosts)
	return Render(c, views.Home(a.Config.viewConfig(), a.Profile, latest))
}

// handlePostList renders the list from the visitor's state. The page and tags
// query parameters are dispatched first, tags before page, so a link carrying
// both lands on the page it names.
func (a *App) handlePostList(c echo.Context) error {
	st := a.visitorStore(c)
	if c.QueryParams().Has("tags") {
		st.Dispatch(state.SetTags{Tags: content.SplitTags(c.QueryParam("tags"))})
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, ok := parsePageNumber(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		st.Dispatch(state.SetPage{Page: page})
	}
	return a.renderList(c, st.State(), views.QueryLinks{}, false)
}

func (a *App) handlePostPage(c echo.Context) error {
	page, ok := parsePageNumber(c.Param("page"))
	if !ok {
		return echo.ErrNotFound
	}
	st := a.States.NewStore()
	st.Dispatch(state.SetPage{Page: page})
	return a.renderList(c, st.State(), views.PathLinks{}, true)
}

func (a *App) handleTag(c echo.Context) error {
	tag := pathParam(c.Param("tag"))
	page := 0
	if raw := c.Param("page"); raw != "" {
		var ok bool
		if page, ok = parsePageNumber(raw); !ok {
			return echo.ErrNotFound
		}
	}
	st := a.States.NewStore()
	st.Dispatch(state.SetTags{Tags: []string{tag}})
	st.Dispatch(state.SetPage{Page: page})
	return a.renderList(c, st.State(), views.PathLinks{}, true)
}

// renderList paginates the posts matching st. Path-addressed views 404 when
// the page does not exist; the stateful list renders its empty message.
func (a *App) renderList(c echo.Context, st state.State, links views.Links, strict bool) error {
	ctx := c.Request().Context()
	list, err := a.Cache.ListPosts(ctx, st.Tags...)
	if err != nil {
		return err
	}
	allTags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}

	pages := paginate.Pages(list, a.Config.PageSize)
	current, ok := paginate.At(pages, st.Page)
	if strict && !ok && (st.Page > 0 || len(st.Tags) > 0) {
		return echo.ErrNotFound
	}

	v := views.ListView{
		Posts:      current,
		AllTags:    allTags,
		Active:     st.Tags,
		Page:       st.Page,
		TotalPages: len(pages),
		Links:      links,
	}
	return RenderFragment(c, "list", views.PostList(a.Config.viewConfig(), v), views.PostListPartial(v))
}

func (a *App) handlePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, id)
	if err != nil {
		return err
	}
	list, err := a.Cache.ListPosts(ctx)
	if err != nil {
		return err
	}
	return Render(c, views.PostDetail(a.Config.viewConfig(), post, posts.Related(post, list)))
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, list)
}

func (a *App) handleFeed(c echo.Context) error {
	list, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, list)
}

// handleRobots serves the user's robots.txt when there is one and a
// permissive default pointing at the sitemap otherwise.
func (a *App) handleRobots(c echo.Context) error {
	custom := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(custom); err == nil {
		return c.File(custom)
	}
	body := "User-agent: *\nAllow: /\n\nSitemap: " + JoinURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	site := a.Config.viewConfig()
	if errors.Is(err, ErrNotFound) {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(site))
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, views.ServerError(site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
