package mdblog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/image/draw"
)

const jpegQuality = 80

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

func isImagePath(p string) bool {
	_, ok := imageTypes[strings.ToLower(path.Ext(p))]
	return ok
}

// processedImage is a post image ready to serve.
type processedImage struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// ImageCache holds downscaled post images keyed by file path. Entries are
// refreshed when the file's modification time changes.
type ImageCache struct {
	maxWidth int
	entries  *xsync.MapOf[string, processedImage]
}

// NewImageCache creates an ImageCache that downscales images wider than
// maxWidth.
func NewImageCache(maxWidth int) *ImageCache {
	return &ImageCache{
		maxWidth: maxWidth,
		entries:  xsync.NewMapOf[string, processedImage](),
	}
}

// Get returns the processed image at file, decoding and resizing it on the
// first request.
func (c *ImageCache) Get(file string) (processedImage, error) {
	info, err := os.Stat(file)
	if err != nil {
		return processedImage{}, err
	}
	if cached, ok := c.entries.Load(file); ok && cached.modTime.Equal(info.ModTime()) {
		return cached, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return processedImage{}, err
	}
	img, err := processImage(raw, strings.ToLower(filepath.Ext(file)), c.maxWidth)
	if err != nil {
		return processedImage{}, fmt.Errorf("%s: %w", file, err)
	}
	img.modTime = info.ModTime()
	c.entries.Store(file, img)
	return img, nil
}

// Purge drops every cached image.
func (c *ImageCache) Purge() {
	c.entries.Range(func(key string, _ processedImage) bool {
		c.entries.Delete(key)
		return true
	})
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	return c.entries.Size()
}

// processImage downscales raw to maxWidth keeping the aspect ratio. PNGs stay
// PNG, other formats are re-encoded as JPEG. Images already narrow enough, and
// GIFs (which may be animated), are served untouched.
func processImage(raw []byte, ext string, maxWidth int) (processedImage, error) {
	contentType := imageTypes[ext]
	if ext == ".gif" {
		return processedImage{data: raw, contentType: contentType}, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}
	if maxWidth <= 0 || cfg.Width <= maxWidth {
		return processedImage{data: raw, contentType: contentType}, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	newH := max(h*maxWidth/w, 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return processedImage{}, fmt.Errorf("encode png: %w", err)
		}
		return processedImage{data: buf.Bytes(), contentType: "image/png"}, nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return processedImage{data: buf.Bytes(), contentType: "image/jpeg"}, nil
}

// handlePostFile serves a file from the post's asset directory
// (<content>/<id>/<file>). Images are downscaled; anything else is sent as is.
func (a *App) handlePostFile(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return echo.ErrNotFound
	}
	name := pathParam(c.Param("file"))
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return echo.ErrNotFound
	}
	file := filepath.Join(a.Config.ContentDir, strconv.Itoa(id), name)

	if !isImagePath(name) {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			return echo.ErrNotFound
		}
		return c.File(file)
	}

	img, err := a.images.Get(file)
	if errors.Is(err, fs.ErrNotExist) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLastModified, img.modTime.UTC().Format(http.TimeFormat))
	return c.Blob(http.StatusOK, img.contentType, img.data)
}
