package mdblog

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessImageDownscales(t *testing.T) {
	raw := writePNG(t, filepath.Join(t.TempDir(), "wide.png"), 1600, 400)

	out, err := processImage(raw, ".png", 800)
	if err != nil {
		t.Fatalf("processImage: %v", err)
	}
	if out.contentType != "image/png" {
		t.Errorf("contentType = %q, want image/png", out.contentType)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 200 {
		t.Errorf("size = %dx%d, want 800x200", cfg.Width, cfg.Height)
	}
}

func TestProcessImageKeepsOnePixelHeight(t *testing.T) {
	raw := writePNG(t, filepath.Join(t.TempDir(), "strip.png"), 2000, 1)

	out, err := processImage(raw, ".png", 800)
	if err != nil {
		t.Fatalf("processImage: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 1 {
		t.Errorf("size = %dx%d, want 800x1", cfg.Width, cfg.Height)
	}
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	raw := writePNG(t, filepath.Join(t.TempDir(), "small.png"), 100, 50)

	out, err := processImage(raw, ".png", 800)
	if err != nil {
		t.Fatalf("processImage: %v", err)
	}
	if !bytes.Equal(out.data, raw) {
		t.Error("small image should be served untouched")
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, err := processImage([]byte("not an image"), ".jpg", 800); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestImageCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, path, 1000, 100)

	c := NewImageCache(500)
	first, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	second, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if &first.data[0] != &second.data[0] {
		t.Error("second Get should come from the cache")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d, want 0", c.Len())
	}
	if _, err := c.Get(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHandlePostFile(t *testing.T) {
	a := newTestApp(t)
	dir := filepath.Join(a.Config.ContentDir, "3")
	writePNG(t, filepath.Join(dir, "wide.png"), 1600, 800)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain"), 0o644)

	rec := get(a, "/post/3/wide.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	cfg, _, err := image.DecodeConfig(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != a.Config.ImageMaxWidth {
		t.Errorf("width = %d, want %d", cfg.Width, a.Config.ImageMaxWidth)
	}

	if rec := get(a, "/post/3/notes.txt"); rec.Code != http.StatusOK || rec.Body.String() != "plain" {
		t.Errorf("notes.txt: status = %d body = %q", rec.Code, rec.Body.String())
	}

	for _, target := range []string{"/post/3/missing.png", "/post/3/.hidden", "/post/x/wide.png", "/post/4/wide.png"} {
		if rec := get(a, target); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
	}
}
