package photo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessReencodesAsJPEG(t *testing.T) {
	res, err := Process(bytes.NewReader(pngBytes(t, 40, 30)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MIME != "image/jpeg" {
		t.Errorf("mime = %q", res.MIME)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("small image must keep its size, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessDownscales(t *testing.T) {
	res, err := Process(bytes.NewReader(pngBytes(t, 2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != MaxDimension || cfg.Height != MaxDimension/2 {
		t.Errorf("downscale kept aspect wrong: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	if _, err := Process(strings.NewReader("definitely not an image")); err == nil {
		t.Error("text input must be rejected")
	}
	// GIF sniffs as an image type we do not accept.
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	if _, err := Process(bytes.NewReader(gif)); err == nil {
		t.Error("gif input must be rejected")
	}
}

func TestStoreSaveOpenDelete(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	key, err := s.Save(bytes.NewReader(pngBytes(t, 20, 20)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q", key)
	}

	rc, mime, err := s.Open(key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if mime != "image/jpeg" || len(data) == 0 {
		t.Errorf("open: mime=%q len=%d", mime, len(data))
	}

	if err := s.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := s.Open(key); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("open after delete: %v", err)
	}
	// Deleting again is not an error.
	if err := s.Delete(key); err != nil {
		t.Errorf("double delete: %v", err)
	}
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../escape.jpg", "a/b.jpg", `a\b.jpg`} {
		if _, _, err := s.Open(key); err == nil {
			t.Errorf("key %q must be rejected", key)
		}
	}
}
