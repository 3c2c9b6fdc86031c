package viewer

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCapturerSave_FlipsVertically(t *testing.T) {
	dir := t.TempDir()
	c := NewCapturer(dir, "frame")

	// GL pixel rows run bottom-up: row 0 red/green, row 1 blue/white.
	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}

	path, err := c.save(pixels, 2, 2)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "frame_") || !strings.HasSuffix(base, ".png") {
		t.Errorf("unexpected filename %q", base)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("image size = %v, want 2x2", img.Bounds())
	}

	// The GL top row must land at the top of the image.
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0xffff {
		t.Errorf("top-left = (%d, %d, %d), want pure blue", r, g, b)
	}
	r, g, b, _ = img.At(0, 1).RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Errorf("bottom-left = (%d, %d, %d), want pure red", r, g, b)
	}
}

func TestCapturerSave_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")
	c := NewCapturer(dir, "frame")

	pixels := make([]byte, 1*1*4)
	path, err := c.save(pixels, 1, 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}
