package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Capturer writes timestamped PNG screenshots of the current frame.
type Capturer struct {
	outputDir string
	prefix    string
}

// NewCapturer returns a capturer writing <prefix>_<timestamp>.png files
// into outputDir. An empty outputDir writes to the working directory.
func NewCapturer(outputDir, prefix string) *Capturer {
	return &Capturer{outputDir: outputDir, prefix: prefix}
}

// Capture reads the back buffer and saves it. Call after drawing and
// before the buffer swap.
func (c *Capturer) Capture(width, height int32) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid capture size %dx%d", width, height)
	}
	pixels := make([]byte, int(width)*int(height)*4)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return c.save(pixels, int(width), int(height))
}

// save encodes the pixels as PNG, flipping vertically since OpenGL has
// its origin at the bottom-left.
func (c *Capturer) save(pixels []byte, width, height int) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", c.prefix, timestamp)
	if c.outputDir != "" {
		filename = filepath.Join(c.outputDir, filename)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcY := height - 1 - y
		srcOffset := srcY * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
