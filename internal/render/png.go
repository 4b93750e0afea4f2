package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// WritePNG encodes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode image: %w", err)
	}
	return f.Close()
}
