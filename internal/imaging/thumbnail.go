// Package imaging holds pure-Go image helpers for the pipeline: still-image
// thumbnail generation and best-effort EXIF probing of guest frames. Animated
// and video media go through the ffmpeg package instead.
package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// thumbnailJPEGQuality is the encode quality for generated thumbnails.
const thumbnailJPEGQuality = 80

// Thumbnail writes a resized copy of a still image (JPEG or PNG) at the given
// width, height scaled to preserve aspect ratio, encoded as JPEG. Unlike the
// ffmpeg path this never shells out, so still-image thumbnails are deterministic
// and cheap.
func Thumbnail(inputPath, outputPath string, width int) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var img image.Image
	ext := strings.ToLower(filepath.Ext(inputPath))
	switch ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(f)
	case ".png":
		img, err = png.Decode(f)
	default:
		return fmt.Errorf("unsupported still-image format for thumbnail: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth == 0 || origHeight == 0 {
		return fmt.Errorf("image %s has zero dimensions", inputPath)
	}

	height := origHeight * width / origWidth
	if height < 1 {
		height = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create thumbnail file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}

	log.Debug().
		Str("input", inputPath).
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", width).
		Int("new_height", height).
		Msg("Thumbnail generated (pure Go)")
	return nil
}
