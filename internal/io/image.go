package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// thumbnailQuality is the JPEG quality thumbnails are written with.
const thumbnailQuality = 85

// ImageService prepares clip thumbnails for saving next to the video.
//
// Example usage:
//
//	svc := NewImageService()
//	thumb, err := svc.Thumbnail(ctx, previewBytes, 320)
//	// thumb is JPEG whose longest edge is at most 320 pixels
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Thumbnail returns data as a JPEG whose longest edge is at most maxEdge
// pixels. The aspect ratio is preserved.
//
// A JPEG that already fits is returned unchanged. PNG and WebP input is
// always re-encoded.
func (s *ImageService) Thumbnail(ctx context.Context, data []byte, maxEdge int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxEdge < 1 {
		return nil, fmt.Errorf("invalid max edge %d", maxEdge)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}
	if format == "jpeg" && cfg.Width <= maxEdge && cfg.Height <= maxEdge {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	w, h := FitWithin(cfg.Width, cfg.Height, maxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FitWithin scales width x height down so neither edge exceeds maxEdge.
// Dimensions that already fit are returned as they are; results are never
// smaller than 1x1.
//
// Example:
//
//	FitWithin(480, 272, 240) // 240, 136
func FitWithin(width, height, maxEdge int) (int, int) {
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}
	if width >= height {
		h := height * maxEdge / width
		return maxEdge, max(h, 1)
	}
	w := width * maxEdge / height
	return max(w, 1), maxEdge
}
