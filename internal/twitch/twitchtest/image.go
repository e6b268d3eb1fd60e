package twitchtest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
)

// ThumbnailJPEG is a small JPEG served for every thumbnail request.
var ThumbnailJPEG = makeJPEG(64, 36)

func makeJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 7), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
