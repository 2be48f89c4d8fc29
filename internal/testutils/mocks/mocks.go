package mocks

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

// PNGBytes builds a solid-color PNG of the given size, standing in for a
// captured camera frame in tests.
func PNGBytes(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 180, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGBase64 builds a solid-color PNG and returns it base64-encoded, the way
// clients submit captured images.
func PNGBase64(width, height int) string {
	return base64.StdEncoding.EncodeToString(PNGBytes(width, height))
}
