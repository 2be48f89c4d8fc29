package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned when a payload cannot be decoded into a
// non-empty raster.
var ErrInvalidImage = errors.New("vision: invalid image data")

// Frame is a decoded image together with the original encoded bytes. The
// raw bytes are kept so the detection runtime receives exactly what the
// client captured; the raster is decoded here to validate the payload and to
// fix the dimensions used for coordinate normalization.
type Frame struct {
	Image  image.Image
	Format string
	Width  int
	Height int
	Raw    []byte
}

// DecodeBase64 decodes a transport-encoded image into a Frame. The input is
// a base64 string, optionally carrying a data-URL prefix
// (data:image/...;base64,) as sent by browser canvas captures. No resizing,
// color-space normalization, or EXIF handling is performed.
func DecodeBase64(s string) (*Frame, error) {
	if s == "" {
		return nil, ErrInvalidImage
	}
	if idx := strings.Index(s, ","); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidImage
	}
	return Decode(raw)
}

// Decode decodes raw image bytes into a Frame, rejecting undecodable
// payloads and zero-size rasters.
func Decode(raw []byte) (*Frame, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImage
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrInvalidImage
	}
	return &Frame{
		Image:  img,
		Format: format,
		Width:  width,
		Height: height,
		Raw:    raw,
	}, nil
}
