package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 180, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func pngBase64(t *testing.T, width, height int) string {
	return base64.StdEncoding.EncodeToString(pngBytes(t, width, height))
}

func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		width       int
		height      int
	}{
		{"Valid PNG", "", false, 64, 48},
		{"Data URL prefix", "prefix", false, 10, 20},
		{"Empty string", "", true, 0, 0},
		{"Invalid base64", "!!!not-base64!!!", true, 0, 0},
		{"Undecodable bytes", base64.StdEncoding.EncodeToString([]byte("plainly not an image")), true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			if !tt.expectError {
				input = pngBase64(t, tt.width, tt.height)
				if tt.input == "prefix" {
					input = "data:image/png;base64," + input
				}
			}

			frame, err := DecodeBase64(input)
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected decode error")
				}
				if err != ErrInvalidImage {
					t.Errorf("Expected ErrInvalidImage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected decode error: %v", err)
			}
			if frame.Width != tt.width || frame.Height != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, frame.Width, frame.Height)
			}
			if frame.Format != "png" {
				t.Errorf("Expected png format, got %q", frame.Format)
			}
			if len(frame.Raw) == 0 {
				t.Error("Expected raw bytes to be preserved")
			}
		})
	}
}

func TestDecodeKeepsRawBytes(t *testing.T) {
	raw := pngBytes(t, 8, 8)
	frame, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(frame.Raw) != len(raw) {
		t.Errorf("Expected %d raw bytes, got %d", len(raw), len(frame.Raw))
	}
}
