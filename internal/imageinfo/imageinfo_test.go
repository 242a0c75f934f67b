package imageinfo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

// losslessWebP builds a minimal VP8L header for a w x h image.
func losslessWebP(w, h int) []byte {
	bits := uint32(w-1) | uint32(h-1)<<14
	chunk := []byte{0x2f, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(chunk[1:], bits)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+8+len(chunk)+1))
	buf.WriteString("WEBPVP8L")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(chunk)))
	buf.Write(chunk)
	buf.WriteByte(0) // pad to even length
	return buf.Bytes()
}

func TestProbe_AcceptedFormats(t *testing.T) {
	var pngBuf, jpegBuf bytes.Buffer
	if err := png.Encode(&pngBuf, testImage(40, 30)); err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(&jpegBuf, testImage(16, 24), nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		data        []byte
		contentType string
		w, h        int
	}{
		{"png", pngBuf.Bytes(), "image/png", 40, 30},
		{"jpeg", jpegBuf.Bytes(), "image/jpeg", 16, 24},
		{"webp", losslessWebP(3, 2), "image/webp", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ProbeBytes(tt.data)
			if err != nil {
				t.Fatalf("ProbeBytes: %v", err)
			}
			if info.Format.ContentType != tt.contentType {
				t.Errorf("content type = %q, want %q", info.Format.ContentType, tt.contentType)
			}
			if info.Width != tt.w || info.Height != tt.h {
				t.Errorf("dimensions = %dx%d, want %dx%d", info.Width, info.Height, tt.w, tt.h)
			}
		})
	}
}

func TestProbe_RejectsOtherFormats(t *testing.T) {
	var gifBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, testImage(4, 4), nil); err != nil {
		t.Fatal(err)
	}
	// image/gif is registered by the test binary but not accepted.
	if _, err := ProbeBytes(gifBuf.Bytes()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("gif: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ProbeBytes([]byte("%PDF-1.7 not an image")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("pdf: expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProbeFile(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(7, 9)); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := ProbeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 7 || info.Height != 9 || info.Format.Extension != ".png" {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := ProbeFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestContentTypes(t *testing.T) {
	got := ContentTypes()
	if len(got) != 3 || got[0] != "image/jpeg" || got[2] != "image/webp" {
		t.Errorf("ContentTypes = %v", got)
	}
}
