// Package imageinfo checks uploaded images against the supported formats
// and reads their pixel dimensions without decoding the pixel data.
package imageinfo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/webp" // register WEBP decoder
)

// ErrUnsupportedFormat is returned for images outside the allow-list.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format describes an accepted image format.
type Format struct {
	Name        string // name registered with image.RegisterFormat
	ContentType string
	Extension   string
}

// Formats lists the accepted upload formats.
var Formats = []Format{
	{Name: "jpeg", ContentType: "image/jpeg", Extension: ".jpg"},
	{Name: "png", ContentType: "image/png", Extension: ".png"},
	{Name: "webp", ContentType: "image/webp", Extension: ".webp"},
}

// Info is the result of probing an image.
type Info struct {
	Format Format
	Width  int
	Height int
}

// LookupFormat returns the accepted format registered under name.
func LookupFormat(name string) (Format, bool) {
	for _, f := range Formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// ContentTypes returns the accepted MIME types.
func ContentTypes() []string {
	types := make([]string, len(Formats))
	for i, f := range Formats {
		types[i] = f.ContentType
	}
	return types
}

// Probe reads just enough of r to identify the format and dimensions.
func Probe(r io.Reader) (Info, error) {
	cfg, name, err := image.DecodeConfig(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, ErrUnsupportedFormat
		}
		return Info{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	format, ok := LookupFormat(name)
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ProbeBytes probes an in-memory image.
func ProbeBytes(data []byte) (Info, error) {
	return Probe(bytes.NewReader(data))
}

// ProbeFile probes the image stored at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the upload store
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	return Probe(f)
}
