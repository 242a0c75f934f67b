package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/imageinfo"
)

// UploadURLPrefix is where stored uploads are served.
const UploadURLPrefix = "/uploads/"

// storedName matches names produced by ImageStore.Save.
var storedName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(?:jpg|png|webp)$`)

// ImageStore keeps uploaded images on disk under uuid file names.
type ImageStore struct {
	dir string
}

// NewImageStore creates the upload directory if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save stores one uploaded file after checking its format and returns the
// image reference for the editor.
func (s *ImageStore) Save(fileHeader *multipart.FileHeader) (editor.Image, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return editor.Image{}, fmt.Errorf("failed to open file: %s", filepath.Base(fileHeader.Filename))
	}
	defer file.Close()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return editor.Image{}, errors.New("failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, io.LimitReader(file, constants.MaxUploadSize)); err != nil {
		tmp.Close()
		return editor.Image{}, errors.New("failed to save file")
	}
	if err := tmp.Close(); err != nil {
		return editor.Image{}, errors.New("failed to save file")
	}

	info, err := imageinfo.ProbeFile(tmpPath)
	if err != nil {
		return editor.Image{}, err
	}

	name := uuid.NewString() + info.Format.Extension
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return editor.Image{}, errors.New("failed to store file")
	}
	return editor.Image{Src: UploadURLPrefix + name, Width: info.Width, Height: info.Height}, nil
}

// SaveAll stores every file, stopping at the first rejected one. A batch
// is all or nothing: files stored before the failure are removed again.
func (s *ImageStore) SaveAll(files []*multipart.FileHeader) ([]editor.Image, error) {
	images := make([]editor.Image, 0, len(files))
	for _, fh := range files {
		img, err := s.Save(fh)
		if err != nil {
			s.Discard(images...)
			return nil, fmt.Errorf("%s: %w", filepath.Base(fh.Filename), err)
		}
		images = append(images, img)
	}
	return images, nil
}

// Discard removes stored files that never reached an editor. Sources that
// do not name a stored upload are skipped.
func (s *ImageStore) Discard(images ...editor.Image) {
	for _, img := range images {
		name, ok := strings.CutPrefix(img.Src, UploadURLPrefix)
		if !ok || !storedName.MatchString(name) {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, name))
	}
}

// Serve handles GET /uploads/{name}.
func (s *ImageStore) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !storedName.MatchString(name) {
		respondError(w, http.StatusNotFound, "upload not found")
		return
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "upload not found")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}
