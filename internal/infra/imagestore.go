package infra

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/artenioreis/loja-caixa/internal/apperr"

	"github.com/google/uuid"
)

// maxImageSize caps product image uploads at 5 MiB.
const maxImageSize = 5 << 20

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ImageStore persists product images under a base directory and hands back
// paths relative to it, which is what gets stored on the product row.
type ImageStore struct {
	basePath string
}

func NewImageStore(basePath string) (*ImageStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create base dir: %w", err)
	}
	return &ImageStore{basePath: basePath}, nil
}

// Save validates and writes an uploaded image, returning its relative path.
// The stored name is a fresh uuid so uploads never collide or overwrite.
func (s *ImageStore) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", apperr.Validation("unsupported image type: %s", ext)
	}
	if file.Size > maxImageSize {
		return "", apperr.Validation("image exceeds the 5MB limit")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("imagestore: open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.basePath, name))
	if err != nil {
		return "", fmt.Errorf("imagestore: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("imagestore: write file: %w", err)
	}
	return name, nil
}

// Remove deletes a previously stored image; a missing file is not an error.
func (s *ImageStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.basePath, filepath.Base(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// BasePath is the directory served for static product images.
func (s *ImageStore) BasePath() string { return s.basePath }
