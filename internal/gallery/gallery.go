package gallery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is a flat directory of ephemeral files served under a static URL
// prefix. Artifact names are random, so there is nothing to index and
// nothing to collide with.
type Store struct {
	dir       string
	urlPrefix string
}

func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("gallery dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}
	return &Store{dir: dir, urlPrefix: "/static/"}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// SaveArtifact writes a produced image and returns its browser URL path.
func (s *Store) SaveArtifact(data []byte, mimeType string) (string, error) {
	name := uuid.New().String() + extensionFor(mimeType)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return s.urlPrefix + name, nil
}

// SaveUpload spools an uploaded reference image to disk and returns its
// filesystem path. Callers must remove it when the request ends.
func (s *Store) SaveUpload(r io.Reader) (string, error) {
	path := filepath.Join(s.dir, "upload_"+uuid.New().String())

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

// Remove deletes the given paths, ignoring files already gone.
func (s *Store) Remove(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
