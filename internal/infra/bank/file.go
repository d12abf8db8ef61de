package bank

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSource reads files from a local directory.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Name identifies the source in logs and metrics.
func (s *FileSource) Name() string { return "file" }

// Fetch returns the content of dir/name. Names cannot escape dir.
func (s *FileSource) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", name, ErrFileNotFound)
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	return string(data), nil
}
