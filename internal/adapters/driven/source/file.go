package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// FileSource reads local files. It accepts plain paths and file:// URLs.
type FileSource struct{}

// NewFileSource creates a file source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := FilePath(location)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// FilePath converts a path or file:// URL to a cleaned local path.
func FilePath(location string) (string, error) {
	if Scheme(location) != "file" {
		return filepath.Clean(location), nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, location, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote file host %q", domain.ErrInvalidInput, u.Host)
	}
	return filepath.FromSlash(u.Path), nil
}
