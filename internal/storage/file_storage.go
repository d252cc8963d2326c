package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileScheme marks local references: file:///abs/path.
const FileScheme = "file"

// ErrOutsideRoot is returned for references that resolve outside Root.
var ErrOutsideRoot = errors.New("path is outside the image root")

// FileImageFetcher decodes images from the local file system. Bare paths
// and file:// URLs are accepted; relative paths resolve against Root. With a
// non-empty Root every reference must resolve below it.
type FileImageFetcher struct {
	Root   string
	limits Limits
}

func NewFileImageFetcher(root string, limits Limits) *FileImageFetcher {
	return &FileImageFetcher{Root: root, limits: limits}
}

// Path resolves ref to a file system path.
func (f *FileImageFetcher) Path(ref string) (string, error) {
	path := ref
	if strings.HasPrefix(ref, FileScheme+"://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("invalid file reference: %w", err)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("invalid file reference: remote host %q", u.Host)
		}
		path = u.Path
	}
	if path == "" {
		return "", fmt.Errorf("invalid file reference: empty path")
	}
	if f.Root == "" {
		return filepath.Clean(path), nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(filepath.Clean(f.Root), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, ref)
	}
	return path, nil
}

func (f *FileImageFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.Path(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := decode(file, f.limits)
	return img, err
}
