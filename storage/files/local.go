package files

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core"
)

var (
	// ErrNotFound is returned when the named file does not exist, or when the
	// name is one the store could never have produced.
	ErrNotFound = errors.New("file not found")
	// ErrForbidden is returned for names escaping the store root, and for
	// uploads with a disallowed extension.
	ErrForbidden = errors.New("file access forbidden")
)

// image uploads only
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

type localStore struct {
	root string
}

var _ core.FileStore = (*localStore)(nil) // interface compliance check

// NewLocalStore stores uploads on the local filesystem under root.
func NewLocalStore(root string) (core.FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolving upload root")
	}
	if err = os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload root")
	}
	return &localStore{root: abs}, nil
}

// resolve maps a stored name to an absolute path, rejecting names that
// escape the root.
func (s *localStore) resolve(name string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrForbidden
	}
	return path, nil
}

func (s *localStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", ErrForbidden
	}
	stored := uuid.New().String() + ext

	path, err := s.resolve(stored)
	if err != nil {
		return "", err
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating upload")
	}
	defer func() { _ = f.Close() }()
	if _, err = io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "writing upload")
	}
	return stored, nil
}

func (s *localStore) Open(name string) (io.ReadCloser, string, error) {
	// stored names always carry an allowed extension, so anything else is
	// simply absent
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return nil, "", ErrNotFound
	}
	path, err := s.resolve(name)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", errors.Wrap(err, "opening file")
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}
