package core

import (
	"context"
	"io"
)

// FileStore abstracts access to uploaded assets (course images, logos, banners).
type FileStore interface {
	// Save persists the file under the given logical name and returns the
	// name it is retrievable by.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Open resolves a logical name to the file contents and its content type.
	Open(name string) (io.ReadCloser, string, error)
}
