package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotConfigured = errors.New("file storage is not configured")
	ErrForeignObject = errors.New("url does not point into this bucket")
)

// Uploader stores user images and returns their public URLs.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, url string) error
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error {
	return ErrNotConfigured
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Extension returns the file extension for a supported image type.
func Extension(contentType string) (string, bool) {
	ext, ok := extensions[contentType]
	return ext, ok
}
