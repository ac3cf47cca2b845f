package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCS uploads objects to a Google Cloud Storage bucket. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or the runtime's default service account.
type GCS struct {
	client     *gcs.Client
	bucket     string
	publicBase string
}

func NewGCS(ctx context.Context, bucket, publicBase string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("access bucket %s: %w", bucket, err)
	}
	return &GCS{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (g *GCS) Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error) {
	ext, ok := Extension(contentType)
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	name := objectName(folder, ext, time.Now())
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", name, err)
	}

	url := g.publicBase + "/" + g.bucket + "/" + name
	slog.Info("object uploaded", "bucket", g.bucket, "object", name)
	return url, nil
}

func (g *GCS) Delete(ctx context.Context, url string) error {
	name, ok := g.objectFromURL(url)
	if !ok {
		return ErrForeignObject
	}
	if err := g.client.Bucket(g.bucket).Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", name, err)
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) objectFromURL(url string) (string, bool) {
	prefix := g.publicBase + "/" + g.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(url, prefix)
	return name, name != ""
}

func objectName(folder, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%d.%s", strings.Trim(folder, "/"), uuid.NewString(), now.UnixNano(), ext)
}
