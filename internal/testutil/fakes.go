package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/identity"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/storage"
	"github.com/google/uuid"
)

// Verifier accepts the tokens registered with Add.
type Verifier struct {
	mu       sync.Mutex
	profiles map[string]identity.Profile
}

func NewVerifier() *Verifier {
	return &Verifier{profiles: map[string]identity.Profile{}}
}

func (v *Verifier) Add(token string, p identity.Profile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profiles[token] = p
}

func (v *Verifier) Verify(_ context.Context, token string) (*identity.Profile, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.profiles[token]
	if !ok {
		return nil, identity.ErrInvalidIdentity
	}
	return &p, nil
}

const UploadBase = "https://storage.test/bucket/"

// Uploader keeps uploaded objects in memory.
type Uploader struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
	// FailDelete makes every Delete return an error.
	FailDelete bool
}

func NewUploader() *Uploader {
	return &Uploader{Objects: map[string][]byte{}}
}

func (u *Uploader) Upload(_ context.Context, r io.Reader, contentType, folder string) (string, error) {
	ext, ok := storage.Extension(contentType)
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	url := UploadBase + folder + "/" + uuid.NewString() + "." + ext
	u.Objects[url] = data
	return url, nil
}

func (u *Uploader) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, UploadBase) {
		return storage.ErrForeignObject
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.FailDelete {
		return fmt.Errorf("delete %s: backend unavailable", url)
	}
	delete(u.Objects, url)
	u.Deleted = append(u.Deleted, url)
	return nil
}

func (u *Uploader) DeletedURLs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.Deleted...)
}
