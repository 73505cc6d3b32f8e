// Package storage uploads ticket images to a blob store and removes them again.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrForeignURL is returned when a URL was not produced by the store asked to
// delete it.
var ErrForeignURL = errors.New("storage: url does not belong to this store")

// Object is a file ready for upload.
type Object struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BlobStore persists objects and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, folder string, obj Object) (string, error)
	Destroy(ctx context.Context, storedURL string) error
}

// objectKey builds folder/<uuid><ext>, keeping a lower-cased extension from
// the original filename.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	name := uuid.NewString() + ext
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// keyFromURL strips base from storedURL and returns the object key. Keys that
// would escape the base are rejected.
func keyFromURL(base, storedURL string) (string, error) {
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}
	u, err := url.Parse(storedURL)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(u.Host, baseURL.Host) {
		return "", ErrForeignURL
	}
	prefix := baseURL.Path + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(u.Path, prefix)
	if key == "" || path.Clean("/"+key) != "/"+key {
		return "", ErrForeignURL
	}
	return key, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
