package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore writes images below a directory that the HTTP server exposes
// under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore prepares dir and returns the store.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the root directory served for uploads.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, folder string, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(folder, obj.Filename)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("local upload %q: %w", key, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("local upload %q: %w", key, err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("local upload %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("local upload %q: %w", key, err)
	}
	return joinURL(s.baseURL, key), nil
}

func (s *LocalStore) Destroy(ctx context.Context, storedURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := keyFromURL(s.baseURL, storedURL)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil {
		return fmt.Errorf("local delete %q: %w", key, err)
	}
	return nil
}
