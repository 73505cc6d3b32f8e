package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("/resolvet/tickets/", "Screen Shot.PNG")
	assert.True(t, strings.HasPrefix(key, "resolvet/tickets/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	assert.NotContains(t, objectKey("tmp", "noext"), ".")
}

func TestKeyFromURL(t *testing.T) {
	cases := []struct {
		name    string
		base    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain", "http://cdn.test/uploads", "http://cdn.test/uploads/resolvet/tickets/a.png", "resolvet/tickets/a.png", false},
		{"trailing slash base", "http://cdn.test/uploads/", "http://cdn.test/uploads/a.png", "a.png", false},
		{"other host", "http://cdn.test/uploads", "http://evil.test/uploads/a.png", "", true},
		{"other prefix", "http://cdn.test/uploads", "http://cdn.test/static/a.png", "", true},
		{"traversal", "http://cdn.test/uploads", "http://cdn.test/uploads/../etc/passwd", "", true},
		{"empty key", "http://cdn.test/uploads", "http://cdn.test/uploads/", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := keyFromURL(tc.base, tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:3001/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Upload(ctx, "resolvet/tmp", Object{
		Filename:    "a.png",
		ContentType: "image/png",
		Size:        3,
		Body:        strings.NewReader("png"),
	})
	require.NoError(t, err)

	key, err := keyFromURL("http://localhost:3001/uploads", url)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png", string(content))

	require.NoError(t, store.Destroy(ctx, url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Destroy(ctx, "http://elsewhere/uploads/x.png"), ErrForeignURL)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test", publicBaseURL(config.S3Config{PublicBaseURL: "https://cdn.test/", Bucket: "b"}))
	assert.Equal(t, "http://minio:9000/b", publicBaseURL(config.S3Config{Endpoint: "http://minio:9000", Bucket: "b"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBaseURL(config.S3Config{Bucket: "b", Region: "eu-west-1"}))
}
