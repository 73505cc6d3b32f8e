package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("UPLOAD_MAX_FILE_BYTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileBytes)
	assert.Equal(t, 10, cfg.Uploads.MaxFiles)
	assert.Equal(t, 3, cfg.Tickets.CodeAttempts)
	assert.Equal(t, 30*time.Second, cfg.Redis.StatsTTL())
}

func TestLoadRejectsS3WithoutBucket(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvParsingFallsBack(t *testing.T) {
	t.Setenv("UPLOAD_MAX_FILES", "many")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "nope")

	assert.Equal(t, 10, getEnvAsInt("UPLOAD_MAX_FILES", 10))
	assert.True(t, getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true))
}

func TestAccessTokenTTL(t *testing.T) {
	assert.Equal(t, time.Hour, AuthConfig{}.AccessTokenTTL())
	assert.Equal(t, 15*time.Minute, AuthConfig{AccessTokenTTLMinutes: 15}.AccessTokenTTL())
}
