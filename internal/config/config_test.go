package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, time.Hour, cfg.ArtifactTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.RepeatTableHeader)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("ARTIFACT_TTL_MINUTES", "5")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "2")
	t.Setenv("REPORT_REPEAT_HEADER", "true")
	t.Setenv("UPLOAD_RATE_PER_MINUTE", "nope")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()

	assert.Equal(t, StorageRedis, cfg.StorageDriver)
	assert.Equal(t, 5*time.Minute, cfg.ArtifactTTL)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.RepeatTableHeader)
	assert.Equal(t, 30, cfg.UploadRate)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestArtifactKey(t *testing.T) {
	assert.Equal(t, "analysis:s1:pdf", CacheKey.ArtifactKey("s1", "pdf"))
}
