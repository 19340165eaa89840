package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_BACKEND", "MinIO")
	t.Setenv("GENERATOR_PROVIDER", "ollama")
	t.Setenv("COLLAB_TIMEOUT", "15s")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, "ollama", cfg.Generator.Provider)
	assert.Equal(t, 15*time.Second, cfg.Collaborators.Timeout)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_HOST", "PORT", "STORAGE_BACKEND", "EXTRACTOR_PROVIDER", "GENERATOR_PROVIDER", "COLLAB_TIMEOUT", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Empty(t, cfg.AppHost)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "./uploads", cfg.Storage.LocalPath)
	assert.Equal(t, "local", cfg.Extractor.Provider)
	assert.Equal(t, "gemini", cfg.Generator.Provider)
	assert.Equal(t, 60*time.Second, cfg.Collaborators.Timeout)
	assert.Equal(t, 20, cfg.MaxUploadMB)
	assert.True(t, cfg.Collaborators.BreakerEnabled)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "UTC"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, "2.5")
	assert.Equal(t, 2.5, getEnvFloat(key, 0))

	os.Setenv(key, "abc")
	assert.Equal(t, 1.0, getEnvFloat(key, 1.0))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration(key, time.Second))

	os.Setenv(key, "45")
	assert.Equal(t, 45*time.Second, getEnvDuration(key, time.Second))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}
