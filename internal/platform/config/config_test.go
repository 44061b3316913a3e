package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_DB_DSN", "postgres://u:p@localhost:5432/bookreview")
	t.Setenv("APP_AUTH_SECRET", "s3cret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBody)
	assert.Equal(t, 3*time.Second, cfg.DB.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.OriginList())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_HTTP_ADDR", ":9090")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("APP_DB_TIMEOUT", "5s")
	t.Setenv("APP_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.DB.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.OriginList())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_DB_DSN", "")
	t.Setenv("APP_AUTH_SECRET", "")
	os.Unsetenv("APP_DB_DSN")
	os.Unsetenv("APP_AUTH_SECRET")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_LOG_FORMAT", "xml")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	setRequired(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("http:\n  addr: \":7070\"\nratelimit:\n  burst: 3\n"), 0o644))
	t.Setenv(FileEnv, p)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	setRequired(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("http:\n  addr: \":7070\"\n"), 0o644))
	t.Setenv(FileEnv, p)
	t.Setenv("APP_HTTP_ADDR", ":6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.HTTP.Addr)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("APP_DB_DSN=from_file\n"), 0o644))
	t.Setenv("APP_DB_DSN", "from_env")

	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()
	assert.Equal(t, "from_env", os.Getenv("APP_DB_DSN"))
}

func TestCORSConfig_OriginList_Empty(t *testing.T) {
	assert.Nil(t, CORSConfig{Origins: " , "}.OriginList())
}
