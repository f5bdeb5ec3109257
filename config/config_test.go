package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	check.Equal(t, ":8080", cfg.Addr)
	check.Equal(t, StoreMemory, cfg.Store)
	check.Equal(t, PublisherNone, cfg.Publisher)
	check.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auctiond.toml")
	content := `
addr = ":9090"
store = "postgres"
database_url = "postgres://localhost/auctions"
log_level = "debug"
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	check.Equal(t, ":9090", cfg.Addr)
	check.Equal(t, StorePostgres, cfg.Store)
	check.Equal(t, "postgres://localhost/auctions", cfg.DatabaseURL)
	check.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.NoError(t, err)
	check.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auctiond.toml")
	assert.NoError(t, os.WriteFile(path, []byte(`addr = ":9090"`), 0o644))

	t.Setenv("AUCTIOND_ADDR", ":7070")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	assert.NoError(t, err)
	check.Equal(t, ":7070", cfg.Addr)
	check.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("AUCTIOND_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	check.Error(t, err)
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("AUCTIOND_STORE", "cassandra")
	_, err := Load("")
	check.Error(t, err)
}

func TestLoad_UnknownPublisher(t *testing.T) {
	t.Setenv("AUCTIOND_PUBLISHER", "kafka")
	_, err := Load("")
	check.Error(t, err)
}
