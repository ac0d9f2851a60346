package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("SCROLL_THRESHOLD_PX", "")

	cfg := Load()
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, 200, cfg.ScrollThresholdPx)
	assert.Equal(t, "valid", cfg.HasMorePolicy)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND", "REST")
	t.Setenv("REST_URL", "https://example.supabase.co")
	t.Setenv("PAGE_SIZE", "24")
	t.Setenv("MAX_PAGES", "not-a-number")

	cfg := Load()
	assert.Equal(t, BackendREST, cfg.Backend)
	assert.Equal(t, 24, cfg.PageSize)
	assert.Equal(t, 0, cfg.MaxPages, "invalid ints fall back to the default")
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{Backend: "mongo", PageSize: 1, MaxConcurrency: 1}
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)

	cfg = &Config{Backend: BackendREST, PageSize: 1, MaxConcurrency: 1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Backend: BackendMemory, PageSize: 0, MaxConcurrency: 1}
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=require", cfg.DSN())
}
