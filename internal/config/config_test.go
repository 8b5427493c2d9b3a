package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tpchkit/internal/errs"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.Equal(t, "tpch", cfg.Filestore.Bucket)
	assert.False(t, cfg.Loader.Strict.DateOrdering)
}

func TestParse(t *testing.T) {
	raw := []byte(`
log:
  level: debug
  format: console
database:
  driver: mysql
  dsn: "tpch:tpch@tcp(localhost:3306)/tpch?parseTime=true"
loader:
  workers: 4
  dir: /data/tpch
  strict:
    date_ordering: true
    total_price: true
    total_price_tolerance: "0.01"
`)
	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Loader.Workers)
	assert.Equal(t, "/data/tpch", cfg.Loader.Dir)
	assert.True(t, cfg.Loader.Strict.DateOrdering)
	assert.True(t, cfg.Loader.Strict.TotalPrice)
	assert.Equal(t, "0.01", cfg.Loader.Strict.TotalPriceTolerance)

	// Unset fields keep their defaults.
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.Equal(t, "localhost:9000", cfg.Filestore.Endpoint)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed yaml", "database: ["},
		{"unknown driver", "database:\n  driver: oracle"},
		{"negative workers", "loader:\n  workers: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tpchkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
