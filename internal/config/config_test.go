package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfigDefaults(t *testing.T) {
	err := LoadEnvConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "spark-warehouse", DefaultEnvConfig.WAREHOUSE_DIR)
	assert.Equal(t, "sqlite", DefaultEnvConfig.CATALOG_DRIVER)
	assert.Equal(t, 4, DefaultEnvConfig.WORKERS)
	assert.Equal(t, 20*time.Minute, DefaultEnvConfig.CATALOG_CONN_MAX_LIFETIME)
}

func TestLoadEnvConfigFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WAREHOUSE_DIR=/data/wh\nWORKERS=8\nCATALOG_CONN_MAX_LIFETIME=30\n"), 0o600))
	t.Setenv("SAVE_MODE", "errorifexists")
	t.Setenv("WORKERS", "not-a-number")
	// godotenv does not override variables that are already set
	t.Cleanup(func() { os.Unsetenv("WAREHOUSE_DIR"); os.Unsetenv("CATALOG_CONN_MAX_LIFETIME") })

	require.NoError(t, LoadEnvConfig(path))

	assert.Equal(t, "/data/wh", DefaultEnvConfig.WAREHOUSE_DIR)
	assert.Equal(t, "errorifexists", DefaultEnvConfig.SAVE_MODE)
	assert.Equal(t, 4, DefaultEnvConfig.WORKERS)
	assert.Equal(t, 30*time.Second, DefaultEnvConfig.CATALOG_CONN_MAX_LIFETIME)
}
