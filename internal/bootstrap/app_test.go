package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_etl/internal/config"
)

func missingEnv(t *testing.T) []string {
	return []string{filepath.Join(t.TempDir(), "none.env")}
}

func TestInitializeRunAndList(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CSV_DELIMITER", ";")

	app := NewApp()
	defer app.Close()
	require.NoError(t, app.Initialize(context.Background(), missingEnv(t), Overrides{
		WarehouseDir: filepath.Join(dir, "wh"),
		ReportPath:   filepath.Join(dir, "run.xlsx"),
		Workers:      2,
	}))
	assert.Equal(t, filepath.Join(dir, "wh"), app.Session.WarehouseDir())

	res, err := app.RunPipeline(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Writes, 2)

	entries, err := app.ListTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	f, err := excelize.OpenFile(filepath.Join(dir, "run.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "employee_details")

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestSessionConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"save mode", "SAVE_MODE", "append"},
		{"compression", "PARQUET_COMPRESSION", "lz4-fast"},
		{"delimiter", "CSV_DELIMITER", ";;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			require.NoError(t, config.LoadEnvConfig(missingEnv(t)...))
			_, err := sessionConfig(Overrides{})
			assert.Error(t, err)
		})
	}
}

func TestSessionConfigOverrides(t *testing.T) {
	require.NoError(t, config.LoadEnvConfig(missingEnv(t)...))

	sc, err := sessionConfig(Overrides{WarehouseDir: "/tmp/wh", Workers: 9})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wh", sc.WarehouseDir)
	assert.Equal(t, 9, sc.Workers)
	assert.Equal(t, ',', sc.CSVDelimiter)
	assert.Equal(t, "sqlite", sc.Catalog.Driver)
}
