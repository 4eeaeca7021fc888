package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/pkg/frame"
	"github.com/locvowork/employee_etl/pkg/tableio"
)

func openSession(t *testing.T, mode tableio.SaveMode) *Session {
	t.Helper()
	s, err := Open(context.Background(), Config{
		WarehouseDir: filepath.Join(t.TempDir(), "warehouse"),
		SaveMode:     mode,
		Workers:      2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTable(t *testing.T, s *Session) *frame.Table {
	t.Helper()
	tbl, err := s.CreateTable("id INT, name STRING, State STRING", []frame.Row{
		{1, "ann", "ny"},
		{2, "bob", "ca"},
		{3, "cid", "ny"},
	})
	require.NoError(t, err)
	return tbl
}

func TestOpenCreatesWarehouseAndMetastore(t *testing.T) {
	s := openSession(t, "")

	assert.NotEmpty(t, s.RunID())
	assert.DirExists(t, s.WarehouseDir())
	assert.FileExists(t, filepath.Join(s.WarehouseDir(), metastoreFile))
	assert.Equal(t, filepath.Join(s.WarehouseDir(), "employee.db", "details"),
		s.Location(domain.TableName{Database: "employee", Table: "details"}))
}

func TestOpenRequiresWarehouse(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.Error(t, err)
}

func TestSaveAsTableRegistersEntry(t *testing.T) {
	s := openSession(t, "")
	ctx := context.Background()

	res, err := s.SaveAsTable(ctx, sampleTable(t, s), "employee.by_state", tableio.Parquet, "state")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []string{"State=ca", "State=ny"}, res.Partitions)
	assert.FileExists(t, filepath.Join(res.Location, tableio.SuccessMarker))

	entry, err := s.Table(ctx, "employee.by_state")
	require.NoError(t, err)
	assert.Equal(t, "parquet", entry.Format)
	assert.Equal(t, []string{"State"}, entry.PartitionColumns)
	assert.Equal(t, "id INT, name STRING, State STRING", entry.Schema)
	assert.Equal(t, s.RunID(), entry.RunID)
	assert.Equal(t, 3, entry.RowCount)
}

func TestSaveAsTableSaveModes(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrite replaces", func(t *testing.T) {
		s := openSession(t, tableio.SaveModeOverwrite)
		_, err := s.SaveAsTable(ctx, sampleTable(t, s), "plain", tableio.CSV)
		require.NoError(t, err)
		res, err := s.SaveAsTable(ctx, sampleTable(t, s).Filter(frame.EqualTo(frame.Col("State"), frame.Lit("ca"))), "plain", tableio.CSV)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Rows)

		entries, err := os.ReadDir(res.Location)
		require.NoError(t, err)
		assert.Len(t, entries, 2) // one data file plus the marker
	})

	t.Run("errorifexists refuses", func(t *testing.T) {
		s := openSession(t, tableio.SaveModeErrorIfExists)
		_, err := s.SaveAsTable(ctx, sampleTable(t, s), "plain", tableio.CSV)
		require.NoError(t, err)
		_, err = s.SaveAsTable(ctx, sampleTable(t, s), "plain", tableio.CSV)
		assert.True(t, errors.Is(err, tableio.ErrTableExists))
	})
}

func TestSaveAsTableRejectsFailedTable(t *testing.T) {
	s := openSession(t, "")
	bad := sampleTable(t, s).Select("missing")

	_, err := s.SaveAsTable(context.Background(), bad, "employee.bad", tableio.CSV)
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)

	_, err = s.Table(context.Background(), "employee.bad")
	assert.ErrorIs(t, err, domain.ErrTableNotFound)
}

func TestCloseOnce(t *testing.T) {
	s := openSession(t, "")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.CreateTable("id INT", nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.SaveAsTable(context.Background(), nil, "x", tableio.CSV)
	assert.ErrorIs(t, err, ErrClosed)
}
