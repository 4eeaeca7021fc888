package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/internal/seed"
	"github.com/locvowork/employee_etl/internal/service"
	"github.com/locvowork/employee_etl/internal/session"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	sess, err := session.Open(context.Background(), session.Config{WarehouseDir: filepath.Join(t.TempDir(), "wh")})
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	data, err := seed.Load()
	require.NoError(t, err)

	e := echo.New()
	NewPipelineHandler(sess.Catalog(), service.NewPipeline(sess, data)).Register(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	code, env := do(t, newServer(t), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestResultsBeforeRun(t *testing.T) {
	code, env := do(t, newServer(t), http.MethodGet, "/api/v1/results/avg_salary")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestRunThenBrowse(t *testing.T) {
	e := newServer(t)

	code, env := do(t, e, http.MethodPost, "/api/v1/runs")
	require.Equal(t, http.StatusCreated, code, env.Error)
	var summary struct {
		RunID string                `json:"run_id"`
		Steps []service.StepSummary `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Len(t, summary.Steps, 9)

	t.Run("result set", func(t *testing.T) {
		code, env := do(t, e, http.MethodGet, "/api/v1/results/m_employees")
		require.Equal(t, http.StatusOK, code)
		var dto TableDTO
		require.NoError(t, json.Unmarshal(env.Data, &dto))
		assert.Equal(t, []string{"employee_name", "dept_name"}, dto.Columns)
		assert.ElementsMatch(t, [][]interface{}{{"michel", "sales"}, {"maria", "sales"}}, dto.Rows)
	})

	t.Run("unknown result set", func(t *testing.T) {
		code, _ := do(t, e, http.MethodGet, "/api/v1/results/nope")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("list tables", func(t *testing.T) {
		code, env := do(t, e, http.MethodGet, "/api/v1/tables?database=employee")
		require.Equal(t, http.StatusOK, code)
		var entries []domain.TableEntry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "employee_details_csv", entries[0].Name.Table)
		assert.Equal(t, "employee_details_parquet", entries[1].Name.Table)
		assert.Equal(t, []string{"state"}, entries[1].PartitionColumns)
	})

	t.Run("get table", func(t *testing.T) {
		code, env := do(t, e, http.MethodGet, "/api/v1/tables/"+domain.EmployeeDetailsParquet)
		require.Equal(t, http.StatusOK, code)
		var entry domain.TableEntry
		require.NoError(t, json.Unmarshal(env.Data, &entry))
		assert.Equal(t, 7, entry.RowCount)
		assert.Equal(t, "parquet", entry.Format)
	})
}

func TestTableErrors(t *testing.T) {
	e := newServer(t)

	code, _ := do(t, e, http.MethodGet, "/api/v1/tables/employee.missing")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, e, http.MethodGet, "/api/v1/tables/a.b.c")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, e, http.MethodGet, "/api/v1/tables?limit=-1")
	assert.Equal(t, http.StatusBadRequest, code)
}

type failingRunner struct{}

func (failingRunner) Run(context.Context) (*service.Result, error) {
	return nil, errors.New("boom")
}

func TestRunFailure(t *testing.T) {
	e := echo.New()
	NewPipelineHandler(nil, failingRunner{}).Register(e)

	code, env := do(t, e, http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "boom", env.Error)
}
