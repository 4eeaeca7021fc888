package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/internal/logger"
	"github.com/locvowork/employee_etl/internal/service"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*service.Result, error)
}

// PipelineHandler serves the catalog and pipeline runs.
type PipelineHandler struct {
	catalog domain.CatalogRepository
	runner  Runner

	runMu sync.Mutex
	mu    sync.RWMutex
	last  *service.Result
}

func NewPipelineHandler(catalog domain.CatalogRepository, runner Runner) *PipelineHandler {
	return &PipelineHandler{catalog: catalog, runner: runner}
}

// Register mounts the routes on e.
func (h *PipelineHandler) Register(e *echo.Echo) {
	e.GET("/health", h.HealthHandler)

	api := e.Group("/api/v1")
	api.GET("/tables", h.ListTablesHandler)
	api.GET("/tables/:name", h.GetTableHandler)
	api.POST("/runs", h.RunHandler)
	api.GET("/results/:name", h.ResultHandler)
}

func (h *PipelineHandler) HealthHandler(c echo.Context) error {
	return ResponseSuccess(c, http.StatusOK, "ok", nil)
}

// ListTablesHandler handles GET /api/v1/tables?database=&limit=&offset=
func (h *PipelineHandler) ListTablesHandler(c echo.Context) error {
	filter := domain.TableFilter{Database: c.QueryParam("database")}
	var err error
	if v := c.QueryParam("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			return ResponseError(c, http.StatusBadRequest, "Invalid limit", err)
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			return ResponseError(c, http.StatusBadRequest, "Invalid offset", err)
		}
	}

	entries, err := h.catalog.List(c.Request().Context(), filter)
	if err != nil {
		return ResponseError(c, http.StatusInternalServerError, "Failed to list tables", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Tables retrieved successfully", entries)
}

// GetTableHandler handles GET /api/v1/tables/:name
func (h *PipelineHandler) GetTableHandler(c echo.Context) error {
	name, err := domain.ParseTableName(c.Param("name"))
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid table name", err)
	}

	entry, err := h.catalog.Get(c.Request().Context(), name)
	if errors.Is(err, domain.ErrTableNotFound) {
		return ResponseError(c, http.StatusNotFound, "Table not found", err)
	}
	if err != nil {
		return ResponseError(c, http.StatusInternalServerError, "Failed to get table", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Table retrieved successfully", entry)
}

// RunHandler handles POST /api/v1/runs. Only one run executes at a time.
func (h *PipelineHandler) RunHandler(c echo.Context) error {
	if !h.runMu.TryLock() {
		return ResponseError(c, http.StatusConflict, "A run is already in progress", nil)
	}
	defer h.runMu.Unlock()

	ctx := c.Request().Context()
	res, err := h.runner.Run(ctx)
	if err != nil {
		logger.ErrorLog(ctx, err, "pipeline run failed")
		return ResponseError(c, http.StatusInternalServerError, "Pipeline run failed", err)
	}

	h.mu.Lock()
	h.last = res
	h.mu.Unlock()
	return ResponseSuccess(c, http.StatusCreated, "Pipeline run completed", res)
}

// ResultHandler handles GET /api/v1/results/:name from the last run.
func (h *PipelineHandler) ResultHandler(c echo.Context) error {
	h.mu.RLock()
	last := h.last
	h.mu.RUnlock()
	if last == nil {
		return ResponseError(c, http.StatusNotFound, "No run has completed yet", nil)
	}

	name := c.Param("name")
	t, ok := last.Table(name)
	if !ok {
		return ResponseError(c, http.StatusNotFound, "Unknown result set "+name, nil)
	}
	return ResponseSuccess(c, http.StatusOK, "Result retrieved successfully", newTableDTO(name, t))
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) (*service.Result, error)

func (f RunnerFunc) Run(ctx context.Context) (*service.Result, error) { return f(ctx) }
