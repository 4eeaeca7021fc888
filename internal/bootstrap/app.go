package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/employee_etl/internal/config"
	"github.com/locvowork/employee_etl/internal/database"
	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/internal/handler"
	"github.com/locvowork/employee_etl/internal/logger"
	"github.com/locvowork/employee_etl/internal/report"
	"github.com/locvowork/employee_etl/internal/seed"
	"github.com/locvowork/employee_etl/internal/service"
	"github.com/locvowork/employee_etl/internal/session"
	"github.com/locvowork/employee_etl/pkg/tableio"
)

// Overrides are command-line values that take precedence over the environment.
type Overrides struct {
	WarehouseDir string
	ReportPath   string
	Workers      int
	Addr         string
}

type App struct {
	Echo       *echo.Echo
	Session    *session.Session
	pipeline   *service.Pipeline
	reportPath string
	addr       string
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context, envFiles []string, o Overrides) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(envFiles...); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	sessCfg, err := sessionConfig(o)
	if err != nil {
		return err
	}
	a.reportPath = cfg.REPORT_PATH
	if o.ReportPath != "" {
		a.reportPath = o.ReportPath
	}
	a.addr = ":" + cfg.APP_PORT
	if o.Addr != "" {
		a.addr = o.Addr
	}

	sess, err := session.Open(ctx, sessCfg)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	a.Session = sess

	data, err := seed.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}
	a.pipeline = service.NewPipeline(sess, data)
	return nil
}

func sessionConfig(o Overrides) (session.Config, error) {
	cfg := config.DefaultEnvConfig
	mode, err := tableio.ParseSaveMode(cfg.SAVE_MODE)
	if err != nil {
		return session.Config{}, err
	}
	if _, err := tableio.NewWriter(tableio.Parquet, tableio.WithCompression(cfg.PARQUET_COMPRESSION)); err != nil {
		return session.Config{}, err
	}
	delim, size := utf8.DecodeRuneInString(cfg.CSV_DELIMITER)
	if size == 0 || size != len(cfg.CSV_DELIMITER) {
		return session.Config{}, fmt.Errorf("CSV_DELIMITER must be a single character, got %q", cfg.CSV_DELIMITER)
	}

	sc := session.Config{
		AppName:      cfg.APP_NAME,
		WarehouseDir: cfg.WAREHOUSE_DIR,
		Catalog: database.Config{
			Driver:          cfg.CATALOG_DRIVER,
			DSN:             cfg.CATALOG_DSN,
			MaxOpenConns:    cfg.CATALOG_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.CATALOG_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.CATALOG_CONN_MAX_LIFETIME,
		},
		SaveMode:           mode,
		Workers:            cfg.WORKERS,
		ParquetCompression: cfg.PARQUET_COMPRESSION,
		CSVDelimiter:       delim,
	}
	if o.WarehouseDir != "" {
		sc.WarehouseDir = o.WarehouseDir
	}
	if o.Workers > 0 {
		sc.Workers = o.Workers
	}
	return sc, nil
}

// RunPipeline executes one run and writes the report when a path is configured.
func (a *App) RunPipeline(ctx context.Context) (*service.Result, error) {
	res, err := a.pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}
	if a.reportPath != "" {
		exp, err := report.FromResult(res)
		if err != nil {
			return nil, err
		}
		if err := exp.ExportToExcel(a.Session.Context(ctx), a.reportPath); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ListTables returns every catalog entry.
func (a *App) ListTables(ctx context.Context) ([]domain.TableEntry, error) {
	return a.Session.Catalog().List(ctx, domain.TableFilter{})
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes() {
	h := handler.NewPipelineHandler(a.Session.Catalog(), handler.RunnerFunc(a.RunPipeline))
	h.Register(a.Echo)
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	a.Echo.HideBanner = true
	a.RegisterMiddlewares()
	a.RegisterRoutes()

	errCh := make(chan error, 1)
	go func() {
		logger.InfoLog(ctx, "HTTP server listening on %s", a.addr)
		if err := a.Echo.Start(a.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.InfoLog(ctx, "shutting down HTTP server")
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases the session.
func (a *App) Close() error {
	if a.Session == nil {
		return nil
	}
	return a.Session.Close()
}
