package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_etl/internal/bootstrap"
	"github.com/locvowork/employee_etl/internal/logger"
)

var (
	envFiles  []string
	overrides bootstrap.Overrides
)

var rootCmd = &cobra.Command{
	Use:           "employee-etl",
	Short:         "Employee analysis pipeline over an embedded sample dataset",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and persist the employee detail tables",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog and pipeline runs over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables registered in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSliceVar(&envFiles, "env-file", nil, ".env files to load (default .env)")
	pf.StringVar(&overrides.WarehouseDir, "warehouse", "", "warehouse root directory (overrides WAREHOUSE_DIR)")
	pf.StringVar(&overrides.ReportPath, "report", "", "write an Excel report of the run (overrides REPORT_PATH)")
	pf.IntVar(&overrides.Workers, "workers", 0, "engine and writer parallelism (overrides WORKERS)")
	serveCmd.Flags().StringVar(&overrides.Addr, "addr", "", "listen address (overrides APP_PORT)")

	rootCmd.AddCommand(runCmd, serveCmd, tablesCmd)
}

// withApp initializes the application, hands it to fn and always closes it.
func withApp(ctx context.Context, fn func(*bootstrap.App) error) (err error) {
	app := bootstrap.NewApp()
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := app.Initialize(ctx, envFiles, overrides); err != nil {
		return err
	}
	return fn(app)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(app *bootstrap.App) error {
		res, err := app.RunPipeline(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Writes {
			fmt.Fprintf(out, "%s: %d rows, %d files at %s\n", w.Format, w.Rows, len(w.Files), w.Location)
		}
		return nil
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(app *bootstrap.App) error {
		return app.Serve(cmd.Context())
	})
}

func runTables(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(app *bootstrap.App) error {
		entries, err := app.ListTables(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tFORMAT\tROWS\tPARTITIONS\tLOCATION")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.Name, e.Format, e.RowCount, strings.Join(e.PartitionColumns, ","), e.Location)
		}
		return tw.Flush()
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.ErrorLog(ctx, err, "command failed")
		stop()
		os.Exit(1)
	}
}
