// Package report renders run result sets into an Excel workbook.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_etl/internal/logger"
	"github.com/locvowork/employee_etl/internal/service"
	"github.com/locvowork/employee_etl/pkg/frame"
)

const (
	minColWidth = 10
	maxColWidth = 50
	// flush the stream writer every flushRows rows
	flushRows = 1000
)

type sheet struct {
	name  string
	table *frame.Table
}

// Exporter collects tables and writes them as one sheet each.
type Exporter struct {
	sheets []sheet
}

func NewExporter() *Exporter {
	return &Exporter{}
}

// FromResult adds a summary sheet followed by one sheet per result set.
func FromResult(res *service.Result) (*Exporter, error) {
	e := NewExporter()
	summary, err := summaryTable(res)
	if err != nil {
		return nil, err
	}
	e.AddSheet("summary", summary)
	for _, name := range res.Names() {
		t, _ := res.Table(name)
		e.AddSheet(name, t)
	}
	return e, nil
}

func summaryTable(res *service.Result) (*frame.Table, error) {
	schema, err := frame.ParseSchema("step STRING, rows INT, columns STRING")
	if err != nil {
		return nil, err
	}
	rows := make([]frame.Row, len(res.Steps))
	for i, s := range res.Steps {
		rows[i] = frame.Row{s.Name, s.Rows, fmt.Sprint(s.Columns)}
	}
	return frame.New(schema, rows)
}

// AddSheet appends a sheet rendering t.
func (e *Exporter) AddSheet(name string, t *frame.Table) *Exporter {
	e.sheets = append(e.sheets, sheet{name: name, table: t})
	return e
}

func (e *Exporter) build() (*excelize.File, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("report has no sheets")
	}
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range e.sheets {
		if i == 0 {
			f.SetSheetName("Sheet1", s.name)
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := s.table.Err(); err != nil {
		return fmt.Errorf("sheet %s: %w", s.name, err)
	}
	sw, err := f.NewStreamWriter(s.name)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	cols := s.table.Columns()
	rows := s.table.Rows()
	for i, w := range columnWidths(cols, rows) {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for r, row := range rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			if v == nil {
				values[i] = ""
			} else {
				values[i] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("error writing row %d: %w", r+1, err)
		}
		if (r+1)%flushRows == 0 {
			if err := sw.Flush(); err != nil {
				return fmt.Errorf("error flushing rows: %w", err)
			}
		}
	}
	return sw.Flush()
}

func columnWidths(cols []string, rows []frame.Row) []float64 {
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = float64(len(c) + 2)
	}
	for _, row := range rows {
		for i, v := range row {
			if w := float64(len(frame.FormatValue(v)) + 2); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, w := range widths {
		switch {
		case w < minColWidth:
			widths[i] = minColWidth
		case w > maxColWidth:
			widths[i] = maxColWidth
		}
	}
	return widths
}

// WriteTo writes the workbook to w.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	f, err := e.build()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

// ExportToExcel saves the workbook at path.
func (e *Exporter) ExportToExcel(ctx context.Context, path string) error {
	f, err := e.build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	logger.InfoLog(ctx, "report written to %s with %d sheets", path, len(e.sheets))
	return nil
}
