package handler

import (
	"github.com/locvowork/employee_etl/pkg/frame"
)

// TableDTO is a result set as rows of positional values.
type TableDTO struct {
	Name    string          `json:"name"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

func newTableDTO(name string, t *frame.Table) TableDTO {
	rows := t.Rows()
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return TableDTO{Name: name, Columns: t.Columns(), Rows: out}
}
