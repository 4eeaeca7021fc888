package domain

import (
	"fmt"
	"strings"
	"time"
)

// Employee is one row of the employee seed table.
type Employee struct {
	EmployeeID   int    `json:"employee_id" yaml:"employee_id"`
	EmployeeName string `json:"employee_name" yaml:"employee_name"`
	Department   string `json:"department" yaml:"department"`
	State        string `json:"state" yaml:"state"`
	Salary       int    `json:"salary" yaml:"salary"`
	Age          int    `json:"age" yaml:"age"`
}

// Department is one row of the department seed table.
type Department struct {
	DeptID   string `json:"dept_id" yaml:"dept_id"`
	DeptName string `json:"dept_name" yaml:"dept_name"`
}

// Country maps a state code to its display name.
type Country struct {
	CountryCode string `json:"country_code" yaml:"country_code"`
	CountryName string `json:"country_name" yaml:"country_name"`
}

// DefaultDatabase is used for table names without a database qualifier.
const DefaultDatabase = "default"

// Logical names of the persisted employee tables.
const (
	EmployeeDetailsParquet = "employee.employee_details_parquet"
	EmployeeDetailsCSV     = "employee.employee_details_csv"
)

// TableName is a catalog identifier, database.table.
type TableName struct {
	Database string `json:"database"`
	Table    string `json:"table"`
}

// ParseTableName splits "db.table"; a bare name lands in DefaultDatabase.
func ParseTableName(s string) (TableName, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return TableName{Database: DefaultDatabase, Table: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return TableName{Database: parts[0], Table: parts[1]}, nil
	default:
		return TableName{}, fmt.Errorf("invalid table name %q", s)
	}
}

func (n TableName) String() string {
	return n.Database + "." + n.Table
}

// TableEntry is a table registered in the catalog.
type TableEntry struct {
	Name             TableName `json:"name"`
	Format           string    `json:"format"`
	Location         string    `json:"location"`
	PartitionColumns []string  `json:"partition_columns"`
	Schema           string    `json:"schema"`
	RowCount         int       `json:"row_count"`
	RunID            string    `json:"run_id"`
	CreatedAt        time.Time `json:"created_at"`
}
