package service

import (
	"context"
	"fmt"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/pkg/frame"
	"github.com/locvowork/employee_etl/pkg/tableio"
)

// Persister stores a table under a logical name. *session.Session implements it.
type Persister interface {
	SaveAsTable(ctx context.Context, t *frame.Table, name string, format tableio.Format, partitionBy ...string) (*tableio.WriteResult, error)
}

// ReorderedColumns is the projection applied after the bonus column is added.
var ReorderedColumns = []string{"employee_id", "employee_name", "salary", "State", "Age", "department"}

// AvgSalaryByDepartment computes the mean salary of each department.
func AvgSalaryByDepartment(emp *frame.Table) *frame.Table {
	return emp.GroupBy("department").Agg(frame.Avg("salary").As("avg_salary"))
}

// EmployeesStartingWith returns employee_name and dept_name for employees
// whose name starts with prefix. The match is case-sensitive.
func EmployeesStartingWith(emp, dept *frame.Table, prefix string) *frame.Table {
	return emp.Filter(frame.StartsWith(frame.Col("employee_name"), prefix)).
		Join(dept, "department", "dept_id", frame.Inner).
		Select("employee_name", "dept_name")
}

// WithBonus appends bonus = salary * 2.
func WithBonus(emp *frame.Table) *frame.Table {
	return emp.WithColumn("bonus", frame.Mul(frame.Col("salary"), frame.Lit(2)))
}

// Reorder projects ReorderedColumns. Any other column, bonus included, is dropped.
func Reorder(emp *frame.Table) *frame.Table {
	return emp.Select(ReorderedColumns...)
}

// JoinDepartments joins employees to departments on department = dept_id.
func JoinDepartments(emp, dept *frame.Table, how frame.JoinType) *frame.Table {
	return emp.Join(dept, "department", "dept_id", how)
}

// SubstituteCountry replaces each employee's state code with the country
// name, keeping the column name State. Unresolved codes are dropped.
func SubstituteCountry(emp, country *frame.Table) *frame.Table {
	return emp.Join(country, "State", "country_code", frame.Inner).
		Drop("State").
		WithColumnRenamed("country_name", "State")
}

// LowercaseColumns folds every column name to lower case.
func LowercaseColumns(t *frame.Table) *frame.Table {
	return t.LowercaseColumns()
}

// Persist writes t as the partitioned parquet table, then as the CSV table.
func Persist(ctx context.Context, p Persister, t *frame.Table) ([]*tableio.WriteResult, error) {
	pq, err := p.SaveAsTable(ctx, t, domain.EmployeeDetailsParquet, tableio.Parquet, "state")
	if err != nil {
		return nil, fmt.Errorf("persist parquet: %w", err)
	}
	csv, err := p.SaveAsTable(ctx, t, domain.EmployeeDetailsCSV, tableio.CSV)
	if err != nil {
		return nil, fmt.Errorf("persist csv: %w", err)
	}
	return []*tableio.WriteResult{pq, csv}, nil
}
