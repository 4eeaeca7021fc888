// Package seed holds the literal source tables of the employee pipeline.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/pkg/frame"
)

// Source table schemas, in the engine's DDL form.
const (
	EmployeeSchema   = "employee_id INT, employee_name STRING, department STRING, State STRING, salary INT, Age INT"
	DepartmentSchema = "dept_id STRING, dept_name STRING"
	CountrySchema    = "country_code STRING, country_name STRING"
)

//go:embed seed.yaml
var seedYAML []byte

// Data is the full set of seed rows.
type Data struct {
	Employees   []domain.Employee   `yaml:"employees"`
	Departments []domain.Department `yaml:"departments"`
	Countries   []domain.Country    `yaml:"countries"`
}

// Load returns the embedded seed data.
func Load() (*Data, error) {
	return Parse(seedYAML)
}

// Parse decodes seed YAML and checks that every key column is unique.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.UnmarshalStrict(b, &d); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Data) validate() error {
	emp := make(map[int]bool)
	for _, e := range d.Employees {
		if emp[e.EmployeeID] {
			return fmt.Errorf("duplicate employee_id %d", e.EmployeeID)
		}
		emp[e.EmployeeID] = true
	}
	dept := make(map[string]bool)
	for _, dp := range d.Departments {
		if dept[dp.DeptID] {
			return fmt.Errorf("duplicate dept_id %q", dp.DeptID)
		}
		dept[dp.DeptID] = true
	}
	country := make(map[string]bool)
	for _, c := range d.Countries {
		if country[c.CountryCode] {
			return fmt.Errorf("duplicate country_code %q", c.CountryCode)
		}
		country[c.CountryCode] = true
	}
	return nil
}

// EmployeeRows returns the employees in EmployeeSchema column order.
func (d *Data) EmployeeRows() []frame.Row {
	rows := make([]frame.Row, len(d.Employees))
	for i, e := range d.Employees {
		rows[i] = frame.Row{e.EmployeeID, e.EmployeeName, e.Department, e.State, e.Salary, e.Age}
	}
	return rows
}

// DepartmentRows returns the departments in DepartmentSchema column order.
func (d *Data) DepartmentRows() []frame.Row {
	rows := make([]frame.Row, len(d.Departments))
	for i, dp := range d.Departments {
		rows[i] = frame.Row{dp.DeptID, dp.DeptName}
	}
	return rows
}

// CountryRows returns the countries in CountrySchema column order.
func (d *Data) CountryRows() []frame.Row {
	rows := make([]frame.Row, len(d.Countries))
	for i, c := range d.Countries {
		rows[i] = frame.Row{c.CountryCode, c.CountryName}
	}
	return rows
}
