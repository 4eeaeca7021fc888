package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/pkg/frame"
)

func TestLoad(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	assert.Len(t, d.Employees, 7)
	assert.Len(t, d.Departments, 5)
	assert.Len(t, d.Countries, 3)
	assert.Equal(t, domain.Employee{EmployeeID: 16, EmployeeName: "jeff", Department: "D103", State: "uk", Salary: 9100, Age: 35}, d.Employees[5])
	assert.Equal(t, domain.Country{CountryCode: "ca", CountryName: "California"}, d.Countries[1])
}

func TestRowsFitSchemas(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	for ddl, rows := range map[string][]frame.Row{
		EmployeeSchema:   d.EmployeeRows(),
		DepartmentSchema: d.DepartmentRows(),
		CountrySchema:    d.CountryRows(),
	} {
		schema, err := frame.ParseSchema(ddl)
		require.NoError(t, err)
		_, err = frame.New(schema, rows)
		assert.NoError(t, err, ddl)
	}
}

func TestParseRejectsDuplicateKeys(t *testing.T) {
	_, err := Parse([]byte("departments:\n  - {dept_id: D1, dept_name: a}\n  - {dept_id: D1, dept_name: b}\n"))
	assert.ErrorContains(t, err, "duplicate dept_id")

	_, err = Parse([]byte("employees:\n  - {employee_id: 1, nickname: x}\n"))
	assert.Error(t, err)
}
