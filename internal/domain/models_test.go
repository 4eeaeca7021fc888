package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableName(t *testing.T) {
	n, err := ParseTableName(EmployeeDetailsParquet)
	require.NoError(t, err)
	assert.Equal(t, TableName{Database: "employee", Table: "employee_details_parquet"}, n)
	assert.Equal(t, EmployeeDetailsParquet, n.String())

	n, err = ParseTableName("scratch")
	require.NoError(t, err)
	assert.Equal(t, "default.scratch", n.String())

	for _, bad := range []string{"", "a.b.c", ".t", "db."} {
		_, err := ParseTableName(bad)
		assert.Error(t, err, bad)
	}
}
