package builder

import (
	"testing"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("database_name", "table_name").
			From("catalog_tables").
			Where("database_name = ?", "employee").
			Where("table_name = ?", "employee_details_csv").
			Build()
		expected := "SELECT database_name, table_name FROM catalog_tables WHERE database_name = $1 AND table_name = $2"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != "employee" || args[1] != "employee_details_csv" {
			t.Errorf("expected args [employee employee_details_csv], got %v", args)
		}
	})

	t.Run("Select with order and paging", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("*").From("catalog_tables").
			OrderBy("database_name").OrderBy("table_name").
			Limit(10).Offset(20).
			Build()
		expected := "SELECT * FROM catalog_tables ORDER BY database_name, table_name LIMIT 10 OFFSET 20"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 0 {
			t.Errorf("expected no args, got %v", args)
		}
	})

	t.Run("Insert", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Insert("catalog_tables", "database_name", "row_count").Values("employee", 7).Build()
		expected := "INSERT INTO catalog_tables (database_name, row_count) VALUES ($1, $2)"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != "employee" || args[1] != 7 {
			t.Errorf("expected args [employee 7], got %v", args)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Delete("catalog_tables").Where("table_name = ?", "x").Build()
		expected := "DELETE FROM catalog_tables WHERE table_name = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 || args[0] != "x" {
			t.Errorf("expected args [x], got %v", args)
		}
	})
}

func TestSQLBuilderSQLiteDialect(t *testing.T) {
	query, args := NewSQLBuilder().Dialect(SQLite).
		Select("table_name").
		From("catalog_tables").
		Where("database_name = ? AND table_name = ?", "employee", "t").
		Build()
	expected := "SELECT table_name FROM catalog_tables WHERE database_name = ? AND table_name = ?"
	if query != expected {
		t.Errorf("expected %s, got %s", expected, query)
	}
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %v", args)
	}

	query, _ = NewSQLBuilder().Dialect(SQLite).Insert("t", "a", "b").Values(1, 2).Build()
	if query != "INSERT INTO t (a, b) VALUES (?, ?)" {
		t.Errorf("unexpected insert %s", query)
	}
}
