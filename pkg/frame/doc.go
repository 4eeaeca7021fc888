// Package frame is a small in-memory table engine.
//
// A Table is an immutable set of rows under a typed Schema. Relational
// operations (Filter, Select, Drop, WithColumn, WithColumnRenamed, ToDF,
// GroupBy/Agg, Join) each return a new table, so they chain naturally:
//
//	names := emp.
//		Filter(frame.StartsWith(frame.Col("employee_name"), "m")).
//		Join(dept, "department", "dept_id", frame.Inner).
//		Select("employee_name", "dept_name")
//	if err := names.Err(); err != nil {
//		return err
//	}
//
// Column names resolve case-insensitively. Cells are int64, float64, string,
// bool or nil for null.
package frame
