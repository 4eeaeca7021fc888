package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/employee_etl/internal/logger"
	"github.com/locvowork/employee_etl/internal/seed"
	"github.com/locvowork/employee_etl/internal/session"
	"github.com/locvowork/employee_etl/pkg/frame"
	"github.com/locvowork/employee_etl/pkg/tableio"
)

// Names of the result sets a run produces, in step order.
const (
	ResultAvgSalary       = "avg_salary"
	ResultMEmployees      = "m_employees"
	ResultWithBonus       = "with_bonus"
	ResultReordered       = "reordered"
	ResultInnerJoin       = "inner_join"
	ResultLeftJoin        = "left_join"
	ResultRightJoin       = "right_join"
	ResultEmployeeCountry = "employee_country"
	ResultEmployeeDetails = "employee_details"
)

// Source is where a run reads its three input tables from.
type Source interface {
	EmployeeRows() []frame.Row
	DepartmentRows() []frame.Row
	CountryRows() []frame.Row
}

// Pipeline runs the employee analysis against one session.
type Pipeline struct {
	sess   *session.Session
	source Source
	prefix string
}

// NewPipeline creates a pipeline reading from source.
func NewPipeline(sess *session.Session, source Source) *Pipeline {
	return &Pipeline{sess: sess, source: source, prefix: "m"}
}

// StepSummary describes one result set.
type StepSummary struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// Result holds every result set of a run and what was persisted.
type Result struct {
	RunID     string                 `json:"run_id"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Steps     []StepSummary          `json:"steps"`
	Writes    []*tableio.WriteResult `json:"writes"`

	tables map[string]*frame.Table
}

// Table returns a named result set.
func (r *Result) Table(name string) (*frame.Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Names lists the result sets in step order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Name
	}
	return names
}

func (r *Result) add(ctx context.Context, name string, t *frame.Table) (*frame.Table, error) {
	if err := t.Err(); err != nil {
		logger.ErrorLog(ctx, err, "step %s failed", name)
		return nil, fmt.Errorf("step %s: %w", name, err)
	}
	r.tables[name] = t
	r.Steps = append(r.Steps, StepSummary{Name: name, Rows: t.NumRows(), Columns: t.Columns()})
	logger.InfoLog(ctx, "step %s: %d rows, columns %v", name, t.NumRows(), t.Columns())
	return t, nil
}

// Run executes every step in order. The first failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = p.sess.Context(ctx)
	res := &Result{RunID: p.sess.RunID(), StartedAt: time.Now().UTC(), tables: make(map[string]*frame.Table)}

	emp, err := p.sess.CreateTable(seed.EmployeeSchema, p.source.EmployeeRows())
	if err != nil {
		return nil, fmt.Errorf("employee table: %w", err)
	}
	dept, err := p.sess.CreateTable(seed.DepartmentSchema, p.source.DepartmentRows())
	if err != nil {
		return nil, fmt.Errorf("department table: %w", err)
	}
	country, err := p.sess.CreateTable(seed.CountrySchema, p.source.CountryRows())
	if err != nil {
		return nil, fmt.Errorf("country table: %w", err)
	}
	logger.InfoLog(ctx, "loaded %d employees, %d departments, %d countries", emp.NumRows(), dept.NumRows(), country.NumRows())

	if _, err := res.add(ctx, ResultAvgSalary, AvgSalaryByDepartment(emp)); err != nil {
		return nil, err
	}
	if _, err := res.add(ctx, ResultMEmployees, EmployeesStartingWith(emp, dept, p.prefix)); err != nil {
		return nil, err
	}
	bonus, err := res.add(ctx, ResultWithBonus, WithBonus(emp))
	if err != nil {
		return nil, err
	}
	reordered, err := res.add(ctx, ResultReordered, Reorder(bonus))
	if err != nil {
		return nil, err
	}

	for _, name := range []string{ResultInnerJoin, ResultLeftJoin, ResultRightJoin} {
		how, err := frame.ParseJoinType(strings.TrimSuffix(name, "_join"))
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", name, err)
		}
		if _, err := res.add(ctx, name, JoinDepartments(reordered, dept, how)); err != nil {
			return nil, err
		}
	}

	substituted, err := res.add(ctx, ResultEmployeeCountry, SubstituteCountry(reordered, country))
	if err != nil {
		return nil, err
	}
	details, err := res.add(ctx, ResultEmployeeDetails, LowercaseColumns(substituted))
	if err != nil {
		return nil, err
	}

	writes, err := Persist(ctx, p.sess, details)
	if err != nil {
		logger.ErrorLog(ctx, err, "persist failed")
		return nil, err
	}
	res.Writes = writes
	res.Duration = time.Since(res.StartedAt)
	logger.InfoLog(ctx, "run finished in %s", res.Duration)
	return res, nil
}
