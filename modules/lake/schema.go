// Package lake turns the raw CSV exports into typed Parquet files, keeps the
// table catalog and runs the cross-system integrity checks over them.
package lake

import (
	"fmt"
	"sort"
	"strings"
)

// Column is a lake column with its DuckDB type.
type Column struct {
	Name string
	Type string
}

// ForeignKey points Column at RefTable.RefColumn, where RefTable is a
// "<system>/<table>" path.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

func (fk ForeignKey) String() string {
	return fk.RefTable + "." + fk.RefColumn
}

type TableSchema struct {
	System      string
	Name        string
	Columns     []Column
	PrimaryKey  string
	ForeignKeys []ForeignKey
}

// Path is the "<system>/<table>" identifier used in file names and FK refs.
func (t TableSchema) Path() string {
	return t.System + "/" + t.Name
}

func (t TableSchema) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

func (t TableSchema) ForeignKey(column string) (ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

const (
	tVarchar = "VARCHAR"
	tDate    = "DATE"
	tBigint  = "BIGINT"
	tInt     = "INTEGER"
	tDouble  = "DOUBLE"
	tDecimal = "DECIMAL(14,2)"
	tBool    = "BOOLEAN"
)

func cols(pairs ...string) []Column {
	if len(pairs)%2 != 0 {
		panic("lake: cols expects name/type pairs")
	}
	out := make([]Column, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Column{Name: pairs[i], Type: pairs[i+1]})
	}
	return out
}

func fk(column, ref string) ForeignKey {
	i := strings.LastIndex(ref, ".")
	return ForeignKey{Column: column, RefTable: ref[:i], RefColumn: ref[i+1:]}
}

const employeeRef = "hris/employees.employee_id"

var tables = []TableSchema{
	{
		System: "hris", Name: "employees", PrimaryKey: "employee_id",
		Columns: cols(
			"employee_id", tVarchar, "first_name", tVarchar, "last_name", tVarchar, "email", tVarchar,
			"hire_date", tDate, "birth_date", tDate, "gender", tVarchar, "ethnicity", tVarchar,
			"location_id", tVarchar, "department_id", tVarchar, "position_id", tVarchar, "manager_id", tVarchar,
			"job_level", tVarchar, "job_family", tVarchar, "status", tVarchar,
			"termination_date", tDate, "termination_reason", tVarchar,
		),
		ForeignKeys: []ForeignKey{
			fk("manager_id", employeeRef),
			fk("department_id", "hris/departments.dept_id"),
			fk("position_id", "hris/positions.position_id"),
			fk("location_id", "hris/locations.id"),
			fk("job_level", "hris/job_levels.level_id"),
			fk("job_family", "hris/job_families.family_id"),
		},
	},
	{
		System: "hris", Name: "departments", PrimaryKey: "dept_id",
		Columns: cols("dept_id", tVarchar, "name", tVarchar, "division_id", tVarchar, "division_name", tVarchar, "head_id", tVarchar),
		ForeignKeys: []ForeignKey{
			fk("head_id", employeeRef),
			fk("division_id", "hris/divisions.division_id"),
		},
	},
	{
		System: "hris", Name: "positions", PrimaryKey: "position_id",
		Columns: cols("position_id", tVarchar, "title", tVarchar, "job_family", tVarchar, "job_level", tVarchar, "department_id", tVarchar),
		ForeignKeys: []ForeignKey{
			fk("department_id", "hris/departments.dept_id"),
		},
	},
	{
		System: "hris", Name: "locations", PrimaryKey: "id",
		Columns: cols("id", tVarchar, "name", tVarchar, "city", tVarchar, "country", tVarchar, "is_hq", tBool),
	},
	{
		System: "hris", Name: "divisions", PrimaryKey: "division_id",
		Columns: cols("division_id", tVarchar, "name", tVarchar),
	},
	{
		System: "hris", Name: "job_families", PrimaryKey: "family_id",
		Columns: cols("family_id", tVarchar, "name", tVarchar),
	},
	{
		System: "hris", Name: "job_levels", PrimaryKey: "level_id",
		Columns: cols("level_id", tVarchar, "name", tVarchar, "rank", tInt),
	},
	{
		System: "hris", Name: "skills", PrimaryKey: "skill_id",
		Columns: cols("skill_id", tVarchar, "name", tVarchar, "category", tVarchar),
	},
	{
		System: "hris", Name: "employee_skills",
		Columns: cols("employee_id", tVarchar, "skill_id", tVarchar, "proficiency_level", tInt),
		ForeignKeys: []ForeignKey{
			fk("employee_id", employeeRef),
			fk("skill_id", "hris/skills.skill_id"),
		},
	},
	{
		System: "hris", Name: "employment_history", PrimaryKey: "event_id",
		Columns: cols(
			"event_id", tVarchar, "employee_id", tVarchar, "event_type", tVarchar, "effective_date", tDate,
			"from_position", tVarchar, "to_position", tVarchar, "from_department", tVarchar, "to_department", tVarchar,
		),
		ForeignKeys: []ForeignKey{
			fk("employee_id", employeeRef),
			fk("to_position", "hris/positions.position_id"),
			fk("to_department", "hris/departments.dept_id"),
		},
	},
	{
		System: "compensation", Name: "salary_bands", PrimaryKey: "band_id",
		Columns: cols(
			"band_id", tVarchar, "job_family", tVarchar, "job_family_name", tVarchar, "job_level", tVarchar,
			"job_level_name", tVarchar, "min_salary", tDecimal, "midpoint", tDecimal, "max_salary", tDecimal, "currency", tVarchar,
		),
	},
	{
		System: "compensation", Name: "base_salary", PrimaryKey: "salary_id",
		Columns: cols("salary_id", tVarchar, "employee_id", tVarchar, "amount", tDecimal, "currency", tVarchar, "effective_date", tDate, "reason", tVarchar),
		ForeignKeys: []ForeignKey{fk("employee_id", employeeRef)},
	},
	{
		System: "compensation", Name: "bonuses", PrimaryKey: "bonus_id",
		Columns: cols("bonus_id", tVarchar, "employee_id", tVarchar, "type", tVarchar, "target_pct", tDouble, "actual_pct", tDouble, "amount", tDecimal, "payout_date", tDate),
		ForeignKeys: []ForeignKey{fk("employee_id", employeeRef)},
	},
	{
		System: "compensation", Name: "equity_grants", PrimaryKey: "grant_id",
		Columns: cols("grant_id", tVarchar, "employee_id", tVarchar, "grant_date", tDate, "shares", tBigint, "vesting_schedule", tVarchar, "exercise_price", tDecimal),
		ForeignKeys: []ForeignKey{fk("employee_id", employeeRef)},
	},
	{
		System: "ats", Name: "requisitions", PrimaryKey: "req_id",
		Columns: cols(
			"req_id", tVarchar, "title", tVarchar, "department_id", tVarchar, "hiring_manager_id", tVarchar,
			"open_date", tDate, "close_date", tDate, "status", tVarchar, "headcount", tInt,
		),
		ForeignKeys: []ForeignKey{
			fk("department_id", "hris/departments.dept_id"),
			fk("hiring_manager_id", employeeRef),
		},
	},
	{
		System: "ats", Name: "candidates", PrimaryKey: "candidate_id",
		Columns: cols("candidate_id", tVarchar, "name", tVarchar, "email", tVarchar, "source", tVarchar),
	},
	{
		System: "ats", Name: "applications", PrimaryKey: "application_id",
		Columns: cols("application_id", tVarchar, "candidate_id", tVarchar, "req_id", tVarchar, "apply_date", tDate, "status", tVarchar, "stage", tVarchar),
		ForeignKeys: []ForeignKey{
			fk("candidate_id", "ats/candidates.candidate_id"),
			fk("req_id", "ats/requisitions.req_id"),
		},
	},
	{
		System: "ats", Name: "interviews", PrimaryKey: "interview_id",
		Columns: cols("interview_id", tVarchar, "application_id", tVarchar, "interviewer_id", tVarchar, "date", tDate, "type", tVarchar, "score", tDouble, "feedback", tVarchar),
		ForeignKeys: []ForeignKey{
			fk("application_id", "ats/applications.application_id"),
			fk("interviewer_id", employeeRef),
		},
	},
	{
		System: "ats", Name: "offers", PrimaryKey: "offer_id",
		Columns: cols(
			"offer_id", tVarchar, "application_id", tVarchar, "salary_offered", tDecimal, "equity_offered", tBigint,
			"status", tVarchar, "offer_date", tDate, "response_date", tDate, "start_date", tDate,
		),
		ForeignKeys: []ForeignKey{fk("application_id", "ats/applications.application_id")},
	},
	{
		System: "performance", Name: "performance_cycles", PrimaryKey: "cycle_id",
		Columns: cols("cycle_id", tVarchar, "name", tVarchar, "start_date", tDate, "end_date", tDate, "type", tVarchar),
	},
	{
		System: "performance", Name: "goals", PrimaryKey: "goal_id",
		Columns: cols(
			"goal_id", tVarchar, "employee_id", tVarchar, "cycle_id", tVarchar, "title", tVarchar, "description", tVarchar,
			"status", tVarchar, "weight", tDouble, "achievement_pct", tDouble,
		),
		ForeignKeys: []ForeignKey{
			fk("employee_id", employeeRef),
			fk("cycle_id", "performance/performance_cycles.cycle_id"),
		},
	},
	{
		System: "performance", Name: "performance_reviews", PrimaryKey: "review_id",
		Columns: cols(
			"review_id", tVarchar, "employee_id", tVarchar, "reviewer_id", tVarchar, "cycle_id", tVarchar, "rating", tDouble,
			"comments", tVarchar, "strengths", tVarchar, "development_areas", tVarchar,
		),
		ForeignKeys: []ForeignKey{
			fk("employee_id", employeeRef),
			fk("reviewer_id", employeeRef),
			fk("cycle_id", "performance/performance_cycles.cycle_id"),
		},
	},
	{
		System: "performance", Name: "competency_assessments", PrimaryKey: "assessment_id",
		Columns: cols(
			"assessment_id", tVarchar, "employee_id", tVarchar, "cycle_id", tVarchar, "skill_id", tVarchar,
			"skill_name", tVarchar, "current_level", tInt, "target_level", tInt,
		),
		ForeignKeys: []ForeignKey{
			fk("employee_id", employeeRef),
			fk("cycle_id", "performance/performance_cycles.cycle_id"),
			fk("skill_id", "hris/skills.skill_id"),
		},
	},
}

// Tables returns every lake table in build order.
func Tables() []TableSchema {
	out := make([]TableSchema, len(tables))
	copy(out, tables)
	return out
}

// Lookup finds a table by bare name ("employees") or path ("hris/employees").
func Lookup(name string) (TableSchema, bool) {
	for _, t := range tables {
		if t.Name == name || t.Path() == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

// TableNames returns the view names in alphabetical order.
func TableNames() []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// selectTyped reads the CSV as text and casts every column to its lake type.
// Empty strings become NULL.
func (t TableSchema) selectTyped(csvPath string) string {
	parts := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		col := fmt.Sprintf("NULLIF(%s, '')", quoteIdent(c.Name))
		if c.Type != tVarchar {
			col = fmt.Sprintf("CAST(%s AS %s)", col, c.Type)
		}
		parts = append(parts, fmt.Sprintf("%s AS %s", col, quoteIdent(c.Name)))
	}
	return fmt.Sprintf("SELECT %s FROM read_csv(%s, header = true, all_varchar = true)",
		strings.Join(parts, ", "), quoteLiteral(csvPath))
}
