package ontology

import (
	"fmt"
	"strings"
)

// Field projects a SQL expression over the lake onto a graph property.
type Field struct {
	Property string `json:"property"`
	Expr     string `json:"expr"`
}

// col maps a lake column onto a property of the same name.
func col(name string) Field {
	return Field{Property: name, Expr: quote(name)}
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// as maps a lake expression onto a differently named property.
func as(property, expr string) Field {
	return Field{Property: property, Expr: expr}
}

func cols(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = col(n)
	}
	return out
}

// NodeMapping loads one node label from one lake view.
type NodeMapping struct {
	Label    string  `json:"label"`
	Table    string  `json:"table"`
	Distinct bool    `json:"distinct,omitempty"`
	Fields   []Field `json:"fields"`
}

// Schema returns the node schema the mapping populates.
func (m NodeMapping) Schema() NodeSchema {
	n, _ := NodeByLabel(m.Label)
	return n
}

func (m NodeMapping) idExpr() string {
	id := m.Schema().IDProperty
	for _, f := range m.Fields {
		if f.Property == id {
			return f.Expr
		}
	}
	return quote(id)
}

// Query is the DuckDB SELECT producing one row per node, keyed by property
// name. Rows without an id are dropped.
func (m NodeMapping) Query() string {
	parts := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = fmt.Sprintf("%s AS %s", f.Expr, quote(f.Property))
	}
	distinct := ""
	if m.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("SELECT %s%s FROM %s WHERE %s IS NOT NULL",
		distinct, strings.Join(parts, ", "), viewName(m.Table), m.idExpr())
}

// EdgeMapping loads one relationship type. From may join several views; its
// SELECT yields "source" and "target" ids plus the edge properties.
type EdgeMapping struct {
	Type   string   `json:"type"`
	Tables []string `json:"tables"`
	From   string   `json:"from"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Fields []Field  `json:"fields,omitempty"`
	Where  string   `json:"where,omitempty"`
}

func (m EdgeMapping) Schema() EdgeSchema {
	e, _ := EdgeByType(m.Type)
	return e
}

func (m EdgeMapping) Query() string {
	parts := []string{
		fmt.Sprintf("CAST(%s AS VARCHAR) AS source", m.Source),
		fmt.Sprintf("CAST(%s AS VARCHAR) AS target", m.Target),
	}
	for _, f := range m.Fields {
		parts = append(parts, fmt.Sprintf("%s AS %s", f.Expr, quote(f.Property)))
	}
	where := []string{m.Source + " IS NOT NULL", m.Target + " IS NOT NULL"}
	if m.Where != "" {
		where = append(where, m.Where)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(parts, ", "), m.From, strings.Join(where, " AND "))
}

func viewName(table string) string {
	if i := strings.LastIndex(table, "/"); i >= 0 {
		return table[i+1:]
	}
	return table
}

// simple builds a single-table edge.
func simple(typ, table, source, target string, fields ...Field) EdgeMapping {
	return EdgeMapping{
		Type:   typ,
		Tables: []string{table},
		From:   viewName(table),
		Source: quote(source),
		Target: quote(target),
		Fields: fields,
	}
}

var nodeMappings = []NodeMapping{
	{Label: "Division", Table: "hris/divisions", Fields: cols("division_id", "name")},
	{Label: "Department", Table: "hris/departments", Fields: cols("dept_id", "name", "division_id", "division_name", "head_id")},
	{Label: "Location", Table: "hris/locations", Fields: []Field{
		as("location_id", `"id"`), col("name"), col("city"), col("country"), col("is_hq"),
	}},
	{Label: "JobFamily", Table: "hris/job_families", Fields: cols("family_id", "name")},
	{Label: "JobLevel", Table: "hris/job_levels", Fields: cols("level_id", "name", "rank")},
	{Label: "Position", Table: "hris/positions", Fields: cols("position_id", "title", "job_family", "job_level", "department_id")},
	{Label: "Skill", Table: "hris/skills", Fields: cols("skill_id", "name", "category")},
	{Label: "Employee", Table: "hris/employees", Fields: cols(
		"employee_id", "first_name", "last_name", "email", "hire_date", "birth_date", "gender", "ethnicity",
		"location_id", "department_id", "position_id", "manager_id", "job_level", "job_family", "status",
		"termination_date", "termination_reason",
	)},

	{Label: "Requisition", Table: "ats/requisitions", Fields: cols("req_id", "title", "department_id", "status", "open_date", "close_date", "headcount")},
	{Label: "Candidate", Table: "ats/candidates", Fields: cols("candidate_id", "name", "email", "source")},
	{Label: "SourceChannel", Table: "ats/candidates", Distinct: true, Fields: []Field{as("channel_name", `"source"`)}},
	{Label: "Application", Table: "ats/applications", Fields: cols("application_id", "apply_date", "status", "stage")},
	{Label: "Interview", Table: "ats/interviews", Fields: cols("interview_id", "date", "type", "score", "feedback")},
	{Label: "Offer", Table: "ats/offers", Fields: cols("offer_id", "salary_offered", "equity_offered", "status", "offer_date", "response_date", "start_date")},

	{Label: "PerformanceCycle", Table: "performance/performance_cycles", Fields: cols("cycle_id", "name", "start_date", "end_date", "type")},
	{Label: "PerformanceReview", Table: "performance/performance_reviews", Fields: cols("review_id", "rating", "comments", "strengths", "development_areas")},
	{Label: "Goal", Table: "performance/goals", Fields: cols("goal_id", "title", "description", "status", "weight", "achievement_pct")},

	{Label: "SalaryBand", Table: "compensation/salary_bands", Fields: cols("band_id", "job_family", "job_level", "min_salary", "midpoint", "max_salary", "currency")},
	{Label: "BaseSalary", Table: "compensation/base_salary", Fields: cols("salary_id", "amount", "currency", "effective_date", "reason")},
	{Label: "Bonus", Table: "compensation/bonuses", Fields: cols("bonus_id", "type", "target_pct", "actual_pct", "amount", "payout_date")},
	{Label: "EquityGrant", Table: "compensation/equity_grants", Fields: cols("grant_id", "grant_date", "shares", "vesting_schedule", "exercise_price")},

	{Label: "TemporalEvent", Table: "hris/employment_history", Fields: cols(
		"event_id", "event_type", "effective_date", "from_position", "to_position", "from_department", "to_department",
	)},
}

var edgeMappings = []EdgeMapping{
	simple("REPORTS_TO", "hris/employees", "employee_id", "manager_id", as("effective_date", `"hire_date"`)),
	simple("BELONGS_TO", "hris/employees", "employee_id", "department_id", as("effective_date", `"hire_date"`)),
	simple("PART_OF", "hris/departments", "dept_id", "division_id"),
	simple("LOCATED_AT", "hris/employees", "employee_id", "location_id"),
	simple("HOLDS_POSITION", "hris/employees", "employee_id", "position_id",
		as("start_date", `"hire_date"`), as("end_date", `"termination_date"`)),
	simple("POSITION_IN", "hris/positions", "position_id", "department_id"),
	simple("IN_JOB_FAMILY", "hris/positions", "position_id", "job_family"),
	simple("AT_LEVEL", "hris/positions", "position_id", "job_level"),
	simple("HAS_SKILL", "hris/employee_skills", "employee_id", "skill_id", col("proficiency_level")),
	{
		Type:   "DEMONSTRATES_COMPETENCY",
		Tables: []string{"performance/competency_assessments", "performance/performance_reviews"},
		From: "competency_assessments c JOIN performance_reviews r " +
			"ON r.employee_id = c.employee_id AND r.cycle_id = c.cycle_id",
		Source: "r.review_id",
		Target: "c.skill_id",
		Fields: []Field{as("current_level", "c.current_level"), as("target_level", "c.target_level")},
	},

	simple("APPLIED_FOR", "ats/applications", "candidate_id", "req_id",
		as("application_date", `"apply_date"`), col("status"), col("stage")),
	simple("HAS_APPLICATION", "ats/applications", "candidate_id", "application_id"),
	simple("APPLICATION_FOR", "ats/applications", "application_id", "req_id"),
	simple("HAS_INTERVIEW", "ats/interviews", "application_id", "interview_id"),
	simple("INTERVIEWED_BY", "ats/interviews", "interview_id", "interviewer_id"),
	simple("HAS_OFFER", "ats/offers", "application_id", "offer_id"),
	{
		Type:   "FILLS_REQUISITION",
		Tables: []string{"ats/applications", "ats/candidates", "hris/employees"},
		From: "applications a JOIN candidates c ON c.candidate_id = a.candidate_id " +
			"JOIN employees e ON e.email = c.email",
		Source: "e.employee_id",
		Target: "a.req_id",
		Fields: []Field{as("hire_date", "e.hire_date")},
		Where:  "a.status = 'Hired'",
	},
	simple("SOURCED_FROM", "ats/candidates", "candidate_id", "source"),
	simple("REQUISITION_FOR", "ats/requisitions", "req_id", "department_id"),

	simple("REVIEWED_IN", "performance/performance_reviews", "employee_id", "review_id"),
	simple("REVIEWED_BY", "performance/performance_reviews", "review_id", "reviewer_id", as("role", "'manager'")),
	simple("PART_OF_CYCLE", "performance/performance_reviews", "review_id", "cycle_id"),
	simple("SET_GOAL", "performance/goals", "employee_id", "goal_id"),
	simple("GOAL_IN_CYCLE", "performance/goals", "goal_id", "cycle_id"),

	simple("EARNS_BASE", "compensation/base_salary", "employee_id", "salary_id"),
	simple("RECEIVED_BONUS", "compensation/bonuses", "employee_id", "bonus_id"),
	simple("GRANTED_EQUITY", "compensation/equity_grants", "employee_id", "grant_id"),
	{
		Type:   "IN_SALARY_BAND",
		Tables: []string{"hris/positions", "compensation/salary_bands"},
		From:   "positions p JOIN salary_bands b ON b.job_family = p.job_family AND b.job_level = p.job_level",
		Source: "p.position_id",
		Target: "b.band_id",
	},

	simple("EXPERIENCED_EVENT", "hris/employment_history", "employee_id", "event_id"),
}

// NodeMappings returns the node loads in dependency-free order.
func NodeMappings() []NodeMapping {
	out := make([]NodeMapping, len(nodeMappings))
	copy(out, nodeMappings)
	return out
}

// EdgeMappings returns the relationship loads. REQUIRES_SKILL has no source
// data and is never loaded.
func EdgeMappings() []EdgeMapping {
	out := make([]EdgeMapping, len(edgeMappings))
	copy(out, edgeMappings)
	return out
}
