// Package ontology describes the HR property graph: node and relationship
// schemas, the Neo4j constraints derived from them and the mappings that
// project lake tables onto the graph.
package ontology

// NodeSchema describes one node kind. The last label is the most specific
// one and is the label constraints and mappings refer to.
type NodeSchema struct {
	Labels     []string `json:"labels"`
	IDProperty string   `json:"id_property"`
	Required   []string `json:"required"`
	Optional   []string `json:"optional,omitempty"`
	Indexes    []string `json:"indexes,omitempty"`
}

// Label returns the most specific label.
func (n NodeSchema) Label() string {
	return n.Labels[len(n.Labels)-1]
}

// Properties returns the required properties followed by the optional ones.
func (n NodeSchema) Properties() []string {
	out := make([]string, 0, len(n.Required)+len(n.Optional))
	out = append(out, n.Required...)
	return append(out, n.Optional...)
}

type EdgeSchema struct {
	Type        string   `json:"type"`
	SourceLabel string   `json:"source_label"`
	TargetLabel string   `json:"target_label"`
	Properties  []string `json:"properties,omitempty"`
}

func node(labels []string, id string, required, optional []string, indexes ...string) NodeSchema {
	return NodeSchema{
		Labels:     labels,
		IDProperty: id,
		Required:   required,
		Optional:   optional,
		Indexes:    append([]string{id}, indexes...),
	}
}

func labels(ls ...string) []string { return ls }

func props(ps ...string) []string { return ps }

var nodes = []NodeSchema{
	node(labels("Person", "Employee"), "employee_id",
		props("employee_id", "first_name", "last_name", "email", "hire_date", "gender", "ethnicity", "job_level", "job_family", "status"),
		props("birth_date", "termination_date", "termination_reason", "department_id", "position_id", "location_id", "manager_id"),
		"email"),
	node(labels("Person", "Candidate"), "candidate_id",
		props("candidate_id", "name", "email"),
		props("source")),

	node(labels("OrganizationalUnit", "Division"), "division_id",
		props("division_id", "name"), nil),
	node(labels("OrganizationalUnit", "Department"), "dept_id",
		props("dept_id", "name", "division_id"),
		props("division_name", "head_id")),
	node(labels("OrganizationalUnit", "Location"), "location_id",
		props("location_id", "name", "city", "country"),
		props("is_hq")),

	node(labels("Role", "Position"), "position_id",
		props("position_id", "title", "job_family", "job_level", "department_id"), nil),
	node(labels("Role", "JobFamily"), "family_id",
		props("family_id", "name"), nil),
	node(labels("Role", "JobLevel"), "level_id",
		props("level_id", "name", "rank"), nil),

	node(labels("Competency", "Skill"), "skill_id",
		props("skill_id", "name", "category"), nil),

	node(labels("TalentProcess", "Requisition"), "req_id",
		props("req_id", "title", "status"),
		props("department_id", "open_date", "close_date", "headcount")),
	node(labels("TalentProcess", "Application"), "application_id",
		props("application_id", "apply_date", "status", "stage"), nil),
	node(labels("TalentProcess", "Interview"), "interview_id",
		props("interview_id", "date", "type", "score"),
		props("feedback")),
	node(labels("TalentProcess", "Offer"), "offer_id",
		props("offer_id", "salary_offered", "status"),
		props("equity_offered", "offer_date", "response_date", "start_date")),
	node(labels("TalentProcess", "PerformanceReview"), "review_id",
		props("review_id", "rating"),
		props("comments", "strengths", "development_areas")),
	node(labels("TalentProcess", "Goal"), "goal_id",
		props("goal_id", "title", "status", "weight", "achievement_pct"),
		props("description")),

	node(labels("CompensationElement", "SalaryBand"), "band_id",
		props("band_id", "job_family", "job_level", "min_salary", "midpoint", "max_salary"),
		props("currency")),
	node(labels("CompensationElement", "BaseSalary"), "salary_id",
		props("salary_id", "amount", "effective_date", "reason"),
		props("currency")),
	node(labels("CompensationElement", "Bonus"), "bonus_id",
		props("bonus_id", "type", "amount", "payout_date"),
		props("target_pct", "actual_pct")),
	node(labels("CompensationElement", "EquityGrant"), "grant_id",
		props("grant_id", "grant_date", "shares"),
		props("vesting_schedule", "exercise_price")),

	node(labels("PerformanceCycle"), "cycle_id",
		props("cycle_id", "name", "start_date", "end_date", "type"), nil),
	node(labels("SourceChannel"), "channel_name",
		props("channel_name"), nil),
	node(labels("TemporalEvent"), "event_id",
		props("event_id", "event_type", "effective_date"),
		props("from_position", "to_position", "from_department", "to_department")),
}

func edge(typ, source, target string, properties ...string) EdgeSchema {
	return EdgeSchema{Type: typ, SourceLabel: source, TargetLabel: target, Properties: properties}
}

var edges = []EdgeSchema{
	edge("REPORTS_TO", "Employee", "Employee", "effective_date"),
	edge("BELONGS_TO", "Employee", "Department", "effective_date"),
	edge("PART_OF", "Department", "Division"),
	edge("LOCATED_AT", "Employee", "Location"),
	edge("HOLDS_POSITION", "Employee", "Position", "start_date", "end_date"),
	edge("POSITION_IN", "Position", "Department"),
	edge("IN_JOB_FAMILY", "Position", "JobFamily"),
	edge("AT_LEVEL", "Position", "JobLevel"),

	edge("HAS_SKILL", "Employee", "Skill", "proficiency_level", "assessed_date"),
	edge("REQUIRES_SKILL", "Position", "Skill"),
	edge("DEMONSTRATES_COMPETENCY", "PerformanceReview", "Skill", "current_level", "target_level"),

	edge("APPLIED_FOR", "Candidate", "Requisition", "application_date", "status", "stage"),
	edge("HAS_APPLICATION", "Candidate", "Application"),
	edge("APPLICATION_FOR", "Application", "Requisition"),
	edge("HAS_INTERVIEW", "Application", "Interview"),
	edge("INTERVIEWED_BY", "Interview", "Employee"),
	edge("HAS_OFFER", "Application", "Offer"),
	edge("FILLS_REQUISITION", "Employee", "Requisition", "hire_date"),
	edge("SOURCED_FROM", "Candidate", "SourceChannel"),
	edge("REQUISITION_FOR", "Requisition", "Department"),

	edge("REVIEWED_IN", "Employee", "PerformanceReview"),
	edge("REVIEWED_BY", "PerformanceReview", "Employee", "role"),
	edge("SET_GOAL", "Employee", "Goal"),
	edge("PART_OF_CYCLE", "PerformanceReview", "PerformanceCycle"),
	edge("GOAL_IN_CYCLE", "Goal", "PerformanceCycle"),

	edge("EARNS_BASE", "Employee", "BaseSalary"),
	edge("RECEIVED_BONUS", "Employee", "Bonus"),
	edge("GRANTED_EQUITY", "Employee", "EquityGrant"),
	edge("IN_SALARY_BAND", "Position", "SalaryBand"),

	edge("EXPERIENCED_EVENT", "Employee", "TemporalEvent"),
}

// Nodes returns every node schema in declaration order.
func Nodes() []NodeSchema {
	out := make([]NodeSchema, len(nodes))
	copy(out, nodes)
	return out
}

// Edges returns every relationship schema in declaration order.
func Edges() []EdgeSchema {
	out := make([]EdgeSchema, len(edges))
	copy(out, edges)
	return out
}

func NodeByLabel(label string) (NodeSchema, bool) {
	for _, n := range nodes {
		if n.Label() == label {
			return n, true
		}
	}
	return NodeSchema{}, false
}

func EdgeByType(typ string) (EdgeSchema, bool) {
	for _, e := range edges {
		if e.Type == typ {
			return e, true
		}
	}
	return EdgeSchema{}, false
}
