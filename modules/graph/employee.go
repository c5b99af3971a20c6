package graph

import (
	"context"

	"github.com/go-faster/errors"
)

// Compensation groups an employee's pay history with the band that matches
// their family and level.
type Compensation struct {
	Salaries   []map[string]any `json:"salaries"`
	Bonuses    []map[string]any `json:"bonuses"`
	Equity     []map[string]any `json:"equity"`
	SalaryBand map[string]any   `json:"salary_band"`
}

// EmployeeProfile is everything the graph knows about one employee.
type EmployeeProfile struct {
	Summary       map[string]any   `json:"summary"`
	ManagerChain  []map[string]any `json:"manager_chain"`
	DirectReports []map[string]any `json:"direct_reports"`
	Skills        []map[string]any `json:"skills"`
	Reviews       []map[string]any `json:"reviews"`
	Goals         []map[string]any `json:"goals"`
	Compensation  Compensation     `json:"compensation"`
	Events        []map[string]any `json:"events"`
	Relationships []map[string]any `json:"relationships"`
}

const (
	summaryCypher = `MATCH (e:Employee {employee_id: $eid})
OPTIONAL MATCH (e)-[:HOLDS_POSITION]->(p:Position)
OPTIONAL MATCH (e)-[:BELONGS_TO]->(d:Department)
OPTIONAL MATCH (d)-[:PART_OF]->(div:Division)
OPTIONAL MATCH (e)-[:LOCATED_AT]->(loc:Location)
OPTIONAL MATCH (e)-[:REPORTS_TO]->(mgr:Employee)
RETURN e.employee_id AS id,
       e.first_name + ' ' + e.last_name AS name,
       e.email AS email,
       e.hire_date AS hire_date,
       e.status AS status,
       e.gender AS gender,
       e.ethnicity AS ethnicity,
       e.job_level AS job_level,
       e.job_family AS job_family,
       p.title AS position,
       d.name AS department,
       div.name AS division,
       loc.city + ', ' + loc.country AS location,
       mgr.employee_id AS manager_id,
       mgr.first_name + ' ' + mgr.last_name AS manager_name
LIMIT 1`

	managerChainCypher = `MATCH path = (e:Employee {employee_id: $eid})-[:REPORTS_TO*1..10]->(top:Employee)
WHERE NOT (top)-[:REPORTS_TO]->()
WITH nodes(path) AS chain
UNWIND range(1, size(chain) - 1) AS depth
WITH chain[depth] AS m, depth
RETURN m.employee_id AS id, m.first_name + ' ' + m.last_name AS name, m.job_level AS job_level, depth
ORDER BY depth`

	directReportsCypher = `MATCH (report:Employee)-[:REPORTS_TO]->(:Employee {employee_id: $eid})
OPTIONAL MATCH (report)-[:HOLDS_POSITION]->(p:Position)
RETURN report.employee_id AS id,
       report.first_name + ' ' + report.last_name AS name,
       report.job_level AS job_level,
       report.status AS status,
       p.title AS position
ORDER BY report.last_name`

	skillsCypher = `MATCH (:Employee {employee_id: $eid})-[h:HAS_SKILL]->(s:Skill)
RETURN s.skill_id AS id, s.name AS name, s.category AS category,
       h.proficiency_level AS proficiency, h.assessed_date AS assessed_date
ORDER BY s.category, s.name`

	reviewsCypher = `MATCH (:Employee {employee_id: $eid})-[:REVIEWED_IN]->(pr:PerformanceReview)
OPTIONAL MATCH (pr)-[:PART_OF_CYCLE]->(pc:PerformanceCycle)
OPTIONAL MATCH (pr)-[:REVIEWED_BY]->(reviewer:Employee)
RETURN pr.review_id AS id, pr.rating AS rating, pr.comments AS comments,
       pc.cycle_id AS cycle_id, pc.name AS cycle_name, pc.end_date AS cycle_end,
       reviewer.employee_id AS reviewer_id,
       reviewer.first_name + ' ' + reviewer.last_name AS reviewer_name
ORDER BY cycle_end DESC`

	goalsCypher = `MATCH (:Employee {employee_id: $eid})-[:SET_GOAL]->(g:Goal)
OPTIONAL MATCH (g)-[:GOAL_IN_CYCLE]->(pc:PerformanceCycle)
RETURN g.goal_id AS id, g.title AS title, g.status AS status,
       g.weight AS weight, g.achievement_pct AS achievement_pct, pc.name AS cycle_name
ORDER BY cycle_name DESC, g.status`

	salariesCypher = `MATCH (:Employee {employee_id: $eid})-[:EARNS_BASE]->(s:BaseSalary)
RETURN s.salary_id AS id, s.amount AS amount, s.currency AS currency,
       s.effective_date AS effective_date, s.reason AS reason
ORDER BY s.effective_date DESC`

	bonusesCypher = `MATCH (:Employee {employee_id: $eid})-[:RECEIVED_BONUS]->(b:Bonus)
RETURN b.bonus_id AS id, b.type AS type, b.amount AS amount, b.payout_date AS payout_date
ORDER BY b.payout_date DESC`

	equityCypher = `MATCH (:Employee {employee_id: $eid})-[:GRANTED_EQUITY]->(g:EquityGrant)
RETURN g.grant_id AS id, g.shares AS shares, g.grant_date AS grant_date,
       g.vesting_schedule AS vesting_schedule, g.exercise_price AS exercise_price
ORDER BY g.grant_date DESC`

	// Bands are matched on family and level so the lookup still works when
	// IN_SALARY_BAND was not loaded.
	bandCypher = `MATCH (e:Employee {employee_id: $eid})
MATCH (b:SalaryBand {job_family: e.job_family, job_level: e.job_level})
RETURN b.band_id AS id, b.job_family AS job_family, b.job_level AS job_level,
       b.min_salary AS min_salary, b.midpoint AS midpoint, b.max_salary AS max_salary
LIMIT 1`

	eventsCypher = `MATCH (:Employee {employee_id: $eid})-[:EXPERIENCED_EVENT]->(te:TemporalEvent)
RETURN te.event_id AS id, te.event_type AS event_type, te.effective_date AS effective_date,
       te.from_department AS from_department, te.to_department AS to_department
ORDER BY te.effective_date DESC`

	relationshipsCypher = `MATCH (:Employee {employee_id: $eid})-[r]-()
RETURN type(r) AS relationship, count(r) AS count
ORDER BY count DESC`
)

// EmployeeProfile assembles the full profile of one employee. It returns
// ErrEmployeeNotFound when the id has no Employee node.
func (a *Analytics) EmployeeProfile(ctx context.Context, employeeID string) (*EmployeeProfile, error) {
	ctx, span := tracer.Start(ctx, "graph.EmployeeProfile")
	defer span.End()

	params := map[string]any{"eid": employeeID}
	summary, err := a.runner.Read(ctx, summaryCypher, params)
	if err != nil {
		return nil, err
	}
	if len(summary) == 0 {
		return nil, errors.Wrap(ErrEmployeeNotFound, employeeID)
	}

	p := &EmployeeProfile{Summary: PlainRows(summary)[0]}
	lists := []struct {
		dst    *[]map[string]any
		cypher string
	}{
		{&p.ManagerChain, managerChainCypher},
		{&p.DirectReports, directReportsCypher},
		{&p.Skills, skillsCypher},
		{&p.Reviews, reviewsCypher},
		{&p.Goals, goalsCypher},
		{&p.Compensation.Salaries, salariesCypher},
		{&p.Compensation.Bonuses, bonusesCypher},
		{&p.Compensation.Equity, equityCypher},
		{&p.Events, eventsCypher},
		{&p.Relationships, relationshipsCypher},
	}
	for _, l := range lists {
		rows, err := a.runner.Read(ctx, l.cypher, params)
		if err != nil {
			return nil, err
		}
		*l.dst = PlainRows(rows)
	}

	band, err := a.runner.Read(ctx, bandCypher, params)
	if err != nil {
		return nil, err
	}
	p.Compensation.SalaryBand = map[string]any{}
	if len(band) > 0 {
		p.Compensation.SalaryBand = PlainRows(band)[0]
	}
	return p, nil
}

// EmployeeList returns id, name, level, department and status for every
// employee, ordered by id.
func (a *Analytics) EmployeeList(ctx context.Context) ([]map[string]any, error) {
	rows, err := a.runner.Read(ctx, `MATCH (e:Employee)
OPTIONAL MATCH (e)-[:BELONGS_TO]->(d:Department)
RETURN e.employee_id AS id, e.first_name + ' ' + e.last_name AS name,
       e.job_level AS job_level, d.name AS department, e.status AS status
ORDER BY e.employee_id`, nil)
	if err != nil {
		return nil, err
	}
	return PlainRows(rows), nil
}
