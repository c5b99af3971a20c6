package graph

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

const DefaultTopN = 15

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrMissingArgument  = errors.New("missing argument")
)

// Analytics runs the organisational network queries.
type Analytics struct {
	runner Runner
}

func NewAnalytics(runner Runner) *Analytics {
	return &Analytics{runner: runner}
}

const employeeColumns = `e.employee_id AS employee_id,
       e.first_name + ' ' + e.last_name AS name,
       e.job_level AS level,
       e.department_id AS dept`

// DegreeCentrality ranks employees by incoming REPORTS_TO relationships.
func (a *Analytics) DegreeCentrality(ctx context.Context, topN int) ([]map[string]any, error) {
	return a.runner.Read(ctx, `MATCH (e:Employee)<-[:REPORTS_TO]-(report:Employee)
WITH e, count(report) AS in_degree
ORDER BY in_degree DESC
LIMIT $top_n
RETURN `+employeeColumns+`, in_degree AS score`, map[string]any{"top_n": int64(topN)})
}

// SpanOfControl returns every manager with their direct report count.
func (a *Analytics) SpanOfControl(ctx context.Context) ([]map[string]any, error) {
	return a.runner.Read(ctx, `MATCH (e:Employee)<-[:REPORTS_TO]-(report:Employee)
WITH e, count(report) AS direct_reports
RETURN `+employeeColumns+`, direct_reports
ORDER BY direct_reports DESC`, nil)
}

type SpanStats struct {
	Avg          float64 `json:"avg"`
	Min          int64   `json:"min"`
	Max          int64   `json:"max"`
	ManagerCount int     `json:"manager_count"`
}

type CentralityReport struct {
	TopByDegree []map[string]any `json:"top_by_degree"`
	SpanStats   SpanStats        `json:"span_stats"`
}

func (a *Analytics) Centrality(ctx context.Context, topN int) (*CentralityReport, error) {
	top, err := a.DegreeCentrality(ctx, topN)
	if err != nil {
		return nil, err
	}
	spans, err := a.SpanOfControl(ctx)
	if err != nil {
		return nil, err
	}
	return &CentralityReport{TopByDegree: PlainRows(top), SpanStats: spanStats(spans)}, nil
}

func spanStats(rows []map[string]any) SpanStats {
	var s SpanStats
	if len(rows) == 0 {
		return s
	}
	var sum int64
	for i, r := range rows {
		n := num(r, "direct_reports")
		sum += n
		if i == 0 || n < s.Min {
			s.Min = n
		}
		if n > s.Max {
			s.Max = n
		}
	}
	s.ManagerCount = len(rows)
	s.Avg = float64(sum) / float64(len(rows))
	return s
}

// CrossDepartmentReporting counts reporting lines that cross departments.
func (a *Analytics) CrossDepartmentReporting(ctx context.Context) ([]map[string]any, error) {
	return a.runner.Read(ctx, `MATCH (e1:Employee)-[:REPORTS_TO]->(e2:Employee)
WHERE e1.department_id <> e2.department_id
WITH e1.department_id AS dept1, e2.department_id AS dept2, count(*) AS cross_reports
RETURN dept1, dept2, cross_reports
ORDER BY cross_reports DESC
LIMIT 20`, nil)
}

// SkillCommunities pairs employees sharing at least two skills.
func (a *Analytics) SkillCommunities(ctx context.Context) ([]map[string]any, error) {
	return a.runner.Read(ctx, `MATCH (e1:Employee)-[:HAS_SKILL]->(s:Skill)<-[:HAS_SKILL]-(e2:Employee)
WHERE e1.employee_id < e2.employee_id
WITH e1, e2, count(DISTINCT s) AS shared_skills
WHERE shared_skills >= 2
RETURN e1.employee_id AS emp1_id,
       e1.first_name + ' ' + e1.last_name AS emp1_name,
       e1.department_id AS emp1_dept,
       e2.employee_id AS emp2_id,
       e2.first_name + ' ' + e2.last_name AS emp2_name,
       e2.department_id AS emp2_dept,
       shared_skills
ORDER BY shared_skills DESC
LIMIT 30`, nil)
}

// InterviewNetwork counts interviews run for other departments' requisitions.
func (a *Analytics) InterviewNetwork(ctx context.Context) ([]map[string]any, error) {
	return a.runner.Read(ctx, `MATCH (i:Interview)-[:INTERVIEWED_BY]->(emp:Employee)
MATCH (app:Application)-[:HAS_INTERVIEW]->(i)
MATCH (app)-[:APPLICATION_FOR]->(req:Requisition)
WHERE emp.department_id <> req.department_id
WITH emp.department_id AS interviewer_dept, req.department_id AS hiring_dept, count(*) AS cross_interviews
RETURN interviewer_dept, hiring_dept, cross_interviews
ORDER BY cross_interviews DESC
LIMIT 20`, nil)
}

// DiversityProfile counts active employees per department and gender.
func (a *Analytics) DiversityProfile(ctx context.Context) ([]map[string]any, error) {
	return a.runner.Read(ctx, `MATCH (e:Employee)
WHERE e.status = 'Active'
WITH e.department_id AS dept, e.gender AS gender, count(*) AS count
RETURN dept, gender, count
ORDER BY dept, count DESC`, nil)
}

type CommunityReport struct {
	CrossDeptReporting []map[string]any `json:"cross_dept_reporting"`
	SkillCommunities   []map[string]any `json:"skill_communities"`
	InterviewNetwork   []map[string]any `json:"interview_network"`
	DiversityProfile   []map[string]any `json:"diversity_profile"`
}

func (a *Analytics) Community(ctx context.Context) (*CommunityReport, error) {
	var (
		r   CommunityReport
		err error
	)
	if r.CrossDeptReporting, err = a.CrossDepartmentReporting(ctx); err != nil {
		return nil, err
	}
	if r.SkillCommunities, err = a.SkillCommunities(ctx); err != nil {
		return nil, err
	}
	if r.InterviewNetwork, err = a.InterviewNetwork(ctx); err != nil {
		return nil, err
	}
	if r.DiversityProfile, err = a.DiversityProfile(ctx); err != nil {
		return nil, err
	}
	r.CrossDeptReporting = PlainRows(r.CrossDeptReporting)
	r.SkillCommunities = PlainRows(r.SkillCommunities)
	r.InterviewNetwork = PlainRows(r.InterviewNetwork)
	r.DiversityProfile = PlainRows(r.DiversityProfile)
	return &r, nil
}

// CascadeImpact describes what an employee's departure would disrupt.
type CascadeImpact struct {
	Employee            map[string]any   `json:"employee"`
	DirectReports       []map[string]any `json:"direct_reports"`
	IndirectReportCount int64            `json:"indirect_report_count"`
	EmployeesReviewed   int64            `json:"employees_reviewed"`
	InterviewsConducted int64            `json:"interviews_conducted"`
	SkillsLost          []string         `json:"skills_lost"`
	ActiveGoalsOrphaned int64            `json:"active_goals_orphaned"`
}

func (a *Analytics) CascadeImpact(ctx context.Context, employeeID string) (*CascadeImpact, error) {
	params := map[string]any{"eid": employeeID}
	info, err := a.runner.Read(ctx, `MATCH (e:Employee {employee_id: $eid})
RETURN e.first_name + ' ' + e.last_name AS name, e.job_level AS level, e.department_id AS dept`, params)
	if err != nil {
		return nil, err
	}
	if len(info) == 0 {
		return nil, errors.Wrap(ErrEmployeeNotFound, employeeID)
	}

	out := &CascadeImpact{Employee: PlainRows(info)[0], SkillsLost: []string{}}
	if out.DirectReports, err = a.runner.Read(ctx, `MATCH (report:Employee)-[:REPORTS_TO]->(e:Employee {employee_id: $eid})
RETURN report.employee_id AS id, report.first_name + ' ' + report.last_name AS name, report.job_level AS level`, params); err != nil {
		return nil, err
	}
	out.DirectReports = PlainRows(out.DirectReports)

	counts := []struct {
		dst    *int64
		cypher string
	}{
		{&out.IndirectReportCount, `MATCH (indirect:Employee)-[:REPORTS_TO*2]->(e:Employee {employee_id: $eid})
RETURN count(indirect) AS count`},
		{&out.EmployeesReviewed, `MATCH (r:PerformanceReview)-[:REVIEWED_BY]->(e:Employee {employee_id: $eid})
MATCH (emp:Employee)-[:REVIEWED_IN]->(r)
RETURN count(DISTINCT emp) AS count`},
		{&out.InterviewsConducted, `MATCH (i:Interview)-[:INTERVIEWED_BY]->(e:Employee {employee_id: $eid})
RETURN count(i) AS count`},
		{&out.ActiveGoalsOrphaned, `MATCH (e:Employee {employee_id: $eid})-[:SET_GOAL]->(g:Goal)
WHERE g.status <> 'Completed'
RETURN count(g) AS count`},
	}
	for _, c := range counts {
		rows, err := a.runner.Read(ctx, c.cypher, params)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			*c.dst = num(rows[0], "count")
		}
	}

	skills, err := a.runner.Read(ctx, `MATCH (e:Employee {employee_id: $eid})-[:HAS_SKILL]->(s:Skill)
RETURN s.name AS skill_name`, params)
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		out.SkillsLost = append(out.SkillsLost, str(s, "skill_name"))
	}
	return out, nil
}

type OrgPath struct {
	Path     []string `json:"path"`
	Distance int64    `json:"distance"`
}

// OrgDistance finds the shortest reporting-line path between two employees.
// Distance is -1 when they are not connected.
func (a *Analytics) OrgDistance(ctx context.Context, emp1, emp2 string) (*OrgPath, error) {
	rows, err := a.runner.Read(ctx, `MATCH path = shortestPath(
  (e1:Employee {employee_id: $eid1})-[:REPORTS_TO*]-(e2:Employee {employee_id: $eid2})
)
RETURN [n IN nodes(path) | n.first_name + ' ' + n.last_name + ' (' + n.job_level + ')'] AS path_names,
       length(path) AS distance`, map[string]any{"eid1": emp1, "eid2": emp2})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &OrgPath{Path: []string{}, Distance: -1}, nil
	}
	out := &OrgPath{Distance: num(rows[0], "distance"), Path: []string{}}
	if names, ok := rows[0]["path_names"].([]any); ok {
		for _, n := range names {
			out.Path = append(out.Path, fmt.Sprint(n))
		}
	}
	return out, nil
}

// FlightRisk ranks active employees by the impact their departure would
// have: direct_reports*10 + reviews_given*3 + skill_count*2.
func (a *Analytics) FlightRisk(ctx context.Context, topN int) ([]map[string]any, error) {
	rows, err := a.runner.Read(ctx, `MATCH (e:Employee)
WHERE e.status = 'Active'
OPTIONAL MATCH (report:Employee)-[:REPORTS_TO]->(e)
WITH e, count(report) AS direct_reports
OPTIONAL MATCH (r:PerformanceReview)-[:REVIEWED_BY]->(e)
WITH e, direct_reports, count(r) AS reviews_given
OPTIONAL MATCH (e)-[:HAS_SKILL]->(s:Skill)
WITH e, direct_reports, reviews_given, count(s) AS skill_count
WITH e, direct_reports, reviews_given, skill_count,
     (direct_reports * 10 + reviews_given * 3 + skill_count * 2) AS impact_score
WHERE impact_score > 0
RETURN `+employeeColumns+`, direct_reports, reviews_given, skill_count, impact_score
ORDER BY impact_score DESC
LIMIT $top_n`, map[string]any{"top_n": int64(topN)})
	if err != nil {
		return nil, err
	}
	return PlainRows(rows), nil
}
