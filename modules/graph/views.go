package graph

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// View builds one of the canned organisation visualisations.
type View func(ctx context.Context, runner Runner) (*Subgraph, error)

// Views maps render algorithm names to their builders.
var Views = map[string]View{
	"render_org_chart":          OrgChart,
	"render_department_network": DepartmentNetwork,
	"render_compensation_map":   CompensationMap,
	"render_recruiting_funnel":  RecruitingFunnel,
	"render_skills_network":     SkillsNetwork,
}

// OrgChart draws active employees and their reporting lines, sized by span
// of control.
func OrgChart(ctx context.Context, runner Runner) (*Subgraph, error) {
	nodes, err := runner.Read(ctx, `MATCH (e:Employee)
WHERE e.status = 'Active'
OPTIONAL MATCH (report:Employee)-[:REPORTS_TO]->(e)
WITH e, count(report) AS direct_reports
RETURN e.employee_id AS id,
       e.first_name + ' ' + e.last_name AS name,
       e.job_level AS level,
       e.department_id AS dept,
       direct_reports`, nil)
	if err != nil {
		return nil, err
	}
	edges, err := runner.Read(ctx, `MATCH (e:Employee)-[:REPORTS_TO]->(m:Employee)
WHERE e.status = 'Active' AND m.status = 'Active'
RETURN e.employee_id AS source, m.employee_id AS target`, nil)
	if err != nil {
		return nil, err
	}

	g := NewSubgraph("Org Chart", true)
	for _, n := range nodes {
		reports := num(n, "direct_reports")
		level := str(n, "level")
		label := ""
		if reports > 0 || level == "VP" || level == "CX" {
			label = str(n, "name")
		}
		g.AddNode(VisNode{
			ID:    str(n, "id"),
			Label: label,
			Title: fmt.Sprintf("%s\n%s | %s\nDirect reports: %d", str(n, "name"), level, str(n, "dept"), reports),
			Group: str(n, "dept"),
			Color: nodeColor("Employee"),
			Size:  10 + int(reports)*5,
		})
	}
	for _, e := range edges {
		g.AddEdge(VisEdge{From: str(e, "source"), To: str(e, "target"), Color: "#666666"})
	}
	return g, nil
}

// DepartmentNetwork draws departments around their divisions with headcounts.
func DepartmentNetwork(ctx context.Context, runner Runner) (*Subgraph, error) {
	rows, err := runner.Read(ctx, `MATCH (d:Department)-[:PART_OF]->(div:Division)
OPTIONAL MATCH (e:Employee)-[:BELONGS_TO]->(d)
WHERE e.status = 'Active'
WITH d, div, count(e) AS headcount
RETURN d.dept_id AS dept_id, d.name AS dept_name,
       div.division_id AS div_id, div.name AS div_name,
       headcount`, nil)
	if err != nil {
		return nil, err
	}
	g := NewSubgraph("Department Network", false)
	for _, r := range rows {
		headcount := num(r, "headcount")
		g.AddNode(VisNode{ID: str(r, "div_id"), Label: str(r, "div_name"), Color: nodeColor("Division"), Size: 40, Shape: "box"})
		g.AddNode(VisNode{
			ID:    str(r, "dept_id"),
			Label: fmt.Sprintf("%s\n(%d)", str(r, "dept_name"), headcount),
			Color: nodeColor("Department"),
			Size:  15 + int(headcount)/3,
		})
		g.AddEdge(VisEdge{From: str(r, "dept_id"), To: str(r, "div_id"), Color: "#888888"})
	}
	return g, nil
}

// CompensationMap links active employees to their salary band, coloured by
// compa-ratio of their latest base salary.
func CompensationMap(ctx context.Context, runner Runner) (*Subgraph, error) {
	rows, err := runner.Read(ctx, `MATCH (e:Employee)-[:HOLDS_POSITION]->(p:Position)-[:IN_SALARY_BAND]->(b:SalaryBand)
MATCH (e)-[:EARNS_BASE]->(s:BaseSalary)
WHERE e.status = 'Active'
WITH e, p, b, s
ORDER BY s.effective_date DESC
WITH e, p, b, collect(s)[0] AS latest_sal
WITH e, p, b, latest_sal,
     CASE WHEN b.midpoint > 0
          THEN toFloat(latest_sal.amount) / toFloat(b.midpoint) * 100
          ELSE 100 END AS compa_ratio
RETURN e.employee_id AS emp_id,
       e.first_name + ' ' + e.last_name AS name,
       e.job_level AS level,
       e.gender AS gender,
       b.band_id AS band_id,
       b.job_family + ' / ' + b.job_level AS band_label,
       b.midpoint AS midpoint,
       latest_sal.amount AS salary,
       compa_ratio
LIMIT 200`, nil)
	if err != nil {
		return nil, err
	}
	g := NewSubgraph("Compensation Map", false)
	for _, r := range rows {
		cr := float(r, "compa_ratio")
		if r["compa_ratio"] == nil {
			cr = 100
		}
		salary := decimal.NewFromFloat(float(r, "salary")).Round(0)
		midpoint := decimal.NewFromFloat(float(r, "midpoint")).Round(0)
		empID := "emp_" + str(r, "emp_id")
		bandID := "band_" + str(r, "band_id")
		g.AddNode(VisNode{
			ID:    empID,
			Label: str(r, "name"),
			Title: fmt.Sprintf("%s\n%s | %s\nSalary: $%s\nCompa-ratio: %.0f%%", str(r, "name"), str(r, "level"), str(r, "gender"), salary.StringFixed(0), cr),
			Color: compaColor(cr),
			Size:  15,
		})
		g.AddNode(VisNode{
			ID:    bandID,
			Label: fmt.Sprintf("%s\n$%s", str(r, "band_label"), midpoint.StringFixed(0)),
			Color: nodeColor("SalaryBand"),
			Size:  30,
			Shape: "box",
		})
		g.AddEdge(VisEdge{From: empID, To: bandID, Color: "#555555"})
	}
	return g, nil
}

// RecruitingFunnel links source channels to application outcomes, edge width
// scaled by volume.
func RecruitingFunnel(ctx context.Context, runner Runner) (*Subgraph, error) {
	rows, err := runner.Read(ctx, `MATCH (sc:SourceChannel)<-[:SOURCED_FROM]-(c:Candidate)
MATCH (c)-[:HAS_APPLICATION]->(app:Application)
RETURN sc.channel_name AS source, app.status AS status, count(*) AS count
ORDER BY source, count DESC`, nil)
	if err != nil {
		return nil, err
	}
	g := NewSubgraph("Recruiting Funnel", true)
	for _, r := range rows {
		src, status, count := str(r, "source"), str(r, "status"), num(r, "count")
		g.AddNode(VisNode{ID: "src_" + src, Label: src, Color: nodeColor("SourceChannel"), Size: 30, Shape: "box"})
		g.AddNode(VisNode{ID: "status_" + status, Label: status, Color: statusColor(status), Size: 25, Shape: "box"})
		g.AddEdge(VisEdge{
			From:  "src_" + src,
			To:    "status_" + status,
			Title: fmt.Sprint(count),
			Color: "#666666",
			Width: float64(max(1, count/20)),
		})
	}
	return g, nil
}

func statusColor(status string) string {
	switch status {
	case "Hired":
		return "#27AE60"
	case "Rejected":
		return "#E74C3C"
	default:
		return "#F39C12"
	}
}

// SkillsNetwork links active employees to the skills they hold.
func SkillsNetwork(ctx context.Context, runner Runner) (*Subgraph, error) {
	rows, err := runner.Read(ctx, `MATCH (e:Employee)-[:HAS_SKILL]->(s:Skill)
WHERE e.status = 'Active'
RETURN e.employee_id AS emp_id,
       e.first_name + ' ' + e.last_name AS name,
       e.department_id AS dept,
       s.skill_id AS skill_id,
       s.name AS skill_name,
       s.category AS category
LIMIT 500`, nil)
	if err != nil {
		return nil, err
	}
	g := NewSubgraph("Skills Network", false)
	for _, r := range rows {
		empID, skillID := "emp_"+str(r, "emp_id"), "skill_"+str(r, "skill_id")
		g.AddNode(VisNode{
			ID:    empID,
			Label: str(r, "name"),
			Title: str(r, "name") + "\n" + str(r, "dept"),
			Color: nodeColor("Employee"),
			Size:  12,
		})
		g.AddNode(VisNode{
			ID:    skillID,
			Label: str(r, "skill_name"),
			Title: fmt.Sprintf("%s (%s)", str(r, "skill_name"), str(r, "category")),
			Color: nodeColor("Skill"),
			Size:  25,
			Shape: "diamond",
		})
		g.AddEdge(VisEdge{From: empID, To: skillID, Color: "#444444"})
	}
	return g, nil
}
