package graph

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasimarinw/hr-ontology/modules/ontology"
	"github.com/nicolasimarinw/hr-ontology/pkg/eventbus"
)

type write struct {
	cypher string
	params map[string]any
}

// fakeRunner records writes and answers reads with the first responder whose
// key is contained in the query.
type fakeRunner struct {
	writes    []write
	reads     []string
	responses map[string][]map[string]any
	writeErr  func(cypher string) error
}

func (f *fakeRunner) Write(_ context.Context, cypher string, params map[string]any) error {
	f.writes = append(f.writes, write{cypher: cypher, params: params})
	if f.writeErr != nil {
		return f.writeErr(cypher)
	}
	return nil
}

func (f *fakeRunner) Read(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
	f.reads = append(f.reads, cypher)
	for key, rows := range f.responses {
		if strings.Contains(cypher, key) {
			return rows, nil
		}
	}
	return nil, nil
}

type fakeSource struct {
	tables map[string]bool
	rows   func(query string) []map[string]any
}

func (f *fakeSource) Has(table string) bool { return f.tables[table] }

func (f *fakeSource) Each(_ context.Context, query string, fn func(map[string]any) error) error {
	if f.rows == nil {
		return nil
	}
	for _, r := range f.rows(query) {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestNodeCypher(t *testing.T) {
	emp, ok := ontology.NodeByLabel("Employee")
	require.True(t, ok)
	assert.Equal(t,
		"UNWIND $batch AS row MERGE (n:Employee {employee_id: row.employee_id}) SET n:Person SET n += row",
		nodeCypher(emp))

	cycle, ok := ontology.NodeByLabel("PerformanceCycle")
	require.True(t, ok)
	assert.Equal(t,
		"UNWIND $batch AS row MERGE (n:PerformanceCycle {cycle_id: row.cycle_id}) SET n += row",
		nodeCypher(cycle))
}

func TestEdgeCypher(t *testing.T) {
	reports, ok := ontology.EdgeByType("REPORTS_TO")
	require.True(t, ok)
	assert.Equal(t,
		"UNWIND $batch AS row MATCH (a:Employee {employee_id: row.source}) MATCH (b:Employee {employee_id: row.target}) MERGE (a)-[r:REPORTS_TO]->(b) SET r += row.props",
		edgeCypher(reports, true))

	partOf, ok := ontology.EdgeByType("PART_OF")
	require.True(t, ok)
	assert.NotContains(t, edgeCypher(partOf, false), "SET")
}

func TestLoader_Load(t *testing.T) {
	runner := &fakeRunner{responses: map[string][]map[string]any{
		"count(n)": {{"count": int64(1201)}},
		"count(r)": {{"count": int64(3400)}},
	}}
	employees := make([]map[string]any, 1201)
	for i := range employees {
		employees[i] = map[string]any{"employee_id": fmt.Sprintf("EMP-%05d", i), "manager_id": nil}
	}
	source := &fakeSource{
		tables: map[string]bool{"hris/employees": true},
		rows: func(query string) []map[string]any {
			if strings.HasPrefix(query, "SELECT ") && strings.Contains(query, `AS "employee_id"`) && !strings.Contains(query, "source") {
				return employees
			}
			return nil
		},
	}
	log, _ := test.NewNullLogger()
	bus := eventbus.New(log)
	var events []MappingLoaded
	_, err := bus.Subscribe(func(ev MappingLoaded) { events = append(events, ev) })
	require.NoError(t, err)

	res, err := NewLoader(runner, source, bus, log).Load(context.Background(), LoadOptions{Wipe: true})
	require.NoError(t, err)

	require.NotEmpty(t, runner.writes)
	assert.Equal(t, "MATCH (n) DETACH DELETE n", runner.writes[0].cypher)
	assert.Equal(t, len(ontology.ConstraintStatements()), res.Constraints)
	assert.Equal(t, 1201, res.Nodes["Employee"])
	assert.Equal(t, int64(1201), res.TotalNodes)
	assert.Equal(t, int64(3400), res.TotalRelationships)
	assert.Contains(t, res.Skipped, "Candidate")
	assert.Contains(t, res.Skipped, "IN_SALARY_BAND")

	var batches []int
	for _, w := range runner.writes {
		if strings.Contains(w.cypher, "MERGE (n:Employee") {
			batch := w.params["batch"].([]any)
			batches = append(batches, len(batch))
			first := batch[0].(map[string]any)
			_, hasManager := first["manager_id"]
			assert.False(t, hasManager, "nil properties are dropped")
		}
	}
	assert.Equal(t, []int{500, 500, 201}, batches)

	var loaded, skipped int
	for _, ev := range events {
		if ev.Skipped {
			skipped++
		} else {
			loaded++
		}
	}
	assert.Equal(t, len(res.Skipped), skipped)
	assert.Equal(t, 1+len(res.Relationships), loaded)
}

func TestLoader_ApplyConstraintsIgnoresExisting(t *testing.T) {
	runner := &fakeRunner{writeErr: func(cypher string) error {
		if strings.Contains(cypher, "uniq_employee_") {
			return errors.New("Neo.ClientError.Schema.EquivalentSchemaRuleAlreadyExists: An equivalent constraint already exists")
		}
		return nil
	}}
	n, err := NewLoader(runner, &fakeSource{}, nil, quietLogger()).ApplyConstraints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(ontology.ConstraintStatements()), n)

	runner.writeErr = func(string) error { return errors.New("connection refused") }
	_, err = NewLoader(runner, &fakeSource{}, nil, quietLogger()).ApplyConstraints(context.Background())
	require.Error(t, err)
}

func TestCheckReadOnly(t *testing.T) {
	cases := []struct {
		name   string
		cypher string
		ok     bool
	}{
		{"match", "MATCH (e:Employee) RETURN e LIMIT 5", true},
		{"property named like a clause", "MATCH (n) WHERE n.set = 1 RETURN n.create", true},
		{"keyword in string", "MATCH (e) WHERE e.termination_reason = 'DELETE me' RETURN e", true},
		{"keyword in comment", "MATCH (e) // merge later\nRETURN e", true},
		{"schema procedure", "CALL db.labels()", true},
		{"apoc meta", "CALL apoc.meta.schema() YIELD value RETURN value", true},
		{"read subquery", "CALL { MATCH (e:Employee) RETURN e } RETURN count(e)", true},
		{"create", "CREATE (n:Employee {employee_id: 'x'})", false},
		{"lowercase merge", "merge (n:Skill {skill_id: 'S'})", false},
		{"detach delete", "MATCH (n) DETACH DELETE n", false},
		{"set", "MATCH (e:Employee) SET e.status = 'Terminated'", false},
		{"write subquery", "CALL { CREATE (n) } RETURN 1", false},
		{"write procedure", "CALL apoc.create.node(['X'], {})", false},
		{"load csv", "LOAD CSV FROM 'file:///x.csv' AS row RETURN row", false},
		{"empty", "   ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckReadOnly(tc.cypher)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
	assert.ErrorIs(t, CheckReadOnly("CREATE (n)"), ErrNotReadOnly)
}

func TestPlain(t *testing.T) {
	hired := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	node := neo4j.Node{
		ElementId: "4:abc:1",
		Labels:    []string{"Person", "Employee"},
		Props:     map[string]any{"employee_id": "EMP-00001", "hire_date": dbtype.Date(hired)},
	}
	got := Plain(map[string]any{"e": node, "n": []any{int64(1), 2.5}}).(map[string]any)

	e := got["e"].(map[string]any)
	assert.Equal(t, "EMP-00001", e["employee_id"])
	assert.Equal(t, "2021-03-15", e["hire_date"])
	assert.Equal(t, []string{"Person", "Employee"}, e["_labels"])
	assert.Equal(t, []any{int64(1), 2.5}, got["n"])
	assert.Equal(t, int64(3), Plain(3))
	assert.Nil(t, Plain(nanValue()))
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}

func TestSpanStats(t *testing.T) {
	s := spanStats([]map[string]any{
		{"direct_reports": int64(8)},
		{"direct_reports": int64(2)},
		{"direct_reports": int64(5)},
	})
	assert.Equal(t, SpanStats{Avg: 5, Min: 2, Max: 8, ManagerCount: 3}, s)
	assert.Equal(t, SpanStats{}, spanStats(nil))
}

func TestAnalytics_CascadeImpact(t *testing.T) {
	ctx := context.Background()
	_, err := NewAnalytics(&fakeRunner{}).CascadeImpact(ctx, "EMP-99999")
	require.ErrorIs(t, err, ErrEmployeeNotFound)

	runner := &fakeRunner{responses: map[string][]map[string]any{
		"AS dept":            {{"name": "Ada Park", "level": "M2", "dept": "DEPT-001"}},
		"report.employee_id": {{"id": "EMP-00002", "name": "Bo Lee", "level": "IC3"}},
		"REPORTS_TO*2":       {{"count": int64(7)}},
		"DISTINCT emp":       {{"count": int64(4)}},
		"count(i)":           {{"count": int64(3)}},
		"count(g)":           {{"count": int64(2)}},
		"skill_name":         {{"skill_name": "Go"}, {"skill_name": "SQL"}},
	}}
	impact, err := NewAnalytics(runner).CascadeImpact(ctx, "EMP-00001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Park", impact.Employee["name"])
	assert.Len(t, impact.DirectReports, 1)
	assert.Equal(t, int64(7), impact.IndirectReportCount)
	assert.Equal(t, int64(4), impact.EmployeesReviewed)
	assert.Equal(t, int64(3), impact.InterviewsConducted)
	assert.Equal(t, int64(2), impact.ActiveGoalsOrphaned)
	assert.Equal(t, []string{"Go", "SQL"}, impact.SkillsLost)
}

func TestAnalytics_OrgDistance(t *testing.T) {
	ctx := context.Background()
	p, err := NewAnalytics(&fakeRunner{}).OrgDistance(ctx, "EMP-00001", "EMP-00002")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), p.Distance)
	assert.Empty(t, p.Path)

	runner := &fakeRunner{responses: map[string][]map[string]any{
		"shortestPath": {{"path_names": []any{"Ada Park (M2)", "Bo Lee (IC3)"}, "distance": int64(1)}},
	}}
	p, err = NewAnalytics(runner).OrgDistance(ctx, "EMP-00001", "EMP-00002")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Distance)
	assert.Equal(t, []string{"Ada Park (M2)", "Bo Lee (IC3)"}, p.Path)
}

func TestSubgraphFromRows(t *testing.T) {
	a := neo4j.Node{ElementId: "1", Labels: []string{"Person", "Employee"}, Props: map[string]any{"first_name": "Ada", "last_name": "Park"}}
	b := neo4j.Node{ElementId: "2", Labels: []string{"OrganizationalUnit", "Department"}, Props: map[string]any{"name": "Platform"}}
	rel := neo4j.Relationship{StartElementId: "1", EndElementId: "2", Type: "BELONGS_TO"}
	dangling := neo4j.Relationship{StartElementId: "1", EndElementId: "9", Type: "REPORTS_TO"}

	g := SubgraphFromRows("team", []map[string]any{
		{"e": a, "r": rel, "d": b},
		{"e": a, "r": dangling},
	})
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.True(t, g.Directed)
	byID := map[string]VisNode{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, "Ada Park", byID["1"].Label)
	assert.Equal(t, "Employee", byID["1"].Group)
	assert.Equal(t, nodeColor("Employee"), byID["1"].Color)
	assert.Equal(t, "Platform", byID["2"].Label)
	assert.Equal(t, "BELONGS_TO", g.Edges[0].Label)
}

func TestEgoGraph(t *testing.T) {
	ada := neo4j.Node{ElementId: "1", Labels: []string{"Person", "Employee"}, Props: map[string]any{"first_name": "Ada", "last_name": "Park", "employee_id": "EMP-00001"}}
	bo := neo4j.Node{ElementId: "2", Labels: []string{"Person", "Employee"}, Props: map[string]any{"first_name": "Bo", "last_name": "Lee"}}
	dept := neo4j.Node{ElementId: "3", Labels: []string{"OrganizationalUnit", "Department"}, Props: map[string]any{"name": "Platform"}}
	reports := neo4j.Relationship{StartElementId: "2", EndElementId: "1", Type: "REPORTS_TO"}
	belongs := neo4j.Relationship{StartElementId: "2", EndElementId: "3", Type: "BELONGS_TO"}

	runner := &fakeRunner{responses: map[string][]map[string]any{
		"MATCH (center:Employee": {
			{"center": ada, "path": neo4j.Path{Nodes: []neo4j.Node{ada, bo}, Relationships: []neo4j.Relationship{reports}}},
			{"center": ada, "path": neo4j.Path{Nodes: []neo4j.Node{ada, bo, dept}, Relationships: []neo4j.Relationship{reports, belongs}}},
		},
	}}

	g, err := NewAnalytics(runner).EgoGraph(context.Background(), "EMP-00001", 2)
	require.NoError(t, err)
	assert.Equal(t, "Ego Graph: Ada Park (EMP-00001)", g.Title)
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "1", g.Nodes[0].ID)
	assert.Equal(t, 2*nodeSize("Employee"), g.Nodes[0].Size)
	assert.Equal(t, 3, g.Nodes[0].BorderWidth)
	assert.Zero(t, g.Nodes[1].BorderWidth)
	require.Len(t, runner.reads, 1)
	assert.Contains(t, runner.reads[0], "[*1..2]")
}

func TestEgoGraph_HopsClamped(t *testing.T) {
	ada := neo4j.Node{ElementId: "1", Labels: []string{"Employee"}, Props: map[string]any{"first_name": "Ada"}}
	for hops, want := range map[int]string{-3: "[*1..1]", 0: "[*1..1]", 1: "[*1..1]", 2: "[*1..2]", 9: "[*1..2]"} {
		runner := &fakeRunner{responses: map[string][]map[string]any{
			"MATCH (center:Employee": {{"center": ada, "path": nil}},
		}}
		g, err := EgoGraph(context.Background(), runner, "EMP-00001", hops)
		require.NoError(t, err)
		assert.Len(t, g.Nodes, 1, "isolated employee keeps the center node")
		assert.Contains(t, runner.reads[0], want, "hops=%d", hops)
	}
}

func TestEgoGraph_UnknownEmployee(t *testing.T) {
	_, err := EgoGraph(context.Background(), &fakeRunner{}, "EMP-99999", 1)
	require.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestSubgraphFromRows_Tabular(t *testing.T) {
	rows := make([]map[string]any, 150)
	for i := range rows {
		rows[i] = map[string]any{"dept": "DEPT-001", "headcount": int64(i)}
	}
	g := SubgraphFromRows("headcount", rows)
	assert.Len(t, g.Nodes, maxTabularNodes)
	assert.Empty(t, g.Edges)
	assert.Equal(t, "row-0", g.Nodes[0].ID)
	assert.Equal(t, "DEPT-001 | 0", g.Nodes[0].Label)
}

func TestPage(t *testing.T) {
	g := NewSubgraph(`<script>alert("x")</script>`, true)
	g.AddNode(VisNode{ID: "a", Label: "A"})
	g.AddNode(VisNode{ID: "a", Label: "dup"})

	var buf bytes.Buffer
	require.NoError(t, Page(g).Render(context.Background(), &buf))
	html := buf.String()
	assert.Contains(t, html, "vis-network")
	assert.Contains(t, html, `id="graph-data"`)
	assert.Contains(t, html, `"label":"A"`)
	assert.NotContains(t, html, `"label":"dup"`)
	assert.NotContains(t, html, `<title><script>`)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "engineeringteam", SafeName("Engineering Team!"))
	assert.Equal(t, "top-10_managers", SafeName("Top-10_Managers"))
	assert.Equal(t, "subgraph", SafeName("???"))
}

func TestDispatcher_Run(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	runner := &fakeRunner{responses: map[string][]map[string]any{
		"SOURCED_FROM": {
			{"source": "Referral", "status": "Hired", "count": int64(40)},
			{"source": "Referral", "status": "Rejected", "count": int64(10)},
		},
	}}
	d := NewDispatcher(runner, NewRenderer(dir))

	_, err := d.Run(ctx, AlgorithmRequest{Algorithm: "cascade"})
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = d.Run(ctx, AlgorithmRequest{Algorithm: "org_distance", Emp1ID: "EMP-00001"})
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = d.Run(ctx, AlgorithmRequest{Algorithm: "pagerank"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	out, err := d.Run(ctx, AlgorithmRequest{Algorithm: "render_recruiting_funnel"})
	require.NoError(t, err)
	res := out.(*RenderResult)
	assert.Equal(t, filepath.Join(dir, "recruiting_funnel.html"), res.File)
	assert.Equal(t, 3, res.NodeCount)
	assert.Equal(t, 2, res.EdgeCount)
	_, err = os.Stat(res.File)
	require.NoError(t, err)

	out, err = d.Run(ctx, AlgorithmRequest{Algorithm: "flight_risk", TopN: 3})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDispatcher_Visualize(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(&fakeRunner{}, NewRenderer(t.TempDir()))
	_, err := d.Visualize(ctx, "MATCH (n) DELETE n", "x")
	require.ErrorIs(t, err, ErrNotReadOnly)
	_, err = d.Visualize(ctx, "MATCH (n) RETURN n", "x")
	require.Error(t, err)

	runner := &fakeRunner{responses: map[string][]map[string]any{
		"RETURN e": {{"e": neo4j.Node{ElementId: "1", Labels: []string{"Employee"}, Props: map[string]any{"first_name": "Ada"}}}},
	}}
	dir := t.TempDir()
	res, err := NewDispatcher(runner, NewRenderer(dir)).Visualize(ctx, "MATCH (e:Employee) RETURN e", "My Team")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom_myteam.html"), res.File)
	assert.Equal(t, 1, res.NodeCount)
}

func TestAlgorithms(t *testing.T) {
	names := Algorithms()
	assert.Len(t, names, 10)
	assert.Equal(t, "centrality", names[0])
	assert.Contains(t, names, "render_skills_network")
}

func TestCompaColor(t *testing.T) {
	assert.Equal(t, "#27AE60", compaColor(112))
	assert.Equal(t, "#3498DB", compaColor(100))
	assert.Equal(t, "#F39C12", compaColor(90))
	assert.Equal(t, "#E74C3C", compaColor(70))
}
