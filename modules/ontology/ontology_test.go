package ontology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasimarinw/hr-ontology/modules/lake"
)

func TestSchemas(t *testing.T) {
	assert.Len(t, Nodes(), 22)
	assert.Len(t, Edges(), 30)

	labels := map[string]bool{}
	for _, n := range Nodes() {
		require.False(t, labels[n.Label()], "duplicate label %s", n.Label())
		labels[n.Label()] = true
		assert.Contains(t, n.Required, n.IDProperty, n.Label())
		assert.Equal(t, n.IDProperty, n.Indexes[0], n.Label())
	}
	for _, e := range Edges() {
		assert.True(t, labels[e.SourceLabel], "%s source %s", e.Type, e.SourceLabel)
		assert.True(t, labels[e.TargetLabel], "%s target %s", e.Type, e.TargetLabel)
	}
}

func TestConstraintStatements(t *testing.T) {
	stmts := ConstraintStatements()
	// one constraint per node, the email index and four Employee lookups
	require.Len(t, stmts, 22+1+4)

	assert.Equal(t, "CREATE CONSTRAINT uniq_employee_employee_id IF NOT EXISTS FOR (n:Employee) REQUIRE n.employee_id IS UNIQUE", stmts[0])
	assert.Equal(t, "CREATE INDEX idx_employee_email IF NOT EXISTS FOR (n:Employee) ON (n.email)", stmts[1])
	assert.Contains(t, stmts, "CREATE CONSTRAINT uniq_sourcechannel_channel_name IF NOT EXISTS FOR (n:SourceChannel) REQUIRE n.channel_name IS UNIQUE")
	assert.Contains(t, stmts, "CREATE INDEX idx_employee_dept_level IF NOT EXISTS FOR (n:Employee) ON (n.department_id, n.job_level)")
	assert.Equal(t, "CREATE INDEX idx_employee_ethnicity IF NOT EXISTS FOR (n:Employee) ON (n.ethnicity)", stmts[len(stmts)-1])
}

func TestNodeMappings_MatchSchemasAndLake(t *testing.T) {
	mapped := map[string]bool{}
	for _, m := range NodeMappings() {
		schema, ok := NodeByLabel(m.Label)
		require.True(t, ok, m.Label)
		mapped[m.Label] = true

		tbl, ok := lake.Lookup(m.Table)
		require.True(t, ok, "%s reads unknown table %s", m.Label, m.Table)

		props := map[string]bool{}
		for _, p := range schema.Properties() {
			props[p] = true
		}
		hasID := false
		for _, f := range m.Fields {
			assert.True(t, props[f.Property], "%s maps unknown property %s", m.Label, f.Property)
			hasID = hasID || f.Property == schema.IDProperty
		}
		assert.True(t, hasID, "%s does not map its id", m.Label)
		for _, r := range schema.Required {
			found := false
			for _, f := range m.Fields {
				found = found || f.Property == r
			}
			assert.True(t, found, "%s misses required property %s", m.Label, r)
		}

		cols := map[string]bool{}
		for _, c := range tbl.ColumnNames() {
			cols[c] = true
		}
		for _, f := range m.Fields {
			if len(f.Expr) > 2 && f.Expr[0] == '"' {
				assert.True(t, cols[f.Expr[1:len(f.Expr)-1]], "%s reads missing column %s", m.Label, f.Expr)
			}
		}
	}
	assert.Len(t, mapped, len(Nodes()), "every node label is loaded")
}

func TestEdgeMappings_MatchSchemas(t *testing.T) {
	for _, m := range EdgeMappings() {
		schema, ok := EdgeByType(m.Type)
		require.True(t, ok, m.Type)
		for _, tbl := range m.Tables {
			_, ok := lake.Lookup(tbl)
			assert.True(t, ok, "%s reads unknown table %s", m.Type, tbl)
		}
		for _, f := range m.Fields {
			assert.Contains(t, schema.Properties, f.Property, m.Type)
		}
	}
	assert.Len(t, EdgeMappings(), len(Edges())-1)
}

func TestMappingQueries(t *testing.T) {
	var loc NodeMapping
	var channel NodeMapping
	for _, m := range NodeMappings() {
		switch m.Label {
		case "Location":
			loc = m
		case "SourceChannel":
			channel = m
		}
	}
	assert.Equal(t,
		`SELECT "id" AS "location_id", "name" AS "name", "city" AS "city", "country" AS "country", "is_hq" AS "is_hq" FROM locations WHERE "id" IS NOT NULL`,
		loc.Query())
	assert.Equal(t, `SELECT DISTINCT "source" AS "channel_name" FROM candidates WHERE "source" IS NOT NULL`, channel.Query())

	var reports, band EdgeMapping
	for _, m := range EdgeMappings() {
		switch m.Type {
		case "REPORTS_TO":
			reports = m
		case "IN_SALARY_BAND":
			band = m
		}
	}
	assert.Equal(t,
		`SELECT CAST("employee_id" AS VARCHAR) AS source, CAST("manager_id" AS VARCHAR) AS target, "hire_date" AS "effective_date" FROM employees WHERE "employee_id" IS NOT NULL AND "manager_id" IS NOT NULL`,
		reports.Query())
	assert.Contains(t, band.Query(), "JOIN salary_bands b ON b.job_family = p.job_family AND b.job_level = p.job_level")
}

func TestDescribe(t *testing.T) {
	all, err := Describe("all")
	require.NoError(t, err)
	raw, err := json.Marshal(all)
	require.NoError(t, err)
	var decoded struct {
		NodeTypes         map[string]json.RawMessage `json:"node_types"`
		RelationshipTypes map[string]json.RawMessage `json:"relationship_types"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded.NodeTypes, 22)
	assert.Len(t, decoded.RelationshipTypes, 30)

	emp, err := Describe("Employee")
	require.NoError(t, err)
	assert.Equal(t, "node", emp.(nodeDetail).Type)
	assert.Equal(t, []string{"Person", "Employee"}, emp.(nodeDetail).Labels)

	rel, err := Describe("IN_SALARY_BAND")
	require.NoError(t, err)
	assert.Equal(t, "SalaryBand", rel.(edgeDetail).TargetLabel)

	_, err = Describe("Payroll")
	var unknown *UnknownEntityError
	require.ErrorAs(t, err, &unknown)
	assert.Len(t, unknown.AvailableNodes, 22)
	assert.Len(t, unknown.AvailableEdges, 30)
}
