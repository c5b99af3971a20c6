package ontology

import (
	"fmt"
	"strings"
)

var compositeIndexes = []struct {
	name       string
	label      string
	properties []string
}{
	{"idx_employee_dept_level", "Employee", []string{"department_id", "job_level"}},
	{"idx_employee_status", "Employee", []string{"status"}},
	{"idx_employee_gender", "Employee", []string{"gender"}},
	{"idx_employee_ethnicity", "Employee", []string{"ethnicity"}},
}

// ConstraintStatements returns the idempotent Cypher that creates one
// uniqueness constraint per node id, one index per extra indexed property and
// the Employee lookup indexes.
func ConstraintStatements() []string {
	var out []string
	for _, n := range nodes {
		label := n.Label()
		lower := strings.ToLower(label)
		out = append(out, fmt.Sprintf(
			"CREATE CONSTRAINT uniq_%s_%s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			lower, n.IDProperty, label, n.IDProperty))
		for _, p := range n.Indexes {
			if p == n.IDProperty {
				continue
			}
			out = append(out, fmt.Sprintf(
				"CREATE INDEX idx_%s_%s IF NOT EXISTS FOR (n:%s) ON (n.%s)", lower, p, label, p))
		}
	}
	for _, ci := range compositeIndexes {
		on := make([]string, len(ci.properties))
		for i, p := range ci.properties {
			on[i] = "n." + p
		}
		out = append(out, fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (%s)",
			ci.name, ci.label, strings.Join(on, ", ")))
	}
	return out
}
