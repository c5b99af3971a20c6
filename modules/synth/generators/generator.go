// Package generators produces the raw HR tables. Each generator reads the
// entities earlier steps left in the registry and registers what it creates.
package generators

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/registry"
)

const (
	SystemHRIS         = "hris"
	SystemCompensation = "compensation"
	SystemATS          = "ats"
	SystemPerformance  = "performance"
)

type Generator interface {
	Name() string
	Generate(ctx context.Context) error
	Validate() error
	Tables() []*Table
}

// ValidationError lists every problem found in one generator's output.
type ValidationError struct {
	Generator string
	Problems  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d validation problems: %s", e.Generator, len(e.Problems), strings.Join(e.Problems, "; "))
}

type base struct {
	name    string
	reg     *registry.Registry
	profile *profile.Profile
	tables  []*Table
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Tables() []*Table {
	return b.tables
}

func (b *base) register(t *Table) *Table {
	b.tables = append(b.tables, t)
	return t
}

func (b *base) table(name string) *Table {
	for _, t := range b.tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// problems returns the checks shared by every generator.
func (b *base) problems() []string {
	var out []string
	if len(b.tables) == 0 {
		out = append(out, "no tables generated")
	}
	for _, t := range b.tables {
		if t.Len() == 0 {
			out = append(out, fmt.Sprintf("%s/%s: table is empty", b.name, t.Name))
		}
	}
	return out
}

func (b *base) result(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Generator: b.name, Problems: problems}
}

// Save writes every table of g under rawDir/<generator>/ and returns the paths.
func Save(rawDir string, g Generator) ([]string, error) {
	dir := filepath.Join(rawDir, g.Name())
	paths := make([]string, 0, len(g.Tables()))
	for _, t := range g.Tables() {
		p, err := t.WriteCSV(dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// missingRefs returns the values of refs that are not in keys, ignoring
// empty references.
func missingRefs(refs []string, keys map[string]struct{}) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range refs {
		if r == "" {
			continue
		}
		if _, ok := keys[r]; ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func keySet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func employeeKeys(reg *registry.Registry) map[string]struct{} {
	out := map[string]struct{}{}
	for _, e := range reg.Employees() {
		out[e.ID] = struct{}{}
	}
	return out
}

func checkRefs(problems []string, label string, refs []string, keys map[string]struct{}) []string {
	if missing := missingRefs(refs, keys); len(missing) > 0 {
		problems = append(problems, fmt.Sprintf("%d %s reference unknown ids (e.g. %s)", len(missing), label, missing[0]))
	}
	return problems
}
