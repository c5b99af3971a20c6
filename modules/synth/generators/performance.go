package generators

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/distributions"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/registry"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/temporal"
)

const (
	CycleTypeSemiAnnual = "Semi-annual"

	GoalCompleted  = "Completed"
	GoalInProgress = "In Progress"
	GoalAtRisk     = "At Risk"

	reviewMinTenureDays     = 60
	assessmentMinTenureDays = 90
	wideSpanReports         = 10
	wideSpanPenalty         = -0.1
	tenureBoostPerYear      = 0.05
	tenureBoostCap          = 0.2
	ratingNoiseStd          = 0.2
)

// Cycle is one semi-annual review period.
type Cycle struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}

// IsAnnual reports whether the cycle closes the year; competencies are only
// assessed then.
func (c Cycle) IsAnnual() bool {
	return strings.HasPrefix(c.Name, "H2")
}

// Performance produces review cycles, goals, reviews and competency
// assessments for employees active at each cycle end.
type Performance struct {
	base
	cycles []Cycle
}

func NewPerformance(reg *registry.Registry, p *profile.Profile) *Performance {
	return &Performance{base: base{name: SystemPerformance, reg: reg, profile: p}}
}

func (g *Performance) Cycles() []Cycle {
	return g.cycles
}

func (g *Performance) Generate(ctx context.Context) error {
	g.generateCycles()
	steps := []func(){g.generateGoals, g.generateReviews, g.generateAssessments}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		step()
	}
	return nil
}

// BuildCycles derives the H1/H2 cycles whose end dates fall inside the window.
func BuildCycles(start, end time.Time) []Cycle {
	var out []Cycle
	for i, closing := range temporal.ReviewDates(start, end) {
		c := Cycle{ID: fmt.Sprintf("CYCLE-%03d", i+1), End: closing}
		if closing.Month() == time.June {
			c.Start = temporal.Day(closing.Year(), time.January, 1)
			c.Name = fmt.Sprintf("H1 %d", closing.Year())
		} else {
			c.Start = temporal.Day(closing.Year(), time.July, 1)
			c.Name = fmt.Sprintf("H2 %d", closing.Year())
		}
		out = append(out, c)
	}
	return out
}

func (g *Performance) generateCycles() {
	c := g.profile.Company
	g.cycles = BuildCycles(c.DataStart.Time, c.DataEnd.Time)
	t := g.register(NewTable("performance_cycles", "cycle_id", "name", "start_date", "end_date", "type"))
	for _, cy := range g.cycles {
		t.Append(cy.ID, cy.Name, cy.Start, cy.End, CycleTypeSemiAnnual)
	}
}

func goalStatus(achievement float64) string {
	switch {
	case achievement > 0.7:
		return GoalCompleted
	case achievement > 0.4:
		return GoalInProgress
	default:
		return GoalAtRisk
	}
}

func (g *Performance) generateGoals() {
	r := g.reg.Rand
	t := g.register(NewTable("goals",
		"goal_id", "employee_id", "cycle_id", "title", "description", "status", "weight", "achievement_pct"))
	for _, cy := range g.cycles {
		mid := cy.Start.Add(cy.End.Sub(cy.Start) / 2)
		for _, e := range g.reg.ActiveAt(cy.End) {
			if e.HireDate.After(mid) {
				continue
			}
			n := distributions.IntBetween(r, 2, 5)
			templates, ok := goalTemplates[e.JobFamily]
			if !ok {
				templates = goalTemplates["default"]
			}
			weight := distributions.RoundTo(1.0/float64(n), 0.01)
			for i := 0; i < n; i++ {
				title := g.goalTitle(templates[r.IntN(len(templates))], cy.Name)
				achievement := distributions.Uniform(r, 0.3, 1.0)
				t.Append(g.reg.NextID("GOAL"), e.ID, cy.ID, title,
					fmt.Sprintf("Goal for %s: %s", cy.Name, title),
					goalStatus(achievement), weight, distributions.Round1(achievement*100))
			}
		}
	}
}

// goalTitle fills every placeholder of a template. All values are drawn even
// when unused so the random stream does not depend on the template.
func (g *Performance) goalTitle(template, period string) string {
	r := g.reg.Rand
	f := g.reg.Faker
	skills := g.profile.Skills
	return strings.NewReplacer(
		"{feature}", f.ProductName(),
		"{period}", period,
		"{pct}", strconv.Itoa(10+r.IntN(40)),
		"{component}", capitalize(f.Noun()),
		"{count}", strconv.Itoa(1+r.IntN(4)),
		"{project}", titleCase(f.BS()),
		"{skill}", skills[r.IntN(len(skills))].Name,
		"{domain}", capitalize(f.Noun()),
		"{amount}", strconv.Itoa(1+r.IntN(9)),
	).Replace(template)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// Rating combines the Beta(5,2) base with the demographic, span and tenure
// adjustments plus noise, clipped to [1,5] and rounded to one decimal.
func (g *Performance) Rating(e *registry.Employee, cycleEnd time.Time) float64 {
	r := g.reg.Rand
	rating := distributions.BetaRating(r)
	rating += distributions.RatingAdjustment(e.Gender, e.Ethnicity)
	if e.ManagerID != "" && len(g.reg.DirectReports(e.ManagerID)) > wideSpanReports {
		rating += wideSpanPenalty
	}
	years := float64(temporal.DaysBetween(e.HireDate, cycleEnd)) / 365.25
	rating += min(years*tenureBoostPerYear, tenureBoostCap)
	rating += distributions.Normal(r, 0, ratingNoiseStd)
	return distributions.Round1(distributions.Clip(rating, 1, 5))
}

func (g *Performance) generateReviews() {
	r := g.reg.Rand
	t := g.register(NewTable("performance_reviews",
		"review_id", "employee_id", "reviewer_id", "cycle_id", "rating", "comments", "strengths", "development_areas"))
	for _, cy := range g.cycles {
		cutoff := cy.End.AddDate(0, 0, -reviewMinTenureDays)
		for _, e := range g.reg.ActiveAt(cy.End) {
			if e.HireDate.After(cutoff) {
				continue
			}
			rating := g.Rating(e, cy.End)
			s := sample(r.Perm(len(strengths)), strengths, distributions.IntBetween(r, 1, 3))
			d := sample(r.Perm(len(developmentAreas)), developmentAreas, distributions.IntBetween(r, 1, 2))
			t.Append(g.reg.NextID("REV"), e.ID, g.reviewer(e, cy.End), cy.ID, rating,
				fmt.Sprintf("Review for %s.", cy.Name), strings.Join(s, "; "), strings.Join(d, "; "))
		}
	}
}

// reviewer is the closest manager up the chain who was still employed at
// the cycle end.
func (g *Performance) reviewer(e *registry.Employee, cycleEnd time.Time) string {
	seen := map[string]struct{}{e.ID: {}}
	for id := e.ManagerID; id != ""; {
		if _, loop := seen[id]; loop {
			break
		}
		seen[id] = struct{}{}
		m, ok := g.reg.Employee(id)
		if !ok {
			break
		}
		if m.ActiveAt(cycleEnd) {
			return m.ID
		}
		id = m.ManagerID
	}
	return ""
}

func sample(perm []int, pool []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range perm[:min(n, len(perm))] {
		out = append(out, pool[i])
	}
	return out
}

func (g *Performance) generateAssessments() {
	r := g.reg.Rand
	t := g.register(NewTable("competency_assessments",
		"assessment_id", "employee_id", "cycle_id", "skill_id", "skill_name", "current_level", "target_level"))
	for _, cy := range g.cycles {
		if !cy.IsAnnual() {
			continue
		}
		cutoff := cy.End.AddDate(0, 0, -assessmentMinTenureDays)
		for _, e := range g.reg.ActiveAt(cy.End) {
			if e.HireDate.After(cutoff) {
				continue
			}
			pool := RelevantSkills(g.profile, e.JobFamily)
			n := min(len(pool), distributions.IntBetween(r, 2, 4))
			for _, idx := range r.Perm(len(pool))[:n] {
				current := distributions.IntBetween(r, 1, 4)
				target := min(5, current+r.IntN(3))
				t.Append(g.reg.NextID("ASSESS"), e.ID, cy.ID, pool[idx].ID, pool[idx].Name, current, target)
			}
		}
	}
}

func (g *Performance) Validate() error {
	problems := g.problems()
	employees := employeeKeys(g.reg)
	cycles := map[string]struct{}{}
	for _, c := range g.cycles {
		cycles[c.ID] = struct{}{}
	}

	if t := g.table("performance_reviews"); t != nil {
		var outOfRange int
		for _, v := range t.Column("rating") {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil || rating < 1 || rating > 5 {
				outOfRange++
			}
		}
		if outOfRange > 0 {
			problems = append(problems, fmt.Sprintf("%d reviews with ratings outside 1.0-5.0", outOfRange))
		}
		problems = checkRefs(problems, "reviews", t.Column("employee_id"), employees)
		problems = checkRefs(problems, "reviewers", t.Column("reviewer_id"), employees)
		problems = checkRefs(problems, "review cycles", t.Column("cycle_id"), cycles)

		ends := map[string]time.Time{}
		for _, c := range g.cycles {
			ends[c.ID] = c.End
		}
		var departed int
		for i := range t.Rows {
			m, ok := g.reg.Employee(t.Value(i, "reviewer_id"))
			if ok && !m.ActiveAt(ends[t.Value(i, "cycle_id")]) {
				departed++
			}
		}
		if departed > 0 {
			problems = append(problems, fmt.Sprintf("%d reviews signed by a reviewer not employed at cycle end", departed))
		}
	}
	for _, name := range []string{"goals", "competency_assessments"} {
		if t := g.table(name); t != nil {
			problems = checkRefs(problems, name, t.Column("employee_id"), employees)
			problems = checkRefs(problems, name+" cycles", t.Column("cycle_id"), cycles)
		}
	}
	return g.result(problems)
}
