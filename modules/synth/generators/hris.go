package generators

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/go-faster/errors"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/distributions"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/registry"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/temporal"
)

const (
	EventHire        = "Hire"
	EventPromotion   = "Promotion"
	EventTransfer    = "Transfer"
	EventTermination = "Termination"
)

// Top-down creation order below the VPs.
var orgLevelOrder = []string{"D2", "D1", "M2", "M1", "L4", "L3", "L2", "L1"}

const (
	tenureScaleYears   = 3.3
	tenureMaxYears     = 12.0
	vpHireWindowDays   = 730
	minTenureDays      = 90
	terminationCapFrac = 0.30
	careerEventsPerYr  = 0.2
	careerEventGapDays = 180
)

type allocation struct {
	deptID string
	level  string
	count  int
}

// HRIS builds the organization: departments, positions, employees, the
// reporting tree, terminations and employment history.
type HRIS struct {
	base
	history []historyRow
	emails  map[string]struct{}
}

type historyRow struct {
	employeeID string
	eventType  string
	date       time.Time
	fromPos    string
	toPos      string
	fromDept   string
	toDept     string
}

func NewHRIS(reg *registry.Registry, p *profile.Profile) *HRIS {
	return &HRIS{base: base{name: SystemHRIS, reg: reg, profile: p}}
}

func (g *HRIS) Generate(ctx context.Context) error {
	g.emails = map[string]struct{}{}
	if err := g.generateDepartments(); err != nil {
		return err
	}
	allocations := g.allocations()

	ceo, err := g.generateCEO()
	if err != nil {
		return err
	}
	vps, err := g.generateVPs(ceo)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.generateOrgTree(ceo, vps, allocations); err != nil {
		return err
	}
	if err := g.applyTerminations(); err != nil {
		return err
	}
	g.generateHistory()
	if err := ctx.Err(); err != nil {
		return err
	}
	g.buildTables()
	return nil
}

func (g *HRIS) generateDepartments() error {
	for _, d := range g.profile.Departments {
		if err := g.reg.AddDepartment(&registry.Department{ID: d.ID, Name: d.Name, DivisionID: d.DivisionID}); err != nil {
			return errors.Wrap(err, "register department")
		}
	}
	return nil
}

// allocations returns how many people each department gets per level.
func (g *HRIS) allocations() []allocation {
	total := float64(g.profile.Company.TotalEmployees)
	var out []allocation
	for _, d := range g.profile.Departments {
		headcount := max(2, int(total*d.HeadcountPct))
		for _, l := range g.profile.Levels {
			count := int(math.RoundToEven(float64(headcount) * l.Weight))
			if count > 0 {
				out = append(out, allocation{deptID: d.ID, level: l.ID, count: count})
			}
		}
	}
	return out
}

func (g *HRIS) generateCEO() (*registry.Employee, error) {
	pos, err := g.newPosition("Chief Executive Officer", profile.ExecutiveFamilyID, profile.CEOLevelID, profile.ExecutiveDepartmentID)
	if err != nil {
		return nil, err
	}
	ceo := g.newEmployee(pos, g.profile.Company.Founded.Time, "")
	if err := g.reg.AddEmployee(ceo); err != nil {
		return nil, errors.Wrap(err, "register ceo")
	}
	dept, _ := g.reg.Department(profile.ExecutiveDepartmentID)
	dept.HeadID = ceo.ID
	return ceo, nil
}

// generateVPs creates one VP per division, placed in the division's first
// department and reporting to the CEO.
func (g *HRIS) generateVPs(ceo *registry.Employee) (map[string]*registry.Employee, error) {
	founded := g.profile.Company.Founded.Time
	vps := map[string]*registry.Employee{}
	for _, div := range g.profile.Divisions {
		depts := g.profile.DepartmentsOf(div.ID)
		if len(depts) == 0 {
			continue
		}
		primary := depts[0]
		title := Title(primary.JobFamilyID, profile.VPLevelID, "VP of "+div.Name)
		pos, err := g.newPosition(title, primary.JobFamilyID, profile.VPLevelID, primary.ID)
		if err != nil {
			return nil, err
		}
		hire := distributions.RandomDate(g.reg.Rand, founded, founded.AddDate(0, 0, vpHireWindowDays))
		vp := g.newEmployee(pos, hire, ceo.ID)
		if err := g.reg.AddEmployee(vp); err != nil {
			return nil, errors.Wrap(err, "register vp")
		}
		if d, ok := g.reg.Department(primary.ID); ok && d.HeadID == "" {
			d.HeadID = vp.ID
		}
		vps[div.ID] = vp
	}
	return vps, nil
}

func (g *HRIS) generateOrgTree(ceo *registry.Employee, vps map[string]*registry.Employee, allocations []allocation) error {
	byDept := map[string]map[string]int{}
	for _, a := range allocations {
		if byDept[a.deptID] == nil {
			byDept[a.deptID] = map[string]int{}
		}
		byDept[a.deptID][a.level] = a.count
	}

	r := g.reg.Rand
	founded := g.profile.Company.Founded.Time
	horizon := g.profile.Company.DataEnd.Time

	for _, d := range g.profile.Departments {
		levels := byDept[d.ID]
		var current []*registry.Employee
		fallback := ceo
		if vp, ok := vps[d.DivisionID]; ok {
			current = []*registry.Employee{vp}
			fallback = vp
		}

		for _, level := range orgLevelOrder {
			count := levels[level]
			if count == 0 {
				continue
			}
			created := make([]*registry.Employee, 0, count)
			for i := 0; i < count; i++ {
				managerID := fallback.ID
				if len(current) > 0 {
					managerID = current[r.IntN(len(current))].ID
				}
				title := Title(d.JobFamilyID, level, fmt.Sprintf("%s - %s", level, d.Name))
				pos, err := g.newPosition(title, d.JobFamilyID, level, d.ID)
				if err != nil {
					return err
				}
				tenure := distributions.Tenure(r, tenureScaleYears, tenureMaxYears)
				hire := horizon.AddDate(0, 0, -int(tenure*365.25))
				hire = temporal.MaxTime(hire, founded)

				e := g.newEmployee(pos, hire, managerID)
				if err := g.reg.AddEmployee(e); err != nil {
					return errors.Wrap(err, "register employee")
				}
				created = append(created, e)
			}
			lvl := g.profile.Level(level)
			if lvl != nil && lvl.IsManagerTrack() && len(created) > 0 {
				current = created
				if dept, ok := g.reg.Department(d.ID); ok && dept.HeadID == "" {
					dept.HeadID = created[0].ID
				}
			}
		}
	}
	return nil
}

func (g *HRIS) newPosition(title, family, level, deptID string) (*registry.Position, error) {
	pos := &registry.Position{
		ID:           g.reg.NextID("POS"),
		Title:        title,
		JobFamily:    family,
		JobLevel:     level,
		DepartmentID: deptID,
	}
	if err := g.reg.AddPosition(pos); err != nil {
		return nil, errors.Wrap(err, "register position")
	}
	return pos, nil
}

func (g *HRIS) newEmployee(pos *registry.Position, hire time.Time, managerID string) *registry.Employee {
	r := g.reg.Rand
	gender := distributions.Pick(r, g.profile.Genders)
	ethnicity := distributions.Pick(r, g.profile.Ethnicities)
	location := g.pickLocation()
	birth := distributions.BirthDate(r, hire)

	first := g.firstName(gender)
	last := g.reg.Faker.LastName()
	return &registry.Employee{
		ID:           g.reg.NextID("EMP"),
		FirstName:    first,
		LastName:     last,
		Email:        g.uniqueEmail(first, last),
		HireDate:     hire,
		BirthDate:    birth,
		Gender:       gender,
		Ethnicity:    ethnicity,
		LocationID:   location,
		DepartmentID: pos.DepartmentID,
		PositionID:   pos.ID,
		ManagerID:    managerID,
		JobLevel:     pos.JobLevel,
		JobFamily:    pos.JobFamily,
		Status:       registry.StatusActive,
	}
}

// uniqueEmail returns first.last@domain, numbered from 2 when taken.
func (g *HRIS) uniqueEmail(first, last string) string {
	local := emailPart(first) + "." + emailPart(last)
	email := local + "@" + g.profile.Company.EmailDomain
	for n := 2; ; n++ {
		if _, taken := g.emails[email]; !taken {
			break
		}
		email = fmt.Sprintf("%s%d@%s", local, n, g.profile.Company.EmailDomain)
	}
	g.emails[email] = struct{}{}
	return email
}

func (g *HRIS) firstName(gender string) string {
	if pool := firstNamesByGender[gender]; len(pool) > 0 {
		return pool[g.reg.Rand.IntN(len(pool))]
	}
	return g.reg.Faker.FirstName()
}

func (g *HRIS) pickLocation() string {
	ids := make([]string, len(g.profile.Locations))
	weights := make([]float64, len(g.profile.Locations))
	for i, l := range g.profile.Locations {
		ids[i] = l.ID
		weights[i] = l.Weight
	}
	id, err := distributions.WeightedChoice(g.reg.Rand, ids, weights)
	if err != nil {
		panic(err)
	}
	return id
}

// emailPart lowercases a name and keeps only letters and digits.
func emailPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// applyTerminations marks part of the non-executive population terminated:
// turnover rate times the number of years in the window, capped at 30%.
func (g *HRIS) applyTerminations() error {
	r := g.reg.Rand
	c := g.profile.Company
	all := g.reg.Employees()
	var eligible []*registry.Employee
	for _, e := range all {
		if e.JobLevel != profile.CEOLevelID && e.JobLevel != profile.VPLevelID {
			eligible = append(eligible, e)
		}
	}
	years := c.DataEnd.Year() - c.DataStart.Year() + 1
	target := int(float64(len(all)) * c.AnnualTurnoverRate * float64(years))
	target = min(target, int(float64(len(eligible))*terminationCapFrac))

	for _, idx := range r.Perm(len(eligible))[:target] {
		e := eligible[idx]
		earliest := e.HireDate.AddDate(0, 0, minTenureDays)
		if !earliest.Before(c.DataEnd.Time) {
			continue
		}
		when := distributions.RandomDate(r, earliest, c.DataEnd.Time)
		reason := distributions.Pick(r, g.profile.TerminationReasons)
		if err := g.reg.Terminate(e.ID, when, reason); err != nil {
			return err
		}
	}
	return nil
}

func (g *HRIS) generateHistory() {
	horizon := g.profile.Company.DataEnd.Time
	for _, e := range g.reg.Employees() {
		g.history = append(g.history, historyRow{
			employeeID: e.ID, eventType: EventHire, date: e.HireDate,
			toPos: e.PositionID, toDept: e.DepartmentID,
		})
		events := temporal.EventTimeline(g.reg.Rand, e.HireDate, e.EndDate(horizon),
			[]string{EventPromotion, EventTransfer}, careerEventsPerYr, careerEventGapDays)
		for _, ev := range events {
			g.history = append(g.history, historyRow{
				employeeID: e.ID, eventType: ev.Type, date: ev.Date,
				fromPos: e.PositionID, toPos: e.PositionID,
				fromDept: e.DepartmentID, toDept: e.DepartmentID,
			})
		}
		if !e.IsActive() {
			g.history = append(g.history, historyRow{
				employeeID: e.ID, eventType: EventTermination, date: *e.TerminationDate,
				fromPos: e.PositionID, fromDept: e.DepartmentID,
			})
		}
	}
}

func (g *HRIS) buildTables() {
	p := g.profile

	employees := g.register(NewTable("employees",
		"employee_id", "first_name", "last_name", "email", "hire_date", "birth_date",
		"gender", "ethnicity", "location_id", "department_id", "position_id", "manager_id",
		"job_level", "job_family", "status", "termination_date", "termination_reason"))
	for _, e := range g.reg.Employees() {
		employees.Append(e.ID, e.FirstName, e.LastName, e.Email, e.HireDate, e.BirthDate,
			e.Gender, e.Ethnicity, e.LocationID, e.DepartmentID, e.PositionID, e.ManagerID,
			e.JobLevel, e.JobFamily, e.Status, e.TerminationDate, e.TerminationReason)
	}

	departments := g.register(NewTable("departments", "dept_id", "name", "division_id", "division_name", "head_id"))
	for _, d := range g.reg.Departments() {
		divName := ""
		if div := p.Division(d.DivisionID); div != nil {
			divName = div.Name
		}
		departments.Append(d.ID, d.Name, d.DivisionID, divName, d.HeadID)
	}

	positions := g.register(NewTable("positions", "position_id", "title", "job_family", "job_level", "department_id"))
	for _, pos := range g.reg.Positions() {
		positions.Append(pos.ID, pos.Title, pos.JobFamily, pos.JobLevel, pos.DepartmentID)
	}

	locations := g.register(NewTable("locations", "id", "name", "city", "country", "is_hq"))
	for _, l := range p.Locations {
		locations.Append(l.ID, l.Name, l.City, l.Country, l.IsHQ)
	}

	divisions := g.register(NewTable("divisions", "division_id", "name"))
	for _, d := range p.Divisions {
		divisions.Append(d.ID, d.Name)
	}

	families := g.register(NewTable("job_families", "family_id", "name"))
	for _, f := range p.JobFamilies {
		families.Append(f.ID, f.Name)
	}

	levels := g.register(NewTable("job_levels", "level_id", "name", "rank"))
	for _, l := range p.Levels {
		levels.Append(l.ID, l.Name, l.Rank)
	}

	skills := g.register(NewTable("skills", "skill_id", "name", "category"))
	for _, s := range p.Skills {
		skills.Append(s.ID, s.Name, s.Category)
	}

	g.buildEmployeeSkills()

	history := g.register(NewTable("employment_history",
		"event_id", "employee_id", "event_type", "effective_date",
		"from_position", "to_position", "from_department", "to_department"))
	for _, h := range g.history {
		history.Append(g.reg.NextID("EVT"), h.employeeID, h.eventType, h.date,
			h.fromPos, h.toPos, h.fromDept, h.toDept)
	}
}

// buildEmployeeSkills gives every employee 2..6 skills from the categories of
// their job family; proficiency grows with level.
func (g *HRIS) buildEmployeeSkills() {
	r := g.reg.Rand
	t := g.register(NewTable("employee_skills", "employee_id", "skill_id", "proficiency_level"))
	for _, e := range g.reg.Employees() {
		pool := RelevantSkills(g.profile, e.JobFamily)
		if len(pool) == 0 {
			continue
		}
		n := min(len(pool), distributions.IntBetween(r, 2, 6))
		rank := 1
		if l := g.profile.Level(e.JobLevel); l != nil {
			rank = l.Rank
		}
		for _, idx := range r.Perm(len(pool))[:n] {
			proficiency := min(5, distributions.IntBetween(r, 1, 3)+rank/4)
			t.Append(e.ID, pool[idx].ID, proficiency)
		}
	}
}

// RelevantSkills returns the catalog skills in the categories of a family.
func RelevantSkills(p *profile.Profile, family string) []profile.Skill {
	cats := SkillCategories(family)
	var out []profile.Skill
	for _, s := range p.Skills {
		for _, c := range cats {
			if s.Category == c {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (g *HRIS) Validate() error {
	problems := g.problems()
	employees := g.table("employees")
	if employees == nil {
		return g.result(problems)
	}

	ids := keySet(employees.Column("employee_id"))
	problems = checkRefs(problems, "manager ids", employees.Column("manager_id"), ids)

	founded := g.profile.Company.Founded.Time
	var early, badTerm int
	for _, e := range g.reg.Employees() {
		if e.HireDate.Before(founded) {
			early++
		}
		if e.TerminationDate != nil && !e.TerminationDate.After(e.HireDate) {
			badTerm++
		}
	}
	if early > 0 {
		problems = append(problems, fmt.Sprintf("%d employees hired before company founding", early))
	}
	if badTerm > 0 {
		problems = append(problems, fmt.Sprintf("%d employees terminated on or before hire date", badTerm))
	}

	if positions := g.table("positions"); positions != nil {
		problems = checkRefs(problems, "employee positions", employees.Column("position_id"), keySet(positions.Column("position_id")))
	}
	if departments := g.table("departments"); departments != nil {
		problems = checkRefs(problems, "employee departments", employees.Column("department_id"), keySet(departments.Column("dept_id")))
	}
	if history := g.table("employment_history"); history != nil {
		problems = checkRefs(problems, "history rows", history.Column("employee_id"), ids)
	}
	return g.result(problems)
}
