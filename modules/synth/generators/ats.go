package generators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/distributions"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/registry"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/temporal"
)

const (
	ReqStatusFilled = "Filled"
	ReqStatusOpen   = "Open"

	AppStatusHired     = "Hired"
	AppStatusRejected  = "Rejected"
	AppStatusWithdrawn = "Withdrawn"

	trackedHireFrac = 0.60
)

// ATS reconstructs the recruiting history behind a share of the hires and
// adds a handful of currently open requisitions.
type ATS struct {
	base

	requisitions *Table
	candidates   *Table
	applications *Table
	interviews   *Table
	offers       *Table

	seenEmails map[string]struct{}
}

func NewATS(reg *registry.Registry, p *profile.Profile) *ATS {
	return &ATS{base: base{name: SystemATS, reg: reg, profile: p}}
}

func (g *ATS) Generate(ctx context.Context) error {
	g.requisitions = g.register(NewTable("requisitions",
		"req_id", "title", "department_id", "hiring_manager_id", "open_date", "close_date", "status", "headcount"))
	g.candidates = g.register(NewTable("candidates", "candidate_id", "name", "email", "source"))
	g.applications = g.register(NewTable("applications", "application_id", "candidate_id", "req_id", "apply_date", "status", "stage"))
	g.interviews = g.register(NewTable("interviews", "interview_id", "application_id", "interviewer_id", "date", "type", "score", "feedback"))
	g.offers = g.register(NewTable("offers",
		"offer_id", "application_id", "salary_offered", "equity_offered", "status", "offer_date", "response_date", "start_date"))
	g.seenEmails = map[string]struct{}{}

	r := g.reg.Rand
	var tracked []*registry.Employee
	for _, e := range g.reg.Employees() {
		if r.Float64() < trackedHireFrac {
			tracked = append(tracked, e)
		}
	}

	staffByDept := map[string][]*registry.Employee{}
	for _, e := range g.reg.Employees() {
		staffByDept[e.DepartmentID] = append(staffByDept[e.DepartmentID], e)
	}

	for _, e := range tracked {
		if err := ctx.Err(); err != nil {
			return err
		}
		pos, ok := g.reg.Position(e.PositionID)
		if !ok {
			continue
		}
		g.filledRequisition(e, pos, staffByDept[pos.DepartmentID])
	}

	g.openRequisitions()
	return nil
}

func (g *ATS) filledRequisition(e *registry.Employee, pos *registry.Position, staff []*registry.Employee) {
	r := g.reg.Rand
	founded := g.profile.Company.Founded.Time
	open := temporal.MaxTime(e.HireDate.AddDate(0, 0, -(30+r.IntN(60))), founded)
	closed := e.HireDate.AddDate(0, 0, 1+r.IntN(13))
	reqID := g.reg.NextID("REQ")
	g.requisitions.Append(reqID, pos.Title, pos.DepartmentID, e.ManagerID, open, closed, ReqStatusFilled, 1)

	// Applications arrive in the first third of the time the role was open,
	// capped at 30 days.
	window := min(30, temporal.DaysBetween(open, e.HireDate)/3)

	n := 5 + r.IntN(16)
	for i := 0; i < n; i++ {
		hired := i == 0
		candID := g.reg.NextID("CAND")

		var name, email string
		if hired {
			name = e.FirstName + " " + e.LastName
			email = e.Email
		} else {
			name, email = g.fakeCandidate()
		}
		g.seenEmails[email] = struct{}{}
		g.candidates.Append(candID, name, email, distributions.Pick(r, g.profile.CandidateSources))

		applied := distributions.RandomDate(r, open, open.AddDate(0, 0, window))
		appID := g.reg.NextID("APP")
		stage, status := StageHired, AppStatusHired
		if !hired {
			stage, _ = distributions.WeightedChoice(r, rejectionStages, rejectionWeights)
			status = AppStatusRejected
			if stage == StageWithdrawn {
				status = AppStatusWithdrawn
			}
		}
		g.applications.Append(appID, candID, reqID, applied, status, stage)

		current := applied.AddDate(0, 0, 3)
		for _, kind := range stageInterviews[stage] {
			lo, hi := 1.5, 4.5
			if hired {
				lo, hi = 3.5, 5.0
			}
			score := distributions.Round1(distributions.Uniform(r, lo, hi))
			g.interviews.Append(g.reg.NextID("INT"), appID, g.interviewer(e, staff, current), current, kind, score, g.feedback(score))
			current = temporal.AddBusinessDays(current, 2+r.IntN(5))
		}

		if hired {
			offered := current.AddDate(0, 0, 1+r.IntN(4))
			salary := roundThousand(Midpoint(e.JobLevel, e.JobFamily) * distributions.Uniform(r, 0.90, 1.05))
			equity := 0
			if equityEligible(e.JobLevel) {
				equity = r.IntN(2000)
			}
			responded := offered.AddDate(0, 0, 1+r.IntN(6))
			g.offers.Append(g.reg.NextID("OFR"), appID, money(salary), equity, "Accepted", offered, responded, e.HireDate)
		}
	}
}

// interviewer picks a colleague from the hire's department who was employed
// on day. The hiring manager is used when nobody qualifies; an empty id means
// no employee could have run the interview.
func (g *ATS) interviewer(hire *registry.Employee, staff []*registry.Employee, day time.Time) string {
	var pool []*registry.Employee
	for _, s := range staff {
		if s.ID != hire.ID && s.ActiveAt(day) {
			pool = append(pool, s)
		}
	}
	if len(pool) > 0 {
		return pool[g.reg.Rand.IntN(len(pool))].ID
	}
	if m, ok := g.reg.Employee(hire.ManagerID); ok && m.ActiveAt(day) {
		return m.ID
	}
	return ""
}

// fakeCandidate returns a name and an email not used by any earlier candidate.
func (g *ATS) fakeCandidate() (string, string) {
	f := g.reg.Faker
	first := f.FirstName()
	last := f.LastName()
	email := candidateEmail(first, last, f.RandomString(candidateEmailDomains))
	for attempt := 0; ; attempt++ {
		if _, dup := g.seenEmails[email]; !dup {
			break
		}
		last = f.LastName()
		local := candidateEmail(first, last, f.RandomString(candidateEmailDomains))
		if attempt > 20 {
			local = strings.Replace(local, "@", fmt.Sprintf("%d@", attempt), 1)
		}
		email = local
	}
	return first + " " + last, email
}

func candidateEmail(first, last, domain string) string {
	return fmt.Sprintf("%s.%s@%s", emailPart(first), emailPart(last), domain)
}

func (g *ATS) feedback(score float64) string {
	pool := feedbackWeak
	switch {
	case score >= 4.0:
		pool = feedbackStrong
	case score >= 3.0:
		pool = feedbackSolid
	}
	return pool[g.reg.Rand.IntN(len(pool))]
}

// openRequisitions adds 10..24 requisitions opened during the last 60 days
// of the window, with no hiring manager assigned yet.
func (g *ATS) openRequisitions() {
	r := g.reg.Rand
	end := g.profile.Company.DataEnd.Time
	n := 10 + r.IntN(15)
	for i := 0; i < n; i++ {
		d := g.profile.Departments[r.IntN(len(g.profile.Departments))]
		open := distributions.RandomDate(r, end.AddDate(0, 0, -60), end)
		g.requisitions.Append(g.reg.NextID("REQ"), "Open Role - "+d.Name, d.ID, "", open, (*time.Time)(nil), ReqStatusOpen, 1)
	}
}

func (g *ATS) Validate() error {
	problems := g.problems()
	if g.requisitions == nil {
		return g.result(problems)
	}
	employees := employeeKeys(g.reg)
	reqs := keySet(g.requisitions.Column("req_id"))
	apps := keySet(g.applications.Column("application_id"))

	problems = checkRefs(problems, "applications", g.applications.Column("req_id"), reqs)
	problems = checkRefs(problems, "application candidates", g.applications.Column("candidate_id"), keySet(g.candidates.Column("candidate_id")))
	problems = checkRefs(problems, "interviews", g.interviews.Column("application_id"), apps)
	problems = checkRefs(problems, "interviewers", g.interviews.Column("interviewer_id"), employees)
	problems = checkRefs(problems, "offers", g.offers.Column("application_id"), apps)
	problems = checkRefs(problems, "hiring managers", g.requisitions.Column("hiring_manager_id"), employees)

	departments := map[string]struct{}{}
	for _, d := range g.reg.Departments() {
		departments[d.ID] = struct{}{}
	}
	problems = checkRefs(problems, "requisition departments", g.requisitions.Column("department_id"), departments)

	founded := g.profile.Company.Founded.Format(time.DateOnly)
	for _, c := range []struct {
		t      *Table
		column string
	}{
		{g.requisitions, "open_date"},
		{g.applications, "apply_date"},
		{g.interviews, "date"},
		{g.offers, "offer_date"},
	} {
		var early int
		for _, v := range c.t.Column(c.column) {
			if v != "" && v < founded {
				early++
			}
		}
		if early > 0 {
			problems = append(problems, fmt.Sprintf("%d %s dated before company founding", early, c.t.Name))
		}
	}

	var offDuty int
	for i := range g.interviews.Rows {
		e, ok := g.reg.Employee(g.interviews.Value(i, "interviewer_id"))
		if !ok {
			continue
		}
		day, err := time.Parse(time.DateOnly, g.interviews.Value(i, "date"))
		if err == nil && !e.ActiveAt(day) {
			offDuty++
		}
	}
	if offDuty > 0 {
		problems = append(problems, fmt.Sprintf("%d interviews run by someone not employed that day", offDuty))
	}
	return g.result(problems)
}
