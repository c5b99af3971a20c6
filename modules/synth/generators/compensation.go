package generators

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/distributions"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/registry"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/temporal"
)

const (
	Currency = "USD"

	hireSalaryMidpointFrac = 0.95
	hireSalarySigma        = 0.10
	meritMin, meritMax     = 0.02, 0.06
	promotionChance        = 0.15
	promotionBump          = 0.10
	spotChancePerYear      = 0.10
	refreshChance          = 0.50
)

// Compensation produces salary bands and per-employee pay history.
type Compensation struct {
	base
}

func NewCompensation(reg *registry.Registry, p *profile.Profile) *Compensation {
	return &Compensation{base: base{name: SystemCompensation, reg: reg, profile: p}}
}

func (g *Compensation) Generate(ctx context.Context) error {
	g.generateBands()
	if err := ctx.Err(); err != nil {
		return err
	}
	g.generateBaseSalaries()
	g.generateBonuses()
	g.generateEquity()
	return ctx.Err()
}

// roundThousand rounds half to even like the reference pay tables.
func roundThousand(v float64) float64 {
	return math.RoundToEven(v/1000) * 1000
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func (g *Compensation) generateBands() {
	t := g.register(NewTable("salary_bands",
		"band_id", "job_family", "job_family_name", "job_level", "job_level_name",
		"min_salary", "midpoint", "max_salary", "currency"))
	n := 0
	for _, f := range g.profile.JobFamilies {
		for _, l := range g.profile.Levels {
			mid := Midpoint(l.ID, f.ID)
			n++
			t.Append(fmt.Sprintf("BAND-%04d", n), f.ID, f.Name, l.ID, l.Name,
				money(math.RoundToEven(mid*0.80)), money(math.RoundToEven(mid)), money(math.RoundToEven(mid*1.20)), Currency)
		}
	}
}

func (g *Compensation) tenureYears(e *registry.Employee) (time.Time, float64) {
	end := e.EndDate(g.profile.Company.DataEnd.Time)
	return end, float64(temporal.DaysBetween(e.HireDate, end)) / 365.25
}

// generateBaseSalaries writes a hire record plus one merit or promotion
// increase per completed year of service.
func (g *Compensation) generateBaseSalaries() {
	r := g.reg.Rand
	t := g.register(NewTable("base_salary", "salary_id", "employee_id", "amount", "currency", "effective_date", "reason"))
	for _, e := range g.reg.Employees() {
		target := Midpoint(e.JobLevel, e.JobFamily)
		salary := distributions.LogNormalSalary(r, target*hireSalaryMidpointFrac, hireSalarySigma)
		salary = distributions.ApplyPayGap(r, salary, e.Gender, e.Ethnicity)
		salary = roundThousand(salary)
		t.Append(g.reg.NextID("SAL"), e.ID, money(salary), Currency, e.HireDate, EventHire)

		end, tenure := g.tenureYears(e)
		for year := 1; year <= int(tenure); year++ {
			when := e.HireDate.AddDate(0, 0, int(float64(year)*365.25))
			if when.After(end) {
				break
			}
			salary = roundThousand(salary * (1 + distributions.Uniform(r, meritMin, meritMax)))
			reason := "Merit"
			if r.Float64() < promotionChance {
				reason = EventPromotion
				salary = roundThousand(salary * (1 + promotionBump))
			}
			t.Append(g.reg.NextID("SAL"), e.ID, money(salary), Currency, when, reason)
		}
	}
}

func (g *Compensation) generateBonuses() {
	r := g.reg.Rand
	c := g.profile.Company
	t := g.register(NewTable("bonuses", "bonus_id", "employee_id", "type", "target_pct", "actual_pct", "amount", "payout_date"))
	for _, e := range g.reg.Employees() {
		target := bonusTarget(e.JobLevel)
		end, tenure := g.tenureYears(e)

		for year := c.DataStart.Year(); year <= end.Year(); year++ {
			payout := temporal.Day(year, time.March, 15)
			if payout.Before(e.HireDate) || payout.After(end) {
				continue
			}
			actual := target * distributions.Uniform(r, 0.5, 1.5)
			amount := math.RoundToEven(Midpoint(e.JobLevel, e.JobFamily) * actual)
			t.Append(g.reg.NextID("BON"), e.ID, "Annual",
				distributions.RoundTo(target, 0.001), distributions.RoundTo(actual, 0.001), money(amount), payout)
		}

		if r.Float64() < spotChancePerYear*tenure {
			when := distributions.RandomDate(r, e.HireDate, end)
			amount := spotBonusAmounts[r.IntN(len(spotBonusAmounts))]
			t.Append(g.reg.NextID("BON"), e.ID, "Spot", 0.0, 0.0, money(float64(amount)), when)
		}
	}
}

func (g *Compensation) generateEquity() {
	r := g.reg.Rand
	t := g.register(NewTable("equity_grants", "grant_id", "employee_id", "grant_date", "shares", "vesting_schedule", "exercise_price"))
	for _, e := range g.reg.Employees() {
		if !equityEligible(e.JobLevel) {
			continue
		}
		shares := int(float64(equityGrantShares[e.JobLevel]) * distributions.Uniform(r, 0.8, 1.3))
		t.Append(g.reg.NextID("EQ"), e.ID, e.HireDate, shares, "4-year with 1-year cliff",
			money(distributions.Uniform(r, 15, 45)))

		end, tenure := g.tenureYears(e)
		for year := 1; year <= int(tenure); year++ {
			if r.Float64() >= refreshChance {
				continue
			}
			when := e.HireDate.AddDate(0, 0, int(float64(year)*365.25))
			if when.After(end) {
				break
			}
			refresh := int(float64(shares) * distributions.Uniform(r, 0.2, 0.5))
			t.Append(g.reg.NextID("EQ"), e.ID, when, refresh, "4-year monthly",
				money(distributions.Uniform(r, 20, 60)))
		}
	}
}

func (g *Compensation) Validate() error {
	problems := g.problems()
	ids := employeeKeys(g.reg)

	if t := g.table("base_salary"); t != nil {
		covered := keySet(t.Column("employee_id"))
		var missing int
		for id := range ids {
			if _, ok := covered[id]; !ok {
				missing++
			}
		}
		if missing > 0 {
			problems = append(problems, fmt.Sprintf("%d employees have no salary record", missing))
		}
		problems = g.checkAmounts(problems, t, "amount", "effective_date")
	}
	for _, chk := range []struct{ table, amount, date string }{
		{"bonuses", "amount", "payout_date"},
		{"equity_grants", "exercise_price", "grant_date"},
	} {
		if t := g.table(chk.table); t != nil {
			problems = g.checkAmounts(problems, t, chk.amount, chk.date)
		}
	}
	for _, name := range []string{"base_salary", "bonuses", "equity_grants"} {
		if t := g.table(name); t != nil {
			problems = checkRefs(problems, name+" rows", t.Column("employee_id"), ids)
		}
	}
	return g.result(problems)
}

// checkAmounts flags non-positive amounts and dates before the hire date.
func (g *Compensation) checkAmounts(problems []string, t *Table, amountCol, dateCol string) []string {
	var nonPositive, early int
	for i := range t.Rows {
		amount, err := decimal.NewFromString(t.Value(i, amountCol))
		if err != nil || !amount.IsPositive() {
			nonPositive++
		}
		e, ok := g.reg.Employee(t.Value(i, "employee_id"))
		if !ok {
			continue
		}
		when, err := time.Parse(time.DateOnly, t.Value(i, dateCol))
		if err == nil && when.Before(e.HireDate) {
			early++
		}
	}
	if nonPositive > 0 {
		problems = append(problems, fmt.Sprintf("%s: %d rows with non-positive %s", t.Name, nonPositive, amountCol))
	}
	if early > 0 {
		problems = append(problems, fmt.Sprintf("%s: %d rows dated before hire", t.Name, early))
	}
	return problems
}
