// Package registry holds the in-memory object graph shared by every generator
// of a run. Each step reads what earlier steps registered and registers what
// it creates, so foreign keys always resolve to real rows.
package registry

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-faster/errors"
)

var (
	ErrDuplicateID    = errors.New("duplicate id")
	ErrUnknownManager = errors.New("manager is not registered")
	ErrUnknownEntity  = errors.New("entity is not registered")
)

// Registry is created once per run and passed to every generator. It is not
// safe for concurrent use; generation is strictly sequential.
type Registry struct {
	seed int64

	// Rand and Faker share one seeded source so a run is reproducible.
	Rand  *rand.Rand
	Faker *gofakeit.Faker

	employees   map[string]*Employee
	departments map[string]*Department
	positions   map[string]*Position

	employeeOrder   []string
	departmentOrder []string
	positionOrder   []string

	orgTree  map[string][]string
	counters map[string]int
}

func New(seed int64) *Registry {
	r := &Registry{seed: seed}
	r.Reset()
	return r
}

// Reset drops every registered entity and reseeds the random source.
func (r *Registry) Reset() {
	src := rand.NewPCG(uint64(r.seed), uint64(r.seed)^0x9e3779b97f4a7c15)
	r.Rand = rand.New(src)
	r.Faker = gofakeit.NewFaker(src, false)
	r.employees = map[string]*Employee{}
	r.departments = map[string]*Department{}
	r.positions = map[string]*Position{}
	r.employeeOrder = nil
	r.departmentOrder = nil
	r.positionOrder = nil
	r.orgTree = map[string][]string{}
	r.counters = map[string]int{}
}

func (r *Registry) Seed() int64 {
	return r.seed
}

// NextID returns the next id for prefix, e.g. EMP-00001.
func (r *Registry) NextID(prefix string) string {
	r.counters[prefix]++
	return fmt.Sprintf("%s-%05d", prefix, r.counters[prefix])
}

// Counter returns how many ids were issued for prefix.
func (r *Registry) Counter(prefix string) int {
	return r.counters[prefix]
}

// AddEmployee registers e and links it under its manager. The manager must
// already be registered.
func (r *Registry) AddEmployee(e *Employee) error {
	if e == nil || e.ID == "" {
		return errors.New("employee id is required")
	}
	if _, ok := r.employees[e.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "employee %s", e.ID)
	}
	if e.ManagerID != "" {
		if _, ok := r.employees[e.ManagerID]; !ok {
			return errors.Wrapf(ErrUnknownManager, "employee %s manager %s", e.ID, e.ManagerID)
		}
		r.orgTree[e.ManagerID] = append(r.orgTree[e.ManagerID], e.ID)
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	r.employees[e.ID] = e
	r.employeeOrder = append(r.employeeOrder, e.ID)
	return nil
}

func (r *Registry) AddDepartment(d *Department) error {
	if d == nil || d.ID == "" {
		return errors.New("department id is required")
	}
	if _, ok := r.departments[d.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "department %s", d.ID)
	}
	r.departments[d.ID] = d
	r.departmentOrder = append(r.departmentOrder, d.ID)
	return nil
}

func (r *Registry) AddPosition(p *Position) error {
	if p == nil || p.ID == "" {
		return errors.New("position id is required")
	}
	if _, ok := r.positions[p.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "position %s", p.ID)
	}
	if _, ok := r.departments[p.DepartmentID]; !ok {
		return errors.Wrapf(ErrUnknownEntity, "position %s department %s", p.ID, p.DepartmentID)
	}
	r.positions[p.ID] = p
	r.positionOrder = append(r.positionOrder, p.ID)
	return nil
}

func (r *Registry) Employee(id string) (*Employee, bool) {
	e, ok := r.employees[id]
	return e, ok
}

func (r *Registry) Department(id string) (*Department, bool) {
	d, ok := r.departments[id]
	return d, ok
}

func (r *Registry) Position(id string) (*Position, bool) {
	p, ok := r.positions[id]
	return p, ok
}

// Employees returns every employee in registration order.
func (r *Registry) Employees() []*Employee {
	out := make([]*Employee, 0, len(r.employeeOrder))
	for _, id := range r.employeeOrder {
		out = append(out, r.employees[id])
	}
	return out
}

func (r *Registry) Departments() []*Department {
	out := make([]*Department, 0, len(r.departmentOrder))
	for _, id := range r.departmentOrder {
		out = append(out, r.departments[id])
	}
	return out
}

func (r *Registry) Positions() []*Position {
	out := make([]*Position, 0, len(r.positionOrder))
	for _, id := range r.positionOrder {
		out = append(out, r.positions[id])
	}
	return out
}

func (r *Registry) ActiveEmployees() []*Employee {
	return r.filter(func(e *Employee) bool { return e.IsActive() })
}

func (r *Registry) TerminatedEmployees() []*Employee {
	return r.filter(func(e *Employee) bool { return !e.IsActive() })
}

func (r *Registry) EmployeesInDepartment(deptID string) []*Employee {
	return r.filter(func(e *Employee) bool { return e.DepartmentID == deptID })
}

func (r *Registry) EmployeesAtLevel(level string) []*Employee {
	return r.filter(func(e *Employee) bool { return e.JobLevel == level })
}

// ActiveAt returns the employees employed on day t.
func (r *Registry) ActiveAt(t time.Time) []*Employee {
	return r.filter(func(e *Employee) bool { return e.ActiveAt(t) })
}

// DirectReports returns the ids reporting to managerID in registration order.
func (r *Registry) DirectReports(managerID string) []string {
	return r.orgTree[managerID]
}

// Managers returns every manager id that has at least one report, sorted.
func (r *Registry) Managers() []string {
	out := make([]string, 0, len(r.orgTree))
	for id := range r.orgTree {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) filter(keep func(*Employee) bool) []*Employee {
	var out []*Employee
	for _, id := range r.employeeOrder {
		if e := r.employees[id]; keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Summary counts the registered entities.
type Summary struct {
	Employees   int            `json:"employees"`
	Active      int            `json:"active"`
	Terminated  int            `json:"terminated"`
	Departments int            `json:"departments"`
	Positions   int            `json:"positions"`
	Managers    int            `json:"managers"`
	Counters    map[string]int `json:"counters"`
}

func (r *Registry) Summary() Summary {
	s := Summary{
		Employees:   len(r.employees),
		Departments: len(r.departments),
		Positions:   len(r.positions),
		Managers:    len(r.orgTree),
		Counters:    make(map[string]int, len(r.counters)),
	}
	for _, e := range r.employees {
		if e.IsActive() {
			s.Active++
		} else {
			s.Terminated++
		}
	}
	for k, v := range r.counters {
		s.Counters[k] = v
	}
	return s
}

// Terminate marks an employee terminated on day t. t must be strictly after
// the hire date.
func (r *Registry) Terminate(id string, t time.Time, reason string) error {
	e, ok := r.employees[id]
	if !ok {
		return errors.Wrapf(ErrUnknownEntity, "employee %s", id)
	}
	if !t.After(e.HireDate) {
		return errors.Errorf("termination %s of %s is not after hire %s", t.Format(time.DateOnly), id, e.HireDate.Format(time.DateOnly))
	}
	term := t
	e.TerminationDate = &term
	e.TerminationReason = reason
	e.Status = StatusTerminated
	return nil
}
