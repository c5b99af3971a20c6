// Package profile describes the fictitious company every generator draws from.
package profile

import (
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

var ErrInvalidProfile = errors.New("invalid company profile")

// Date is a calendar date that round-trips through YAML as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalYAML() (any, error) {
	return d.Format(DateLayout), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	t, err := time.ParseInLocation(DateLayout, node.Value, time.UTC)
	if err != nil {
		return errors.Wrapf(err, "parse date %q", node.Value)
	}
	d.Time = t
	return nil
}

type Company struct {
	Name               string  `yaml:"name" validate:"required"`
	Industry           string  `yaml:"industry"`
	EmailDomain        string  `yaml:"email_domain" validate:"required,fqdn"`
	Founded            Date    `yaml:"founded"`
	TotalEmployees     int     `yaml:"total_employees" validate:"gt=0"`
	AnnualTurnoverRate float64 `yaml:"annual_turnover_rate" validate:"gte=0,lt=1"`
	DataStart          Date    `yaml:"data_start_date"`
	DataEnd            Date    `yaml:"data_end_date"`
}

type Location struct {
	ID      string  `yaml:"id" validate:"required"`
	Name    string  `yaml:"name" validate:"required"`
	City    string  `yaml:"city"`
	Country string  `yaml:"country"`
	IsHQ    bool    `yaml:"is_hq"`
	Weight  float64 `yaml:"weight" validate:"gt=0"`
}

type Division struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

type Department struct {
	ID           string  `yaml:"id" validate:"required"`
	Name         string  `yaml:"name" validate:"required"`
	DivisionID   string  `yaml:"division_id" validate:"required"`
	JobFamilyID  string  `yaml:"job_family_id" validate:"required"`
	HeadcountPct float64 `yaml:"headcount_pct" validate:"gt=0,lte=1"`
}

type Level struct {
	ID     string  `yaml:"id" validate:"required"`
	Name   string  `yaml:"name" validate:"required"`
	Rank   int     `yaml:"rank" validate:"gt=0"`
	Weight float64 `yaml:"weight" validate:"gte=0"`
}

// IsManagerTrack reports whether people at this level manage others.
func (l Level) IsManagerTrack() bool {
	switch l.ID {
	case "M1", "M2", "D1", "D2", "VP", "CX":
		return true
	}
	return false
}

type JobFamily struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

type Skill struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name" validate:"required"`
	Category string `yaml:"category" validate:"required"`
}

// Weighted is one option of a categorical distribution. Slices of Weighted
// keep the declaration order so sampling is reproducible.
type Weighted struct {
	Value  string  `yaml:"value" validate:"required"`
	Weight float64 `yaml:"weight" validate:"gt=0"`
}

type Profile struct {
	Company            Company      `yaml:"company"`
	Locations          []Location   `yaml:"locations" validate:"min=1,dive"`
	Divisions          []Division   `yaml:"divisions" validate:"min=1,dive"`
	Departments        []Department `yaml:"departments" validate:"min=1,dive"`
	Levels             []Level      `yaml:"levels" validate:"min=1,dive"`
	JobFamilies        []JobFamily  `yaml:"job_families" validate:"min=1,dive"`
	Skills             []Skill      `yaml:"skills" validate:"min=1,dive"`
	Genders            []Weighted   `yaml:"genders" validate:"min=1,dive"`
	Ethnicities        []Weighted   `yaml:"ethnicities" validate:"min=1,dive"`
	TerminationReasons []Weighted   `yaml:"termination_reasons" validate:"min=1,dive"`
	CandidateSources   []Weighted   `yaml:"candidate_sources" validate:"min=1,dive"`
}

// Load reads a YAML override file on top of Default. List sections present in
// the file replace the defaults; company fields are merged.
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile %s", path)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "decode profile %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return errors.Wrap(ErrInvalidProfile, err.Error())
	}
	if p.Company.Founded.IsZero() || p.Company.DataStart.IsZero() || p.Company.DataEnd.IsZero() {
		return errors.Wrap(ErrInvalidProfile, "company dates are required")
	}
	if !p.Company.DataEnd.After(p.Company.DataStart.Time) {
		return errors.Wrap(ErrInvalidProfile, "data_end_date must be after data_start_date")
	}
	if p.Company.Founded.After(p.Company.DataStart.Time) {
		return errors.Wrap(ErrInvalidProfile, "founded must not be after data_start_date")
	}
	divisions := make(map[string]struct{}, len(p.Divisions))
	for _, d := range p.Divisions {
		divisions[d.ID] = struct{}{}
	}
	for _, d := range p.Departments {
		if _, ok := divisions[d.DivisionID]; !ok {
			return errors.Wrapf(ErrInvalidProfile, "department %s references unknown division %s", d.ID, d.DivisionID)
		}
	}
	for _, d := range p.Departments {
		if p.JobFamily(d.JobFamilyID) == nil {
			return errors.Wrapf(ErrInvalidProfile, "department %s references unknown job family %q", d.ID, d.JobFamilyID)
		}
	}
	if p.Department(ExecutiveDepartmentID) == nil {
		return errors.Wrapf(ErrInvalidProfile, "department %s is required", ExecutiveDepartmentID)
	}
	return nil
}

func (p *Profile) Department(id string) *Department {
	for i := range p.Departments {
		if p.Departments[i].ID == id {
			return &p.Departments[i]
		}
	}
	return nil
}

func (p *Profile) Division(id string) *Division {
	for i := range p.Divisions {
		if p.Divisions[i].ID == id {
			return &p.Divisions[i]
		}
	}
	return nil
}

func (p *Profile) Level(id string) *Level {
	for i := range p.Levels {
		if p.Levels[i].ID == id {
			return &p.Levels[i]
		}
	}
	return nil
}

func (p *Profile) JobFamily(id string) *JobFamily {
	for i := range p.JobFamilies {
		if p.JobFamilies[i].ID == id {
			return &p.JobFamilies[i]
		}
	}
	return nil
}

func (p *Profile) Skill(id string) *Skill {
	for i := range p.Skills {
		if p.Skills[i].ID == id {
			return &p.Skills[i]
		}
	}
	return nil
}

// DepartmentsOf returns the departments of a division in declaration order.
func (p *Profile) DepartmentsOf(divisionID string) []Department {
	var out []Department
	for _, d := range p.Departments {
		if d.DivisionID == divisionID {
			out = append(out, d)
		}
	}
	return out
}
