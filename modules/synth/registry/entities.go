package registry

import "time"

const (
	StatusActive     = "Active"
	StatusTerminated = "Terminated"
)

type Employee struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	HireDate          time.Time
	BirthDate         time.Time
	Gender            string
	Ethnicity         string
	LocationID        string
	DepartmentID      string
	PositionID        string
	ManagerID         string
	JobLevel          string
	JobFamily         string
	Status            string
	TerminationDate   *time.Time
	TerminationReason string
}

func (e *Employee) IsActive() bool {
	return e.Status != StatusTerminated
}

// ActiveAt reports whether the employee was employed on day t.
func (e *Employee) ActiveAt(t time.Time) bool {
	if e.HireDate.After(t) {
		return false
	}
	return e.TerminationDate == nil || e.TerminationDate.After(t)
}

// EndDate is the termination date or the fallback horizon.
func (e *Employee) EndDate(horizon time.Time) time.Time {
	if e.TerminationDate != nil {
		return *e.TerminationDate
	}
	return horizon
}

type Department struct {
	ID         string
	Name       string
	DivisionID string
	HeadID     string
}

type Position struct {
	ID           string
	Title        string
	JobFamily    string
	JobLevel     string
	DepartmentID string
}
