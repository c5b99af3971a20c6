package registry

import (
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextID_MonotonicPerPrefix(t *testing.T) {
	r := New(42)
	assert.Equal(t, "EMP-00001", r.NextID("EMP"))
	assert.Equal(t, "EMP-00002", r.NextID("EMP"))
	assert.Equal(t, "POS-00001", r.NextID("POS"))
	assert.Equal(t, "EMP-00003", r.NextID("EMP"))
	assert.Equal(t, 3, r.Counter("EMP"))

	seen := map[string]struct{}{}
	for i := 0; i < 2000; i++ {
		id := r.NextID("REQ")
		_, dup := seen[id]
		require.False(t, dup, "collision on %s", id)
		seen[id] = struct{}{}
	}
}

func TestAddEmployee_ManagerMustExist(t *testing.T) {
	r := New(1)
	err := r.AddEmployee(&Employee{ID: "EMP-00002", ManagerID: "EMP-00001", HireDate: day(2020, 1, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownManager))

	require.NoError(t, r.AddEmployee(&Employee{ID: "EMP-00001", HireDate: day(2010, 3, 15)}))
	require.NoError(t, r.AddEmployee(&Employee{ID: "EMP-00002", ManagerID: "EMP-00001", HireDate: day(2020, 1, 1)}))
	require.NoError(t, r.AddEmployee(&Employee{ID: "EMP-00003", ManagerID: "EMP-00001", HireDate: day(2021, 1, 1)}))

	assert.Equal(t, []string{"EMP-00002", "EMP-00003"}, r.DirectReports("EMP-00001"))
	assert.Empty(t, r.DirectReports("EMP-00002"))
	assert.Equal(t, []string{"EMP-00001"}, r.Managers())

	e, ok := r.Employee("EMP-00002")
	require.True(t, ok)
	assert.Equal(t, StatusActive, e.Status)
}

func TestAddEmployee_Duplicate(t *testing.T) {
	r := New(1)
	require.NoError(t, r.AddEmployee(&Employee{ID: "EMP-00001"}))
	err := r.AddEmployee(&Employee{ID: "EMP-00001"})
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestAddPosition_RequiresDepartment(t *testing.T) {
	r := New(1)
	err := r.AddPosition(&Position{ID: "POS-00001", DepartmentID: "DEPT-001"})
	assert.True(t, errors.Is(err, ErrUnknownEntity))

	require.NoError(t, r.AddDepartment(&Department{ID: "DEPT-001", Name: "Backend", DivisionID: "DIV-ENG"}))
	require.NoError(t, r.AddPosition(&Position{ID: "POS-00001", DepartmentID: "DEPT-001"}))
	assert.Len(t, r.Positions(), 1)
}

func TestTerminate(t *testing.T) {
	r := New(1)
	hire := day(2022, 5, 1)
	require.NoError(t, r.AddEmployee(&Employee{ID: "EMP-00001", HireDate: hire}))

	require.Error(t, r.Terminate("EMP-00001", hire, "Retirement"), "same-day termination is rejected")
	require.NoError(t, r.Terminate("EMP-00001", day(2024, 1, 2), "Retirement"))

	e, _ := r.Employee("EMP-00001")
	assert.False(t, e.IsActive())
	assert.True(t, e.ActiveAt(day(2023, 1, 1)))
	assert.False(t, e.ActiveAt(day(2024, 1, 2)))
	assert.Len(t, r.TerminatedEmployees(), 1)
	assert.Empty(t, r.ActiveEmployees())

	s := r.Summary()
	assert.Equal(t, 1, s.Employees)
	assert.Equal(t, 1, s.Terminated)
}

func TestReset_ReproducesRandomStream(t *testing.T) {
	r := New(42)
	first := []float64{r.Rand.Float64(), r.Rand.Float64(), r.Rand.Float64()}
	name := r.Faker.FirstName()
	r.NextID("EMP")

	r.Reset()
	assert.Equal(t, 0, r.Counter("EMP"))
	second := []float64{r.Rand.Float64(), r.Rand.Float64(), r.Rand.Float64()}
	assert.Equal(t, first, second)
	assert.Equal(t, name, r.Faker.FirstName())
}
