package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	var pct float64
	for _, d := range p.Departments {
		pct += d.HeadcountPct
	}
	assert.InDelta(t, 1.0, pct, 1e-9)
	assert.Len(t, p.Skills, 25)
	assert.NotNil(t, p.Department(ExecutiveDepartmentID))
	assert.Equal(t, "DIV-CORP", p.Department(ExecutiveDepartmentID).DivisionID)
}

func TestLevel_IsManagerTrack(t *testing.T) {
	p := Default()
	assert.False(t, p.Level("L4").IsManagerTrack())
	assert.True(t, p.Level("M1").IsManagerTrack())
	assert.True(t, p.Level(CEOLevelID).IsManagerTrack())
}

func TestLoad_OverridesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
company:
  name: Tiny Co
  total_employees: 40
  annual_turnover_rate: 0.1
  founded: 2015-06-01
  data_start_date: 2024-01-01
  data_end_date: 2024-12-31
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Tiny Co", p.Company.Name)
	assert.Equal(t, 40, p.Company.TotalEmployees)
	assert.Equal(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), p.Company.Founded.Time)
	assert.Len(t, p.Departments, 20, "sections absent from the file keep their defaults")
}

func TestLoad_RejectsInvertedWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
company:
  name: Broken
  total_employees: 10
  founded: 2015-06-01
  data_start_date: 2024-12-31
  data_end_date: 2024-01-01
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
}

func TestValidate_UnknownDivision(t *testing.T) {
	p := Default()
	p.Departments[0].DivisionID = "DIV-NOPE"
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
}
