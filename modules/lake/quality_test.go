package lake

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectQuality(mock sqlmock.Sqlmock) {
	idValue := func() *sqlmock.Rows { return sqlmock.NewRows([]string{"id", "value"}) }
	count := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }
	ids := func() *sqlmock.Rows { return sqlmock.NewRows([]string{"id"}) }

	// Foreign keys: employees.manager_id, then base_salary.employee_id.
	mock.ExpectQuery(`CAST(s."manager_id" AS VARCHAR) AS value`).
		WillReturnRows(idValue().AddRow("EMP-00002", "EMP-09999"))
	mock.ExpectQuery(`CAST(s."employee_id" AS VARCHAR) AS value`).
		WillReturnRows(idValue())

	// Primary keys.
	mock.ExpectQuery(`WHERE "employee_id" IS NULL`).WillReturnRows(count(0))
	mock.ExpectQuery(`GROUP BY "employee_id" HAVING COUNT(*) > 1`).
		WillReturnRows(idValue().AddRow("EMP-00003", "2"))
	mock.ExpectQuery(`WHERE "salary_id" IS NULL`).WillReturnRows(count(0))
	mock.ExpectQuery(`GROUP BY "salary_id" HAVING COUNT(*) > 1`).WillReturnRows(idValue())

	// Business rules.
	mock.ExpectQuery("termination_date < hire_date").WillReturnRows(ids())
	mock.ExpectQuery("amount <= 0").WillReturnRows(ids().AddRow("SAL-00001"))
}

func TestRunQuality(t *testing.T) {
	s, mock := newMockStore(t, t.TempDir())
	touchParquet(t, s, "employees", "base_salary")
	expectQuality(mock)

	report, err := s.RunQuality(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, QualityReportSchemaVersion, report.SchemaVersion)
	assert.Equal(t, QualityRulesetName, report.Ruleset.Name)
	assert.Equal(t, 5, report.Summary.Passed)
	assert.Equal(t, 3, report.Summary.Failed)
	// department, position, location, level and family tables are absent,
	// plus the reviews rule.
	assert.Equal(t, 6, report.Summary.Skipped)
	assert.Equal(t, 3, report.Summary.Errors)
	assert.Equal(t, 5, report.Summary.Warnings)
	assert.False(t, report.Passed())

	require.NotEmpty(t, report.Issues)
	first := report.Issues[0]
	assert.Equal(t, SeverityError, first.Severity)
	assert.Equal(t, RuleForeignKeyOrphan, first.RuleID)
	assert.Equal(t, EntityRef{Table: "hris/employees", ID: "EMP-00002"}, first.Entity)
	assert.Equal(t, "EMP-09999", first.Details["value"])
}

func TestRunQuality_TruncatesKeepingErrors(t *testing.T) {
	s, mock := newMockStore(t, t.TempDir())
	touchParquet(t, s, "employees", "base_salary")
	expectQuality(mock)

	report, err := s.RunQuality(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, report.Summary.Truncated)
	assert.Equal(t, 4, report.Summary.IssuesTotal)
	assert.Equal(t, 3, report.Summary.Errors)
	assert.Equal(t, 1, report.Summary.Warnings)
}

func TestRunQuality_EmptyLake(t *testing.T) {
	s, mock := newMockStore(t, t.TempDir())
	report, err := s.RunQuality(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0, report.Summary.Failed)
	assert.Equal(t, len(businessRules), report.Summary.Skipped)
	assert.True(t, report.Passed())
}
