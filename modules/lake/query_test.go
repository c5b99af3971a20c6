package lake

import (
	"context"
	"math"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCheckReadOnly(t *testing.T) {
	cases := []struct {
		name  string
		query string
		ok    bool
	}{
		{"select", "SELECT * FROM employees", true},
		{"cte", "WITH x AS (SELECT 1) SELECT * FROM x;", true},
		{"describe", "describe employees", true},
		{"keyword inside string", "SELECT * FROM employees WHERE termination_reason = 'DROP everything'", true},
		{"keyword inside comment", "SELECT 1 -- delete later", true},
		{"keyword as quoted identifier", `SELECT "update" FROM t`, true},
		{"insert", "INSERT INTO employees VALUES (1)", false},
		{"copy", "COPY employees TO 'x.csv'", false},
		{"hidden second statement", "SELECT 1; DROP TABLE employees", false},
		{"attach inside select", "SELECT * FROM (ATTACH 'x.db')", false},
		{"empty", "  ", false},
		{"only comment", "/* nothing */", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckReadOnly(tc.query)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStore_Query(t *testing.T) {
	s, mock := newMockStore(t, t.TempDir())
	hire := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT employee_id, hire_date FROM employees").WillReturnRows(
		sqlmock.NewRows([]string{"employee_id", "hire_date"}).
			AddRow([]byte("EMP-00001"), hire).
			AddRow("EMP-00002", nil).
			AddRow("EMP-00003", hire),
	)

	res, err := s.Query(context.Background(), "SELECT employee_id, hire_date FROM employees", 2)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"employee_id", "hire_date"}, res.Columns)
	assert.Equal(t, 2, res.Count)
	assert.True(t, res.Truncated)
	assert.Contains(t, res.Note, "truncated to 2 rows")
	assert.Equal(t, "EMP-00001", res.Rows[0]["employee_id"])
	assert.Equal(t, "2021-03-01", res.Rows[0]["hire_date"])
	assert.Nil(t, res.Rows[1]["hire_date"])
}

func TestStore_QueryRejectsWrites(t *testing.T) {
	s, mock := newMockStore(t, t.TempDir())
	_, err := s.Query(context.Background(), "DELETE FROM employees", 0)
	require.ErrorIs(t, err, ErrNotReadOnly)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanValue(t *testing.T) {
	assert.Nil(t, cleanValue(math.NaN()))
	assert.Nil(t, cleanValue(math.Inf(1)))
	assert.Equal(t, 1.5, cleanValue(float32(1.5)))
	assert.Equal(t, "2024-06-30T12:30:00Z", cleanValue(time.Date(2024, 6, 30, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, 123456.78, cleanValue(duckdb.Decimal{Width: 14, Scale: 2, Value: big.NewInt(12345678)}))
	assert.Equal(t, int64(3), cleanValue(int64(3)))
}

func TestStore_ExportXLSX(t *testing.T) {
	s, mock := newMockStore(t, t.TempDir())
	touchParquet(t, s, "divisions")
	mock.ExpectQuery("SELECT * FROM read_parquet(").WillReturnRows(
		sqlmock.NewRows([]string{"division_id", "name"}).
			AddRow("DIV-01", "Engineering").
			AddRow("DIV-02", "Go-To-Market"),
	)

	out := filepath.Join(t.TempDir(), "exports", "lake.xlsx")
	sheets, err := s.ExportXLSX(context.Background(), out, []string{"divisions"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []SheetSummary{{Table: "hris/divisions", Rows: 2}}, sheets)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"divisions"}, f.GetSheetList())
	rows, err := f.GetRows("divisions")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"division_id", "name"}, {"DIV-01", "Engineering"}, {"DIV-02", "Go-To-Market"}}, rows)
}

func TestStore_ExportXLSXErrors(t *testing.T) {
	s, _ := newMockStore(t, t.TempDir())
	_, err := s.ExportXLSX(context.Background(), filepath.Join(t.TempDir(), "x.xlsx"), []string{"nope"})
	require.Error(t, err)
	_, err = s.ExportXLSX(context.Background(), filepath.Join(t.TempDir(), "x.xlsx"), []string{"goals"})
	require.Error(t, err)
	_, err = s.ExportXLSX(context.Background(), filepath.Join(t.TempDir(), "x.xlsx"), nil)
	require.Error(t, err)
}
