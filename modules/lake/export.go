package lake

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type SheetSummary struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// ExportXLSX writes one sheet per table into a workbook at path. An empty
// table list exports every available table.
func (s *Store) ExportXLSX(ctx context.Context, path string, names []string) ([]SheetSummary, error) {
	var selected []TableSchema
	if len(names) == 0 {
		selected = s.Available()
	} else {
		for _, n := range names {
			t, ok := Lookup(n)
			if !ok {
				return nil, errors.Errorf("unknown table %q", n)
			}
			if !s.exists(t) {
				return nil, errors.Errorf("table %s has not been built", t.Path())
			}
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	summaries := make([]SheetSummary, 0, len(selected))
	for _, t := range selected {
		n, err := s.writeSheet(ctx, f, t, header)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, SheetSummary{Table: t.Path(), Rows: n})
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := f.SaveAs(path); err != nil {
		return nil, errors.Wrapf(err, "failed to save %s", path)
	}
	return summaries, nil
}

func (s *Store) writeSheet(ctx context.Context, f *excelize.File, t TableSchema, headerStyle int) (int, error) {
	if _, err := f.NewSheet(t.Name); err != nil {
		return 0, err
	}
	sw, err := f.NewStreamWriter(t.Name)
	if err != nil {
		return 0, err
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return 0, err
	}

	names := t.ColumnNames()
	headerRow := make([]any, len(names))
	for i, n := range names {
		headerRow[i] = n
	}
	if err := sw.SetRow("A1", headerRow, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return 0, err
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+s.source(t))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", t.Path())
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return 0, err
		}
		for i, v := range values {
			values[i] = cleanValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return 0, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return 0, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return n, sw.Flush()
}
