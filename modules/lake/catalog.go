package lake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type CatalogColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"is_pk,omitempty"`
	References string `json:"fk_ref,omitempty"`
}

type CatalogTable struct {
	Table      string          `json:"table"`
	Rows       int64           `json:"row_count"`
	PrimaryKey string          `json:"pk,omitempty"`
	Columns    []CatalogColumn `json:"columns"`
}

// Catalog introspects every available Parquet file.
func (s *Store) Catalog(ctx context.Context) ([]CatalogTable, error) {
	var out []CatalogTable
	for _, t := range s.Available() {
		rows, err := s.db.QueryxContext(ctx, "DESCRIBE SELECT * FROM "+s.source(t))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to describe %s", t.Path())
		}
		entry := CatalogTable{Table: t.Path(), PrimaryKey: t.PrimaryKey}
		for rows.Next() {
			rec := map[string]any{}
			if err := rows.MapScan(rec); err != nil {
				rows.Close()
				return nil, errors.Wrapf(err, "failed to scan %s", t.Path())
			}
			col := CatalogColumn{
				Name: asString(rec["column_name"]),
				Type: asString(rec["column_type"]),
			}
			col.PrimaryKey = col.Name == t.PrimaryKey
			if fk, ok := t.ForeignKey(col.Name); ok {
				col.References = fk.String()
			}
			entry.Columns = append(entry.Columns, col)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		if entry.Rows, err = s.count(ctx, s.source(t)); err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", t.Path())
		}
		out = append(out, entry)
	}
	return out, nil
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// RenderCatalog formats the catalog as a markdown document.
func RenderCatalog(entries []CatalogTable) string {
	var b strings.Builder
	b.WriteString("# Data Lake Schema Catalog\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "## %s\n**Rows:** %d\n\n", e.Table, e.Rows)
		b.WriteString("| Column | Type | Key |\n")
		b.WriteString("|--------|------|-----|\n")
		for _, c := range e.Columns {
			key := ""
			switch {
			case c.PrimaryKey:
				key = "PK"
			case c.References != "":
				key = "FK -> " + c.References
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Name, c.Type, key)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteCatalog renders the catalog into <lake>/schema_catalog.md.
func (s *Store) WriteCatalog(ctx context.Context) (string, []CatalogTable, error) {
	entries, err := s.Catalog(ctx)
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(s.dir, "schema_catalog.md")
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", nil, err
	}
	if err := os.WriteFile(path, []byte(RenderCatalog(entries)), 0o644); err != nil {
		return "", nil, err
	}
	return path, entries, nil
}
