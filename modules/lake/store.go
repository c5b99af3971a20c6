package lake

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store is a DuckDB session over the Parquet files under one lake directory.
type Store struct {
	db  *sqlx.DB
	dir string
	log *logrus.Logger
}

// Open starts an in-memory DuckDB instance reading the lake in dir.
func Open(dir string, log *logrus.Logger) (*Store, error) {
	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create duckdb connector")
	}
	db := sqlx.NewDb(sql.OpenDB(connector), "duckdb")
	// A view created on one connection must be visible to the next query.
	db.SetMaxOpenConns(1)
	return NewStore(db, dir, log), nil
}

func NewStore(db *sqlx.DB, dir string, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{db: db, dir: dir, log: log}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) ParquetPath(t TableSchema) string {
	return filepath.Join(s.dir, t.System, t.Name+".parquet")
}

func (s *Store) exists(t TableSchema) bool {
	_, err := os.Stat(s.ParquetPath(t))
	return err == nil
}

// Has reports whether the named table has been built.
func (s *Store) Has(name string) bool {
	t, ok := Lookup(name)
	return ok && s.exists(t)
}

// Available returns the tables whose Parquet file is present.
func (s *Store) Available() []TableSchema {
	var out []TableSchema
	for _, t := range tables {
		if s.exists(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) source(t TableSchema) string {
	return fmt.Sprintf("read_parquet(%s)", quoteLiteral(s.ParquetPath(t)))
}

// RegisterViews exposes every available table as a view named after it so
// queries can say "FROM employees".
func (s *Store) RegisterViews(ctx context.Context) ([]string, error) {
	var names []string
	for _, t := range s.Available() {
		stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM %s", quoteIdent(t.Name), s.source(t))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return nil, errors.Wrapf(err, "failed to create view %s", t.Name)
		}
		names = append(names, t.Name)
	}
	return names, nil
}

func (s *Store) count(ctx context.Context, from string) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+from); err != nil {
		return 0, err
	}
	return n, nil
}
