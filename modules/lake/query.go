package lake

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const DefaultRowLimit = 200

var ErrNotReadOnly = errors.New("only read-only queries are allowed")

var writeKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "DROP": {}, "CREATE": {}, "ALTER": {},
	"COPY": {}, "ATTACH": {}, "DETACH": {}, "INSTALL": {}, "LOAD": {}, "EXPORT": {},
	"IMPORT": {}, "TRUNCATE": {}, "MERGE": {}, "CALL": {}, "SET": {}, "PRAGMA": {},
	"CHECKPOINT": {}, "VACUUM": {}, "GRANT": {}, "REVOKE": {},
}

var readKeywords = map[string]struct{}{
	"SELECT": {}, "WITH": {}, "DESCRIBE": {}, "SHOW": {}, "SUMMARIZE": {}, "FROM": {}, "VALUES": {}, "EXPLAIN": {},
}

// sqlWords returns the upper-cased bare words of a statement, skipping
// string literals, quoted identifiers and comments. It reports whether more
// than one statement is present.
func sqlWords(query string) ([]string, bool) {
	var (
		words []string
		cur   strings.Builder
		multi bool
		seen  bool
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToUpper(cur.String()))
			cur.Reset()
		}
	}
	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\'' || c == '"':
			flush()
			for i++; i < len(rs); i++ {
				if rs[i] == c {
					if i+1 < len(rs) && rs[i+1] == c {
						i++
						continue
					}
					break
				}
			}
			seen = true
		case c == '-' && i+1 < len(rs) && rs[i+1] == '-':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(rs) && rs[i+1] == '*':
			flush()
			for i += 2; i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/'); i++ {
			}
			i++
		case c == ';':
			flush()
			if seen {
				// Anything but whitespace after a terminator is a second statement.
				for j := i + 1; j < len(rs); j++ {
					if !unicode.IsSpace(rs[j]) && rs[j] != ';' {
						multi = true
						break
					}
				}
			}
		case unicode.IsLetter(c) || c == '_' || unicode.IsDigit(c):
			cur.WriteRune(c)
			seen = true
		default:
			flush()
			if !unicode.IsSpace(c) {
				seen = true
			}
		}
	}
	flush()
	return words, multi
}

// CheckReadOnly rejects statements that could modify the lake or the
// session.
func CheckReadOnly(query string) error {
	words, multi := sqlWords(query)
	if len(words) == 0 {
		return errors.New("empty query")
	}
	if multi {
		return errors.Wrap(ErrNotReadOnly, "multiple statements")
	}
	if _, ok := readKeywords[words[0]]; !ok {
		return errors.Wrapf(ErrNotReadOnly, "statement starts with %s", words[0])
	}
	for _, w := range words {
		if _, ok := writeKeywords[w]; ok {
			return errors.Wrapf(ErrNotReadOnly, "keyword %s", w)
		}
	}
	return nil
}

type QueryResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Count     int              `json:"count"`
	Truncated bool             `json:"truncated,omitempty"`
	Note      string           `json:"note,omitempty"`
}

// Query runs a read-only statement against the lake views and returns at
// most limit rows (DefaultRowLimit when limit <= 0).
func (s *Store) Query(ctx context.Context, query string, limit int) (res *QueryResult, err error) {
	defer func() { recordQuery(err) }()
	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res = &QueryResult{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		if len(res.Rows) == limit {
			res.Truncated = true
			break
		}
		rec := map[string]any{}
		if err := rows.MapScan(rec); err != nil {
			return nil, errors.Wrap(err, "scan failed")
		}
		for k, v := range rec {
			rec[k] = cleanValue(v)
		}
		res.Rows = append(res.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	res.Count = len(res.Rows)
	if res.Truncated {
		res.Note = fmt.Sprintf("Results truncated to %d rows. Add LIMIT to your query for smaller results.", limit)
	}
	return res, nil
}

// Each streams every row of a trusted query to fn, with values cleaned the
// same way Query cleans them. It does not apply the read-only check.
func (s *Store) Each(ctx context.Context, query string, fn func(row map[string]any) error) error {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "query failed")
	}
	defer rows.Close()
	for rows.Next() {
		rec := map[string]any{}
		if err := rows.MapScan(rec); err != nil {
			return errors.Wrap(err, "scan failed")
		}
		for k, v := range rec {
			rec[k] = cleanValue(v)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// cleanValue makes a scanned value JSON friendly.
func cleanValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case float32:
		return cleanValue(float64(x))
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case duckdb.Decimal:
		if x.Value == nil {
			return nil
		}
		f, _ := decimal.NewFromBigInt(x.Value, -int32(x.Scale)).Float64()
		return f
	default:
		return v
	}
}
