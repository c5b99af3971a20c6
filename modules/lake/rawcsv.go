package lake

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const utf8BOM = "\ufeff"

// HeaderError reports how a raw CSV header differs from its table schema.
type HeaderError struct {
	Table      string
	Missing    []string
	Unexpected []string
}

func (e *HeaderError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("%s: header mismatch: %s", e.Table, strings.Join(parts, "; "))
}

// rawHeader reads the header row of a generator CSV. Files re-saved by
// spreadsheet tools start with a byte order mark, which is dropped.
func rawHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read header", path)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, nil
}

// checkHeader accepts any column order but requires exactly the schema's
// columns, since the COPY selects them by name.
func (t TableSchema) checkHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	herr := &HeaderError{Table: t.Path()}
	known := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		known[c.Name] = struct{}{}
		if _, ok := present[c.Name]; !ok {
			herr.Missing = append(herr.Missing, c.Name)
		}
	}
	for _, h := range header {
		if _, ok := known[h]; !ok {
			herr.Unexpected = append(herr.Unexpected, h)
		}
	}
	if len(herr.Missing) > 0 || len(herr.Unexpected) > 0 {
		return herr
	}
	return nil
}
