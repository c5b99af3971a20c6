package lake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hr-ontology-lake")

type BuildResult struct {
	Table   string `json:"table"`
	Rows    int64  `json:"rows"`
	Path    string `json:"path,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Builder converts data/raw/<system>/<table>.csv into
// <lake>/<system>/<table>.parquet.
type Builder struct {
	store  *Store
	rawDir string
}

func NewBuilder(store *Store, rawDir string) *Builder {
	return &Builder{store: store, rawDir: rawDir}
}

func (b *Builder) csvPath(t TableSchema) string {
	return filepath.Join(b.rawDir, t.System, t.Name+".csv")
}

// Build writes one Parquet file per known table. Missing CSVs are skipped;
// a CSV whose header does not match the table schema fails the build.
func (b *Builder) Build(ctx context.Context) ([]BuildResult, error) {
	ctx, span := tracer.Start(ctx, "lake.Build", trace.WithAttributes(attribute.String("lake.dir", b.store.dir)))
	defer span.End()

	results := make([]BuildResult, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := b.buildTable(ctx, t)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if _, err := b.store.RegisterViews(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Builder) buildTable(ctx context.Context, t TableSchema) (BuildResult, error) {
	start := time.Now()
	res := BuildResult{Table: t.Path()}
	src := b.csvPath(t)
	logger := b.store.log.WithFields(logrus.Fields{"table": t.Path(), "csv": src})

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			res.Skipped = true
			res.Reason = "csv not found"
			logger.Warn("lake: csv not found, skipping table")
			recordBuild(t.System, "skipped", 0, time.Since(start))
			return res, nil
		}
		return res, err
	}

	header, err := rawHeader(src)
	if err != nil {
		return res, err
	}
	if err := t.checkHeader(header); err != nil {
		return res, err
	}

	dst := b.store.ParquetPath(t)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return res, err
	}
	stmt := fmt.Sprintf("COPY (%s) TO %s (FORMAT PARQUET)", t.selectTyped(src), quoteLiteral(dst))
	if _, err := b.store.db.ExecContext(ctx, stmt); err != nil {
		recordBuild(t.System, "error", 0, time.Since(start))
		return res, errors.Wrapf(err, "failed to write %s", dst)
	}
	rows, err := b.store.count(ctx, b.store.source(t))
	if err != nil {
		return res, errors.Wrapf(err, "failed to count %s", dst)
	}

	res.Rows = rows
	res.Path = dst
	recordBuild(t.System, "ok", rows, time.Since(start))
	logger.WithField("rows", rows).Info("lake: table written")
	return res, nil
}
