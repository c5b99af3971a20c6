package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicolasimarinw/hr-ontology/modules/ontology"
	"github.com/nicolasimarinw/hr-ontology/pkg/eventbus"
)

var tracer = otel.Tracer("hr-ontology-graph")

const DefaultBatchSize = 500

// Source is the part of the lake the loader reads from.
type Source interface {
	Has(table string) bool
	Each(ctx context.Context, query string, fn func(row map[string]any) error) error
}

// MappingLoaded is published once per node label or relationship type.
type MappingLoaded struct {
	Kind    string
	Name    string
	Rows    int
	Skipped bool
}

type LoadOptions struct {
	// Wipe deletes every node before loading.
	Wipe      bool
	BatchSize int
}

type LoadResult struct {
	Nodes              map[string]int `json:"nodes"`
	Relationships      map[string]int `json:"relationships"`
	Skipped            []string       `json:"skipped,omitempty"`
	TotalNodes         int64          `json:"total_nodes"`
	TotalRelationships int64          `json:"total_relationships"`
	Constraints        int            `json:"constraints"`
	DurationMS         int64          `json:"duration_ms"`
}

type Loader struct {
	runner Runner
	source Source
	bus    *eventbus.Bus
	log    logrus.FieldLogger
}

// NewLoader builds a loader. bus may be nil.
func NewLoader(runner Runner, source Source, bus *eventbus.Bus, log logrus.FieldLogger) *Loader {
	return &Loader{runner: runner, source: source, bus: bus, log: log}
}

// ApplyConstraints creates the ontology constraints and indexes. Statements
// are idempotent.
func (l *Loader) ApplyConstraints(ctx context.Context) (int, error) {
	stmts := ontology.ConstraintStatements()
	for _, stmt := range stmts {
		if err := l.runner.Write(ctx, stmt, nil); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				l.log.WithError(err).Debug("constraint already exists")
				continue
			}
			return 0, errors.Wrapf(err, "apply %q", stmt)
		}
	}
	return len(stmts), nil
}

// Load merges every mapped node label and then every relationship type.
// Mappings whose lake tables are missing are skipped.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	ctx, span := tracer.Start(ctx, "graph.Load", trace.WithAttributes(attribute.Bool("graph.wipe", opts.Wipe)))
	defer span.End()

	start := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	res := &LoadResult{Nodes: map[string]int{}, Relationships: map[string]int{}}

	if opts.Wipe {
		if err := l.runner.Write(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
			return nil, errors.Wrap(err, "wipe graph")
		}
		l.log.Info("graph wiped")
	}

	n, err := l.ApplyConstraints(ctx)
	if err != nil {
		return nil, err
	}
	res.Constraints = n

	for _, m := range ontology.NodeMappings() {
		if !l.source.Has(m.Table) {
			res.Skipped = append(res.Skipped, m.Label)
			l.publish(MappingLoaded{Kind: "node", Name: m.Label, Skipped: true})
			continue
		}
		count, err := l.loadNodes(ctx, m, opts.BatchSize)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s nodes", m.Label)
		}
		res.Nodes[m.Label] = count
	}

	for _, m := range ontology.EdgeMappings() {
		missing := false
		for _, t := range m.Tables {
			missing = missing || !l.source.Has(t)
		}
		if missing {
			res.Skipped = append(res.Skipped, m.Type)
			l.publish(MappingLoaded{Kind: "relationship", Name: m.Type, Skipped: true})
			continue
		}
		count, err := l.loadEdges(ctx, m, opts.BatchSize)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s relationships", m.Type)
		}
		res.Relationships[m.Type] = count
	}

	if res.TotalNodes, err = l.count(ctx, "MATCH (n) RETURN count(n) AS count"); err != nil {
		return nil, err
	}
	if res.TotalRelationships, err = l.count(ctx, "MATCH ()-[r]->() RETURN count(r) AS count"); err != nil {
		return nil, err
	}
	res.DurationMS = time.Since(start).Milliseconds()
	l.log.WithFields(logrus.Fields{
		"nodes":         res.TotalNodes,
		"relationships": res.TotalRelationships,
		"skipped":       len(res.Skipped),
	}).Info("graph loaded")
	return res, nil
}

func (l *Loader) publish(ev MappingLoaded) {
	if l.bus != nil {
		l.bus.Publish(ev)
	}
}

func (l *Loader) count(ctx context.Context, cypher string) (int64, error) {
	rows, err := l.runner.Read(ctx, cypher, nil)
	if err != nil {
		return 0, errors.Wrap(err, "count")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return num(rows[0], "count"), nil
}

// nodeCypher merges on the id property of the most specific label and adds
// the parent labels.
func nodeCypher(schema ontology.NodeSchema) string {
	var b strings.Builder
	label := schema.Label()
	fmt.Fprintf(&b, "UNWIND $batch AS row MERGE (n:%s {%s: row.%s})", label, schema.IDProperty, schema.IDProperty)
	for _, parent := range schema.Labels[:len(schema.Labels)-1] {
		fmt.Fprintf(&b, " SET n:%s", parent)
	}
	b.WriteString(" SET n += row")
	return b.String()
}

func edgeCypher(schema ontology.EdgeSchema, hasProps bool) string {
	src, _ := ontology.NodeByLabel(schema.SourceLabel)
	dst, _ := ontology.NodeByLabel(schema.TargetLabel)
	q := fmt.Sprintf("UNWIND $batch AS row MATCH (a:%s {%s: row.source}) MATCH (b:%s {%s: row.target}) MERGE (a)-[r:%s]->(b)",
		schema.SourceLabel, src.IDProperty, schema.TargetLabel, dst.IDProperty, schema.Type)
	if hasProps {
		q += " SET r += row.props"
	}
	return q
}

func (l *Loader) loadNodes(ctx context.Context, m ontology.NodeMapping, batchSize int) (int, error) {
	cypher := nodeCypher(m.Schema())
	b := newBatcher(ctx, l.runner, cypher, "node", batchSize)
	err := l.source.Each(ctx, m.Query(), func(row map[string]any) error {
		return b.add(compact(row))
	})
	if err != nil {
		return 0, err
	}
	if err := b.flush(); err != nil {
		return 0, err
	}
	recordLoaded("node", m.Label, b.total)
	l.publish(MappingLoaded{Kind: "node", Name: m.Label, Rows: b.total})
	l.log.WithFields(logrus.Fields{"label": m.Label, "count": b.total}).Debug("nodes merged")
	return b.total, nil
}

func (l *Loader) loadEdges(ctx context.Context, m ontology.EdgeMapping, batchSize int) (int, error) {
	cypher := edgeCypher(m.Schema(), len(m.Fields) > 0)
	b := newBatcher(ctx, l.runner, cypher, "relationship", batchSize)
	err := l.source.Each(ctx, m.Query(), func(row map[string]any) error {
		item := map[string]any{"source": row["source"], "target": row["target"]}
		if len(m.Fields) > 0 {
			props := map[string]any{}
			for _, f := range m.Fields {
				props[f.Property] = row[f.Property]
			}
			item["props"] = compact(props)
		}
		return b.add(item)
	})
	if err != nil {
		return 0, err
	}
	if err := b.flush(); err != nil {
		return 0, err
	}
	recordLoaded("relationship", m.Type, b.total)
	l.publish(MappingLoaded{Kind: "relationship", Name: m.Type, Rows: b.total})
	l.log.WithFields(logrus.Fields{"type": m.Type, "count": b.total}).Debug("relationships merged")
	return b.total, nil
}

// compact drops null properties so MERGE never clears existing values.
func compact(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

type batcher struct {
	ctx    context.Context
	runner Runner
	cypher string
	kind   string
	size   int
	buf    []map[string]any
	total  int
}

func newBatcher(ctx context.Context, runner Runner, cypher, kind string, size int) *batcher {
	return &batcher{ctx: ctx, runner: runner, cypher: cypher, kind: kind, size: size}
}

func (b *batcher) add(row map[string]any) error {
	b.buf = append(b.buf, row)
	if len(b.buf) >= b.size {
		return b.flush()
	}
	return nil
}

func (b *batcher) flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	batch := make([]any, len(b.buf))
	for i, r := range b.buf {
		batch[i] = r
	}
	err := b.runner.Write(b.ctx, b.cypher, map[string]any{"batch": batch})
	recordBatch(b.kind, err)
	if err != nil {
		return err
	}
	b.total += len(b.buf)
	b.buf = b.buf[:0]
	return nil
}
