// Package services runs the generators in dependency order and publishes
// the outcome of every step.
package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/generators"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/registry"
	"github.com/nicolasimarinw/hr-ontology/pkg/eventbus"
)

var tracer = otel.Tracer("hr-ontology-synth")

const DefaultSeed int64 = 42

type Options struct {
	Seed    int64
	RawDir  string
	Profile *profile.Profile
}

type TableSummary struct {
	System  string `json:"system"`
	Table   string `json:"table"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Path    string `json:"path"`
}

type RunSummary struct {
	RunID       uuid.UUID        `json:"run_id"`
	Seed        int64            `json:"seed"`
	Company     string           `json:"company"`
	StartedAt   time.Time        `json:"started_at"`
	DurationMS  int64            `json:"duration_ms"`
	RawDir      string           `json:"raw_dir"`
	Tables      []TableSummary   `json:"tables"`
	Entities    registry.Summary `json:"entities"`
	SkillsCount int              `json:"skills_in_catalog"`
}

// Rows returns the row count of one table, or -1 when it was not generated.
func (s *RunSummary) Rows(system, table string) int {
	for _, t := range s.Tables {
		if t.System == system && t.Table == table {
			return t.Rows
		}
	}
	return -1
}

type Orchestrator struct {
	log *logrus.Logger
	bus *eventbus.Bus
}

func NewOrchestrator(log *logrus.Logger, bus *eventbus.Bus) *Orchestrator {
	return &Orchestrator{log: log, bus: bus}
}

// Pipeline returns the generators in the order they must run: HRIS first,
// then the systems that read its employees.
func Pipeline(reg *registry.Registry, p *profile.Profile) []generators.Generator {
	return []generators.Generator{
		generators.NewHRIS(reg, p),
		generators.NewCompensation(reg, p),
		generators.NewATS(reg, p),
		generators.NewPerformance(reg, p),
	}
}

// Run generates, validates and saves every system. The first failing step
// stops the run; files of earlier steps stay on disk.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	if opts.RawDir == "" {
		return nil, errors.New("raw data directory is required")
	}
	p := opts.Profile
	if p == nil {
		p = profile.Default()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "synth.Run", trace.WithAttributes(
		attribute.Int64("synth.seed", opts.Seed),
		attribute.String("synth.company", p.Company.Name),
	))
	defer span.End()

	summary := &RunSummary{
		RunID:     uuid.New(),
		Seed:      opts.Seed,
		Company:   p.Company.Name,
		StartedAt: time.Now().UTC(),
		RawDir:    opts.RawDir,
	}
	reg := registry.New(opts.Seed)
	logger := o.log.WithFields(logrus.Fields{"run_id": summary.RunID.String(), "seed": opts.Seed})
	logger.WithField("company", p.Company.Name).Info("synthetic data generation started")

	for _, g := range Pipeline(reg, p) {
		tables, err := o.step(ctx, summary.RunID, opts.RawDir, g)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.WithError(err).WithField("system", g.Name()).Error("generator failed")
			return nil, errors.Wrapf(err, "generator %s", g.Name())
		}
		summary.Tables = append(summary.Tables, tables...)
	}

	summary.Entities = reg.Summary()
	summary.SkillsCount = len(p.Skills)
	summary.DurationMS = time.Since(summary.StartedAt).Milliseconds()
	logger.WithFields(logrus.Fields{
		"active":      summary.Entities.Active,
		"terminated":  summary.Entities.Terminated,
		"departments": summary.Entities.Departments,
		"positions":   summary.Entities.Positions,
		"duration_ms": summary.DurationMS,
	}).Info("synthetic data generation complete")

	if o.bus != nil {
		o.bus.Publish(&RunCompleted{Summary: summary})
	}
	return summary, nil
}

func (o *Orchestrator) step(ctx context.Context, runID uuid.UUID, rawDir string, g generators.Generator) (_ []TableSummary, err error) {
	ctx, span := tracer.Start(ctx, "synth.step."+g.Name())
	defer span.End()
	start := time.Now()
	defer func() { recordStep(g.Name(), time.Since(start).Seconds(), err) }()

	if err := g.Generate(ctx); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	paths, err := generators.Save(rawDir, g)
	if err != nil {
		return nil, err
	}

	out := make([]TableSummary, 0, len(paths))
	for i, t := range g.Tables() {
		out = append(out, TableSummary{
			System:  g.Name(),
			Table:   t.Name,
			Rows:    t.Len(),
			Columns: len(t.Columns),
			Path:    paths[i],
		})
		recordRows(g.Name(), t.Name, t.Len())
		o.log.WithFields(logrus.Fields{"system": g.Name(), "table": t.Name, "rows": t.Len()}).Debug("table written")
	}
	span.SetAttributes(attribute.Int("synth.tables", len(out)))

	if o.bus != nil {
		o.bus.Publish(&StepCompleted{RunID: runID, Generator: g.Name(), Tables: out, Duration: time.Since(start)})
	}
	return out, nil
}
