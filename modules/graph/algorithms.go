package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AlgorithmRequest selects a graph algorithm and its arguments.
type AlgorithmRequest struct {
	Algorithm  string `json:"algorithm"`
	EmployeeID string `json:"employee_id,omitempty"`
	Emp1ID     string `json:"emp1_id,omitempty"`
	Emp2ID     string `json:"emp2_id,omitempty"`
	TopN       int    `json:"top_n,omitempty"`
}

// RenderResult points at a written visualisation.
type RenderResult struct {
	File      string `json:"file"`
	Algorithm string `json:"algorithm,omitempty"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// Algorithms lists every name accepted by Run.
func Algorithms() []string {
	out := []string{"centrality", "community", "cascade", "org_distance", "flight_risk"}
	views := make([]string, 0, len(Views))
	for name := range Views {
		views = append(views, name)
	}
	sort.Strings(views)
	return append(out, views...)
}

// Dispatcher runs algorithms by name.
type Dispatcher struct {
	runner    Runner
	analytics *Analytics
	renderer  *Renderer
}

func NewDispatcher(runner Runner, renderer *Renderer) *Dispatcher {
	return &Dispatcher{runner: runner, analytics: NewAnalytics(runner), renderer: renderer}
}

func (d *Dispatcher) Analytics() *Analytics {
	return d.analytics
}

// Run executes req and returns a JSON-serialisable result.
func (d *Dispatcher) Run(ctx context.Context, req AlgorithmRequest) (out any, err error) {
	ctx, span := tracer.Start(ctx, "graph.Run", trace.WithAttributes(attribute.String("graph.algorithm", req.Algorithm)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		recordAnalytics(req.Algorithm, err)
	}()

	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	switch req.Algorithm {
	case "centrality":
		return d.analytics.Centrality(ctx, topN)
	case "community":
		return d.analytics.Community(ctx)
	case "cascade":
		if req.EmployeeID == "" {
			return nil, errors.Wrap(ErrMissingArgument, "employee_id is required for cascade analysis")
		}
		return d.analytics.CascadeImpact(ctx, req.EmployeeID)
	case "org_distance":
		if req.Emp1ID == "" || req.Emp2ID == "" {
			return nil, errors.Wrap(ErrMissingArgument, "emp1_id and emp2_id are required")
		}
		return d.analytics.OrgDistance(ctx, req.Emp1ID, req.Emp2ID)
	case "flight_risk":
		return d.analytics.FlightRisk(ctx, topN)
	}

	view, ok := Views[req.Algorithm]
	if !ok {
		return nil, errors.Wrap(ErrUnknownAlgorithm, req.Algorithm)
	}
	g, err := view(ctx, d.runner)
	if err != nil {
		return nil, err
	}
	path, err := d.renderer.Save(ctx, g, strings.TrimPrefix(req.Algorithm, "render_"))
	if err != nil {
		return nil, err
	}
	return &RenderResult{File: path, Algorithm: req.Algorithm, NodeCount: len(g.Nodes), EdgeCount: len(g.Edges)}, nil
}

// Visualize renders an arbitrary read-only query to custom_<title>.html.
func (d *Dispatcher) Visualize(ctx context.Context, cypher, title string) (*RenderResult, error) {
	g, err := Collect(ctx, d.runner, cypher, title)
	if err != nil {
		return nil, err
	}
	if g.Empty() {
		return nil, errors.New("query returned no results")
	}
	path, err := d.renderer.Save(ctx, g, "custom_"+SafeName(title))
	if err != nil {
		return nil, err
	}
	return &RenderResult{File: path, NodeCount: len(g.Nodes), EdgeCount: len(g.Edges)}, nil
}
