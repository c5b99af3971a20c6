package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/openai/openai-go"

	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/modules/lake"
	"github.com/nicolasimarinw/hr-ontology/modules/ontology"
)

const (
	ToolQueryGraph        = "query_graph"
	ToolQueryDataLake     = "query_data_lake"
	ToolDescribeOntology  = "describe_ontology"
	ToolVisualizeSubgraph = "visualize_subgraph"
	ToolRunGraphAlgorithm = "run_graph_algorithm"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrGraphUnavailable = errors.New("graph database is not connected")
	ErrLakeUnavailable  = errors.New("data lake is not available")
	ErrInvalidToolInput = errors.New("invalid tool input")
)

var validate = validator.New()

// LakeQuerier runs read-only SQL over the lake views.
type LakeQuerier interface {
	Query(ctx context.Context, query string, limit int) (*lake.QueryResult, error)
}

// GraphTools is the graph surface the tools need.
type GraphTools interface {
	Run(ctx context.Context, req graph.AlgorithmRequest) (any, error)
	Visualize(ctx context.Context, cypher, title string) (*graph.RenderResult, error)
}

// Toolbox executes tool calls. Any dependency may be nil, in which case
// the tools using it report an error to the model.
type Toolbox struct {
	graph      graph.Runner
	lake       LakeQuerier
	algorithms GraphTools
}

func NewToolbox(runner graph.Runner, lakeQuerier LakeQuerier, algorithms GraphTools) *Toolbox {
	return &Toolbox{graph: runner, lake: lakeQuerier, algorithms: algorithms}
}

type queryGraphInput struct {
	Cypher string         `json:"cypher" validate:"required"`
	Params map[string]any `json:"params"`
}

type queryLakeInput struct {
	SQL string `json:"sql" validate:"required"`
}

type describeInput struct {
	EntityType string `json:"entity_type"`
}

type visualizeInput struct {
	Cypher string `json:"cypher" validate:"required"`
	Title  string `json:"title"`
}

type algorithmInput struct {
	Algorithm  string `json:"algorithm" validate:"required"`
	EmployeeID string `json:"employee_id"`
	Emp1ID     string `json:"emp1_id"`
	Emp2ID     string `json:"emp2_id"`
	TopN       int    `json:"top_n" validate:"gte=0,lte=500"`
}

// Definitions returns the tool declarations sent with every completion.
func Definitions() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		tool(ToolQueryGraph,
			"Execute a Cypher query against the Neo4j HR knowledge graph. Use this for relationship-based "+
				"questions: org hierarchy traversal, skill networks, cascade impact, pattern matching across "+
				"entities. Only read queries are allowed. Returns JSON with rows and count.",
			object(map[string]any{
				"cypher": prop("string", "A valid read-only Cypher query. Use $param syntax with params when possible."),
				"params": map[string]any{"type": "object", "description": "Optional query parameters."},
			}, "cypher")),
		tool(ToolQueryDataLake,
			"Execute a SQL query against the DuckDB data lake (Parquet files). Use this for aggregate analytics: "+
				"compensation stats, turnover rates, demographic distributions, cross-tabulations, time-series "+
				"analysis. Available tables: "+strings.Join(lake.TableNames(), ", ")+". Results are capped at 200 rows.",
			object(map[string]any{
				"sql": prop("string", "A valid DuckDB SELECT query. Tables are registered as views (e.g. SELECT * FROM employees)."),
			}, "sql")),
		tool(ToolDescribeOntology,
			"Describe the HR ontology schema: node types, relationship types and their properties. "+
				"Use this to understand available data before writing queries.",
			object(map[string]any{
				"entity_type": prop("string", "What to describe: 'all' for an overview, 'nodes', 'edges', "+
					"or a specific name like 'Employee' or 'REPORTS_TO'."),
			}, "entity_type")),
		tool(ToolVisualizeSubgraph,
			"Execute a Cypher query and render the results as an interactive HTML graph. "+
				"Return nodes, relationships or paths for best results.",
			object(map[string]any{
				"cypher": prop("string", "Cypher query to visualize."),
				"title":  prop("string", "Short title for the visualization file."),
			}, "cypher", "title")),
		tool(ToolRunGraphAlgorithm,
			"Run a graph algorithm: centrality (influential managers), community (cross-department clusters), "+
				"cascade (departure impact), org_distance (shortest path between employees), flight_risk "+
				"(top risks), or render visualizations (render_org_chart, render_department_network, "+
				"render_compensation_map, render_recruiting_funnel, render_skills_network).",
			object(map[string]any{
				"algorithm":   prop("string", "Algorithm name: "+strings.Join(graph.Algorithms(), ", ")+"."),
				"employee_id": prop("string", "Employee ID for cascade analysis. Format: EMP-XXXXX."),
				"emp1_id":     prop("string", "First employee ID for org_distance."),
				"emp2_id":     prop("string", "Second employee ID for org_distance."),
				"top_n":       prop("integer", fmt.Sprintf("Number of top results to return (default: %d).", graph.DefaultTopN)),
			}, "algorithm")),
	}
}

func tool(name, description string, params openai.FunctionParameters) openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        name,
			Description: openai.String(description),
			Parameters:  params,
		},
	}
}

func object(properties map[string]any, required ...string) openai.FunctionParameters {
	return openai.FunctionParameters{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

// Execute runs the named tool and always returns a JSON document; failures
// are reported as {"error": "..."} so the model can recover.
func (t *Toolbox) Execute(ctx context.Context, name, arguments string) string {
	out, err := t.execute(ctx, name, arguments)
	recordToolCall(name, err)
	if err != nil {
		return errorJSON(err)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return errorJSON(err)
	}
	return string(b)
}

func errorJSON(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

func decode(arguments string, dst any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), dst); err != nil {
		return errors.Wrap(ErrInvalidToolInput, err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return errors.Wrap(ErrInvalidToolInput, err.Error())
	}
	return nil
}

func (t *Toolbox) execute(ctx context.Context, name, arguments string) (any, error) {
	switch name {
	case ToolQueryGraph:
		var in queryGraphInput
		if err := decode(arguments, &in); err != nil {
			return nil, err
		}
		return t.queryGraph(ctx, in)
	case ToolQueryDataLake:
		var in queryLakeInput
		if err := decode(arguments, &in); err != nil {
			return nil, err
		}
		if t.lake == nil {
			return nil, ErrLakeUnavailable
		}
		return t.lake.Query(ctx, in.SQL, lake.DefaultRowLimit)
	case ToolDescribeOntology:
		var in describeInput
		if err := decode(arguments, &in); err != nil {
			return nil, err
		}
		return describe(in.EntityType), nil
	case ToolVisualizeSubgraph:
		var in visualizeInput
		if err := decode(arguments, &in); err != nil {
			return nil, err
		}
		if t.algorithms == nil {
			return nil, ErrGraphUnavailable
		}
		if in.Title == "" {
			in.Title = "subgraph"
		}
		return t.algorithms.Visualize(ctx, in.Cypher, in.Title)
	case ToolRunGraphAlgorithm:
		var in algorithmInput
		if err := decode(arguments, &in); err != nil {
			return nil, err
		}
		if t.algorithms == nil {
			return nil, ErrGraphUnavailable
		}
		out, err := t.algorithms.Run(ctx, graph.AlgorithmRequest{
			Algorithm:  in.Algorithm,
			EmployeeID: in.EmployeeID,
			Emp1ID:     in.Emp1ID,
			Emp2ID:     in.Emp2ID,
			TopN:       in.TopN,
		})
		if errors.Is(err, graph.ErrUnknownAlgorithm) {
			return map[string]any{"error": err.Error(), "available": graph.Algorithms()}, nil
		}
		return out, err
	default:
		return nil, errors.Wrap(ErrUnknownTool, name)
	}
}

type graphRows struct {
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

func (t *Toolbox) queryGraph(ctx context.Context, in queryGraphInput) (*graphRows, error) {
	if t.graph == nil {
		return nil, ErrGraphUnavailable
	}
	if err := graph.CheckReadOnly(in.Cypher); err != nil {
		return nil, err
	}
	rows, err := t.graph.Read(ctx, in.Cypher, in.Params)
	if err != nil {
		return nil, err
	}
	return &graphRows{Rows: graph.PlainRows(rows), Count: len(rows)}, nil
}

// describe mirrors ontology.Describe but reports unknown names with the
// available alternatives instead of failing.
func describe(entity string) any {
	out, err := ontology.Describe(entity)
	var unknown *ontology.UnknownEntityError
	if errors.As(err, &unknown) {
		return map[string]any{
			"error":           unknown.Error(),
			"available_nodes": unknown.AvailableNodes,
			"available_edges": unknown.AvailableEdges,
		}
	}
	return out
}
