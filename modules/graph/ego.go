package graph

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	DefaultEgoHops = 1
	MaxEgoHops     = 2

	// Two hops from a division head reaches most of the company; the page
	// stops being readable well before that.
	maxEgoPaths = 1500
)

// ClampHops keeps an ego graph radius within [1, MaxEgoHops].
func ClampHops(hops int) int {
	return max(1, min(hops, MaxEgoHops))
}

// EgoGraph draws every node and relationship within hops of one employee.
// The employee is drawn twice as large with a thick border. It returns
// ErrEmployeeNotFound when the id has no Employee node.
func EgoGraph(ctx context.Context, runner Runner, employeeID string, hops int) (*Subgraph, error) {
	ctx, span := tracer.Start(ctx, "graph.EgoGraph")
	defer span.End()

	hops = ClampHops(hops)
	// Variable-length bounds cannot be parameters.
	cypher := fmt.Sprintf(`MATCH (center:Employee {employee_id: $eid})
OPTIONAL MATCH path = (center)-[*1..%d]-()
WITH center, path LIMIT $limit
RETURN center, path`, hops)
	rows, err := runner.Read(ctx, cypher, map[string]any{"eid": employeeID, "limit": maxEgoPaths})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrEmployeeNotFound, employeeID)
	}

	center, ok := rows[0]["center"].(neo4j.Node)
	if !ok {
		return nil, errors.Wrap(ErrEmployeeNotFound, employeeID)
	}
	g := NewSubgraph(fmt.Sprintf("Ego Graph: %s (%s)", nodeCaption(center), employeeID), true)
	g.addNode(center)
	g.Nodes[0].Size *= 2
	g.Nodes[0].BorderWidth = 3

	for _, row := range rows {
		if path, ok := row["path"].(neo4j.Path); ok {
			g.collect(path)
		}
	}
	return g, nil
}

// EgoGraph is EgoGraph over the analytics connection.
func (a *Analytics) EgoGraph(ctx context.Context, employeeID string, hops int) (*Subgraph, error) {
	return EgoGraph(ctx, a.runner, employeeID, hops)
}
