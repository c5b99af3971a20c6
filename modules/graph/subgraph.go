package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const maxTabularNodes = 100

type VisNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title,omitempty"`
	Group string `json:"group,omitempty"`
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
	Shape string `json:"shape,omitempty"`

	BorderWidth int `json:"borderWidth,omitempty"`
}

type VisEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Label string  `json:"label,omitempty"`
	Title string  `json:"title,omitempty"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Subgraph is a renderable set of nodes and edges.
type Subgraph struct {
	Title    string    `json:"title"`
	Directed bool      `json:"directed"`
	Nodes    []VisNode `json:"nodes"`
	Edges    []VisEdge `json:"edges"`

	nodeIndex map[string]bool
	edgeIndex map[string]bool
}

func NewSubgraph(title string, directed bool) *Subgraph {
	return &Subgraph{
		Title:     title,
		Directed:  directed,
		Nodes:     []VisNode{},
		Edges:     []VisEdge{},
		nodeIndex: map[string]bool{},
		edgeIndex: map[string]bool{},
	}
}

// AddNode ignores nodes whose id was already added.
func (g *Subgraph) AddNode(n VisNode) {
	if g.nodeIndex[n.ID] {
		return
	}
	g.nodeIndex[n.ID] = true
	g.Nodes = append(g.Nodes, n)
}

func (g *Subgraph) AddEdge(e VisEdge) {
	key := e.From + "\x00" + e.To + "\x00" + e.Label
	if g.edgeIndex[key] {
		return
	}
	g.edgeIndex[key] = true
	g.Edges = append(g.Edges, e)
}

func (g *Subgraph) Empty() bool {
	return len(g.Nodes) == 0
}

// SubgraphFromRows collects every node, relationship and path found in the
// rows. Rows without graph values are drawn one node per row.
func SubgraphFromRows(title string, rows []map[string]any) *Subgraph {
	g := NewSubgraph(title, true)
	for _, row := range rows {
		for _, v := range row {
			g.collect(v)
		}
	}
	if !g.Empty() {
		// Relationships returned without their end nodes would dangle.
		kept := g.Edges[:0]
		for _, e := range g.Edges {
			if g.nodeIndex[e.From] && g.nodeIndex[e.To] {
				kept = append(kept, e)
			}
		}
		g.Edges = kept
		return g
	}

	g.Directed = false
	for i, row := range rows {
		if i == maxTabularNodes {
			break
		}
		g.AddNode(VisNode{ID: fmt.Sprintf("row-%d", i), Label: truncate(rowCaption(row), 40), Title: propsTitle(row)})
	}
	return g
}

func (g *Subgraph) collect(v any) {
	switch x := v.(type) {
	case neo4j.Node:
		g.addNode(x)
	case neo4j.Relationship:
		g.addRelationship(x)
	case neo4j.Path:
		for _, n := range x.Nodes {
			g.addNode(n)
		}
		for _, r := range x.Relationships {
			g.addRelationship(r)
		}
	case []any:
		for _, e := range x {
			g.collect(e)
		}
	}
}

func (g *Subgraph) addNode(n neo4j.Node) {
	label := ""
	if len(n.Labels) > 0 {
		label = mostSpecific(n.Labels)
	}
	g.AddNode(VisNode{
		ID:    n.ElementId,
		Label: truncate(nodeCaption(n), 30),
		Title: label + "\n" + propsTitle(n.Props),
		Group: label,
		Color: nodeColor(label),
		Size:  nodeSize(label),
	})
}

func (g *Subgraph) addRelationship(r neo4j.Relationship) {
	g.AddEdge(VisEdge{
		From:  r.StartElementId,
		To:    r.EndElementId,
		Label: r.Type,
		Title: propsTitle(r.Props),
		Color: edgeColor(r.Type),
	})
}

// mostSpecific drops the abstract parent labels.
func mostSpecific(labels []string) string {
	for _, l := range labels {
		switch l {
		case "Person", "OrganizationalUnit", "Role", "Competency", "TalentProcess", "CompensationElement":
			continue
		}
		return l
	}
	return labels[len(labels)-1]
}

func nodeCaption(n neo4j.Node) string {
	p := n.Props
	if first, ok := p["first_name"].(string); ok {
		last, _ := p["last_name"].(string)
		return strings.TrimSpace(first + " " + last)
	}
	for _, k := range []string{"name", "title", "channel_name", "event_type"} {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	for k, v := range p {
		if strings.HasSuffix(k, "_id") {
			return fmt.Sprint(v)
		}
	}
	return n.ElementId
}

func propsTitle(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, Plain(props[k])))
	}
	return strings.Join(lines, "\n")
}

func rowCaption(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if row[k] == nil {
			continue
		}
		parts = append(parts, truncate(fmt.Sprint(Plain(row[k])), 20))
	}
	return strings.Join(parts, " | ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Collect runs a read-only query and collects its graph values.
func Collect(ctx context.Context, runner Runner, cypher, title string) (*Subgraph, error) {
	if err := CheckReadOnly(cypher); err != nil {
		return nil, err
	}
	rows, err := runner.Read(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	return SubgraphFromRows(title, rows), nil
}
