package ontology

import (
	"fmt"
)

// UnknownEntityError is returned by Describe for names that are neither a
// node label nor a relationship type.
type UnknownEntityError struct {
	Entity         string   `json:"-"`
	AvailableNodes []string `json:"available_nodes"`
	AvailableEdges []string `json:"available_edges"`
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity type: %s", e.Entity)
}

type nodeSummary struct {
	IDProperty string   `json:"id_property"`
	Properties []string `json:"properties"`
}

type edgeSummary struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Properties []string `json:"properties"`
}

type nodeDetail struct {
	Type               string   `json:"type"`
	Name               string   `json:"name"`
	Labels             []string `json:"labels"`
	IDProperty         string   `json:"id_property"`
	RequiredProperties []string `json:"required_properties"`
	OptionalProperties []string `json:"optional_properties"`
	Indexes            []string `json:"indexes"`
}

type edgeDetail struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	SourceLabel string   `json:"source_label"`
	TargetLabel string   `json:"target_label"`
	Properties  []string `json:"properties"`
}

// Describe summarises the ontology for entity, which is "all", "nodes",
// "edges", a node label or a relationship type. The result is meant to be
// JSON encoded.
func Describe(entity string) (any, error) {
	switch entity {
	case "", "all":
		nodeTypes := map[string]nodeSummary{}
		for _, n := range nodes {
			nodeTypes[n.Label()] = nodeSummary{IDProperty: n.IDProperty, Properties: nonNil(n.Properties())}
		}
		return map[string]any{"node_types": nodeTypes, "relationship_types": edgeSummaries()}, nil
	case "nodes":
		nodeTypes := map[string]NodeSchema{}
		for _, n := range nodes {
			n.Optional = nonNil(n.Optional)
			nodeTypes[n.Label()] = n
		}
		return map[string]any{"node_types": nodeTypes}, nil
	case "edges":
		return map[string]any{"relationship_types": edgeSummaries()}, nil
	}

	if n, ok := NodeByLabel(entity); ok {
		return nodeDetail{
			Type:               "node",
			Name:               entity,
			Labels:             n.Labels,
			IDProperty:         n.IDProperty,
			RequiredProperties: n.Required,
			OptionalProperties: nonNil(n.Optional),
			Indexes:            n.Indexes,
		}, nil
	}
	if e, ok := EdgeByType(entity); ok {
		return edgeDetail{
			Type:        "relationship",
			Name:        entity,
			SourceLabel: e.SourceLabel,
			TargetLabel: e.TargetLabel,
			Properties:  nonNil(e.Properties),
		}, nil
	}

	unknown := &UnknownEntityError{Entity: entity}
	for _, n := range nodes {
		unknown.AvailableNodes = append(unknown.AvailableNodes, n.Label())
	}
	for _, e := range edges {
		unknown.AvailableEdges = append(unknown.AvailableEdges, e.Type)
	}
	return nil, unknown
}

func edgeSummaries() map[string]edgeSummary {
	out := map[string]edgeSummary{}
	for _, e := range edges {
		out[e.Type] = edgeSummary{Source: e.SourceLabel, Target: e.TargetLabel, Properties: nonNil(e.Properties)}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
