package graph

import (
	"math"
	"sort"

	"archmap/internal/model"
)

// Assemble resolves each node's raw dependency names into directed edges
// and fills the graph-dependent node fields: dependents, dependency count
// and dependent count. Names that match no node produce no edge; duplicate
// names produce duplicate edges. When several nodes share a name the
// target choice follows map iteration order and is unspecified.
func Assemble(nodes map[string]*model.Node) []model.Edge {
	edges := []model.Edge{}
	for sourceID, source := range nodes {
		for _, depName := range source.Dependencies {
			target := findByName(nodes, depName)
			if target == nil {
				continue
			}
			edges = append(edges, model.Edge{
				From:         sourceID,
				To:           target.ID,
				Relationship: relationship(source, target),
				Strength:     strength(source, target),
			})
		}
	}

	fillDegrees(nodes, edges)
	return edges
}

func findByName(nodes map[string]*model.Node, name string) *model.Node {
	for _, node := range nodes {
		if node.Name == name {
			return node
		}
	}
	return nil
}

// relationship classifies an edge by the kinds of its endpoints. A few
// role pairs read as active use; everything else is a plain dependency.
func relationship(source, target *model.Node) model.DependencyType {
	switch {
	case source.Kind == model.KindTesting:
		return model.DepUses
	case source.Kind == model.KindAPI && target.Kind == model.KindCore:
		return model.DepUses
	case source.Kind == model.KindCore && target.Kind == model.KindDataProcessing:
		return model.DepUses
	case source.Kind == model.KindExecution && target.Kind == model.KindCore:
		return model.DepUses
	case source.Kind == model.KindIntegration && target.Kind == model.KindAPI:
		return model.DepUses
	default:
		return model.DepDependsOn
	}
}

// strength starts from a base of 1.0, grows with the source's dependency
// count and the roles of both endpoints, and is capped at 1.0. With the
// base equal to the cap every edge saturates; the score is kept for wire
// compatibility.
func strength(source, target *model.Node) float64 {
	s := 1.0
	s += float64(len(source.Dependencies)) * 0.1
	if target.Kind == model.KindCore {
		s += 0.5
	}
	if source.Kind == model.KindAPI {
		s += 0.3
	}
	return math.Min(s, 1.0)
}

func fillDegrees(nodes map[string]*model.Node, edges []model.Edge) {
	outgoing := make(map[string]int)
	incoming := make(map[string]map[string]bool)
	for _, edge := range edges {
		outgoing[edge.From]++
		if incoming[edge.To] == nil {
			incoming[edge.To] = make(map[string]bool)
		}
		incoming[edge.To][edge.From] = true
	}

	for id, node := range nodes {
		node.Metrics.DependencyCount = outgoing[id]

		sources := make([]string, 0, len(incoming[id]))
		for from := range incoming[id] {
			sources = append(sources, from)
		}
		sort.Strings(sources)
		node.Dependents = sources
		node.Metrics.DependentCount = len(sources)
	}
}
