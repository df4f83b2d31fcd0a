package graph

import "archmap/internal/model"

// DetectCycles finds dependency cycles with a depth-first search over the
// edge list. Each detected cycle is reported as the path slice from the
// first occurrence of the re-entered node; the enumeration is sound but
// not minimal, and the starting node of a cycle depends on traversal
// order.
func DetectCycles(edges []model.Edge) [][]string {
	adjacency := make(map[string][]string)
	for _, edge := range edges {
		adjacency[edge.From] = append(adjacency[edge.From], edge.To)
	}

	cycles := [][]string{}
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	for node := range adjacency {
		if !visited[node] {
			findCycles(node, adjacency, visited, onStack, []string{}, &cycles)
		}
	}

	return cycles
}

func findCycles(curr string, adjacency map[string][]string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range adjacency[curr] {
		if onStack[next] {
			cycleStart := -1
			for i, id := range path {
				if id == next {
					cycleStart = i
					break
				}
			}
			if cycleStart != -1 {
				cycle := make([]string, len(path)-cycleStart)
				copy(cycle, path[cycleStart:])
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			findCycles(next, adjacency, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// MarkCircular flags every edge whose endpoints appear as an adjacent
// pair inside a cycle path, in either direction. Pairs are taken with a
// sliding window and do not wrap around, so the closing edge of a cycle
// of length three or more stays unflagged while both edges of a two-node
// cycle are caught by the reversed-pair check.
func MarkCircular(edges []model.Edge, cycles [][]string) {
	for i := range edges {
		edges[i].IsCircular = onCyclePath(edges[i], cycles)
	}
}

func onCyclePath(edge model.Edge, cycles [][]string) bool {
	for _, cycle := range cycles {
		for i := 0; i+1 < len(cycle); i++ {
			if (cycle[i] == edge.From && cycle[i+1] == edge.To) ||
				(cycle[i] == edge.To && cycle[i+1] == edge.From) {
				return true
			}
		}
	}
	return false
}
