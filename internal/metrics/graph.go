package metrics

import (
	"math"

	"archmap/internal/model"
)

// ForGraph aggregates whole-graph metrics over the assembled node set and
// edge list. Density, modularity and maintainability stay within [0, 1];
// max/min complexity collapse to 0 when the graph is empty.
func ForGraph(nodes map[string]*model.Node, edges []model.Edge) model.GraphMetrics {
	out := model.GraphMetrics{
		MaxComplexity: 0,
		MinComplexity: math.Inf(1),
	}

	for _, node := range nodes {
		out.TotalFunctions += node.Metrics.FunctionCount
		out.TotalStructs += node.Metrics.StructCount
		out.TotalEnums += node.Metrics.EnumCount
		out.TotalTraits += node.Metrics.TraitCount
		out.MaxComplexity = math.Max(out.MaxComplexity, node.Metrics.ComplexityScore)
		out.MinComplexity = math.Min(out.MinComplexity, node.Metrics.ComplexityScore)
	}

	if math.IsInf(out.MaxComplexity, 0) || math.IsNaN(out.MaxComplexity) {
		out.MaxComplexity = 0
	}
	if math.IsInf(out.MinComplexity, 0) || math.IsNaN(out.MinComplexity) {
		out.MinComplexity = 0
	}

	out.DependencyDensity = dependencyDensity(len(nodes), len(edges))
	out.ModularityScore = modularityScore(nodes)
	out.MaintainabilityIndex = maintainabilityIndex(nodes)
	return out
}

// dependencyDensity is the edge count over the maximum possible directed
// edge count N*(N-1). Graphs with one node or none have density 0.
func dependencyDensity(nodeCount, edgeCount int) float64 {
	if nodeCount <= 1 {
		return 0
	}
	return float64(edgeCount) / float64(nodeCount*(nodeCount-1))
}

// modularityScore is the Shannon entropy of the kind distribution,
// normalized by log2 of the number of distinct kinds (floored at 1 so a
// single-kind graph scores 0 instead of dividing by zero).
func modularityScore(nodes map[string]*model.Node) float64 {
	if len(nodes) == 0 {
		return 0
	}

	kindCounts := make(map[model.Kind]int)
	for _, node := range nodes {
		kindCounts[node.Kind]++
	}

	total := float64(len(nodes))
	entropy := 0.0
	for _, count := range kindCounts {
		p := float64(count) / total
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}

	return entropy / math.Max(1, math.Log2(float64(len(kindCounts))))
}

// maintainabilityIndex averages a size factor (1000 lines before the
// score starts dropping) and a complexity factor (average complexity 10).
// Both factors are clamped to [0, 1], so the mean is as well.
func maintainabilityIndex(nodes map[string]*model.Node) float64 {
	if len(nodes) == 0 {
		return 0
	}

	var totalLines, totalComplexity float64
	for _, node := range nodes {
		totalLines += float64(node.Metrics.LinesOfCode)
		totalComplexity += node.Metrics.ComplexityScore
	}
	avgComplexity := totalComplexity / float64(len(nodes))

	linesFactor := math.Min(1, 1000/math.Max(1, totalLines))
	complexityFactor := math.Min(1, 10/math.Max(1, avgComplexity))
	return (linesFactor + complexityFactor) / 2
}
