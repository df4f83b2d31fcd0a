package model

import "time"

// NodeMetrics aggregates everything measured for a single module.
type NodeMetrics struct {
	LinesOfCode          int        `json:"lines_of_code"`
	ComplexityScore      float64    `json:"complexity_score"`
	TestCoverage         float64    `json:"test_coverage"`
	FunctionCount        int        `json:"function_count"`
	StructCount          int        `json:"struct_count"`
	EnumCount            int        `json:"enum_count"`
	TraitCount           int        `json:"trait_count"`
	LastBuildTime        *time.Time `json:"last_build_time"`
	ErrorCount           int        `json:"error_count"`
	WarningCount         int        `json:"warning_count"`
	DependencyCount      int        `json:"dependency_count"`
	DependentCount       int        `json:"dependent_count"`
	CyclomaticComplexity float64    `json:"cyclomatic_complexity"`
	CognitiveComplexity  float64    `json:"cognitive_complexity"`
}

// GraphMetrics aggregates whole-graph statistics over all nodes and edges.
// DependencyDensity, ModularityScore and MaintainabilityIndex are
// normalized to [0, 1].
type GraphMetrics struct {
	TotalFunctions       int     `json:"total_functions"`
	TotalStructs         int     `json:"total_structs"`
	TotalEnums           int     `json:"total_enums"`
	TotalTraits          int     `json:"total_traits"`
	MaxComplexity        float64 `json:"max_complexity"`
	MinComplexity        float64 `json:"min_complexity"`
	DependencyDensity    float64 `json:"dependency_density"`
	ModularityScore      float64 `json:"modularity_score"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
}
