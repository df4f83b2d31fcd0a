package model

// DependencyType classifies the relationship an edge represents.
type DependencyType string

const (
	DepUses       DependencyType = "Uses"
	DepImplements DependencyType = "Implements"
	DepExtends    DependencyType = "Extends"
	DepImports    DependencyType = "Imports"
	DepDependsOn  DependencyType = "DependsOn"
	DepCalls      DependencyType = "Calls"
	DepReferences DependencyType = "References"
	DepContains   DependencyType = "Contains"
)

// Edge is one directed dependency between two nodes, identified by node ID.
// Strength grows with the dependency count of the source and the roles of
// both endpoints, capped at 1.0. IsCircular is set after cycle detection
// for edges that sit on a detected cycle path.
type Edge struct {
	From         string         `json:"from"`
	To           string         `json:"to"`
	Relationship DependencyType `json:"relationship"`
	Strength     float64        `json:"strength"`
	IsCircular   bool           `json:"is_circular"`
}
