package model

import "time"

// NodeStatus reflects the lifecycle state of a module.
type NodeStatus string

const (
	StatusActive       NodeStatus = "Active"
	StatusInactive     NodeStatus = "Inactive"
	StatusError        NodeStatus = "Error"
	StatusBuilding     NodeStatus = "Building"
	StatusDeprecated   NodeStatus = "Deprecated"
	StatusExperimental NodeStatus = "Experimental"
)

// Position is an optional layout hint for renderers. The scanner never
// assigns one; it survives round-trips for clients that do.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Node is one module of the analyzed tree: a single source file together
// with everything extracted from it. Dependencies holds raw dependency
// names as written in the source; Dependents holds node IDs and is filled
// during graph assembly.
type Node struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Kind         Kind           `json:"module_type"`
	FilePath     string         `json:"file_path"`
	Dependencies []string       `json:"dependencies"`
	Dependents   []string       `json:"dependents"`
	Status       NodeStatus     `json:"status"`
	Metrics      NodeMetrics    `json:"metrics"`
	LastModified time.Time      `json:"last_modified"`
	Functions    []FunctionInfo `json:"functions"`
	Structs      []StructInfo   `json:"structs"`
	Enums        []EnumInfo     `json:"enums"`
	Traits       []TraitInfo    `json:"traits"`
	Position     *Position      `json:"position"`
}

// FunctionInfo describes one function signature found in a module.
type FunctionInfo struct {
	Name           string   `json:"name"`
	IsPublic       bool     `json:"is_public"`
	IsAsync        bool     `json:"is_async"`
	ParameterCount int      `json:"parameter_count"`
	Complexity     float64  `json:"complexity"`
	LinesOfCode    int      `json:"lines_of_code"`
	Documentation  *string  `json:"documentation"`
	Attributes     []string `json:"attributes"`
}

// StructInfo describes one struct declaration found in a module.
type StructInfo struct {
	Name          string   `json:"name"`
	IsPublic      bool     `json:"is_public"`
	FieldCount    int      `json:"field_count"`
	Derives       []string `json:"derives"`
	Documentation *string  `json:"documentation"`
	Attributes    []string `json:"attributes"`
	Generics      []string `json:"generics"`
}

// EnumInfo describes one enum declaration found in a module.
type EnumInfo struct {
	Name          string   `json:"name"`
	IsPublic      bool     `json:"is_public"`
	VariantCount  int      `json:"variant_count"`
	Derives       []string `json:"derives"`
	Documentation *string  `json:"documentation"`
	Attributes    []string `json:"attributes"`
	Generics      []string `json:"generics"`
}

// TraitInfo describes one trait declaration found in a module.
type TraitInfo struct {
	Name          string   `json:"name"`
	IsPublic      bool     `json:"is_public"`
	MethodCount   int      `json:"method_count"`
	Documentation *string  `json:"documentation"`
	Attributes    []string `json:"attributes"`
	Generics      []string `json:"generics"`
	Supertraits   []string `json:"supertraits"`
}
