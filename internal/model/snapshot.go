package model

import "time"

// Snapshot is the complete result of one scan: the assembled dependency
// graph plus aggregate statistics. A Snapshot is read-only once the scan
// that produced it returns; concurrent readers may share it freely.
type Snapshot struct {
	Nodes                map[string]*Node `json:"nodes"`
	Edges                []Edge           `json:"edges"`
	LastScan             time.Time        `json:"last_scan"`
	TotalModules         int              `json:"total_modules"`
	TotalLines           int              `json:"total_lines"`
	AverageComplexity    float64          `json:"average_complexity"`
	CircularDependencies [][]string       `json:"circular_dependencies"`
	Metrics              GraphMetrics     `json:"metrics"`
}

// NodeByName returns some node with the given extracted name, or nil when
// none exists. When several files declare the same module name the choice
// between them is unspecified.
func (s *Snapshot) NodeByName(name string) *Node {
	for _, node := range s.Nodes {
		if node.Name == name {
			return node
		}
	}
	return nil
}
