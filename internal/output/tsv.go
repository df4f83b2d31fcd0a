package output

import (
	"fmt"
	"strings"

	"archmap/internal/model"
)

type TSVGenerator struct {
	snapshot *model.Snapshot
}

func NewTSVGenerator(snapshot *model.Snapshot) *TSVGenerator {
	return &TSVGenerator{snapshot: snapshot}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("From\tTo\tRelationship\tStrength\tCircular\n")

	names := make(map[string]string, len(t.snapshot.Nodes))
	for _, node := range t.snapshot.Nodes {
		names[node.ID] = node.Name
	}

	for _, edge := range sortedEdges(t.snapshot, names) {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%.2f\t%t\n",
			names[edge.From], names[edge.To], edge.Relationship, edge.Strength, edge.IsCircular))
	}

	return buf.String(), nil
}
