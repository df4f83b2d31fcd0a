package output

import (
	"fmt"
	"math"
	"strings"

	"archmap/internal/model"
)

type DOTGenerator struct {
	snapshot *model.Snapshot
}

func NewDOTGenerator(snapshot *model.Snapshot) *DOTGenerator {
	return &DOTGenerator{snapshot: snapshot}
}

func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph architecture {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10, fontcolor=\"white\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.5;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	nodes := displayOrder(d.snapshot)
	aliases := makeAliases(nodes)
	inCycle := cycleMembers(d.snapshot.CircularDependencies)

	for _, node := range nodes {
		label := moduleLabel(node)
		if inCycle[node.ID] {
			buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", fillcolor=\"%s\", color=\"red\", penwidth=2.0];\n",
				aliases[node.ID], label, node.Kind.Color()))
		} else {
			buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", fillcolor=\"%s\"];\n",
				aliases[node.ID], label, node.Kind.Color()))
		}
	}
	buf.WriteString("\n")

	for _, edge := range sortedEdges(d.snapshot, aliases) {
		width := math.Max(edge.Strength*3.0, 1.0)
		if edge.IsCircular {
			buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n",
				aliases[edge.From], aliases[edge.To]))
		} else {
			buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"#6c757d\", penwidth=%.1f];\n",
				aliases[edge.From], aliases[edge.To], width))
		}
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_module [label=\"Module\\n(category)\\nfuncs, lines\", fillcolor=\"#95a5a6\"];\n")
	buf.WriteString("    legend_cycle [label=\"Circular Dependency\", fillcolor=\"#95a5a6\", color=\"red\", penwidth=2.0];\n")
	buf.WriteString("    legend_edge [label=\"Edge width tracks strength\", shape=plaintext, fontcolor=\"#6c757d\"];\n")
	buf.WriteString("  }\n")

	buf.WriteString("}\n")

	return buf.String(), nil
}
