package output

import (
	"fmt"
	"strings"

	"archmap/internal/model"
)

type PlantUMLGenerator struct {
	snapshot *model.Snapshot
}

func NewPlantUMLGenerator(snapshot *model.Snapshot) *PlantUMLGenerator {
	return &PlantUMLGenerator{snapshot: snapshot}
}

func (p *PlantUMLGenerator) Generate() (string, error) {
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("skinparam componentStyle rectangle\n")
	b.WriteString("skinparam linetype ortho\n")
	b.WriteString("skinparam nodesep 70\n")
	b.WriteString("skinparam ranksep 90\n")
	b.WriteString("left to right direction\n\n")

	nodes := displayOrder(p.snapshot)
	aliases := makeAliases(nodes)
	inCycle := cycleMembers(p.snapshot.CircularDependencies)

	for _, node := range nodes {
		b.WriteString(fmt.Sprintf("component \"%s\" as %s %s\n",
			moduleLabel(node), aliases[node.ID], node.Kind.Color()))
	}

	b.WriteString("\n")
	for _, edge := range sortedEdges(p.snapshot, aliases) {
		if edge.IsCircular {
			b.WriteString(fmt.Sprintf("%s -[#red,thickness=2]-> %s : CYCLE\n",
				aliases[edge.From], aliases[edge.To]))
		} else {
			b.WriteString(fmt.Sprintf("%s --> %s\n", aliases[edge.From], aliases[edge.To]))
		}
	}

	b.WriteString("\nlegend right\n")
	b.WriteString("|= Item |= Meaning |\n")
	b.WriteString("|Node line 1|Module name|\n")
	b.WriteString("|Node line 2|Category|\n")
	b.WriteString("|Node line 3|Function count and lines of code|\n")
	b.WriteString("|Node color|Category color|\n")
	if len(inCycle) > 0 {
		b.WriteString("|<color:#cc0000>Red edge</color>|Circular dependency edge|\n")
	}
	b.WriteString("endlegend\n")

	b.WriteString("\n@enduml\n")
	return b.String(), nil
}
