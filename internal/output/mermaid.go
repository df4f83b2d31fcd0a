package output

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"archmap/internal/model"
	"archmap/internal/shared/util"
)

type MermaidGenerator struct {
	snapshot *model.Snapshot
}

func NewMermaidGenerator(snapshot *model.Snapshot) *MermaidGenerator {
	return &MermaidGenerator{snapshot: snapshot}
}

func (m *MermaidGenerator) Generate() (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 70, 'rankSpacing': 100, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	nodes := displayOrder(m.snapshot)
	aliases := makeAliases(nodes)
	inCycle := cycleMembers(m.snapshot.CircularDependencies)

	for _, node := range nodes {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", aliases[node.ID], moduleLabel(node)))
	}

	b.WriteString("\n")
	for _, class := range kindClasses(nodes, aliases) {
		b.WriteString(fmt.Sprintf("  classDef %s fill:%s,color:#ffffff;\n", class.name, class.color))
		b.WriteString(fmt.Sprintf("  class %s %s;\n", strings.Join(class.aliases, ","), class.name))
	}
	if len(inCycle) > 0 {
		cycleAliases := make([]string, 0, len(inCycle))
		for _, node := range nodes {
			if inCycle[node.ID] {
				cycleAliases = append(cycleAliases, aliases[node.ID])
			}
		}
		b.WriteString("  classDef cycleNode stroke:#cc0000,stroke-width:2px;\n")
		b.WriteString(fmt.Sprintf("  class %s cycleNode;\n", strings.Join(cycleAliases, ",")))
	}

	b.WriteString("\n")
	linkIndex := 0
	cycleLinkIndexes := make([]int, 0)
	for _, edge := range sortedEdges(m.snapshot, aliases) {
		if edge.IsCircular {
			b.WriteString(fmt.Sprintf("  %s -->|CYCLE| %s\n", aliases[edge.From], aliases[edge.To]))
			cycleLinkIndexes = append(cycleLinkIndexes, linkIndex)
		} else {
			b.WriteString(fmt.Sprintf("  %s --> %s\n", aliases[edge.From], aliases[edge.To]))
		}
		linkIndex++
	}
	if len(cycleLinkIndexes) > 0 {
		b.WriteString(fmt.Sprintf("\n  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(cycleLinkIndexes)))
	}

	b.WriteString("\n")
	b.WriteString("  subgraph legend_info[\"Legend\"]\n")
	b.WriteString("    legend_nodes[\"Node line 1: module\\nline 2: category\\nline 3: funcs, lines\"]\n")
	b.WriteString("    legend_edges[\"CYCLE marks an edge that closes a circular dependency\"]\n")
	b.WriteString("  end\n")
	b.WriteString("  classDef legendNode fill:#fff8dc,stroke:#b8a24c,stroke-width:1px;\n")
	b.WriteString("  class legend_nodes,legend_edges legendNode;\n")

	return b.String(), nil
}

func moduleLabel(node *model.Node) string {
	return fmt.Sprintf("%s\\n(%s)\\n%d funcs, %d lines",
		escapeLabel(node.Name),
		node.Kind.DisplayName(),
		node.Metrics.FunctionCount,
		node.Metrics.LinesOfCode)
}

type kindClass struct {
	name    string
	color   string
	aliases []string
}

// kindClasses groups node aliases by module category, ordered by class
// name so the rendered style block is stable across runs.
func kindClasses(nodes []*model.Node, aliases map[string]string) []kindClass {
	byName := make(map[string]*kindClass)
	for _, node := range nodes {
		name := "kind_" + sanitizeName(node.Kind.String())
		class, ok := byName[name]
		if !ok {
			class = &kindClass{name: name, color: node.Kind.Color()}
			byName[name] = class
		}
		class.aliases = append(class.aliases, aliases[node.ID])
	}

	out := make([]kindClass, 0, len(byName))
	for _, name := range util.SortedStringKeys(byName) {
		out = append(out, *byName[name])
	}
	return out
}

// displayOrder returns the snapshot's nodes sorted by name, then file
// path, so every generator emits them in the same order.
func displayOrder(snapshot *model.Snapshot) []*model.Node {
	nodes := make([]*model.Node, 0, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].FilePath < nodes[j].FilePath
	})
	return nodes
}

// sortedEdges returns a copy of the snapshot's edges ordered by the
// aliases of their endpoints.
func sortedEdges(snapshot *model.Snapshot, aliases map[string]string) []model.Edge {
	edges := append([]model.Edge(nil), snapshot.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if aliases[edges[i].From] != aliases[edges[j].From] {
			return aliases[edges[i].From] < aliases[edges[j].From]
		}
		return aliases[edges[i].To] < aliases[edges[j].To]
	})
	return edges
}

func cycleMembers(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for _, id := range cycle {
			out[id] = true
		}
	}
	return out
}

func sanitizeName(name string) string {
	if name == "" {
		return "m"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	first := rune(out[0])
	if unicode.IsDigit(first) {
		return "m_" + out
	}
	return out
}

// makeAliases assigns each node a unique diagram identifier derived from
// its module name. Name collisions get a numeric suffix.
func makeAliases(nodes []*model.Node) map[string]string {
	aliases := make(map[string]string, len(nodes))
	used := make(map[string]int, len(nodes))
	for _, node := range nodes {
		base := sanitizeName(node.Name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			aliases[node.ID] = base
			continue
		}
		aliases[node.ID] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return aliases
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func joinInts(v []int) string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}
