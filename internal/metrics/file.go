package metrics

import (
	"strings"

	"archmap/internal/model"
)

// ForFile computes the per-module metrics for one file's content. All
// measurements are text heuristics: substring counts and line scans, not
// syntax-aware analysis. Graph-dependent fields (dependency and dependent
// counts) are left zero and filled during assembly.
func ForFile(content string) model.NodeMetrics {
	return model.NodeMetrics{
		LinesOfCode:          countLines(content),
		ComplexityScore:      complexityScore(content),
		FunctionCount:        strings.Count(content, "fn "),
		StructCount:          strings.Count(content, "struct "),
		EnumCount:            strings.Count(content, "enum "),
		TraitCount:           strings.Count(content, "trait "),
		ErrorCount:           countErrors(content),
		WarningCount:         countWarnings(content),
		CyclomaticComplexity: cyclomaticComplexity(content),
		CognitiveComplexity:  cognitiveComplexity(content),
	}
}

// countLines counts non-blank lines that are not // or /* comment lines.
func countLines(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			continue
		}
		count++
	}
	return count
}

// complexityScore weights control-flow keywords, nesting markers and
// error-handling idioms. Keywords carry a trailing space so identifiers
// merely containing them do not match.
func complexityScore(content string) float64 {
	score := 1.0
	score += float64(strings.Count(content, "if ")) * 0.5
	score += float64(strings.Count(content, "match ")) * 0.8
	score += float64(strings.Count(content, "for ")) * 0.6
	score += float64(strings.Count(content, "while ")) * 0.7
	score += float64(strings.Count(content, "loop ")) * 0.8
	score += float64(strings.Count(content, "{{")) * 0.1
	if strings.Contains(content, "async") {
		score += 0.5
	}
	score += float64(strings.Count(content, "?.")) * 0.2
	score += float64(strings.Count(content, "unwrap()")) * 0.1
	score += float64(strings.Count(content, "expect(")) * 0.1
	return score
}

// cyclomaticComplexity counts decision points, unweighted, on top of a
// base of 1.
func cyclomaticComplexity(content string) float64 {
	complexity := 1.0
	for _, marker := range []string{"if ", "match ", "for ", "while ", "loop ", "&&", "||"} {
		complexity += float64(strings.Count(content, marker))
	}
	return complexity
}

// cognitiveComplexity runs a line scan with a nesting counter. Braces on
// the same line as the control keyword raise the nesting level before the
// keyword is scored, so a top-level "if x {" scores 2. The level never
// drops below zero.
func cognitiveComplexity(content string) float64 {
	var score float64
	nesting := 0

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.Contains(trimmed, "{") {
			nesting++
		}
		if strings.Contains(trimmed, "}") && nesting > 0 {
			nesting--
		}

		switch {
		case strings.HasPrefix(trimmed, "if "):
			score += 1 + float64(nesting)
		case strings.HasPrefix(trimmed, "match "):
			score += 2 + float64(nesting)
		case strings.HasPrefix(trimmed, "for "), strings.HasPrefix(trimmed, "while "):
			score += 1 + float64(nesting)
		case strings.HasPrefix(trimmed, "loop "):
			score += 1.5 + float64(nesting)
		}
	}
	return score
}

func countErrors(content string) int {
	return strings.Count(content, "panic!") + strings.Count(content, "unwrap()")
}

func countWarnings(content string) int {
	return strings.Count(content, "#[warn(")
}
