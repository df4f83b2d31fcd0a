package scan

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"archmap/internal/metrics"
	"archmap/internal/model"
)

// The extraction patterns are deliberately shallow text matches, not a
// parse. Matches inside strings, comments or macro bodies count like any
// other; that trade keeps the scanner fast and dependency-free.
var (
	modNameRe = regexp.MustCompile(`pub\s+mod\s+(\w+)|mod\s+(\w+)`)
	useRe     = regexp.MustCompile(`use\s+crate::([^;]+)`)
	modDeclRe = regexp.MustCompile(`mod\s+(\w+)`)
	fnRe      = regexp.MustCompile(`(?:pub\s+)?(?:async\s+)?fn\s+(\w+)\s*\([^)]*\)`)
	structRe  = regexp.MustCompile(`(?:pub\s+)?struct\s+(\w+)`)
	enumRe    = regexp.MustCompile(`(?:pub\s+)?enum\s+(\w+)`)
	traitRe   = regexp.MustCompile(`(?:pub\s+)?trait\s+(\w+)`)
)

// ExtractFile reads one selected file and turns it into a node. rel is the
// slash-separated path relative to root, recorded verbatim as the node's
// FilePath. Any failure (unreadable file, invalid UTF-8, missing metadata)
// drops the file from the scan; the caller decides how loudly.
func ExtractFile(root, rel string) (*model.Node, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("reading %s: not valid UTF-8", rel)
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %s: %w", rel, err)
	}
	content := string(data)

	return &model.Node{
		ID:           uuid.NewString(),
		Name:         extractModuleName(rel, content),
		Kind:         inferKind(rel, content),
		FilePath:     rel,
		Dependencies: extractDependencies(content),
		Dependents:   []string{},
		Status:       model.StatusActive,
		Metrics:      metrics.ForFile(content),
		LastModified: info.ModTime().UTC(),
		Functions:    extractFunctions(content),
		Structs:      extractStructs(content),
		Enums:        extractEnums(content),
		Traits:       extractTraits(content),
	}, nil
}

// extractModuleName prefers the first mod declaration in the content and
// falls back to the file stem.
func extractModuleName(rel, content string) string {
	if m := modNameRe.FindStringSubmatch(content); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if stem := strings.TrimSuffix(path.Base(rel), ".rs"); stem != "" {
		return stem
	}
	return "unknown"
}

// inferKind classifies a module, path tokens first and content tokens
// second. Path tokens match anywhere in the lowercased relative path, so
// a directory name is enough to classify everything under it.
func inferKind(rel, content string) model.Kind {
	p := strings.ToLower(rel)
	switch {
	case strings.Contains(p, "test"):
		return model.KindTesting
	case strings.Contains(p, "example"):
		return model.KindUtilities
	case strings.Contains(p, "bench"):
		return model.KindPerformance
	case strings.Contains(p, "config"), strings.Contains(p, "settings"):
		return model.KindConfiguration
	case strings.Contains(p, "api"), strings.Contains(p, "routes"):
		return model.KindAPI
	case strings.Contains(p, "db"), strings.Contains(p, "database"):
		return model.KindDatabase
	case strings.Contains(p, "net"):
		return model.KindNetwork
	case strings.Contains(p, "auth"), strings.Contains(p, "security"):
		return model.KindSecurity
	case strings.Contains(p, "log"):
		return model.KindLogging
	case strings.Contains(p, "monitor"), strings.Contains(p, "metrics"):
		return model.KindMonitoring
	}

	switch {
	case strings.Contains(content, "async") && strings.Contains(content, "tokio"):
		return model.KindExecution
	case strings.Contains(content, "serde") && strings.Contains(content, "Serialize"):
		return model.KindDataProcessing
	case strings.Contains(content, "trait") && strings.Contains(content, "async"):
		return model.KindIntegration
	}
	return model.KindCore
}

// extractDependencies collects crate-relative use paths and mod
// declarations, in that order. Captures are kept raw (a grouped use like
// "a::{b, c}" stays one entry) and duplicates are not collapsed, so a
// name pulled in twice weighs twice during assembly.
func extractDependencies(content string) []string {
	deps := []string{}
	for _, m := range useRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, m[1])
	}
	for _, m := range modDeclRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, m[1])
	}
	return deps
}

func extractFunctions(content string) []model.FunctionInfo {
	functions := []model.FunctionInfo{}
	for _, m := range fnRe.FindAllStringSubmatch(content, -1) {
		name := m[1]

		// Parameters come from the first signature carrying this name;
		// overloads across impl blocks all report that one's count.
		paramRe, err := regexp.Compile(`fn\s+` + regexp.QuoteMeta(name) + `\s*\(([^)]*)\)`)
		if err != nil {
			continue
		}
		paramCount := 0
		if pm := paramRe.FindStringSubmatch(content); pm != nil {
			paramCount = len(strings.Split(pm[1], ","))
		}

		functions = append(functions, model.FunctionInfo{
			Name:           name,
			IsPublic:       strings.Contains(content, "pub fn "+name),
			IsAsync:        strings.Contains(content, "async fn "+name),
			ParameterCount: paramCount,
			Complexity:     1.0,
			LinesOfCode:    1,
			Attributes:     []string{},
		})
	}
	return functions
}

func extractStructs(content string) []model.StructInfo {
	structs := []model.StructInfo{}
	for _, m := range structRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		structs = append(structs, model.StructInfo{
			Name:       name,
			IsPublic:   strings.Contains(content, "pub struct "+name),
			FieldCount: strings.Count(content, "struct "+name),
			Derives:    []string{},
			Attributes: []string{},
			Generics:   []string{},
		})
	}
	return structs
}

func extractEnums(content string) []model.EnumInfo {
	enums := []model.EnumInfo{}
	for _, m := range enumRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		enums = append(enums, model.EnumInfo{
			Name:         name,
			IsPublic:     strings.Contains(content, "pub enum "+name),
			VariantCount: strings.Count(content, "enum "+name),
			Derives:      []string{},
			Attributes:   []string{},
			Generics:     []string{},
		})
	}
	return enums
}

func extractTraits(content string) []model.TraitInfo {
	traits := []model.TraitInfo{}
	for _, m := range traitRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		traits = append(traits, model.TraitInfo{
			Name:        name,
			IsPublic:    strings.Contains(content, "pub trait "+name),
			MethodCount: strings.Count(content, "trait "+name),
			Attributes:  []string{},
			Generics:    []string{},
			Supertraits: []string{},
		})
	}
	return traits
}
