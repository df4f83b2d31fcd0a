package scan

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"archmap/internal/config"
	"archmap/internal/graph"
	"archmap/internal/metrics"
	"archmap/internal/model"
	"archmap/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Scanner runs full scans of one source tree. Every call to Scan walks the
// tree from scratch and returns a fresh snapshot; nothing carries over
// between runs, so a snapshot never mixes state from two scans.
type Scanner struct {
	root    string
	cfg     *config.Config
	workers int
}

func NewScanner(root string, cfg *config.Config) *Scanner {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Scanner{root: root, cfg: cfg, workers: workers}
}

// Scan selects, extracts and assembles in order, checking ctx between
// phases. A selection failure aborts the scan; a failing file only drops
// that file and bumps the skip counter.
func (s *Scanner) Scan(ctx context.Context) (*model.Snapshot, error) {
	ctx, span := observability.Tracer.Start(ctx, "scanner.Scan")
	defer span.End()

	start := time.Now()

	selector, err := NewSelector(s.root, s.cfg.Scanning)
	if err != nil {
		return nil, fmt.Errorf("selecting files: %w", err)
	}
	files, err := selector.Select()
	if err != nil {
		return nil, fmt.Errorf("selecting files: %w", err)
	}
	observability.ScanPhaseSeconds.WithLabelValues("select").Observe(time.Since(start).Seconds())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractStart := time.Now()
	nodes, skipped := s.extractAll(files)
	observability.ScanPhaseSeconds.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graphStart := time.Now()
	edges := graph.Assemble(nodes)
	cycles := graph.DetectCycles(edges)
	graph.MarkCircular(edges, cycles)
	observability.ScanPhaseSeconds.WithLabelValues("graph").Observe(time.Since(graphStart).Seconds())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := buildSnapshot(nodes, edges, cycles)
	span.SetAttributes(
		attribute.Int("scan.modules", len(nodes)),
		attribute.Int("scan.edges", len(edges)),
		attribute.Int("scan.cycles", len(cycles)),
	)

	observability.ScansTotal.Inc()
	observability.ScanDurationSeconds.Observe(time.Since(start).Seconds())
	observability.GraphNodes.Set(float64(len(nodes)))
	observability.GraphEdges.Set(float64(len(edges)))
	observability.GraphCircularDependencies.Set(float64(len(cycles)))

	slog.Info("scan completed",
		"duration", time.Since(start),
		"modules", len(nodes),
		"edges", len(edges),
		"cycles", len(cycles),
		"skipped", skipped)
	return snapshot, nil
}

// extractAll fans the selected files out over a bounded worker pool and
// merges results under a single lock.
func (s *Scanner) extractAll(files []string) (map[string]*model.Node, int) {
	nodes := make(map[string]*model.Node, len(files))
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		skipped int
	)
	sem := make(chan struct{}, s.workers)
	for _, rel := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			node, err := ExtractFile(s.root, rel)
			if err != nil {
				slog.Debug("skipping file", "path", rel, "error", err)
				observability.ScanFilesSkippedTotal.Inc()
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}
			mu.Lock()
			nodes[node.ID] = node
			mu.Unlock()
		}()
	}
	wg.Wait()
	return nodes, skipped
}

func buildSnapshot(nodes map[string]*model.Node, edges []model.Edge, cycles [][]string) *model.Snapshot {
	totalLines := 0
	totalComplexity := 0.0
	for _, node := range nodes {
		totalLines += node.Metrics.LinesOfCode
		totalComplexity += node.Metrics.ComplexityScore
	}
	averageComplexity := 0.0
	if len(nodes) > 0 {
		averageComplexity = totalComplexity / float64(len(nodes))
	}

	return &model.Snapshot{
		Nodes:                nodes,
		Edges:                edges,
		LastScan:             time.Now().UTC(),
		TotalModules:         len(nodes),
		TotalLines:           totalLines,
		AverageComplexity:    averageComplexity,
		CircularDependencies: cycles,
		Metrics:              metrics.ForGraph(nodes, edges),
	}
}
