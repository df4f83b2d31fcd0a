package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"archmap/internal/config"
	"archmap/internal/model"
	"archmap/internal/scan"
)

// App owns the current snapshot of one scanned project and hands out
// consistent views of it. Scans replace the snapshot wholesale; readers
// always see either the previous or the next complete scan, never a mix.
type App struct {
	Root   string
	Config *config.Config

	scanner *scan.Scanner

	snapMu   sync.RWMutex
	snapshot *model.Snapshot

	updateMu sync.RWMutex
	onUpdate func(*model.Snapshot)
}

func New(root string, cfg *config.Config) *App {
	return &App{
		Root:    root,
		Config:  cfg,
		scanner: scan.NewScanner(root, cfg),
	}
}

// Snapshot returns the most recent scan result, or nil before the first
// scan completes.
func (a *App) Snapshot() *model.Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}

// Architecture returns the current snapshot, scanning first when none
// exists yet.
func (a *App) Architecture(ctx context.Context) (*model.Snapshot, error) {
	if s := a.Snapshot(); s != nil {
		return s, nil
	}
	return a.Refresh(ctx)
}

// Refresh runs a full scan, publishes the result and notifies the update
// handler.
func (a *App) Refresh(ctx context.Context) (*model.Snapshot, error) {
	snapshot, err := a.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	a.snapMu.Lock()
	a.snapshot = snapshot
	a.snapMu.Unlock()

	a.emitUpdate(snapshot)
	return snapshot, nil
}

// SetUpdateHandler registers the callback invoked with every published
// snapshot. The server uses it to push fresh snapshots to WebSocket
// clients.
func (a *App) SetUpdateHandler(handler func(*model.Snapshot)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(snapshot *model.Snapshot) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(snapshot)
	}
}

// PrintSummary writes the human-readable scan result to stdout.
func (a *App) PrintSummary(snapshot *model.Snapshot, duration time.Duration) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Scan: %d modules, %d lines in %v\n", snapshot.TotalModules, snapshot.TotalLines, duration)

	if len(snapshot.CircularDependencies) > 0 {
		fmt.Printf("⚠️  FOUND %d CIRCULAR DEPENDENCIES:\n", len(snapshot.CircularDependencies))
		for _, cycle := range snapshot.CircularDependencies {
			fmt.Printf("   %s\n", strings.Join(CycleNames(snapshot, cycle), " -> "))
		}
	} else {
		fmt.Println("✅ No circular dependencies found.")
	}

	fmt.Printf("📊 Average complexity %.2f, density %.3f, maintainability %.2f\n",
		snapshot.AverageComplexity,
		snapshot.Metrics.DependencyDensity,
		snapshot.Metrics.MaintainabilityIndex)
	fmt.Println(strings.Repeat("-", 40))
}

// CycleNames maps the node ids of a cycle path to module names for
// display; an id without a node falls back to itself.
func CycleNames(snapshot *model.Snapshot, cycle []string) []string {
	names := make([]string, 0, len(cycle))
	for _, id := range cycle {
		if node, ok := snapshot.Nodes[id]; ok {
			names = append(names, node.Name)
			continue
		}
		names = append(names, id)
	}
	return names
}
