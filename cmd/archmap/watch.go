// # cmd/archmap/watch.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"archmap/internal/app"
	"archmap/internal/model"
	"archmap/internal/server"
	"archmap/internal/shared/observability"
	"archmap/internal/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var watchNoUI bool

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch the source tree and serve live updates",
	Long: `Watch keeps the snapshot fresh: file changes trigger a full rescan,
connected WebSocket clients receive the new snapshot, and a terminal UI
shows cycles and complexity hotspots as they appear. The HTTP surface
from serve stays available the whole time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoUI, "no-ui", false, "Disable the terminal UI")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	useUI := !watchNoUI
	if useUI {
		redirectLogsForUI()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := observability.InitTracing(ctx, tracingConfig(cfg))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(tracing)

	application := app.New(root, cfg)
	start := time.Now()
	snapshot, err := application.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	if !useUI {
		application.PrintSummary(snapshot, time.Since(start))
	}

	srv := server.New(application, cfg)
	srv.SetWatchMode(true)

	var program *tea.Program
	if useUI {
		program = tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	}

	application.SetUpdateHandler(func(snapshot *model.Snapshot) {
		srv.Broadcast(snapshot)
		if program != nil {
			program.Send(architectureMsg(snapshot))
		}
	})

	w, err := watcher.New(root, cfg, func(paths []string) {
		slog.Info("detected changes", "count", len(paths))
		if _, err := application.Refresh(ctx); err != nil {
			slog.Error("rescan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Watch(); err != nil {
		return err
	}
	defer w.Close()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	if program != nil {
		go program.Send(architectureMsg(snapshot))
		_, uiErr := program.Run()
		stop()
		if errors.Is(uiErr, tea.ErrProgramKilled) {
			uiErr = nil
		}
		if err := stopServer(srv, cfg); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
		return uiErr
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return stopServer(srv, cfg)
}

// redirectLogsForUI moves slog output to a state file so stdout stays
// free for the TUI.
func redirectLogsForUI() {
	logPath := resolveLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		return
	}
	if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
		fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		return
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		return
	}
	setupLogging(f)
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "archmap", "archmap.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "archmap", "archmap.log")
	}

	return "archmap.log"
}

// architectureMsg digests a snapshot into the flat update the UI consumes.
func architectureMsg(snapshot *model.Snapshot) updateMsg {
	if snapshot == nil {
		return updateMsg{}
	}
	msg := updateMsg{
		moduleCount: snapshot.TotalModules,
		lineCount:   snapshot.TotalLines,
		edgeCount:   len(snapshot.Edges),
	}
	for _, cycle := range snapshot.CircularDependencies {
		msg.cycles = append(msg.cycles, app.CycleNames(snapshot, cycle))
	}
	msg.hotspots = topComplexity(snapshot, 5)
	return msg
}

// topComplexity returns the n most complex modules, busiest first.
func topComplexity(snapshot *model.Snapshot, n int) []hotspotEntry {
	entries := make([]hotspotEntry, 0, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		if node.Metrics.ComplexityScore <= 0 {
			continue
		}
		entries = append(entries, hotspotEntry{
			name:  node.Name,
			score: node.Metrics.ComplexityScore,
			loc:   node.Metrics.LinesOfCode,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score == entries[j].score {
			return entries[i].name < entries[j].name
		}
		return entries[i].score > entries[j].score
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
