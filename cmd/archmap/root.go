// # cmd/archmap/root.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"archmap/internal/config"
	"archmap/internal/version"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "archmap",
	Short: "Architecture map generator for Rust projects",
	Long: `archmap scans a Rust source tree with lightweight text heuristics,
assembles the module dependency graph and reports cycles, coupling and
complexity. The snapshot can be written as JSON or a diagram, served over
HTTP, or watched live with rescans on every file change.`,
	Version:      version.Info(),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(os.Stderr)
	},
}

func init() {
	rootCmd.SetVersionTemplate("archmap version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: discovered in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setupLogging installs the default slog handler. Logs go to stderr so
// stdout stays clean for rendered snapshots.
func setupLogging(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}

// resolveRoot turns the optional positional argument into an absolute
// project root.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}

// loadConfig loads the file named by --config, or discovers one in the
// project root, falling back to built-in defaults.
func loadConfig(root string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDir(root)
}
