// # cmd/archmap/scan.go
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"archmap/internal/app"
	"archmap/internal/model"
	"archmap/internal/output"
	"archmap/internal/shared/util"

	"github.com/spf13/cobra"
)

var (
	scanFormat string
	scanOutput string
	scanPretty bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree once and write the snapshot",
	Long: `Scan runs a single pass over the project and writes the result in the
chosen format. Without --output the rendering goes to stdout and the
terminal summary is suppressed so the output stays parseable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "json", "Output format (json, dot, mermaid, plantuml, tsv)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write the rendering to a file instead of stdout")
	scanCmd.Flags().BoolVar(&scanPretty, "pretty", false, "Indent JSON output")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	application := app.New(root, cfg)
	start := time.Now()
	snapshot, err := application.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	rendered, err := renderSnapshot(snapshot, scanFormat)
	if err != nil {
		return err
	}

	if scanOutput == "" {
		fmt.Print(rendered)
		return nil
	}
	if err := util.WriteStringWithDirs(scanOutput, rendered, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", scanOutput, err)
	}
	application.PrintSummary(snapshot, time.Since(start))
	return nil
}

func renderSnapshot(snapshot *model.Snapshot, format string) (string, error) {
	switch format {
	case "json":
		var (
			data []byte
			err  error
		)
		if scanPretty {
			data, err = json.MarshalIndent(snapshot, "", "  ")
		} else {
			data, err = json.Marshal(snapshot)
		}
		if err != nil {
			return "", fmt.Errorf("encoding snapshot: %w", err)
		}
		return string(data) + "\n", nil
	case "dot":
		return output.NewDOTGenerator(snapshot).Generate()
	case "mermaid":
		return output.NewMermaidGenerator(snapshot).Generate()
	case "plantuml":
		return output.NewPlantUMLGenerator(snapshot).Generate()
	case "tsv":
		return output.NewTSVGenerator(snapshot).Generate()
	default:
		return "", fmt.Errorf("unknown format %q (want json, dot, mermaid, plantuml or tsv)", format)
	}
}
