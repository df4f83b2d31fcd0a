// # cmd/archmap/serve.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archmap/internal/app"
	"archmap/internal/config"
	"archmap/internal/server"
	"archmap/internal/shared/observability"
	"archmap/internal/version"

	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve the architecture over HTTP",
	Long: `Serve scans the project once and exposes the result over HTTP: REST
endpoints under /api, Prometheus metrics under /metrics and a WebSocket
feed under /ws/architecture.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	applyServerOverrides(cfg)

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
	application.PrintSummary(snapshot, time.Since(start))

	srv := server.New(application, cfg)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return stopServer(srv, cfg)
}

func applyServerOverrides(cfg *config.Config) {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
}

func tracingConfig(cfg *config.Config) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     cfg.Observability.TracingEnabled,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		SampleRatio: cfg.Observability.SampleRatio,
		ServiceName: cfg.Observability.ServiceName,
		Version:     version.Version,
	}
}

func shutdownTracing(tp *observability.TracerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		slog.Error("tracing shutdown failed", "error", err)
	}
}

func stopServer(srv *server.Server, cfg *config.Config) error {
	grace := 10 * time.Second
	if cfg.Server.Timeout != nil && *cfg.Server.Timeout > 0 {
		grace = time.Duration(*cfg.Server.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Stop(ctx)
}
