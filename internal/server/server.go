package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"archmap/internal/app"
	"archmap/internal/config"
	"archmap/internal/model"
	"archmap/internal/shared/util"
	"archmap/internal/version"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the scanned architecture over HTTP and WebSocket.
type Server struct {
	app            *app.App
	cfg            *config.Config
	hub            *Hub
	server         *http.Server
	refreshLimiter *util.LimiterRegistry
	watchMode      bool
}

// New wires a server around the snapshot holder. Every snapshot the
// holder publishes is broadcast to connected WebSocket clients. Manual
// refreshes share the watcher's rescan rate, tracked per client IP.
func New(application *app.App, cfg *config.Config) *Server {
	s := &Server{
		app:            application,
		cfg:            cfg,
		hub:            NewHub(),
		refreshLimiter: util.NewLimiterRegistry(cfg.Watch.RescanRate, cfg.Watch.RescanBurst, 10*time.Minute),
	}
	application.SetUpdateHandler(s.hub.Broadcast)
	return s
}

// SetWatchMode marks the server as backed by a filesystem watcher. The
// flag is only reported through /api/config.
func (s *Server) SetWatchMode(enabled bool) {
	s.watchMode = enabled
}

// Broadcast pushes a snapshot to every connected WebSocket client. Useful
// for callers that replace the update handler installed by New and still
// want clients notified.
func (s *Server) Broadcast(snapshot *model.Snapshot) {
	s.hub.Broadcast(snapshot)
}

// Handler returns the full route set, wrapped in CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/architecture", s.handleArchitecture)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/ws/architecture", s.handleArchitectureWS)

	return corsMiddleware(s.cfg.Server.CORSOrigins)(mux)
}

// Start binds the configured address and serves in the background. Bind
// errors are returned synchronously; later serve errors are logged.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Server.Address()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	slog.Info("server starting", "addr", addr)
	if s.watchMode {
		slog.Info("watch mode enabled, snapshots refresh on file changes")
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

type refreshResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type configResponse struct {
	Project       projectInfo       `json:"project"`
	Visualization visualizationInfo `json:"visualization"`
	Server        serverInfo        `json:"server"`
}

type projectInfo struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
}

type visualizationInfo struct {
	Theme            string `json:"theme"`
	Layout           string `json:"layout"`
	ShowMetrics      *bool  `json:"show_metrics"`
	ShowDependencies *bool  `json:"show_dependencies"`
	AutoRefresh      *bool  `json:"auto_refresh"`
	RefreshInterval  int    `json:"refresh_interval"`
}

type serverInfo struct {
	Port      int    `json:"port"`
	Host      string `json:"host"`
	WatchMode bool   `json:"watch_mode"`
}

type metricsResponse struct {
	TotalModules         int                `json:"total_modules"`
	TotalLines           int                `json:"total_lines"`
	AverageComplexity    float64            `json:"average_complexity"`
	TotalDependencies    int                `json:"total_dependencies"`
	CircularDependencies int                `json:"circular_dependencies"`
	Metrics              model.GraphMetrics `json:"metrics"`
	LastScan             time.Time          `json:"last_scan"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleArchitecture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := s.app.Architecture(r.Context())
	if err != nil {
		slog.Error("architecture request failed", "error", err)
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, snapshot, http.StatusOK)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ip := util.GetClientIP(r)
	if !s.refreshLimiter.Get(ip).Allow(1) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	snapshot, err := s.app.Refresh(r.Context())
	if err != nil {
		slog.Error("refresh request failed", "error", err)
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, refreshResponse{
		Success:   true,
		Message:   "Architecture refreshed successfully",
		Timestamp: snapshot.LastScan,
	}, http.StatusOK)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.cfg
	writeJSON(w, configResponse{
		Project: projectInfo{
			Name:        cfg.Project.Name,
			Description: cfg.Project.Description,
			Version:     cfg.Project.Version,
		},
		Visualization: visualizationInfo{
			Theme:            cfg.Visualization.Theme,
			Layout:           cfg.Visualization.Layout,
			ShowMetrics:      cfg.Visualization.ShowMetrics,
			ShowDependencies: cfg.Visualization.ShowDependencies,
			AutoRefresh:      cfg.Visualization.AutoRefresh,
			RefreshInterval:  cfg.Visualization.RefreshInterval,
		},
		Server: serverInfo{
			Port:      cfg.Server.Port,
			Host:      cfg.Server.Host,
			WatchMode: s.watchMode,
		},
	}, http.StatusOK)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := s.app.Architecture(r.Context())
	if err != nil {
		slog.Error("metrics request failed", "error", err)
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, metricsResponse{
		TotalModules:         snapshot.TotalModules,
		TotalLines:           snapshot.TotalLines,
		AverageComplexity:    snapshot.AverageComplexity,
		TotalDependencies:    len(snapshot.Edges),
		CircularDependencies: len(snapshot.CircularDependencies),
		Metrics:              snapshot.Metrics,
		LastScan:             snapshot.LastScan,
	}, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
	}, http.StatusOK)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.websocketEnabled() {
		http.Error(w, "websocket support disabled", http.StatusNotImplemented)
		return
	}
	s.hub.ServeWS(w, r, nil)
}

// handleArchitectureWS behaves like handleWS but pushes the current
// snapshot right after the connection is established.
func (s *Server) handleArchitectureWS(w http.ResponseWriter, r *http.Request) {
	if !s.websocketEnabled() {
		http.Error(w, "websocket support disabled", http.StatusNotImplemented)
		return
	}
	s.hub.ServeWS(w, r, s.app.Snapshot())
}

func (s *Server) websocketEnabled() bool {
	enabled := s.cfg.Server.EnableWebsocket
	return enabled == nil || *enabled
}

func writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowedOrigin(origins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowedOrigin(allowed []string, origin string) string {
	for _, candidate := range allowed {
		if candidate == "*" {
			return "*"
		}
		if candidate == origin {
			return origin
		}
	}
	return ""
}
