// Package api serves the bridge's HTTP surface: health and status endpoints,
// Prometheus metrics, the embedded observer page, and the WebSocket upgrade.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benevolentsky/skybridge/pkg/bridge"
	"github.com/benevolentsky/skybridge/pkg/logger"
)

type Server struct {
	port      int
	registry  *bridge.Registry
	hub       *WSHub
	startTime time.Time
	server    *http.Server
	webFS     fs.FS
}

// NewServer creates the HTTP server. webFS holds the static observer page;
// nil falls back to the local web directory.
func NewServer(port int, registry *bridge.Registry, hub *WSHub, webFS fs.FS) *Server {
	return &Server{
		port:      port,
		registry:  registry,
		hub:       hub,
		startTime: time.Now(),
		webFS:     webFS,
	}
}

// Hub returns the observer hub, which implements bridge.Broadcaster.
func (s *Server) Hub() *WSHub { return s.hub }

// Start begins listening. It returns immediately; errors after bind are
// logged. Stop shuts the server down.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/channels", s.handleChannels)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	mux.HandleFunc("/", s.handleStaticFiles)

	addr := fmt.Sprintf(":%d", s.port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.InfoCF("api", "HTTP server starting", map[string]interface{}{"addr": addr})

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("api", "Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "ok",
		"timestamp":            time.Now().UTC().Format(time.RFC3339),
		"ircConnections":       s.registry.ConnectedCount(),
		"websocketConnections": s.hub.Count(),
	})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"channels": s.registry.Names(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]interface{})
	for _, h := range s.registry.All() {
		status[h.Name()] = map[string]interface{}{
			"connected": h.Connected(),
			"nick":      h.Nick(),
			"channels":  []string{h.Name()},
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStaticFiles(w http.ResponseWriter, r *http.Request) {
	staticFS := s.webFS
	if staticFS == nil {
		staticFS = os.DirFS("web")
	}

	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := staticFS.Open(strings.TrimPrefix(path, "/"))
	if err != nil {
		r.URL.Path = "/index.html"
	} else {
		f.Close()
	}

	http.FileServer(http.FS(staticFS)).ServeHTTP(w, r)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
