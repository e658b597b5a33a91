// Package api provides the HTTP API for observing a running simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talgya/marketsim/internal/persistence"
	"github.com/talgya/marketsim/internal/runner"
)

// Server serves simulation state over HTTP.
type Server struct {
	Runner   *runner.Runner
	DB       *persistence.DB // optional; history endpoints 404 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/summary", s.handleSummary)
	mux.HandleFunc("/api/v1/episodes", s.handleEpisodes)
	mux.HandleFunc("/api/v1/episode/", s.handleEpisodeDetail)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/stop", s.adminOnly(s.handleStop))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// adminOnly wraps a handler with bearer-token auth for POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, seed := s.Runner.Snapshot()
	writeJSON(w, map[string]any{
		"episode_id": s.Runner.EpisodeID(),
		"running":    s.Runner.Running(),
		"seed":       seed,
		"time":       st.Time,
		"max_steps":  s.Runner.Episode.Params().MaxSteps,
		"regime":     st.Regime.String(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, _ := s.Runner.Snapshot()
	writeJSON(w, st)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Runner.LastSummary())
}

func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no trajectory store attached", http.StatusNotFound)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	rows, err := s.DB.RecentEpisodes(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleEpisodeDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no trajectory store attached", http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/episode/")
	if id == "" {
		http.Error(w, "missing episode id", http.StatusBadRequest)
		return
	}
	steps, err := s.DB.EpisodeSteps(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(steps) == 0 {
		http.Error(w, "episode not found", http.StatusNotFound)
		return
	}
	writeJSON(w, steps)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.Runner.Shutdown()
	slog.Info("shutdown requested via API")
	writeJSON(w, map[string]string{"status": "stopping"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
