// Package server serves tidbit content and device registration over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/at-ishikawa/tidbit/internal/clock"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/device"
)

const maxRequestBodyBytes = 64 << 10

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	snapshots      content.SnapshotSource
	registry       device.Registry
	gatherer       prometheus.Gatherer
	allowedOrigins []string
	clock          clock.Clock
	logger         *slog.Logger
}

type Option func(*Server)

// WithGatherer exposes the gatherer's metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server. registry may be nil when device registration is disabled.
func New(snapshots content.SnapshotSource, registry device.Registry, opts ...Option) *Server {
	s := &Server{
		snapshots: snapshots,
		registry:  registry,
		clock:     clock.System(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.allowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tidbits", s.handleTidbits)
		r.Get("/version", s.handleVersion)
		if s.registry != nil {
			r.Post("/devices", s.handleRegisterDevice)
			r.Delete("/devices/{token}", s.handleUnregisterDevice)
			r.Post("/devices/{token}/heartbeat", s.handleDeviceHeartbeat)
		}
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type tidbitsResponse struct {
	Success      bool                `json:"success"`
	Tidbits      map[string][]string `json:"tidbits"`
	Version      string              `json:"version"`
	LastModified *time.Time          `json:"lastModified"`
	Timestamp    time.Time           `json:"timestamp"`
}

type versionResponse struct {
	Success      bool       `json:"success"`
	Version      string     `json:"version"`
	LastModified *time.Time `json:"lastModified"`
	Timestamp    time.Time  `json:"timestamp"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: s.now()})
}

func (s *Server) handleTidbits(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.snapshots.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("failed to load tidbits", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to load tidbits",
			Message: err.Error(),
		})
		return
	}

	tidbits := snapshot.Tidbits
	if tidbits == nil {
		tidbits = map[string][]string{}
	}
	s.writeJSON(w, http.StatusOK, tidbitsResponse{
		Success:      true,
		Tidbits:      tidbits,
		Version:      snapshot.Version,
		LastModified: lastModified(snapshot),
		Timestamp:    s.now(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.snapshots.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("failed to get content version", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to get version",
			Message: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, versionResponse{
		Success:      true,
		Version:      snapshot.Version,
		LastModified: lastModified(snapshot),
		Timestamp:    s.now(),
	})
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var pref device.Preference
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&pref); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := s.registry.Upsert(r.Context(), pref); err != nil {
		var validationErr *device.ValidationError
		if errors.As(err, &validationErr) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "Invalid device preference",
				Details: validationErr.Messages,
			})
			return
		}
		s.logger.Error("failed to register device", "platform", pref.Platform, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to register device"})
		return
	}
	s.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleUnregisterDevice(w http.ResponseWriter, r *http.Request) {
	token, ok := s.deviceToken(w, r)
	if !ok {
		return
	}
	if err := s.registry.Delete(r.Context(), token); err != nil {
		s.logger.Error("failed to unregister device", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to unregister device"})
		return
	}
	s.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleDeviceHeartbeat records that the app was opened on a device.
func (s *Server) handleDeviceHeartbeat(w http.ResponseWriter, r *http.Request) {
	token, ok := s.deviceToken(w, r)
	if !ok {
		return
	}
	if err := s.registry.Touch(r.Context(), token); err != nil {
		s.logger.Error("failed to touch device", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to record device activity"})
		return
	}
	s.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) deviceToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := url.PathUnescape(chi.URLParam(r, "token"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid token", Message: err.Error()})
		return "", false
	}
	return token, true
}

func (s *Server) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func lastModified(snapshot content.Snapshot) *time.Time {
	if snapshot.LastModified.IsZero() {
		return nil
	}
	t := snapshot.LastModified.UTC()
	return &t
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed["*"] || allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
