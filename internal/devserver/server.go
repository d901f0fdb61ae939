package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maquette-dev/maquette/internal/config"
	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/internal/logging"
	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/preview"
	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/render"
	"github.com/maquette-dev/maquette/pkg/store"
)

// maxBodyBytes caps request bodies on the manifest endpoints.
const maxBodyBytes = 4 << 20

// Server is the preview server: HTTP API, WebSocket hub and manifest
// watcher over one harness.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	renderer *render.Renderer
	harness  *preview.Harness
	store    store.Store
	socket   *PreviewSocket
	watcher  *Watcher
	metrics  *Metrics
	logger   *slog.Logger

	http        *http.Server
	unsubscribe func()
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStore sets the manifest store backing the API.
func WithStore(s store.Store) ServerOption {
	return func(srv *Server) { srv.store = s }
}

// WithMetrics sets the metrics instruments. Nil metrics disable
// instrumentation.
func WithMetrics(m *Metrics) ServerOption {
	return func(srv *Server) { srv.metrics = m }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(srv *Server) { srv.logger = logger }
}

// New assembles a Server over a registry, renderer and harness.
func New(cfg *config.Config, reg *registry.Registry, r *render.Renderer, h *preview.Harness, opts ...ServerOption) *Server {
	srv := &Server{
		cfg:      cfg,
		registry: reg,
		renderer: r,
		harness:  h,
		store:    store.NewMemoryStore(),
		logger:   logging.ForComponent("devserver"),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.socket = NewPreviewSocket(h, srv.metrics, srv.logger)
	srv.watcher = NewWatcher(cfg.Server.Watch, h, srv.logger)

	// Every settled pass fans out to clients and metrics.
	srv.unsubscribe = h.Subscribe(func(out *render.Output) {
		srv.metrics.ObservePass(out)
		srv.socket.Broadcast(out)
	})

	srv.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// routes builds the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.socket.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/render", s.handleRender)
		r.Get("/manifests/{id}", s.handleGetManifest)
		r.Put("/manifests/{id}", s.handlePutManifest)
	})
	return r
}

// Start runs the HTTP listener and the manifest watcher until the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("watcher stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	s.logger.Info("preview server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, the socket hub and the harness.
func (s *Server) Shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.http.Shutdown(shutdownCtx)

	s.unsubscribe()
	s.socket.Close()
	s.watcher.Stop()
	s.harness.Close()
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.socket.ClientCount(),
		"passes":  s.renderer.Generation(),
	})
}

// handleValidate parses and validates a manifest without rendering it.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readManifest(w, r)
	if !ok {
		return
	}
	result := manifest.Validate(m, manifest.Options{KnownTypes: s.registry})
	writeJSON(w, http.StatusOK, result)
}

// handleRender validates and renders a manifest in one shot. Invalid
// manifests are rejected before any factory runs.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readManifest(w, r)
	if !ok {
		return
	}

	result := manifest.Validate(m, manifest.Options{KnownTypes: s.registry})
	if !result.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "manifest failed validation",
			"validation": result,
		})
		return
	}

	out := s.renderer.Render(r.Context(), m)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	version := r.URL.Query().Get("version")

	m, err := s.store.Get(r.Context(), id, version)
	if err != nil {
		if store.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handlePutManifest validates and stores a manifest, then schedules a
// preview pass for it.
func (s *Server) handlePutManifest(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readManifest(w, r)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); m.ID == "" {
		m.ID = id
	} else if m.ID != id {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "manifest id does not match URL",
		})
		return
	}
	m.EnsureNodeIDs()

	result := manifest.Validate(m, manifest.Options{KnownTypes: s.registry})
	if !result.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "manifest failed validation",
			"validation": result,
		})
		return
	}

	version, err := s.store.Put(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.harness.Update(m)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         m.ID,
		"version":    version,
		"validation": result,
	})
}

func (s *Server) readManifest(w http.ResponseWriter, r *http.Request) (*manifest.Manifest, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	m, err := manifest.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return m, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	body := map[string]any{"error": err.Error()}
	var me *enginerr.Error
	if errors.As(err, &me) {
		body["code"] = me.Code
		if me.Suggestion != "" {
			body["suggestion"] = me.Suggestion
		}
	}
	writeJSON(w, code, body)
}
