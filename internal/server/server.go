// Package server exposes scene navigation over HTTP.
//
// One server holds one read-only scene graph. Clients create sessions, each
// of which is an independent navigator (reference node + viewport) over the
// shared graph, and drive it with zoom/pan/move requests. Viewports can be
// bookmarked through a pluggable view store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/scene"
	"github.com/driftview/driftview/pkg/sceneio"
	"github.com/driftview/driftview/pkg/viewstore"
)

// defaultVisibleLimit bounds visibility traversals when the client does not
// pass max, keeping per-request cost predictable.
const defaultVisibleLimit = 100

// Config holds server configuration.
type Config struct {
	Addr         string  // listen address, e.g. ":8433"
	CanvasWidth  float64 // default canvas dimensions for policy checks
	CanvasHeight float64
}

// Server serves navigation sessions over one scene graph.
type Server struct {
	cfg    Config
	graph  *scene.Graph[sceneio.Payload]
	sm     *sessionManager
	views  viewstore.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server over the given graph. views may be nil to disable
// view bookmarking endpoints; logger may be nil for the default logger.
func New(cfg Config, g *scene.Graph[sceneio.Payload], views viewstore.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = 800
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = 600
	}
	s := &Server{
		cfg:    cfg,
		graph:  g,
		sm:     newSessionManager(),
		views:  views,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler, for mounting or for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails or ctx is canceled, then shuts down
// gracefully and returns ctx.Err.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("listening", "addr", s.cfg.Addr, "nodes", s.graph.NodeCount(), "edges", s.graph.EdgeCount())
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sm.count()})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/visible", s.getVisible)
			r.Get("/position/{node}", s.getPosition)
			r.Post("/zoom", s.postZoom)
			r.Post("/pan", s.postPan)
			r.Post("/move", s.postMove)
			r.Post("/reset", s.postReset)
			r.Post("/save", s.postSaveView)
			r.Post("/restore", s.postRestoreView)
		})
	})

	r.Get("/api/views", s.listViews)

	return r
}

// =============================================================================
// Wire types
// =============================================================================

// sessionState is the canonical session response body.
type sessionState struct {
	ID         string     `json:"id"`
	Reference  string     `json:"reference"`
	Viewport   [6]float64 `json:"viewport"`
	LastTarget string     `json:"last_target,omitempty"`
	Recentered bool       `json:"recentered,omitempty"`
}

type visibleEntry struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Transform [6]float64 `json:"transform"`
}

func matrixTuple(m geom.Matrix) [6]float64 {
	return [6]float64{m.A, m.B, m.C, m.D, m.E, m.F}
}

func stateOf(sess *session, recentered bool) sessionState {
	state := sessionState{ID: sess.id, Recentered: recentered}
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		state.Reference = nav.ReferenceNodeID()
		state.Viewport = matrixTuple(nav.Viewport())
		state.LastTarget, _ = nav.LastTarget()
	})
	return state
}

// =============================================================================
// Session lifecycle
// =============================================================================

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	sess, err := s.sm.create(s.graph, req.Reference)
	if err != nil {
		if errors.Is(err, scene.ErrUnknownNode) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debug("session created", "id", sess.id, "reference", req.Reference)
	writeJSON(w, http.StatusCreated, stateOf(sess, false))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess, false))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.sm.remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Queries
// =============================================================================

func (s *Server) getVisible(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	limit := defaultVisibleLimit
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid max", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := []visibleEntry{}
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		for v := range nav.VisibleNodes(limit) {
			entries = append(entries, visibleEntry{
				ID:        v.ID,
				Label:     v.Node.Data.DisplayLabel(v.ID),
				Transform: matrixTuple(v.Transform),
			})
		}
	})
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getPosition(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	width, height := s.canvasFromQuery(r)
	nodeID := chi.URLParam(r, "node")

	var (
		pos geom.Point
		ok  bool
	)
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		pos, ok = nav.ScreenPosition(nodeID, width, height)
	})
	if !ok {
		http.Error(w, "node unreachable from reference", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"x": pos.X, "y": pos.Y})
}

// =============================================================================
// Gestures
// =============================================================================

func (s *Server) postZoom(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Cx     float64 `json:"cx"`
		Cy     float64 `json:"cy"`
		Factor float64 `json:"factor"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Check  bool    `json:"check"` // run the re-centering policies
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Factor == 0 {
		http.Error(w, "factor is required", http.StatusBadRequest)
		return
	}

	width, height := req.Width, req.Height
	if width <= 0 || height <= 0 {
		width, height = s.cfg.CanvasWidth, s.cfg.CanvasHeight
	}

	recentered := false
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		if req.Check {
			recentered = nav.ZoomAt(req.Cx, req.Cy, req.Factor,
				scene.WithCanvas[sceneio.Payload](width, height),
				scene.WithZoomInPolicy(scene.CoverageZoomIn(payloadExtent)),
				scene.WithZoomOutPolicy(scene.CoverageZoomOut(payloadExtent)),
			)
		} else {
			nav.ZoomAt(req.Cx, req.Cy, req.Factor)
		}
	})
	writeJSON(w, http.StatusOK, stateOf(sess, recentered))
}

func (s *Server) postPan(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Dx float64 `json:"dx"`
		Dy float64 `json:"dy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		nav.Pan(req.Dx, req.Dy)
	})
	writeJSON(w, http.StatusOK, stateOf(sess, false))
}

func (s *Server) postMove(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Direction string `json:"direction"` // "forward" or "backward"
		Target    string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Direction != "forward" && req.Direction != "backward" {
		http.Error(w, "direction must be forward or backward", http.StatusBadRequest)
		return
	}

	moved := false
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		switch req.Direction {
		case "forward":
			if req.Target != "" {
				moved = nav.MoveForward(req.Target)
			} else {
				moved = nav.MoveForward()
			}
		case "backward":
			if req.Target != "" {
				moved = nav.MoveBackward(req.Target)
			} else {
				moved = nav.MoveBackward()
			}
		}
	})
	writeJSON(w, http.StatusOK, stateOf(sess, moved))
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Reference string `json:"reference"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	var resetErr error
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		if req.Reference != "" {
			resetErr = nav.ResetView(req.Reference)
		} else {
			resetErr = nav.ResetView()
		}
	})
	if resetErr != nil {
		http.Error(w, resetErr.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess, false))
}

// =============================================================================
// View bookmarks
// =============================================================================

func (s *Server) postSaveView(w http.ResponseWriter, r *http.Request) {
	if s.views == nil {
		http.Error(w, "view store not configured", http.StatusNotImplemented)
		return
	}
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	var view viewstore.View
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		view = viewstore.Capture(nav)
	})
	if err := s.views.Save(r.Context(), req.Name, view); err != nil {
		s.logger.Error("save view", "name", req.Name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) postRestoreView(w http.ResponseWriter, r *http.Request) {
	if s.views == nil {
		http.Error(w, "view store not configured", http.StatusNotImplemented)
		return
	}
	sess := s.sm.get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	view, err := s.views.Load(r.Context(), req.Name)
	if errors.Is(err, viewstore.ErrNotFound) {
		http.Error(w, "view not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var applyErr error
	sess.do(func(nav *scene.Navigator[sceneio.Payload]) {
		applyErr = viewstore.Apply(view, nav)
	})
	if applyErr != nil {
		http.Error(w, applyErr.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess, false))
}

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	if s.views == nil {
		http.Error(w, "view store not configured", http.StatusNotImplemented)
		return
	}
	names, err := s.views.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) canvasFromQuery(r *http.Request) (width, height float64) {
	width, height = s.cfg.CanvasWidth, s.cfg.CanvasHeight
	if raw := r.URL.Query().Get("width"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			width = v
		}
	}
	if raw := r.URL.Query().Get("height"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			height = v
		}
	}
	return width, height
}

// payloadExtent feeds node sizes to the coverage policies.
func payloadExtent(p sceneio.Payload) float64 { return p.Size }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
