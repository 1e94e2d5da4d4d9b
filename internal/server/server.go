// Package server exposes one mind map document over HTTP.
//
// The API mirrors the editor operations: node creation, subtree deletion,
// resizing, moving and selection, plus read endpoints for the snapshot,
// the draw scene and rendered SVG. A websocket at /live streams the scene
// after every change, so browser views stay current while the map is
// edited elsewhere.
//
// All mutations are serialized through a single mutex; one request is one
// atomic operation against the document, committed to storage before the
// response is written.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/4TheSolutions/nest/pkg/mindmap"
	"github.com/4TheSolutions/nest/pkg/render"
	"github.com/4TheSolutions/nest/pkg/scene"
	"github.com/4TheSolutions/nest/pkg/storage"
)

// saveTimeout bounds how long a commit may block on the storage backend.
const saveTimeout = 5 * time.Second

// Server serves one document. Create with [New], mount with [Router] or
// run standalone with [Run].
type Server struct {
	logger *log.Logger
	store  storage.Store
	hub    *hub

	mu  sync.Mutex
	m   *mindmap.Map
	doc *storage.Document
}

// New creates a server editing doc, persisting every mutation through
// store.
func New(logger *log.Logger, store storage.Store, doc *storage.Document) *Server {
	s := &Server{
		logger: logger,
		store:  store,
		hub:    newHub(),
		m:      mindmap.New(),
		doc:    doc,
	}
	s.m.Restore(doc.Map)
	s.m.SetHooks(mindmap.Hooks{
		Commit: s.persist,
		Change: s.broadcast,
	})
	return s
}

// persist writes the committed snapshot through the storage backend.
// Runs with s.mu held, as part of the mutating request.
func (s *Server) persist(snap mindmap.Snapshot) {
	s.doc.Map = snap
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, s.doc); err != nil {
		s.logger.Error("saving map", "map", s.doc.Name, "err", err)
	}
}

// broadcast pushes the current scene to all live websocket clients.
// Runs with s.mu held.
func (s *Server) broadcast() {
	if s.hub.empty() {
		return
	}
	data, err := json.Marshal(scene.Build(s.m))
	if err != nil {
		s.logger.Error("encoding scene", "err", err)
		return
	}
	s.hub.broadcast(data)
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api/map", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Delete("/", s.handleClear)
		r.Get("/scene", s.handleScene)
		r.Get("/svg", s.handleSVG)

		r.Post("/roots", s.handleAddRoot)
		r.Post("/children", s.handleAddChildSelected)
		r.Post("/parent", s.handleInsertParentSelected)
		r.Delete("/selection", s.handleDeleteSelected)

		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Post("/children", s.handleAddChild)
			r.Post("/parent", s.handleInsertParent)
			r.Delete("/", s.handleDelete)
			r.Post("/resize", s.handleResize)
			r.Post("/move", s.handleMove)
			r.Post("/select", s.handleSelect)
		})
	})
	r.Get("/live", s.handleLive)
	return r
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutting down", "err", err)
		}
		s.hub.closeAll()
	}()

	s.logger.Info("Serving map", "map", s.doc.Name, "addr", addr)
	err := srv.ListenAndServe()
	<-done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start).Round(time.Millisecond))
	})
}

// =============================================================================
// Request/Response Types
// =============================================================================

type labelRequest struct {
	Label string `json:"label"`
}

type resizeRequest struct {
	Delta float64 `json:"delta"`
}

type moveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type selectionResponse struct {
	Selected *int64 `json:"selected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// Read Handlers
// =============================================================================

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.m.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sc := scene.Build(s.m)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	svg := render.RenderSVG(scene.Build(s.m))
	s.mu.Unlock()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

// =============================================================================
// Mutation Handlers
// =============================================================================

func (s *Server) handleAddRoot(w http.ResponseWriter, r *http.Request) {
	label, ok := s.decodeLabel(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	id := s.m.AddRoot(label)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, idResponse{ID: int64(id)})
}

func (s *Server) handleAddChild(w http.ResponseWriter, r *http.Request) {
	parent, ok := s.parseID(w, r)
	if !ok {
		return
	}
	label, ok := s.decodeLabel(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	id, err := s.m.AddChildTo(parent, label)
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: int64(id)})
}

func (s *Server) handleAddChildSelected(w http.ResponseWriter, r *http.Request) {
	label, ok := s.decodeLabel(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	id, err := s.m.AddChild(label)
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: int64(id)})
}

func (s *Server) handleInsertParent(w http.ResponseWriter, r *http.Request) {
	child, ok := s.parseID(w, r)
	if !ok {
		return
	}
	label, ok := s.decodeLabel(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	id, err := s.m.InsertParentOver(child, label)
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: int64(id)})
}

func (s *Server) handleInsertParentSelected(w http.ResponseWriter, r *http.Request) {
	label, ok := s.decodeLabel(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	id, err := s.m.InsertParent(label)
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: int64(id)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	err := s.m.DeleteSubtreeAt(id)
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.m.DeleteSubtree()
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	err := s.m.Resize(id, req.Delta)
	var rec mindmap.NodeRecord
	if err == nil {
		rec, _ = s.nodeRecord(id)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	err := s.m.Move(id, req.X, req.Y)
	var rec mindmap.NodeRecord
	if err == nil {
		rec, _ = s.nodeRecord(id)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	err := s.m.SelectToggle(id)
	var resp selectionResponse
	if err == nil {
		if sel, selOK := s.m.Selected(); selOK {
			v := int64(sel)
			resp.Selected = &v
		}
	}
	s.mu.Unlock()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.m.ClearAll()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// nodeRecord returns the wire record for one node. Call with s.mu held.
func (s *Server) nodeRecord(id mindmap.NodeID) (mindmap.NodeRecord, bool) {
	for _, rec := range s.m.Snapshot().Nodes {
		if rec.ID == int64(id) {
			return rec, true
		}
	}
	return mindmap.NodeRecord{}, false
}

func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (mindmap.NodeID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid node id: " + raw})
		return 0, false
	}
	return mindmap.NodeID(id), true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// decodeLabel reads a label request and enforces the non-empty contract:
// creating a node with a blank label is rejected, matching the editor,
// which aborts creation when the prompt is left empty.
func (s *Server) decodeLabel(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req labelRequest
	if !s.decodeBody(w, r, &req) {
		return "", false
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "label must not be empty"})
		return "", false
	}
	return label, true
}

func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mindmap.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, mindmap.ErrNoSelection):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
