// Package api serves a vault over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

const (
	// RequestIDHeader carries the request id, generated when absent.
	RequestIDHeader = "X-Request-ID"
)

// Config holds the configuration for the HTTP server.
type Config struct {
	Service     *vault.Service
	Logger      *slog.Logger
	CORSOrigins []string
	Version     string
}

// Server exposes the vault operations as a REST API plus a websocket stream
// of note changes.
type Server struct {
	svc      *vault.Service
	logger   *slog.Logger
	config   Config
	server   *http.Server
	upgrader websocket.Upgrader
}

// APIResponse wraps every JSON response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteNoteRequest is the body of PUT /api/v1/notes/{path}.
type WriteNoteRequest struct {
	Content string         `json:"content"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// ExtractLinksRequest is the body of POST /api/v1/links/extract.
type ExtractLinksRequest struct {
	Content string `json:"content"`
}

// DeleteNoteResponse reports the outcome of a delete.
type DeleteNoteResponse struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
}

// NewServer creates a Server.
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(config.CORSOrigins) == 0 {
		config.CORSOrigins = []string{"*"}
	}
	s := &Server{
		svc:    config.Service,
		logger: logger,
		config: config,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestID)

	// Registered before the subrouter so it is matched first and kept out of
	// the gzip middleware, which cannot hijack connections.
	router.HandleFunc("/api/v1/events", s.handleEvents).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	})

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/state", s.handleState).Methods("GET")

	// Notes
	api.HandleFunc("/notes", s.handleListNotes).Methods("GET")
	api.HandleFunc("/notes/{path:.+}", s.handleReadNote).Methods("GET")
	api.HandleFunc("/notes/{path:.+}", s.handleWriteNote).Methods("PUT")
	api.HandleFunc("/notes/{path:.+}", s.handleDeleteNote).Methods("DELETE")

	// Search
	api.HandleFunc("/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/suggest", s.handleSuggest).Methods("GET")

	// Links
	api.HandleFunc("/backlinks/{name}", s.handleBacklinks).Methods("GET")
	api.HandleFunc("/outgoing/{path:.+}", s.handleOutgoing).Methods("GET")
	api.HandleFunc("/links/extract", s.handleExtractLinks).Methods("POST")
	api.HandleFunc("/graph", s.handleGraph).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "ETag", RequestIDHeader},
		MaxAge:         86400,
	})
	return c.Handler(router)
}

// Start serves on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("api.server.started", "addr", addr, "vault", s.svc.Root())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("api.server.stopping")
	return s.server.Shutdown(ctx)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("api.request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.config.CORSOrigins, "*") || slices.Contains(s.config.CORSOrigins, origin)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.config.Version,
		"vault":   s.svc.Root(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.State())
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	paths, err := s.svc.ListNotes(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, paths)
}

func (s *Server) handleReadNote(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	note, err := s.svc.ReadNote(r.Context(), path)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if note == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("note not found: %s", path))
		return
	}

	etag := noteETag(note)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleWriteNote(w http.ResponseWriter, r *http.Request) {
	var req WriteNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	note, err := s.svc.WriteNote(r.Context(), mux.Vars(r)["path"], req.Content, req.Fields)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("ETag", noteETag(note))
	s.writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	deleted, err := s.svc.DeleteNote(r.Context(), path)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("note not found: %s", path))
		return
	}
	s.writeJSON(w, http.StatusOK, DeleteNoteResponse{Path: path, Deleted: true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("query parameter 'q' is required"))
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := s.svc.SearchNotes(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	names, err := s.svc.SuggestNotes(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleBacklinks(w http.ResponseWriter, r *http.Request) {
	refs, err := s.svc.GetBacklinks(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, refs)
}

func (s *Server) handleOutgoing(w http.ResponseWriter, r *http.Request) {
	refs, err := s.svc.GetOutgoingLinks(r.Context(), mux.Vars(r)["path"])
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, refs)
}

func (s *Server) handleExtractLinks(w http.ResponseWriter, r *http.Request) {
	var req ExtractLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.ExtractLinks(req.Content))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.svc.BuildGraph(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, graph)
}

// handleEvents streams note changes over a websocket until either side
// goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := s.svc.Watch(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrWatchUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("api.events.upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	// Reads only to notice the client closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				s.logger.Debug("api.events.write_failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data}); err != nil {
		s.logger.Error("api.response.encode_failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error()}); encErr != nil {
		s.logger.Error("api.response.encode_failed", "error", encErr)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrPathTraversal), errors.Is(err, core.ErrVaultNotFound), errors.Is(err, core.ErrNotANote):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoteExists):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}

// noteETag fingerprints a note by its content, title and modification time.
func noteETag(note *core.Note) string {
	h := xxhash.New()
	_, _ = h.WriteString(note.Path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(note.Title)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(note.Content)
	return fmt.Sprintf(`"%016x-%x"`, h.Sum64(), note.ModifiedAt.UnixNano())
}
