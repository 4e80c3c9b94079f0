package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/lens"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// FocusName names the focus criterion the server edits
const FocusName = "focus"

// Server represents the web server
type Server struct {
	router    *mux.Router
	container *lens.Container
	publisher *pubsub.SSEPublisher
	focus     *criteria.FocusHop

	mu   sync.Mutex  // guards last and orders graph publication
	last *lens.Graph // last published display graph
}

// NewServer creates a web server over a container. An existing focus
// criterion named FocusName is reused so focus set from the command line can
// be edited.
func NewServer(container *lens.Container) *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// source_status: buffer last 10 events, replay only last event to new subscribers
	ssePublisher.ConfigureTopic(pubsub.TopicSourceStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false, // Only send current state
	})

	// display_graph is not buffered; subscribers get a full snapshot on connect
	// and diffs afterwards. A subscriber that misses a diff is disconnected and
	// resyncs on reconnect.
	ssePublisher.ConfigureTopic(pubsub.TopicDisplayGraph, pubsub.TopicConfig{
		CloseLagging: true,
	})

	focus := criteria.NewFocusHop(FocusName)
	if existing, ok := container.FindCriteria(focus.Key()); ok {
		if hop, isFocus := existing.(*criteria.FocusHop); isFocus {
			focus = hop
		}
	}

	s := &Server{
		router:    mux.NewRouter(),
		container: container,
		publisher: ssePublisher,
		focus:     focus,
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// PublishSourceStatus publishes a source status event
func (s *Server) PublishSourceStatus(state, source, message string) error {
	status := pubsub.SourceStatus{
		State:   state,
		Source:  source,
		Message: message,
	}
	return s.publisher.Publish(pubsub.TopicSourceStatus, state, status)
}

// Refresh materializes the display graph and publishes what changed since
// the last publication
func (s *Server) Refresh() (*lens.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.container.Graph()
	if err != nil {
		return nil, err
	}

	diff := lens.ComputeDiff(s.last, g)
	s.last = g
	if diff.IsEmpty() {
		return g, nil
	}

	eventType := pubsub.EventGraphDiff
	if diff.FullGraph {
		eventType = pubsub.EventGraphFull
	}
	if err := s.publisher.Publish(pubsub.TopicDisplayGraph, eventType, diff); err != nil {
		logging.Warn("failed to publish graph update", "error", err)
	}
	return g, nil
}

// Close shuts down the publisher and ends all subscriptions
func (s *Server) Close() error {
	return s.publisher.Close()
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/source_status", s.handleSubscribeSourceStatus).Methods("GET")
	s.router.HandleFunc("/api/subscribe/display_graph", s.handleSubscribeDisplayGraph).Methods("GET")

	// API routes
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/criteria", s.handleCriteria).Methods("GET")
	s.router.HandleFunc("/api/zoom", s.handleZoom).Methods("PUT")
	s.router.HandleFunc("/api/focus", s.handleFocusAdd).Methods("POST")
	s.router.HandleFunc("/api/focus", s.handleFocusRemove).Methods("DELETE")
	s.router.HandleFunc("/api/collapse", s.handleCollapseAdd).Methods("POST")
	s.router.HandleFunc("/api/collapse/{namespace}/{id}", s.handleCollapseToggle).Methods("PATCH")
	s.router.HandleFunc("/api/collapse/{namespace}/{id}", s.handleCollapseRemove).Methods("DELETE")
	s.router.HandleFunc("/api/filters/label", s.handleLabelAdd).Methods("POST")
	s.router.HandleFunc("/api/filters/label", s.handleLabelRemove).Methods("DELETE")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("failed to open embedded static files", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// Start serves until the context is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Close SSE streams first so Shutdown does not wait for them
		s.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("web server shutdown", "error", err)
		}
	}()

	logging.Info("Starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// writeJSON encodes a response body
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// respondWithGraph refreshes subscribers and returns the new graph
func (s *Server) respondWithGraph(w http.ResponseWriter, r *http.Request, status int) {
	g, err := s.Refresh()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, status, g)
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
