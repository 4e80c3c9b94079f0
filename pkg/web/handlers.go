package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ritzau/topology-lens/pkg/criteria"
	"github.com/ritzau/topology-lens/pkg/lens"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
	"github.com/ritzau/topology-lens/pkg/pubsub"
)

// CriterionView describes an active criterion
type CriterionView struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	State string `json:"state,omitempty"`
}

type zoomRequest struct {
	Level *int `json:"level"`
}

// focusRequest lists vertices as "namespace:id"
type focusRequest struct {
	Vertices []string `json:"vertices"`
}

type collapseRequest struct {
	Namespace string   `json:"namespace"`
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Style     string   `json:"style"`
	Members   []string `json:"members"`
}

type collapseToggleRequest struct {
	Collapsed bool `json:"collapsed"`
}

type labelRequest struct {
	Namespace string `json:"namespace"`
	Pattern   string `json:"pattern"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.container.Graph()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleCriteria(w http.ResponseWriter, r *http.Request) {
	active := s.container.Criteria()
	views := make([]CriterionView, 0, len(active))

	// State keys of mutable criteria are read under the container lock
	_ = s.container.Update(func() error {
		for _, c := range active {
			view := CriterionView{Key: c.Key(), Kind: kindOf(c)}
			if stateful, ok := c.(criteria.Stateful); ok {
				view.State = stateful.StateKey()
			}
			views = append(views, view)
		}
		return nil
	})

	writeJSON(w, http.StatusOK, views)
}

func kindOf(c criteria.Criterion) string {
	switch c.(type) {
	case criteria.SemanticZoomLevel:
		return "zoom"
	case criteria.CollapsibleCriterion:
		return "collapse"
	case criteria.HopCriterion:
		return "focus"
	case criteria.EdgeFilter:
		return "label"
	default:
		return "other"
	}
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Level == nil {
		writeError(w, r, http.StatusBadRequest, errors.New("missing level"))
		return
	}

	s.container.SetSemanticZoomLevel(*req.Level)
	logging.InfoContext(r.Context(), "Zoom level changed", "level", s.container.SemanticZoomLevel())
	s.respondWithGraph(w, r, http.StatusOK)
}

func parseRefs(values []string) ([]model.VertexRef, error) {
	refs := make([]model.VertexRef, 0, len(values))
	for _, v := range values {
		ref := model.ParseVertexRef(v, "")
		if ref.Namespace == "" || ref.ID == "" {
			return nil, fmt.Errorf("vertex %q must be namespace:id", v)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Server) handleFocusAdd(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	refs, err := parseRefs(req.Vertices)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var state string
	_ = s.container.Update(func() error {
		s.focus.Add(refs...)
		state = s.focus.StateKey()
		return nil
	})
	s.container.AddCriteria(s.focus)

	logging.InfoContext(r.Context(), "Focus added", "vertices", len(refs), "focus", state)
	s.respondWithGraph(w, r, http.StatusOK)
}

// handleFocusRemove removes the listed vertices, or all of them for an empty
// list
func (s *Server) handleFocusRemove(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}
	refs, err := parseRefs(req.Vertices)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	_ = s.container.Update(func() error {
		if len(refs) == 0 {
			s.focus.Clear()
		}
		for _, ref := range refs {
			s.focus.Remove(ref)
		}
		return nil
	})

	s.respondWithGraph(w, r, http.StatusOK)
}

func (s *Server) handleCollapseAdd(w http.ResponseWriter, r *http.Request) {
	var req collapseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Namespace == "" || req.ID == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("collapsed vertex needs namespace and id"))
		return
	}
	members, err := parseRefs(req.Members)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	representation := model.Vertex{
		VertexRef: model.NewVertexRef(req.Namespace, req.ID),
		Label:     req.Label,
		StyleName: req.Style,
	}
	if representation.Label == "" {
		representation.Label = req.ID
	}

	if _, exists := s.container.BaseProvider().Vertex(representation.VertexRef); exists {
		writeError(w, r, http.StatusConflict, fmt.Errorf("vertex %s already exists", representation.VertexRef))
		return
	}

	collapsible := criteria.NewCollapsible(representation, members...)
	if !s.container.AddCriteria(collapsible) {
		writeError(w, r, http.StatusConflict, fmt.Errorf("%s already exists", collapsible.Key()))
		return
	}

	s.respondWithGraph(w, r, http.StatusCreated)
}

// findCollapsible resolves the collapse criterion named by the route
func (s *Server) findCollapsible(r *http.Request) (criteria.CollapsibleCriterion, bool) {
	vars := mux.Vars(r)
	rep := model.NewVertexRef(vars["namespace"], vars["id"])

	found, ok := s.container.FindCriteria("collapse/" + rep.String())
	if !ok {
		return nil, false
	}
	collapsible, ok := found.(criteria.CollapsibleCriterion)
	return collapsible, ok
}

func (s *Server) handleCollapseToggle(w http.ResponseWriter, r *http.Request) {
	collapsible, ok := s.findCollapsible(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, errors.New("no such collapsed vertex"))
		return
	}

	var req collapseToggleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	_ = s.container.Update(func() error {
		collapsible.SetCollapsed(req.Collapsed)
		return nil
	})
	s.respondWithGraph(w, r, http.StatusOK)
}

func (s *Server) handleCollapseRemove(w http.ResponseWriter, r *http.Request) {
	collapsible, ok := s.findCollapsible(r)
	if !ok || !s.container.RemoveCriteria(collapsible) {
		writeError(w, r, http.StatusNotFound, errors.New("no such collapsed vertex"))
		return
	}
	s.respondWithGraph(w, r, http.StatusOK)
}

func (s *Server) decodeLabelMatch(w http.ResponseWriter, r *http.Request) (*criteria.LabelMatch, bool) {
	var req labelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	if req.Namespace == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing namespace"))
		return nil, false
	}

	match, err := criteria.LabelMatches(req.Namespace, req.Pattern)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	return match, true
}

func (s *Server) handleLabelAdd(w http.ResponseWriter, r *http.Request) {
	match, ok := s.decodeLabelMatch(w, r)
	if !ok {
		return
	}

	status := http.StatusCreated
	if !s.container.AddCriteria(match) {
		status = http.StatusOK
	}
	s.respondWithGraph(w, r, status)
}

func (s *Server) handleLabelRemove(w http.ResponseWriter, r *http.Request) {
	match, ok := s.decodeLabelMatch(w, r)
	if !ok {
		return
	}
	if !s.container.RemoveCriteria(match) {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("%s is not active", match.Key()))
		return
	}
	s.respondWithGraph(w, r, http.StatusOK)
}

// openStream writes SSE headers and the connection comment
func openStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// stream forwards subscription events until the client goes away or the
// publisher closes
func stream(w http.ResponseWriter, r *http.Request, sub pubsub.Subscription) {
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "Error writing SSE event", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleSubscribeSourceStatus(w http.ResponseWriter, r *http.Request) {
	sub, err := s.publisher.Subscribe(r.Context(), pubsub.TopicSourceStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	openStream(w)
	stream(w, r, sub)
}

// handleSubscribeDisplayGraph sends the current graph as a full event, then
// every diff published after it
func (s *Server) handleSubscribeDisplayGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sub, err := s.publisher.Subscribe(r.Context(), pubsub.TopicDisplayGraph)
	if err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	snapshot := s.last
	if snapshot == nil {
		snapshot, err = s.container.Graph()
		s.last = snapshot
	}
	s.mu.Unlock()
	defer sub.Close()

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	openStream(w)

	data, err := json.Marshal(lens.ComputeDiff(nil, snapshot))
	if err != nil {
		logging.ErrorContext(r.Context(), "failed to encode snapshot", "error", err)
		return
	}
	initial := pubsub.Event{Topic: pubsub.TopicDisplayGraph, Type: pubsub.EventGraphFull, Data: data}
	if err := pubsub.WriteSSE(w, initial); err != nil {
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	stream(w, r, sub)
}
