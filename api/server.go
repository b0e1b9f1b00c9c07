package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dropfour/dropfour/game/session"
	ws "github.com/dropfour/dropfour/transport/websocket"
)

// Server is the broker's HTTP surface: the WebSocket endpoint, a health
// check, read-only stats, and the static client files.
type Server struct {
	registry  *session.Registry
	handler   *ws.Handler
	router    *mux.Router
	staticDir string
	startedAt time.Time
}

// NewServer creates the HTTP server around a session registry and its
// WebSocket handler. staticDir may be empty to disable file serving.
func NewServer(registry *session.Registry, handler *ws.Handler, staticDir string) *Server {
	s := &Server{
		registry:  registry,
		handler:   handler,
		router:    mux.NewRouter(),
		staticDir: staticDir,
		startedAt: time.Now(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/ws", s.handler.ServeWS)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")

	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions := s.registry.Sessions()

	connections := 0
	moves := 0
	finished := 0
	for _, sess := range sessions {
		connections += sess.ConnCount()
		moves += sess.Game.MoveCount()
		if _, over := sess.Game.Winner(); over {
			finished++
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":    len(sessions),
		"finished":    finished,
		"connections": connections,
		"moves":       moves,
		"uptime":      time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// SessionInfo is the public view of a session. Access tokens are
// capabilities and never appear here.
type SessionInfo struct {
	ID          string    `json:"id"`
	Moves       int       `json:"moves"`
	Connections int       `json:"connections"`
	Winner      string    `json:"winner,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.registry.Sessions()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := SessionInfo{
			ID:          sess.ID,
			Moves:       sess.Game.MoveCount(),
			Connections: sess.ConnCount(),
			StartedAt:   sess.StartedAt,
		}
		if winner, over := sess.Game.Winner(); over {
			info.Winner = string(winner)
		}
		infos = append(infos, info)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(infos),
		"sessions": infos,
	})
}
