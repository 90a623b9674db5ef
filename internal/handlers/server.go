// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/middleware"
	"github.com/quizfire/quizfire/internal/ws"
)

// Server wires the HTTP surface to the game machine and the websocket
// hub. It holds no game state of its own.
type Server struct {
	Machine *game.Machine
	Hub     *ws.Hub
	Store   game.Store
	Log     *logrus.Logger
}

func NewServer(machine *game.Machine, hub *ws.Hub, store game.Store, log *logrus.Logger) *Server {
	return &Server{Machine: machine, Hub: hub, Store: store, Log: log}
}

// Routes builds the HTTP mux. All game actions are keyed by session
// code; the host authenticates by presenting the device id the session
// was created with.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /packs", s.handleListPacks)
	mux.HandleFunc("GET /packs/{id}", s.handleGetPack)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{code}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{code}/players", s.handleJoin)
	mux.HandleFunc("POST /sessions/{code}/start", s.handleStart)
	mux.HandleFunc("POST /sessions/{code}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("POST /sessions/{code}/reveal", s.handleReveal)
	mux.HandleFunc("POST /sessions/{code}/next", s.handleNext)
	mux.HandleFunc("GET /sessions/{code}/scores", s.handleScores)
	mux.HandleFunc("GET /sessions/{code}/answer-status", s.handleAnswerStatus)

	mux.HandleFunc("PATCH /players/{id}", s.handleUpdatePlayer)
	mux.HandleFunc("DELETE /players/{id}", s.handleRemovePlayer)

	mux.HandleFunc("GET /ws", s.handleWS)

	return middleware.RequestLogger(s.Log)(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
