// internal/handlers/players.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/game"
)

type updatePlayerRequest struct {
	Nickname string `json:"nickname"`
}

// handleUpdatePlayer renames a player. The same length rule applies as
// on join.
func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, game.NewError(game.KindValidation, "invalid player id"))
		return
	}
	var req updatePlayerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" || len(nickname) > 20 {
		writeError(w, game.NewError(game.KindValidation, "nickname must be 1-20 characters"))
		return
	}

	if err := s.Store.UpdatePlayerNickname(r.Context(), id, nickname); err != nil {
		writeError(w, err)
		return
	}
	player, err := s.Store.GetPlayer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// handleRemovePlayer deletes a player and notifies the room.
func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, game.NewError(game.KindValidation, "invalid player id"))
		return
	}

	if err := s.Machine.Leave(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
