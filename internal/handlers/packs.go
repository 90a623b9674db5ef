// internal/handlers/packs.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/models"
)

// handleListPacks returns every question pack without questions.
func (s *Server) handleListPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := s.Store.ListPacks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packs)
}

type packDetail struct {
	models.QuestionPack
	Questions []game.QuestionView `json:"questions"`
}

// handleGetPack returns one pack with its questions in play order.
// Correct answers are stripped; this endpoint is reachable by players.
func (s *Server) handleGetPack(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, game.NewError(game.KindValidation, "invalid pack id"))
		return
	}

	pack, err := s.Store.GetPack(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := s.Store.ListPackQuestions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]game.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, game.ViewOf(q))
	}
	writeJSON(w, http.StatusOK, packDetail{QuestionPack: *pack, Questions: views})
}
