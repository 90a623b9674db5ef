// internal/handlers/sessions.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/models"
)

type createSessionRequest struct {
	HostDeviceID string `json:"hostDeviceId"`
	PackID       string `json:"packId"`
}

// handleCreateSession creates a waiting session with a fresh join code.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	packID, err := uuid.Parse(req.PackID)
	if err != nil {
		writeError(w, game.NewError(game.KindValidation, "invalid pack id"))
		return
	}

	session, err := s.Machine.CreateSession(r.Context(), req.HostDeviceID, packID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type sessionDetail struct {
	models.Session
	Pack    *models.QuestionPack `json:"pack"`
	Players []models.Player      `json:"players"`

	// CurrentQuestion is the sanitized view of the question in play,
	// present only while the session is playing.
	CurrentQuestion *game.QuestionView `json:"currentQuestion,omitempty"`
}

// handleGetSession returns the session with its pack, player list and
// current question, for clients catching up after a reconnect.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	code := game.NormalizeCode(r.PathValue("code"))
	session, err := s.Store.GetSessionByCode(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	pack, err := s.Store.GetPack(r.Context(), session.QuestionPackID)
	if err != nil {
		writeError(w, err)
		return
	}
	players, err := s.Store.ListPlayers(r.Context(), session.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	detail := sessionDetail{Session: *session, Pack: pack, Players: players}
	if session.CurrentQuestionID != nil {
		question, err := s.Store.GetQuestion(r.Context(), *session.CurrentQuestionID)
		if err != nil {
			writeError(w, err)
			return
		}
		view := game.ViewOf(*question)
		detail.CurrentQuestion = &view
	}
	writeJSON(w, http.StatusOK, detail)
}

type joinRequest struct {
	DeviceID string `json:"deviceId"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	player, err := s.Machine.Join(r.Context(), r.PathValue("code"), req.DeviceID, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

type hostRequest struct {
	HostDeviceID string `json:"hostDeviceId"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req hostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := s.Machine.Start(r.Context(), r.PathValue("code"), req.HostDeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type submitAnswerRequest struct {
	DeviceID    string `json:"deviceId"`
	AnswerIndex int    `json:"answerIndex"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := s.Machine.SubmitAnswer(r.Context(), r.PathValue("code"), req.DeviceID, req.AnswerIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

// handleReveal ends the current question early at the host's request.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req hostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.Machine.RevealAnswer(r.Context(), r.PathValue("code"), req.HostDeviceID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revealed": true})
}

// handleNext advances to the next question, or finishes the game when
// the pack is exhausted.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var req hostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	advanced, err := s.Machine.NextQuestion(r.Context(), r.PathValue("code"), req.HostDeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"advanced": advanced, "finished": !advanced})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.Machine.Scores(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

func (s *Server) handleAnswerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Machine.GetAnswerStatus(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
