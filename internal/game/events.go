// internal/game/events.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/models"
)

// EventType enumerates every event the server pushes to a room.
type EventType string

const (
	EventConnectionAck     EventType = "connection_ack"
	EventPlayerJoined      EventType = "player_joined"
	EventPlayerLeft        EventType = "player_left"
	EventGameStarted       EventType = "game_started"
	EventQuestionRevealed  EventType = "question_revealed"
	EventAnswerSubmitted   EventType = "answer_submitted"
	EventAnswerRevealed    EventType = "answer_revealed"
	EventQuestionCompleted EventType = "question_completed"
	EventScoresUpdated     EventType = "scores_updated"
	EventGameFinished      EventType = "game_finished"
	EventError             EventType = "error"
)

// Event is the envelope every pushed message shares. Data always holds
// one of the payload structs below, keyed by Type.
type Event struct {
	Type        EventType   `json:"type"`
	SessionCode string      `json:"sessionCode"`
	Timestamp   time.Time   `json:"timestamp"`
	Data        interface{} `json:"data"`
}

// NewEvent builds an event envelope stamped with the current time.
func NewEvent(typ EventType, sessionCode string, data interface{}) Event {
	return Event{
		Type:        typ,
		SessionCode: sessionCode,
		Timestamp:   time.Now().UTC(),
		Data:        data,
	}
}

// Recipients selects which connections in a room receive an event.
type Recipients int

const (
	ToAll Recipients = iota
	ToHost
	ToPlayers
)

// Broadcaster fans an event out to the live connections of a session
// room. Implementations must tolerate rooms with no connections: game
// actions arrive over HTTP and must succeed with zero live viewers.
type Broadcaster interface {
	Broadcast(sessionCode string, to Recipients, ev Event)
}

// Journal optionally persists every emitted event for replay or
// analytics. Recording is best-effort; failures are logged, never
// surfaced to players.
type Journal interface {
	Record(ev Event) error
}

// QuestionView is a question as shown to players: no correct answer.
type QuestionView struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Options   []string  `json:"options"`
	TimeLimit int       `json:"timeLimit"`
}

// ViewOf strips a question down to what players may see.
func ViewOf(q models.Question) QuestionView {
	return QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		Options:   q.Options,
		TimeLimit: effectiveTimeLimit(q),
	}
}

type ConnectionAckData struct {
	ClientID    string `json:"clientId"`
	PlayerCount int    `json:"playerCount,omitempty"`
}

type PlayerJoinedData struct {
	Player       models.Player `json:"player"`
	TotalPlayers int           `json:"totalPlayers"`
}

type PlayerLeftData struct {
	PlayerID     uuid.UUID `json:"playerId"`
	Nickname     string    `json:"nickname"`
	TotalPlayers int       `json:"totalPlayers"`
}

type GameStartedData struct {
	QuestionCount int          `json:"questionCount"`
	FirstQuestion QuestionView `json:"firstQuestion"`
}

type QuestionRevealedData struct {
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
	Question       QuestionView `json:"question"`

	// CorrectAnswer is only populated on the host-only variant.
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

type AnswerSubmittedData struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Nickname      string    `json:"nickname"`
	AnsweredCount int       `json:"answeredCount"`
	TotalPlayers  int       `json:"totalPlayers"`
	AllAnswered   bool      `json:"allAnswered"`
}

// PlayerAnswerStatus is the per-player detail in answer_revealed.
type PlayerAnswerStatus struct {
	PlayerID       uuid.UUID `json:"playerId"`
	Nickname       string    `json:"nickname"`
	Answered       bool      `json:"answered"`
	IsCorrect      bool      `json:"isCorrect"`
	SelectedOption int       `json:"selectedOption"`
	Score          int       `json:"score"`
}

type AnswerRevealedData struct {
	QuestionID         uuid.UUID            `json:"questionId"`
	CorrectAnswerIndex int                  `json:"correctAnswerIndex"`
	Players            []PlayerAnswerStatus `json:"players"`
}

type QuestionCompletedData struct {
	QuestionID    uuid.UUID            `json:"questionId"`
	CorrectAnswer string               `json:"correctAnswer"`
	Scores        []PlayerAnswerStatus `json:"scores"`

	// TimeoutPlayers lists player IDs given synthetic answers, present
	// only when the round ended by timeout.
	TimeoutPlayers []uuid.UUID `json:"timeoutPlayers,omitempty"`
}

// RankedScore is one leaderboard row. Rank is 1-based; ties share
// score but are ordered earliest-join-first.
type RankedScore struct {
	PlayerID   uuid.UUID `json:"playerId"`
	Nickname   string    `json:"nickname"`
	TotalScore int       `json:"totalScore"`
	Rank       int       `json:"rank"`
}

type ScoresUpdatedData struct {
	Scores []RankedScore `json:"scores"`
}

type GameFinishedData struct {
	FinalScores []RankedScore `json:"finalScores"`
	Winner      *RankedScore  `json:"winner"`
}

type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
