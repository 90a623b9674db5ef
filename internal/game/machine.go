// internal/game/machine.go
package game

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/quizfire/quizfire/internal/models"
)

// Config carries the machine's timing and retry knobs.
type Config struct {
	// MinRevealDelay is the minimum time a question stays on screen even
	// when every player answers instantly, so the results don't flash.
	MinRevealDelay time.Duration
	// RevealPause separates answer_revealed from question_completed.
	RevealPause time.Duration
	// CodeAttempts bounds session-code collision retries.
	CodeAttempts int
}

func (c Config) withDefaults() Config {
	if c.MinRevealDelay <= 0 {
		c.MinRevealDelay = 5 * time.Second
	}
	if c.RevealPause <= 0 {
		c.RevealPause = 500 * time.Millisecond
	}
	if c.CodeAttempts <= 0 {
		c.CodeAttempts = DefaultCodeAttempts
	}
	return c
}

// Machine orchestrates session status transitions. Host actions
// (start, reveal, next), player actions (submit) and timer expiries
// all funnel through here; the machine reads and writes the store,
// updates the ledger, re-arms the timer registry and emits events to
// the room.
//
// The machine assumes a single process owns all live timers: the
// registry map and the reveal-time map below are process-local. Stored
// state remains the source of truth; everything here can be rebuilt
// from it.
type Machine struct {
	store   Store
	timers  *TimerRegistry
	rooms   Broadcaster
	journal Journal
	ledger  *Ledger
	clock   clockwork.Clock
	log     *logrus.Logger
	cfg     Config

	// revealedAt tracks when the current question of each session was
	// shown, for the minimum-reveal-delay rule. Mutated only by the
	// machine.
	mu         sync.Mutex
	revealedAt map[string]time.Time
}

// NewMachine wires the machine to its collaborators. journal may be
// nil to disable event journaling.
func NewMachine(store Store, timers *TimerRegistry, rooms Broadcaster, journal Journal, clock clockwork.Clock, log *logrus.Logger, cfg Config) *Machine {
	return &Machine{
		store:      store,
		timers:     timers,
		rooms:      rooms,
		journal:    journal,
		ledger:     NewLedger(store, clock),
		clock:      clock,
		log:        log,
		cfg:        cfg.withDefaults(),
		revealedAt: make(map[string]time.Time),
	}
}

// Ledger exposes the machine's answer ledger.
func (m *Machine) Ledger() *Ledger { return m.ledger }

func (m *Machine) emit(sessionCode string, to Recipients, typ EventType, data interface{}) {
	ev := NewEvent(typ, sessionCode, data)
	m.rooms.Broadcast(sessionCode, to, ev)
	if m.journal != nil {
		if err := m.journal.Record(ev); err != nil {
			m.log.Warnf("journal: failed to record %s for session %s: %v", typ, sessionCode, err)
		}
	}
}

func (m *Machine) markRevealed(sessionCode string) {
	m.mu.Lock()
	m.revealedAt[sessionCode] = m.clock.Now()
	m.mu.Unlock()
}

func (m *Machine) sinceRevealed(sessionCode string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.revealedAt[sessionCode]
	if !ok {
		return m.cfg.MinRevealDelay
	}
	return m.clock.Since(at)
}

func (m *Machine) clearRevealed(sessionCode string) {
	m.mu.Lock()
	delete(m.revealedAt, sessionCode)
	m.mu.Unlock()
}

// CreateSession creates a waiting session with a fresh unique code.
// Codes are retried on collision up to the configured attempt budget;
// exhausting it returns KindExhausted.
func (m *Machine) CreateSession(ctx context.Context, hostDeviceID string, packID uuid.UUID) (*models.Session, error) {
	if strings.TrimSpace(hostDeviceID) == "" {
		return nil, NewError(KindValidation, "hostDeviceId is required")
	}
	pack, err := m.store.GetPack(ctx, packID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < m.cfg.CodeAttempts; attempt++ {
		now := m.clock.Now().UTC()
		session := &models.Session{
			ID:             uuid.New(),
			Code:           NewCode(),
			HostDeviceID:   hostDeviceID,
			QuestionPackID: pack.ID,
			Status:         models.SessionWaiting,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		err := m.store.CreateSession(ctx, session)
		if errors.Is(err, ErrCodeTaken) {
			m.log.Debugf("session code %s collided, retrying (%d/%d)", session.Code, attempt+1, m.cfg.CodeAttempts)
			continue
		}
		if err != nil {
			return nil, err
		}
		m.log.Infof("session %s created for pack %s", session.Code, pack.ID)
		return session, nil
	}
	return nil, NewError(KindExhausted, "failed to generate a unique session code after %d attempts", m.cfg.CodeAttempts)
}

// Join adds a device to a waiting session, or returns the existing
// player when the device already joined. Nicknames are 1-20 characters
// after trimming.
func (m *Machine) Join(ctx context.Context, code, deviceID, nickname string) (*models.Player, error) {
	nickname = strings.TrimSpace(nickname)
	if deviceID == "" {
		return nil, NewError(KindValidation, "deviceId is required")
	}
	if nickname == "" || len(nickname) > 20 {
		return nil, NewError(KindValidation, "nickname must be 1-20 characters")
	}

	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionWaiting {
		return nil, NewError(KindInvalidState, "session is not accepting new players")
	}

	if existing, err := m.store.GetPlayerByDevice(ctx, session.ID, deviceID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	player := &models.Player{
		ID:        uuid.New(),
		SessionID: session.ID,
		DeviceID:  deviceID,
		Nickname:  nickname,
		JoinedAt:  m.clock.Now().UTC(),
	}
	if err := m.store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	m.emit(session.Code, ToAll, EventPlayerJoined, PlayerJoinedData{
		Player:       *player,
		TotalPlayers: len(players),
	})
	return player, nil
}

// Leave removes a player and notifies the room.
func (m *Machine) Leave(ctx context.Context, playerID uuid.UUID) error {
	player, err := m.store.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	session, err := m.store.GetSession(ctx, player.SessionID)
	if err != nil {
		return err
	}
	if err := m.store.DeletePlayer(ctx, playerID); err != nil {
		return err
	}
	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return err
	}
	m.emit(session.Code, ToAll, EventPlayerLeft, PlayerLeftData{
		PlayerID:     player.ID,
		Nickname:     player.Nickname,
		TotalPlayers: len(players),
	})
	return nil
}

// Start moves a waiting session into play: the first question becomes
// current, its countdown is armed and game_started goes to the room.
func (m *Machine) Start(ctx context.Context, code, hostDeviceID string) (*models.Session, error) {
	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if session.HostDeviceID != hostDeviceID {
		return nil, NewError(KindUnauthorized, "only the host can start the game")
	}
	if session.Status != models.SessionWaiting {
		return nil, NewError(KindInvalidState, "session already %s", session.Status)
	}

	questions, err := m.store.ListPackQuestions(ctx, session.QuestionPackID)
	if err != nil {
		return nil, err
	}
	first := FirstQuestion(questions)
	if first == nil {
		return nil, NewError(KindEmptyPack, "question pack has no questions")
	}

	if err := m.store.UpdateSessionState(ctx, session.ID, models.SessionPlaying, &first.ID); err != nil {
		return nil, err
	}
	session.Status = models.SessionPlaying
	session.CurrentQuestionID = &first.ID

	m.markRevealed(session.Code)
	m.armQuestionTimer(session.Code, first)

	m.emit(session.Code, ToAll, EventGameStarted, GameStartedData{
		QuestionCount: len(questions),
		FirstQuestion: ViewOf(*first),
	})
	m.log.Infof("session %s started with %d questions", session.Code, len(questions))
	return session, nil
}

func (m *Machine) armQuestionTimer(sessionCode string, q *models.Question) {
	questionID := q.ID
	d := time.Duration(effectiveTimeLimit(*q)) * time.Second
	m.timers.Arm(sessionCode, d, func() {
		m.HandleTimeout(context.Background(), sessionCode, questionID)
	})
}

// SubmitAnswer records a player's answer to the current question. When
// the last player answers, the pending timeout timer is replaced by a
// reveal scheduled through the registry: immediately if the question
// has been up at least MinRevealDelay, otherwise after the remaining
// delta. Routing both paths through the registry keeps at most one
// pending action per session.
func (m *Machine) SubmitAnswer(ctx context.Context, code, deviceID string, answerIndex int) (*models.Answer, error) {
	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionPlaying || session.CurrentQuestionID == nil {
		return nil, NewError(KindInvalidState, "session is not accepting answers")
	}

	question, err := m.store.GetQuestion(ctx, *session.CurrentQuestionID)
	if err != nil {
		return nil, err
	}
	if answerIndex < 0 || answerIndex >= len(question.Options) {
		return nil, NewError(KindValidation, "answer index %d out of range", answerIndex)
	}

	player, err := m.store.GetPlayerByDevice(ctx, session.ID, deviceID)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(KindNotFound, "player not found in session")
	}
	if err != nil {
		return nil, err
	}

	answer, err := m.ledger.Submit(ctx, player, question, answerIndex)
	if err != nil {
		return nil, err
	}

	answeredCount, err := m.ledger.CountAnswered(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	allAnswered := answeredCount >= len(players)

	m.emit(session.Code, ToAll, EventAnswerSubmitted, AnswerSubmittedData{
		PlayerID:      player.ID,
		Nickname:      player.Nickname,
		AnsweredCount: answeredCount,
		TotalPlayers:  len(players),
		AllAnswered:   allAnswered,
	})

	if allAnswered {
		m.scheduleReveal(session.Code, *question)
	}
	return answer, nil
}

// scheduleReveal arms the reveal-and-complete sequence, honoring the
// minimum-reveal-delay rule. Arming overwrites the question's timeout
// timer, which is exactly the cancellation the early-completion path
// needs.
func (m *Machine) scheduleReveal(sessionCode string, question models.Question) {
	delay := m.cfg.MinRevealDelay - m.sinceRevealed(sessionCode)
	if delay < 0 {
		delay = 0
	}
	m.timers.Arm(sessionCode, delay, func() {
		m.revealAndComplete(context.Background(), sessionCode, &question, nil)
	})
}

// RevealAnswer is the manual host trigger: it bypasses the 5-second
// rule and reveals the current question immediately.
func (m *Machine) RevealAnswer(ctx context.Context, code, hostDeviceID string) error {
	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return err
	}
	if session.HostDeviceID != hostDeviceID {
		return NewError(KindUnauthorized, "only the host can reveal the answer")
	}
	if session.Status != models.SessionPlaying || session.CurrentQuestionID == nil {
		return NewError(KindInvalidState, "no question to reveal")
	}
	question, err := m.store.GetQuestion(ctx, *session.CurrentQuestionID)
	if err != nil {
		return err
	}

	m.timers.Cancel(session.Code)
	m.revealAndComplete(ctx, session.Code, question, nil)
	return nil
}

// HandleTimeout fires when a question's countdown expires. It
// re-validates the session against the question the timer was armed
// for: if the host already advanced this is a benign race and the
// callback no-ops. Otherwise stragglers get synthetic answers, the
// host's counter is walked up to all-answered, and the round reveals.
func (m *Machine) HandleTimeout(ctx context.Context, sessionCode string, questionID uuid.UUID) {
	session, err := m.store.GetSessionByCode(ctx, sessionCode)
	if err != nil {
		m.log.Warnf("timeout for session %s: %v", sessionCode, err)
		return
	}
	if session.Status != models.SessionPlaying || session.CurrentQuestionID == nil || *session.CurrentQuestionID != questionID {
		m.log.Debugf("timeout for session %s ignored: question %s is no longer current", sessionCode, questionID)
		return
	}
	question, err := m.store.GetQuestion(ctx, questionID)
	if err != nil {
		m.log.Warnf("timeout for session %s: %v", sessionCode, err)
		return
	}

	timedOut, err := m.ledger.FillTimeouts(ctx, session.ID, questionID)
	if err != nil {
		m.log.Errorf("timeout for session %s: filling timeouts: %v", sessionCode, err)
		return
	}

	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		m.log.Errorf("timeout for session %s: %v", sessionCode, err)
		return
	}
	// Every player already had an answer and nothing was filled: this
	// round completed once before, so a repeated timeout is a no-op.
	if len(timedOut) == 0 && len(players) > 0 {
		m.log.Debugf("timeout for session %s ignored: question %s already completed", sessionCode, questionID)
		return
	}
	alreadyAnswered := len(players) - len(timedOut)
	for i, p := range timedOut {
		count := alreadyAnswered + i + 1
		m.emit(session.Code, ToAll, EventAnswerSubmitted, AnswerSubmittedData{
			PlayerID:      p.ID,
			Nickname:      p.Nickname,
			AnsweredCount: count,
			TotalPlayers:  len(players),
			AllAnswered:   count >= len(players),
		})
	}

	m.revealAndComplete(ctx, session.Code, question, timedOut)
}

// revealAndComplete is the sequence shared by timeout, early
// completion and manual reveal: answer_revealed with per-player
// detail, a short pause, then question_completed with the literal
// correct answer and updated scores. timedOut is non-nil only on the
// timeout path.
func (m *Machine) revealAndComplete(ctx context.Context, sessionCode string, question *models.Question, timedOut []models.Player) {
	session, err := m.store.GetSessionByCode(ctx, sessionCode)
	if err != nil {
		m.log.Errorf("reveal for session %s: %v", sessionCode, err)
		return
	}
	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		m.log.Errorf("reveal for session %s: %v", sessionCode, err)
		return
	}
	answers, err := m.store.ListAnswers(ctx, session.ID, question.ID)
	if err != nil {
		m.log.Errorf("reveal for session %s: %v", sessionCode, err)
		return
	}

	byPlayer := make(map[uuid.UUID]models.Answer, len(answers))
	for _, a := range answers {
		byPlayer[a.PlayerID] = a
	}

	statuses := make([]PlayerAnswerStatus, 0, len(players))
	for _, p := range players {
		status := PlayerAnswerStatus{
			PlayerID:       p.ID,
			Nickname:       p.Nickname,
			SelectedOption: models.TimedOutOption,
			Score:          p.Score,
		}
		if a, ok := byPlayer[p.ID]; ok {
			status.Answered = a.SelectedOptionIndex != models.TimedOutOption
			status.IsCorrect = a.IsCorrect
			status.SelectedOption = a.SelectedOptionIndex
		}
		statuses = append(statuses, status)
	}

	m.emit(sessionCode, ToAll, EventAnswerRevealed, AnswerRevealedData{
		QuestionID:         question.ID,
		CorrectAnswerIndex: question.CorrectAnswerIndex,
		Players:            statuses,
	})

	m.clock.Sleep(m.cfg.RevealPause)

	correctText := ""
	if question.CorrectAnswerIndex >= 0 && question.CorrectAnswerIndex < len(question.Options) {
		correctText = question.Options[question.CorrectAnswerIndex]
	}
	completed := QuestionCompletedData{
		QuestionID:    question.ID,
		CorrectAnswer: correctText,
		Scores:        statuses,
	}
	for _, p := range timedOut {
		completed.TimeoutPlayers = append(completed.TimeoutPlayers, p.ID)
	}
	m.emit(sessionCode, ToAll, EventQuestionCompleted, completed)

	m.emit(sessionCode, ToAll, EventScoresUpdated, ScoresUpdatedData{
		Scores: rankScores(players),
	})
}

// NextQuestion advances to the next question in pack order, or
// finishes the game when the current question was the last. Returns
// whether another question follows.
func (m *Machine) NextQuestion(ctx context.Context, code, hostDeviceID string) (bool, error) {
	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return false, err
	}
	if session.HostDeviceID != hostDeviceID {
		return false, NewError(KindUnauthorized, "only the host can advance the game")
	}
	if session.Status != models.SessionPlaying {
		return false, NewError(KindInvalidState, "session is not playing")
	}

	questions, err := m.store.ListPackQuestions(ctx, session.QuestionPackID)
	if err != nil {
		return false, err
	}

	var next *models.Question
	if session.CurrentQuestionID != nil {
		next = NextQuestion(questions, *session.CurrentQuestionID)
	}

	if next == nil {
		return false, m.finish(ctx, session)
	}

	m.timers.Cancel(session.Code)
	if err := m.store.UpdateSessionState(ctx, session.ID, models.SessionPlaying, &next.ID); err != nil {
		return false, err
	}
	m.markRevealed(session.Code)
	m.armQuestionTimer(session.Code, next)

	revealed := QuestionRevealedData{
		QuestionNumber: questionNumber(questions, next.ID),
		TotalQuestions: len(questions),
		Question:       ViewOf(*next),
	}
	m.emit(session.Code, ToPlayers, EventQuestionRevealed, revealed)

	// The host's view additionally carries the correct answer text.
	if next.CorrectAnswerIndex >= 0 && next.CorrectAnswerIndex < len(next.Options) {
		revealed.CorrectAnswer = next.Options[next.CorrectAnswerIndex]
	}
	m.emit(session.Code, ToHost, EventQuestionRevealed, revealed)
	return true, nil
}

// finish transitions the session to its terminal state and broadcasts
// the final rankings.
func (m *Machine) finish(ctx context.Context, session *models.Session) error {
	m.timers.Cancel(session.Code)
	if err := m.store.UpdateSessionState(ctx, session.ID, models.SessionFinished, nil); err != nil {
		return err
	}
	m.clearRevealed(session.Code)

	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return err
	}
	ranked := rankScores(players)
	var winner *RankedScore
	if len(ranked) > 0 {
		winner = &ranked[0]
	}
	m.emit(session.Code, ToAll, EventGameFinished, GameFinishedData{
		FinalScores: ranked,
		Winner:      winner,
	})
	m.log.Infof("session %s finished, %d players", session.Code, len(players))
	return nil
}

// Scores returns the session's current leaderboard.
func (m *Machine) Scores(ctx context.Context, code string) ([]RankedScore, error) {
	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return rankScores(players), nil
}

// AnswerStatus summarizes progress on the current question.
type AnswerStatus struct {
	QuestionID    *uuid.UUID `json:"questionId"`
	AnsweredCount int        `json:"answeredCount"`
	TotalPlayers  int        `json:"totalPlayers"`
	AllAnswered   bool       `json:"allAnswered"`
}

// GetAnswerStatus reports how many players answered the current
// question.
func (m *Machine) GetAnswerStatus(ctx context.Context, code string) (*AnswerStatus, error) {
	session, err := m.store.GetSessionByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	players, err := m.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	status := &AnswerStatus{TotalPlayers: len(players)}
	if session.CurrentQuestionID == nil {
		return status, nil
	}
	status.QuestionID = session.CurrentQuestionID
	count, err := m.ledger.CountAnswered(ctx, *session.CurrentQuestionID)
	if err != nil {
		return nil, err
	}
	status.AnsweredCount = count
	status.AllAnswered = len(players) > 0 && count >= len(players)
	return status, nil
}

// rankScores orders players by score descending; ties go to the
// earlier joiner. ListPlayers returns joined_at-ascending rows, so a
// stable sort on score alone preserves that order within ties.
func rankScores(players []models.Player) []RankedScore {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	ranked := make([]RankedScore, 0, len(sorted))
	for i, p := range sorted {
		ranked = append(ranked, RankedScore{
			PlayerID:   p.ID,
			Nickname:   p.Nickname,
			TotalScore: p.Score,
			Rank:       i + 1,
		})
	}
	return ranked
}
