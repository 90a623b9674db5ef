// internal/game/memstore_test.go
package game

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/models"
)

// memStore is an in-memory Store. It enforces the same uniqueness
// rules as the Postgres schema: session codes, (session, device)
// players and (player, question) answers.
type memStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*models.Session
	packs     map[uuid.UUID]*models.QuestionPack
	questions map[uuid.UUID]*models.Question
	players   map[uuid.UUID]*models.Player
	answers   map[uuid.UUID]*models.Answer

	// joinSeq breaks joined_at ties deterministically, mirroring the
	// secondary id ordering in the SQL layer.
	joinSeq  int
	joinedAt map[uuid.UUID]int
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  make(map[uuid.UUID]*models.Session),
		packs:     make(map[uuid.UUID]*models.QuestionPack),
		questions: make(map[uuid.UUID]*models.Question),
		players:   make(map[uuid.UUID]*models.Player),
		answers:   make(map[uuid.UUID]*models.Answer),
		joinedAt:  make(map[uuid.UUID]int),
	}
}

func (s *memStore) addPack(pack models.QuestionPack, questions ...models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := pack
	p.QuestionCount = len(questions)
	s.packs[p.ID] = &p
	for _, q := range questions {
		qq := q
		qq.PackID = p.ID
		s.questions[qq.ID] = &qq
	}
}

func (s *memStore) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.Code == session.Code {
			return ErrCodeTaken
		}
	}
	cp := *session
	s.sessions[cp.ID] = &cp
	return nil
}

func (s *memStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, NewError(KindNotFound, "session not found")
	}
	cp := *session
	return &cp, nil
}

func (s *memStore) GetSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.Code == code {
			cp := *session
			return &cp, nil
		}
	}
	return nil, NewError(KindNotFound, "session not found")
}

func (s *memStore) UpdateSessionState(ctx context.Context, id uuid.UUID, status models.SessionStatus, currentQuestionID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return NewError(KindNotFound, "session not found")
	}
	session.Status = status
	session.CurrentQuestionID = currentQuestionID
	return nil
}

func (s *memStore) ListPacks(ctx context.Context) ([]models.QuestionPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	packs := make([]models.QuestionPack, 0, len(s.packs))
	for _, p := range s.packs {
		packs = append(packs, *p)
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].Name < packs[j].Name })
	return packs, nil
}

func (s *memStore) GetPack(ctx context.Context, id uuid.UUID) (*models.QuestionPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pack, ok := s.packs[id]
	if !ok {
		return nil, NewError(KindNotFound, "question pack not found")
	}
	cp := *pack
	return &cp, nil
}

func (s *memStore) ListPackQuestions(ctx context.Context, packID uuid.UUID) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var questions []models.Question
	for _, q := range s.questions {
		if q.PackID == packID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}

func (s *memStore) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, NewError(KindNotFound, "question not found")
	}
	cp := *q
	return &cp, nil
}

func (s *memStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.players {
		if existing.SessionID == p.SessionID && existing.DeviceID == p.DeviceID {
			return NewError(KindInvalidState, "player already exists")
		}
	}
	cp := *p
	s.players[cp.ID] = &cp
	s.joinSeq++
	s.joinedAt[cp.ID] = s.joinSeq
	return nil
}

func (s *memStore) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, NewError(KindNotFound, "player not found")
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) GetPlayerByDevice(ctx context.Context, sessionID uuid.UUID, deviceID string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.SessionID == sessionID && p.DeviceID == deviceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, NewError(KindNotFound, "player not found")
}

func (s *memStore) ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var players []models.Player
	for _, p := range s.players {
		if p.SessionID == sessionID {
			players = append(players, *p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return s.joinedAt[players[i].ID] < s.joinedAt[players[j].ID]
	})
	return players, nil
}

func (s *memStore) UpdatePlayerNickname(ctx context.Context, id uuid.UUID, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return NewError(KindNotFound, "player not found")
	}
	p.Nickname = nickname
	return nil
}

func (s *memStore) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return NewError(KindNotFound, "player not found")
	}
	delete(s.players, id)
	for aid, a := range s.answers {
		if a.PlayerID == id {
			delete(s.answers, aid)
		}
	}
	return nil
}

func (s *memStore) CreateAnswer(ctx context.Context, a *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.answers {
		if existing.PlayerID == a.PlayerID && existing.QuestionID == a.QuestionID {
			return NewError(KindAlreadyAnswered, "player has already answered this question")
		}
	}
	cp := *a
	s.answers[cp.ID] = &cp
	if p, ok := s.players[a.PlayerID]; ok && a.PointsEarned > 0 {
		p.Score += a.PointsEarned
	}
	return nil
}

func (s *memStore) ListAnswers(ctx context.Context, sessionID, questionID uuid.UUID) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var answers []models.Answer
	for _, a := range s.answers {
		if a.QuestionID != questionID {
			continue
		}
		p, ok := s.players[a.PlayerID]
		if !ok || p.SessionID != sessionID {
			continue
		}
		answers = append(answers, *a)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].AnsweredAt.Before(answers[j].AnsweredAt) })
	return answers, nil
}

func (s *memStore) CountAnswers(ctx context.Context, questionID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}
