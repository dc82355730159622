package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/set-night/tasksplit/internal/domain"
)

type storedRound struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Name       string
	OrderIndex int
	Steps      []string
}

// memStore is an in-memory BreakdownStore. InTx restores a snapshot when fn
// fails and, like a real transaction, refuses to begin or commit once ctx is
// done.
type memStore struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]domain.Session
	generations map[uuid.UUID]domain.Generation
	rounds      []*storedRound

	failRound map[int]bool
	failSteps map[int]bool
	failClaim error
	failTitle error
}

func newMemStore() *memStore {
	return &memStore{
		sessions:    make(map[uuid.UUID]domain.Session),
		generations: make(map[uuid.UUID]domain.Generation),
		failRound:   make(map[int]bool),
		failSteps:   make(map[int]bool),
	}
}

func (m *memStore) addSession(userID uuid.UUID, prompt string) domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.Session{ID: uuid.New(), UserID: userID, Prompt: prompt}
	m.sessions[s.ID] = s
	return s
}

func (m *memStore) GetSession(_ context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memStore) HasBreakdown(_ context.Context, sessionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.generations[sessionID]; ok {
		return true, nil
	}
	for _, r := range m.rounds {
		if r.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ClaimGeneration(_ context.Context, gen domain.Generation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClaim != nil {
		return false, m.failClaim
	}
	if _, ok := m.generations[gen.SessionID]; ok {
		return false, nil
	}
	m.generations[gen.SessionID] = gen
	return true, nil
}

func (m *memStore) ReleaseGeneration(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.generations, sessionID)
	return nil
}

func (m *memStore) SetSessionTitle(_ context.Context, sessionID uuid.UUID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTitle != nil {
		return m.failTitle
	}
	s := m.sessions[sessionID]
	s.Title = title
	m.sessions[sessionID] = s
	return nil
}

func (m *memStore) InsertRound(_ context.Context, sessionID uuid.UUID, name string, orderIndex int) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRound[orderIndex] {
		return uuid.Nil, errors.New("insert round failed")
	}
	r := &storedRound{ID: uuid.New(), SessionID: sessionID, Name: name, OrderIndex: orderIndex}
	m.rounds = append(m.rounds, r)
	return r.ID, nil
}

func (m *memStore) InsertSteps(_ context.Context, roundID uuid.UUID, titles []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if r.ID != roundID {
			continue
		}
		if m.failSteps[r.OrderIndex] {
			return 0, errors.New("insert steps failed")
		}
		r.Steps = append([]string(nil), titles...)
		return int64(len(titles)), nil
	}
	return 0, errors.New("round not found")
}

func (m *memStore) InTx(ctx context.Context, fn func(w domain.BreakdownWriter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	sessions := make(map[uuid.UUID]domain.Session, len(m.sessions))
	for k, v := range m.sessions {
		sessions[k] = v
	}
	generations := make(map[uuid.UUID]domain.Generation, len(m.generations))
	for k, v := range m.generations {
		generations[k] = v
	}
	rounds := append([]*storedRound(nil), m.rounds...)
	m.mu.Unlock()

	err := fn(m)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.mu.Lock()
		m.sessions, m.generations, m.rounds = sessions, generations, rounds
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) roundsFor(sessionID uuid.UUID) []*storedRound {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*storedRound
	for _, r := range m.rounds {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) title(sessionID uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID].Title
}
