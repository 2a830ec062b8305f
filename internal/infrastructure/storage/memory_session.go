package storage

import (
	"context"
	"sync"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository in-memory session repository yaratish
func NewMemorySessionRepository() repository.SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]*entity.Session)}
}

func (m *memorySessionRepository) Get(ctx context.Context, phone string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[phone].Clone(), nil
}

// Upsert compares the caller's version with the stored one before writing.
func (m *memorySessionRepository) Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stored int64
	if cur, ok := m.sessions[session.Phone]; ok {
		stored = cur.Version
	}
	if stored != session.Version {
		return nil, entity.ErrSessionConflict
	}

	saved := session.Clone()
	saved.Version++
	m.sessions[session.Phone] = saved
	return saved.Clone(), nil
}

func (m *memorySessionRepository) Delete(ctx context.Context, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[phone]
	delete(m.sessions, phone)
	return ok, nil
}
