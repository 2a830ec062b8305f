package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

type memoryQuoteRepository struct {
	mu     sync.RWMutex
	quotes map[int64]entity.Quote
	nextID int64
}

// NewMemoryQuoteRepository in-memory quote repository yaratish
func NewMemoryQuoteRepository() repository.QuoteRepository {
	return &memoryQuoteRepository{quotes: make(map[int64]entity.Quote)}
}

func (m *memoryQuoteRepository) Create(ctx context.Context, quote *entity.Quote) (*entity.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	q := *quote
	q.ID = m.nextID
	q.Items = append([]entity.QuoteItem(nil), quote.Items...)
	now := time.Now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	m.quotes[q.ID] = q
	return &q, nil
}

func (m *memoryQuoteRepository) GetByID(ctx context.Context, id int64) (*entity.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, entity.ErrQuoteNotFound
	}
	return &q, nil
}

// ListByPhone eng yangisi birinchi
func (m *memoryQuoteRepository) ListByPhone(ctx context.Context, phone string) ([]entity.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.Quote
	for _, q := range m.quotes {
		if q.ClientPhone == phone {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryQuoteRepository) UpdateStatus(ctx context.Context, id int64, status entity.QuoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return entity.ErrQuoteNotFound
	}
	q.Status = status
	q.UpdatedAt = time.Now()
	m.quotes[id] = q
	return nil
}
