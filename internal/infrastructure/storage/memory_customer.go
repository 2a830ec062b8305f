package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

type memoryCustomerRepository struct {
	mu      sync.Mutex
	byPhone map[string]*entity.Customer
}

// NewMemoryCustomerRepository in-memory CRM yaratish
func NewMemoryCustomerRepository() repository.CustomerRepository {
	return &memoryCustomerRepository{byPhone: make(map[string]*entity.Customer)}
}

func (m *memoryCustomerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byPhone[phone]
	if !ok {
		return nil, entity.ErrCustomerNotFound
	}
	out := *c
	return &out, nil
}

func (m *memoryCustomerRepository) GetOrCreate(ctx context.Context, phone, fullName string) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byPhone[phone]; ok {
		out := *c
		return &out, nil
	}
	now := time.Now()
	c := &entity.Customer{ID: uuid.NewString(), Phone: phone, FullName: fullName, CreatedAt: now, UpdatedAt: now}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m.byPhone[phone] = c
	out := *c
	return &out, nil
}

func (m *memoryCustomerRepository) UpdateProfile(ctx context.Context, id string, data entity.ClientData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPhone {
		if c.ID != id {
			continue
		}
		if data.Name != "" {
			c.FullName = data.Name
		}
		if data.DNI != "" {
			c.DNI = data.DNI
		}
		if data.Address != "" {
			c.Address = data.Address
		}
		c.UpdatedAt = time.Now()
		return nil
	}
	return entity.ErrCustomerNotFound
}
