package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product // key: lowercase canonical name
	order    []string
}

// NewMemoryProductRepository in-memory product repository yaratish
func NewMemoryProductRepository(initial ...entity.Product) repository.ProductRepository {
	m := &memoryProductRepository{products: make(map[string]entity.Product)}
	_ = m.SaveMany(context.Background(), initial)
	return m
}

func productKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SaveMany mahsulotlarni nomi bo'yicha qo'shish yoki yangilash
func (m *memoryProductRepository) SaveMany(ctx context.Context, products []entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, product := range products {
		key := productKey(product.Name)
		if key == "" {
			continue
		}
		if _, exists := m.products[key]; !exists {
			m.order = append(m.order, key)
		}
		product.Aliases = append([]string(nil), product.Aliases...)
		m.products[key] = product
	}
	return nil
}

// GetByName nomi bo'yicha mahsulotni olish
func (m *memoryProductRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, exists := m.products[productKey(name)]
	if !exists {
		return nil, entity.ErrProductNotFound
	}
	return &product, nil
}

// GetAll barcha mahsulotlar, qo'shilgan tartibda
func (m *memoryProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.Product, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.products[key])
	}
	return out, nil
}
