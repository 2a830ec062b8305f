package repository

import (
	"context"

	"github.com/yourusername/quote-bot/internal/domain/entity"
)

// ProductRepository katalog manbasi
type ProductRepository interface {
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	SaveMany(ctx context.Context, products []entity.Product) error
}

// SessionRepository suhbat sessiyalari. Get returns nil, nil when the phone
// has no session. Upsert fails with entity.ErrSessionConflict when the stored
// version differs from the one the caller read.
type SessionRepository interface {
	Get(ctx context.Context, phone string) (*entity.Session, error)
	Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error)
	Delete(ctx context.Context, phone string) (bool, error)
}

// QuoteRepository kotirovkalarni saqlash
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) (*entity.Quote, error)
	GetByID(ctx context.Context, id int64) (*entity.Quote, error)
	ListByPhone(ctx context.Context, phone string) ([]entity.Quote, error)
	UpdateStatus(ctx context.Context, id int64, status entity.QuoteStatus) error
}

// CustomerRepository CRM
type CustomerRepository interface {
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	GetOrCreate(ctx context.Context, phone, fullName string) (*entity.Customer, error)
	UpdateProfile(ctx context.Context, id string, data entity.ClientData) error
}

// DocumentRenderer produces the attachments sent with replies.
type DocumentRenderer interface {
	QuoteDocument(quote *entity.Quote) (entity.Document, error)
	CatalogDocument(products []entity.Product) (entity.Document, error)
}
