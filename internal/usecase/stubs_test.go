package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProducts() []entity.Product {
	return []entity.Product{
		{Name: "Zapatos", Aliases: []string{"zapato", "calzado"}, Price: price("45.99")},
		{Name: "Camisa", Aliases: []string{"camisa"}, Price: price("25.50")},
		{Name: "Gorras", Aliases: []string{"gorra"}, Price: price("12.00")},
		{Name: "Jean", Aliases: []string{"jean"}, Price: price("30.00")},
		{Name: "Chaqueta Jean", Aliases: []string{"chaqueta de jean"}, Price: price("80.00")},
	}
}

type stubProductRepo struct {
	mu       sync.Mutex
	products []entity.Product
	err      error
	calls    int
}

func (s *stubProductRepo) GetAll(ctx context.Context) ([]entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]entity.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *stubProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	for _, p := range s.products {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, entity.ErrProductNotFound
}

func (s *stubProductRepo) SaveMany(ctx context.Context, products []entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
	return nil
}

// stubSessionRepo keeps sessions in a map with version checks.
type stubSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*entity.Session
	conflicts int
	upserts   int
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: map[string]*entity.Session{}}
}

func (s *stubSessionRepo) Get(ctx context.Context, phone string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[phone].Clone(), nil
}

func (s *stubSessionRepo) Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.conflicts > 0 {
		s.conflicts--
		return nil, entity.ErrSessionConflict
	}
	var stored int64
	if cur, ok := s.sessions[session.Phone]; ok {
		stored = cur.Version
	}
	if stored != session.Version {
		return nil, entity.ErrSessionConflict
	}
	saved := session.Clone()
	saved.Version++
	s.sessions[session.Phone] = saved
	return saved.Clone(), nil
}

func (s *stubSessionRepo) Delete(ctx context.Context, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[phone]
	delete(s.sessions, phone)
	return ok, nil
}

func (s *stubSessionRepo) put(session *entity.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Phone] = session.Clone()
}

type stubQuoteRepo struct {
	mu     sync.Mutex
	quotes []*entity.Quote
	err    error
}

func (s *stubQuoteRepo) Create(ctx context.Context, quote *entity.Quote) (*entity.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	q := *quote
	q.ID = int64(len(s.quotes) + 1)
	s.quotes = append(s.quotes, &q)
	return &q, nil
}

func (s *stubQuoteRepo) GetByID(ctx context.Context, id int64) (*entity.Quote, error) {
	for _, q := range s.quotes {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, entity.ErrQuoteNotFound
}

func (s *stubQuoteRepo) ListByPhone(ctx context.Context, phone string) ([]entity.Quote, error) {
	var out []entity.Quote
	for _, q := range s.quotes {
		if q.ClientPhone == phone {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *stubQuoteRepo) UpdateStatus(ctx context.Context, id int64, status entity.QuoteStatus) error {
	return nil
}

type stubCustomerRepo struct {
	customers map[string]*entity.Customer
	updated   []entity.ClientData
}

func newStubCustomerRepo(existing ...*entity.Customer) *stubCustomerRepo {
	s := &stubCustomerRepo{customers: map[string]*entity.Customer{}}
	for _, c := range existing {
		s.customers[c.Phone] = c
	}
	return s
}

func (s *stubCustomerRepo) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	if c, ok := s.customers[phone]; ok {
		return c, nil
	}
	return nil, entity.ErrCustomerNotFound
}

func (s *stubCustomerRepo) GetOrCreate(ctx context.Context, phone, fullName string) (*entity.Customer, error) {
	if c, ok := s.customers[phone]; ok {
		return c, nil
	}
	c := &entity.Customer{ID: fmt.Sprintf("cust-%d", len(s.customers)+1), Phone: phone, FullName: fullName}
	s.customers[phone] = c
	return c, nil
}

func (s *stubCustomerRepo) UpdateProfile(ctx context.Context, id string, data entity.ClientData) error {
	s.updated = append(s.updated, data)
	for _, c := range s.customers {
		if c.ID == id {
			c.FullName, c.DNI, c.Address = data.Name, data.DNI, data.Address
			return nil
		}
	}
	return entity.ErrCustomerNotFound
}

type stubDocuments struct {
	err error
}

func (s *stubDocuments) QuoteDocument(q *entity.Quote) (entity.Document, error) {
	if s.err != nil {
		return entity.Document{}, s.err
	}
	return entity.Document{Filename: "quote.xlsx", Content: []byte("xlsx")}, nil
}

func (s *stubDocuments) CatalogDocument(products []entity.Product) (entity.Document, error) {
	if s.err != nil {
		return entity.Document{}, s.err
	}
	return entity.Document{Filename: "catalogo.xlsx", Content: []byte("xlsx")}, nil
}

type stubFallback struct {
	resp   string
	err    error
	called bool
}

func (s *stubFallback) FallbackResponse(ctx context.Context, text string) (string, error) {
	s.called = true
	return s.resp, s.err
}

type countingMetrics struct {
	mu          sync.Mutex
	expired     int
	parseFailed int
	created     int
	violations  int
}

func (m *countingMetrics) SessionExpired(context.Context) {
	m.mu.Lock()
	m.expired++
	m.mu.Unlock()
}

func (m *countingMetrics) ParseFailed(context.Context, bool) {
	m.mu.Lock()
	m.parseFailed++
	m.mu.Unlock()
}

func (m *countingMetrics) QuoteCreated(context.Context) {
	m.mu.Lock()
	m.created++
	m.mu.Unlock()
}

func (m *countingMetrics) InvariantViolated(context.Context) {
	m.mu.Lock()
	m.violations++
	m.mu.Unlock()
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
