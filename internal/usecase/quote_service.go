package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// QuotePreview kotirovka va har bir topilma ishonchi
type QuotePreview struct {
	Quote      *entity.Quote          `json:"quote"`
	Mentions   []entity.ParsedMention `json:"mentions"`
	Confidence int                    `json:"confidence"`
}

// QuoteService matndan kotirovka yig'adi
type QuoteService struct {
	catalog *CatalogCache
	now     func() time.Time
}

// NewQuoteService yangi QuoteService
func NewQuoteService(catalog *CatalogCache) *QuoteService {
	return &QuoteService{catalog: catalog, now: time.Now}
}

// Assemble prices mentions into a draft quote.
func (s *QuoteService) Assemble(mentions []entity.ParsedMention, clientPhone string) (*entity.Quote, error) {
	if len(mentions) == 0 {
		return nil, entity.ErrNoItemsParsed
	}

	now := s.now()
	quote := &entity.Quote{
		ClientPhone: clientPhone,
		Status:      entity.QuoteDraft,
		Items:       make([]entity.QuoteItem, 0, len(mentions)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	total := decimal.Zero
	for _, m := range mentions {
		price := m.Product.UnitPrice()
		subtotal := entity.LineSubtotal(price, m.Quantity)
		quote.Items = append(quote.Items, entity.QuoteItem{
			ProductName: m.Product.Name,
			Quantity:    m.Quantity,
			UnitPrice:   price,
			Subtotal:    subtotal,
			Description: m.Product.Category,
		})
		total = total.Add(subtotal)
	}
	quote.Total = total.Round(2)

	if err := quote.CheckInvariant(); err != nil {
		logger.ErrorLogger.Printf("🚨 INVARIANT BUZILDI: phone=%s %v", clientPhone, err)
		return nil, err
	}
	return quote, nil
}

// GenerateQuote parses text against the cached catalog and assembles a quote.
func (s *QuoteService) GenerateQuote(ctx context.Context, text, clientPhone, notes string) (*entity.Quote, error) {
	preview, err := s.GenerateQuoteWithDetails(ctx, text, clientPhone, notes)
	if err != nil {
		return nil, err
	}
	return preview.Quote, nil
}

// GenerateQuoteWithDetails is GenerateQuote plus the mentions behind each line.
func (s *QuoteService) GenerateQuoteWithDetails(ctx context.Context, text, clientPhone, notes string) (*QuotePreview, error) {
	mentions, confidence := s.catalog.Parser(ctx).ParseWithConfidence(text)
	quote, err := s.Assemble(mentions, clientPhone)
	if err != nil {
		if errors.Is(err, entity.ErrNoItemsParsed) {
			return nil, fmt.Errorf("generate quote: %w", err)
		}
		return nil, err
	}
	quote.Notes = notes
	return &QuotePreview{Quote: quote, Mentions: mentions, Confidence: confidence}, nil
}

// QuoteFromCart re-prices cart lines against the current catalog. Lines whose
// product left the catalog keep their cart price.
func (s *QuoteService) QuoteFromCart(ctx context.Context, items []entity.CartItem, clientPhone string) (*entity.Quote, error) {
	mentions := make([]entity.ParsedMention, 0, len(items))
	for _, item := range items {
		product, ok := s.catalog.Lookup(ctx, item.ProductName)
		if !ok {
			product = entity.Product{Name: item.ProductName, Price: item.UnitPrice, Category: item.Description}
		}
		mentions = append(mentions, entity.ParsedMention{Product: product, Quantity: item.Quantity, Confidence: exactConfidence})
	}
	return s.Assemble(mentions, clientPhone)
}
