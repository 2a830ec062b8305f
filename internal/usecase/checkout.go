package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/pkg/logger"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Checkout savatni yakuniy kotirovkaga aylantiradi
type Checkout struct {
	cart      *CartService
	quotes    *QuoteService
	quoteRepo repository.QuoteRepository
	customers repository.CustomerRepository
	documents repository.DocumentRenderer
	metrics   Metrics
}

// Begin starts the data wizard for an active cart. A customer with complete
// stored data is asked to reuse it.
func (c *Checkout) Begin(ctx context.Context, session *entity.Session, customer *entity.Customer) (*entity.Reply, error) {
	if session == nil || len(session.Items) == 0 {
		return &entity.Reply{Text: msgNoActiveQuote, Action: ActionNoCart}, nil
	}
	total := entity.CartTotal(session.Items).StringFixed(2)

	if customer.HasCompleteData() {
		session.ClientData = entity.ClientData{Name: customer.FullName, DNI: customer.DNI, Address: customer.Address}
		if err := c.advance(ctx, session, entity.StepWaitingExistingData); err != nil {
			return nil, err
		}
		return &entity.Reply{Text: existingDataText(customer, total), Action: ActionCheckoutStart}, nil
	}

	if err := c.advance(ctx, session, entity.StepWaitingName); err != nil {
		return nil, err
	}
	return &entity.Reply{Text: msgAskName, Action: ActionCheckoutStart}, nil
}

// Complete prices the cart, stores the quote and ends the session. On failure
// the session goes back to final confirmation so the customer can retry.
func (c *Checkout) Complete(ctx context.Context, session *entity.Session, msg entity.InboundMessage) (*entity.Reply, error) {
	if len(session.Items) == 0 {
		return &entity.Reply{Text: msgNoActiveQuote, Action: ActionNoCart}, nil
	}
	if err := c.advance(ctx, session, entity.StepProcessingCheckout); err != nil {
		return nil, err
	}

	quote, err := c.buildQuote(ctx, session, msg)
	if err != nil {
		logger.ErrorLogger.Printf("❌ Checkout xatosi phone=%s: %v", msg.Phone, err)
		if revertErr := c.advance(ctx, session, entity.StepWaitingFinalConfirmation); revertErr != nil {
			logger.ErrorLogger.Printf("❌ Sessiyani qaytarib bo'lmadi phone=%s: %v", msg.Phone, revertErr)
		}
		return &entity.Reply{Text: msgCheckoutFailed, Action: ActionCheckoutFailed}, nil
	}
	c.metrics.QuoteCreated(ctx)
	logger.InfoLogger.Printf("🧾 Kotirovka #%d yaratildi phone=%s total=%s", quote.ID, msg.Phone, quote.Total.StringFixed(2))

	if _, err := c.cart.Clear(ctx, msg.Phone); err != nil {
		logger.ErrorLogger.Printf("⚠️ Sessiya o'chirilmadi phone=%s: %v", msg.Phone, err)
	}

	reply := &entity.Reply{Text: QuoteMessage(quote), Action: ActionCheckout}
	if c.documents == nil {
		return reply, nil
	}
	doc, err := c.documents.QuoteDocument(quote)
	if err != nil {
		logger.ErrorLogger.Printf("❌ Hujjat yaratilmadi quote=%d: %v", quote.ID, err)
		reply.Text += "\n\n" + msgDocumentFailed
		return reply, nil
	}
	doc.Filename = quoteFilename(quote)
	reply.Documents = append(reply.Documents, doc)
	return reply, nil
}

func (c *Checkout) buildQuote(ctx context.Context, session *entity.Session, msg entity.InboundMessage) (*entity.Quote, error) {
	quote, err := c.quotes.QuoteFromCart(ctx, session.Items, clientPhone(msg.Phone))
	if err != nil {
		return nil, err
	}
	data := session.ClientData
	quote.Status = entity.QuotePending
	quote.ClientName = data.Name
	quote.ClientDNI = data.DNI
	quote.ClientAddress = data.Address
	quote.Notes = "Cotización finalizada (Session)"
	if data.Name != "" {
		quote.Notes += fmt.Sprintf(" | Cliente: %s - %s", data.Name, data.DNI)
	}

	if c.customers != nil {
		name := data.Name
		if name == "" {
			name = msg.Name
		}
		customer, err := c.customers.GetOrCreate(ctx, quote.ClientPhone, name)
		if err != nil {
			return nil, fmt.Errorf("customer: %w", err)
		}
		if data.Name != "" {
			if err := c.customers.UpdateProfile(ctx, customer.ID, data); err != nil {
				return nil, fmt.Errorf("update customer: %w", err)
			}
		}
		quote.CustomerID = customer.ID
	}

	if err := quote.Validate(); err != nil {
		return nil, err
	}
	return c.quoteRepo.Create(ctx, quote)
}

func (c *Checkout) advance(ctx context.Context, session *entity.Session, to entity.Step) error {
	if err := session.Advance(to); err != nil {
		return err
	}
	_, err := c.cart.Save(ctx, session)
	return err
}

func (c *Checkout) lookupCustomer(ctx context.Context, phone string) *entity.Customer {
	if c.customers == nil {
		return nil
	}
	customer, err := c.customers.GetByPhone(ctx, clientPhone(phone))
	if err != nil {
		if !errors.Is(err, entity.ErrCustomerNotFound) {
			logger.ErrorLogger.Printf("⚠️ Mijoz topilmadi phone=%s: %v", phone, err)
		}
		return nil
	}
	return customer
}

// clientPhone WhatsApp wa_id raqamlari "+" belgisisiz keladi
func clientPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

func quoteFilename(q *entity.Quote) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(Normalize(q.ClientName), "_"), "_")
	if name == "" {
		name = "cliente"
	}
	return fmt.Sprintf("Cotizacion_N_%d_%s.xlsx", q.ID, name)
}
