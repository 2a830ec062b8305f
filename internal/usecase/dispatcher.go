package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// Reply actions, used by delivery for logging and by tests.
const (
	ActionIgnored        = "ignored"
	ActionCartCleared    = "cart_cleared"
	ActionNoCart         = "no_cart"
	ActionGreeting       = "greeting"
	ActionFAQ            = "faq"
	ActionCatalog        = "catalog"
	ActionCartUpdated    = "cart_updated"
	ActionClarify        = "clarify"
	ActionFallback       = "fallback"
	ActionFallbackAI     = "fallback_ai"
	ActionCheckoutStart  = "checkout_start"
	ActionCheckout       = "checkout_complete"
	ActionCheckoutFailed = "checkout_failed"
	ActionWizardName     = "wizard_name"
	ActionWizardDNI      = "wizard_dni"
	ActionWizardAddress  = "wizard_address"
	ActionWizardRestart  = "wizard_restart"
	ActionWizardInvalid  = "wizard_invalid"
)

// DispatcherDeps Dispatcher bog'liqliklari. Customers, Documents, Fallback
// and FAQ are optional.
type DispatcherDeps struct {
	Catalog   *CatalogCache
	Quotes    *QuoteService
	Cart      *CartService
	QuoteRepo repository.QuoteRepository
	Customers repository.CustomerRepository
	Documents repository.DocumentRenderer
	Fallback  repository.FallbackResponder
	FAQ       repository.FAQResponder
	Keywords  Keywords
	Metrics   Metrics
}

// Dispatcher routes one inbound message to exactly one handler. Messages
// from the same phone are handled one at a time.
type Dispatcher struct {
	catalog    *CatalogCache
	quotes     *QuoteService
	cart       *CartService
	faq        repository.FAQResponder
	fallback   repository.FallbackResponder
	documents  repository.DocumentRenderer
	classifier *IntentClassifier
	wizard     *Wizard
	checkout   *Checkout
	metrics    Metrics
	locks      *KeyedMutex
}

// NewDispatcher yangi Dispatcher
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	kw := DefaultKeywords().Merge(deps.Keywords)
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.FAQ == nil {
		deps.FAQ = DefaultFAQ()
	}
	return &Dispatcher{
		catalog:    deps.Catalog,
		quotes:     deps.Quotes,
		cart:       deps.Cart,
		faq:        deps.FAQ,
		fallback:   deps.Fallback,
		documents:  deps.Documents,
		classifier: NewIntentClassifier(kw),
		wizard:     NewWizard(deps.Cart, kw),
		checkout: &Checkout{
			cart:      deps.Cart,
			quotes:    deps.Quotes,
			quoteRepo: deps.QuoteRepo,
			customers: deps.Customers,
			documents: deps.Documents,
			metrics:   deps.Metrics,
		},
		metrics: deps.Metrics,
		locks:   NewKeyedMutex(),
	}
}

// Handle processes msg and returns the reply to send. Priority:
// cart clear, greeting, FAQ, catalog, wizard step, checkout, order parsing
// and finally the fallback responder.
func (d *Dispatcher) Handle(ctx context.Context, msg entity.InboundMessage) (*entity.Reply, error) {
	unlock := d.locks.Lock(msg.Phone)
	defer unlock()

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return &entity.Reply{Action: ActionIgnored}, nil
	}
	sig := d.classifier.Classify(text)

	if sig.CartClear {
		deleted, err := d.cart.Clear(ctx, msg.Phone)
		if err != nil {
			return nil, err
		}
		if !deleted {
			return &entity.Reply{Text: msgNoCart, Action: ActionNoCart}, nil
		}
		return &entity.Reply{Text: msgCartCleared, Action: ActionCartCleared}, nil
	}

	session, _, err := d.cart.ActiveSession(ctx, msg.Phone)
	if err != nil {
		return nil, err
	}

	if sig.Greeting {
		customer := d.checkout.lookupCustomer(ctx, msg.Phone)
		return &entity.Reply{Text: greetingText(customer), Action: ActionGreeting}, nil
	}

	if sig.FAQ != "" {
		if answer, ok := d.faq.Answer(sig.FAQ); ok {
			return &entity.Reply{Text: answer, Action: ActionFAQ}, nil
		}
	}

	if sig.Catalog {
		return d.catalogReply(ctx), nil
	}

	if session != nil && session.Step.IsWizard() {
		reply, resumed, err := d.handleWizard(ctx, session, msg, sig)
		if err != nil || !resumed {
			return reply, err
		}
	}

	if sig.Checkout {
		customer := d.checkout.lookupCustomer(ctx, msg.Phone)
		return d.checkout.Begin(ctx, session, customer)
	}

	return d.handleOrder(ctx, msg, sig)
}

// handleWizard runs the current wizard step. resumed is true when the
// message was an order and the session went back to shopping.
func (d *Dispatcher) handleWizard(ctx context.Context, session *entity.Session, msg entity.InboundMessage, sig Signals) (*entity.Reply, bool, error) {
	if sig.OrderIntent && len(d.catalog.Parser(ctx).Parse(msg.Text)) > 0 {
		logger.InfoLogger.Printf("↩️ Wizard to'xtatildi phone=%s step=%s", msg.Phone, session.Step)
		if err := session.Advance(entity.StepShopping); err != nil {
			return nil, false, err
		}
		if _, err := d.cart.Save(ctx, session); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	reply, confirmed, err := d.wizard.Handle(ctx, session, msg.Text)
	if err != nil {
		return nil, false, err
	}
	if confirmed {
		reply, err = d.checkout.Complete(ctx, session, msg)
	}
	return reply, false, err
}

func (d *Dispatcher) handleOrder(ctx context.Context, msg entity.InboundMessage, sig Signals) (*entity.Reply, error) {
	mentions := d.catalog.Parser(ctx).Parse(msg.Text)
	if _, err := d.quotes.Assemble(mentions, clientPhone(msg.Phone)); err != nil {
		if errors.Is(err, entity.ErrNoItemsParsed) {
			return d.parseFailed(ctx, msg, sig), nil
		}
		if errors.Is(err, entity.ErrInvariantViolation) {
			d.metrics.InvariantViolated(ctx)
		}
		return nil, err
	}

	update, err := d.cart.Apply(ctx, msg.Phone, msg.Text, mentions)
	if err != nil {
		return nil, err
	}
	if update.Cleared {
		return &entity.Reply{Text: msgCartCleared, Action: ActionCartCleared}, nil
	}
	return &entity.Reply{Text: CartSummary(update), Action: ActionCartUpdated}, nil
}

func (d *Dispatcher) parseFailed(ctx context.Context, msg entity.InboundMessage, sig Signals) *entity.Reply {
	d.metrics.ParseFailed(ctx, sig.OrderIntent)
	if sig.OrderIntent {
		return &entity.Reply{Text: msgClarify, Action: ActionClarify}
	}
	if d.fallback != nil {
		answer, err := d.fallback.FallbackResponse(ctx, msg.Text)
		if err == nil && strings.TrimSpace(answer) != "" {
			return &entity.Reply{Text: answer, Action: ActionFallbackAI}
		}
		if err != nil {
			logger.ErrorLogger.Printf("⚠️ Fallback javob bermadi phone=%s: %v", msg.Phone, err)
		}
	}
	return &entity.Reply{Text: msgFallbackGeneric, Action: ActionFallback}
}

func (d *Dispatcher) catalogReply(ctx context.Context) *entity.Reply {
	products := d.catalog.Products(ctx)
	if len(products) == 0 {
		return &entity.Reply{Text: msgCatalogEmpty, Action: ActionCatalog}
	}

	var b strings.Builder
	b.WriteString(msgCatalogIntro)
	b.WriteString("\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "• %s - $%s\n", p.Name, p.UnitPrice().StringFixed(2))
	}
	reply := &entity.Reply{Text: strings.TrimRight(b.String(), "\n"), Action: ActionCatalog}

	if d.documents != nil {
		doc, err := d.documents.CatalogDocument(products)
		if err != nil {
			logger.ErrorLogger.Printf("❌ Katalog hujjati yaratilmadi: %v", err)
		} else {
			reply.Documents = append(reply.Documents, doc)
		}
	}
	return reply
}
