package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// CartUpdate Apply natijasi
type CartUpdate struct {
	Items   []entity.CartItem
	Strong  bool
	Cleared bool
	Expired bool
	Session *entity.Session
}

// Total sums the resulting cart.
func (u *CartUpdate) Total() string {
	return entity.CartTotal(u.Items).StringFixed(2)
}

// CartServiceConfig configures a CartService.
type CartServiceConfig struct {
	TTL      time.Duration
	Now      func() time.Time
	Keywords Keywords
	Metrics  Metrics
}

// CartService savatni sessiyaga birlashtiradi. Calls for the same phone are
// serialized; different phones never wait on each other.
type CartService struct {
	sessions repository.SessionRepository
	locks    *KeyedMutex
	keywords Keywords
	ttl      time.Duration
	now      func() time.Time
	metrics  Metrics
}

// NewCartService yangi CartService
func NewCartService(sessions repository.SessionRepository, cfg CartServiceConfig) *CartService {
	if cfg.TTL <= 0 {
		cfg.TTL = constants.SessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if len(cfg.Keywords.Delete) == 0 && len(cfg.Keywords.Replace) == 0 {
		cfg.Keywords = DefaultKeywords().Merge(cfg.Keywords)
	}
	return &CartService{
		sessions: sessions,
		locks:    NewKeyedMutex(),
		keywords: cfg.Keywords,
		ttl:      cfg.TTL,
		now:      cfg.Now,
		metrics:  cfg.Metrics,
	}
}

// IsStrongCommand reports whether text asks to delete or replace items.
// Runes claimed by mentions are blanked first, so a product called
// "Borrador" never reads as "borra".
func (s *CartService) IsStrongCommand(text string, mentions []entity.ParsedMention) bool {
	norm := normalizeRunes(text)
	for _, m := range mentions {
		for i := max(m.Start, 0); i < m.End && i < len(norm); i++ {
			norm[i] = ' '
		}
	}
	return hasWordPrefix(norm, s.keywords.Delete) || hasAnyPhrase(norm, s.keywords.Replace)
}

// Merge combines mentions with the current cart. Additive mode sums
// quantities per product name. Strong mode ignores current and keeps only
// the mentions not preceded by a delete keyword; the lookbehind stops at the
// end of the previous mention.
func (s *CartService) Merge(current []entity.CartItem, mentions []entity.ParsedMention, strong bool, rawText string) []entity.CartItem {
	if !strong {
		result := entity.CloneItems(current)
		for _, m := range mentions {
			result = addMention(result, m)
		}
		return result
	}

	ordered := make([]entity.ParsedMention, len(mentions))
	copy(ordered, mentions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	norm := normalizeRunes(rawText)
	var result []entity.CartItem
	prevEnd := 0
	for _, m := range ordered {
		if s.isNegated(norm, m.Start, prevEnd) {
			logger.WithFields(logrus.Fields{"product": m.Product.Name, "matched": m.MatchedText}).Info("mention negated by context")
		} else {
			result = addMention(result, m)
		}
		if m.End > prevEnd {
			prevEnd = m.End
		}
	}
	return result
}

func (s *CartService) isNegated(norm []rune, start, floor int) bool {
	if start > len(norm) {
		start = len(norm)
	}
	from := start - constants.NegationLookbehind
	if from < floor {
		from = floor
	}
	if from < 0 {
		from = 0
	}
	if from >= start {
		return false
	}
	return hasWordPrefix(norm[from:start], s.keywords.Delete)
}

func addMention(items []entity.CartItem, m entity.ParsedMention) []entity.CartItem {
	for i := range items {
		if items[i].ProductName == m.Product.Name {
			items[i].SetQuantity(items[i].Quantity + m.Quantity)
			return items
		}
	}
	return append(items, entity.NewCartItem(m))
}

// Apply merges mentions into the phone's session and persists the result.
// An empty result deletes the session.
func (s *CartService) Apply(ctx context.Context, phone, rawText string, mentions []entity.ParsedMention) (*CartUpdate, error) {
	unlock := s.locks.Lock(phone)
	defer unlock()

	strong := s.IsStrongCommand(rawText, mentions)
	var lastErr error
	for attempt := 1; attempt <= constants.SessionConflictRetries; attempt++ {
		update, err := s.applyOnce(ctx, phone, rawText, mentions, strong)
		if err == nil {
			return update, nil
		}
		if !errors.Is(err, entity.ErrSessionConflict) {
			return nil, err
		}
		lastErr = err
		logger.InfoLogger.Printf("🔁 Sessiya konflikti phone=%s, qayta urinish %d/%d", phone, attempt, constants.SessionConflictRetries)
	}
	return nil, fmt.Errorf("apply cart %s: %w", phone, lastErr)
}

func (s *CartService) applyOnce(ctx context.Context, phone, rawText string, mentions []entity.ParsedMention, strong bool) (*CartUpdate, error) {
	session, expired, err := s.ActiveSession(ctx, phone)
	if err != nil {
		return nil, err
	}

	var current []entity.CartItem
	if session != nil {
		current = session.Items
	}

	items := s.Merge(current, mentions, strong, rawText)
	update := &CartUpdate{Items: items, Strong: strong, Expired: expired}

	if len(items) == 0 {
		if session != nil {
			if _, err := s.sessions.Delete(ctx, phone); err != nil {
				return nil, fmt.Errorf("delete empty session: %w", err)
			}
		}
		update.Cleared = true
		return update, nil
	}

	if session == nil {
		session = entity.NewSession(phone)
	}
	session.Items = items
	saved, err := s.Save(ctx, session)
	if err != nil {
		return nil, err
	}
	update.Session = saved
	return update, nil
}

// ActiveSession loads the phone's session. An expired one is deleted and
// reported as absent with expired=true.
func (s *CartService) ActiveSession(ctx context.Context, phone string) (*entity.Session, bool, error) {
	session, err := s.sessions.Get(ctx, phone)
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, false, nil
	}
	if !session.IsExpired(s.now(), s.ttl) {
		return session, false, nil
	}

	if _, err := s.sessions.Delete(ctx, phone); err != nil {
		return nil, false, fmt.Errorf("delete expired session: %w", err)
	}
	s.metrics.SessionExpired(ctx)
	logger.WithFields(logrus.Fields{
		"phone":      phone,
		"updated_at": session.UpdatedAt.Format(time.RFC3339),
		"items":      len(session.Items),
	}).Info("session expired, cart discarded")
	return nil, true, nil
}

// Save stamps updated_at and upserts the session.
func (s *CartService) Save(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	session.UpdatedAt = s.now()
	saved, err := s.sessions.Upsert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	session.Version = saved.Version
	return saved, nil
}

// Clear deletes the phone's session.
func (s *CartService) Clear(ctx context.Context, phone string) (bool, error) {
	unlock := s.locks.Lock(phone)
	defer unlock()
	deleted, err := s.sessions.Delete(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	return deleted, nil
}
