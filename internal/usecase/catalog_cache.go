package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// catalogRetryBackoff limits reloads while the source keeps failing.
const catalogRetryBackoff = 30 * time.Second

var errEmptyCatalog = errors.New("catalog source returned no products")

// CatalogCacheConfig configures a CatalogCache.
type CatalogCacheConfig struct {
	TTL           time.Duration
	Now           func() time.Time
	ParserOptions []ParserOption
}

// CatalogCache katalogning xotiradagi nusxasi. A failing or empty source
// keeps the last good snapshot.
type CatalogCache struct {
	source     repository.ProductRepository
	ttl        time.Duration
	now        func() time.Time
	parserOpts []ParserOption

	refreshMu sync.Mutex

	mu          sync.RWMutex
	parser      *TextParser
	products    []entity.Product
	byName      map[string]entity.Product
	loadedAt    time.Time
	nextAttempt time.Time
	invalidated bool
}

// NewCatalogCache creates a cache that loads lazily on first use.
func NewCatalogCache(source repository.ProductRepository, cfg CatalogCacheConfig) *CatalogCache {
	if cfg.TTL <= 0 {
		cfg.TTL = constants.DefaultCatalogTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CatalogCache{
		source:     source,
		ttl:        cfg.TTL,
		now:        cfg.Now,
		parserOpts: cfg.ParserOptions,
		parser:     NewTextParser(nil, cfg.ParserOptions...),
		byName:     map[string]entity.Product{},
	}
}

// Parser returns a parser over the current snapshot.
func (c *CatalogCache) Parser(ctx context.Context) *TextParser {
	c.ensureFresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parser
}

// Products returns a copy of the current snapshot.
func (c *CatalogCache) Products(ctx context.Context) []entity.Product {
	c.ensureFresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup finds a product by canonical name.
func (c *CatalogCache) Lookup(ctx context.Context, name string) (entity.Product, bool) {
	c.ensureFresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// Invalidate forces a reload on next use, e.g. after a catalog import.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.invalidated = true
	c.nextAttempt = time.Time{}
	c.mu.Unlock()
}

// Refresh reloads now. On error the previous snapshot stays in place.
func (c *CatalogCache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.load(ctx)
}

func (c *CatalogCache) ensureFresh(ctx context.Context) {
	if !c.needsRefresh() {
		return
	}
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if !c.needsRefresh() {
		return
	}
	_ = c.load(ctx)
}

func (c *CatalogCache) needsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	if now.Before(c.nextAttempt) {
		return false
	}
	return c.invalidated || c.loadedAt.IsZero() || now.Sub(c.loadedAt) >= c.ttl
}

func (c *CatalogCache) load(ctx context.Context) error {
	products, err := c.source.GetAll(ctx)
	if err == nil && len(products) == 0 {
		err = errEmptyCatalog
	}
	if err != nil {
		c.mu.Lock()
		c.nextAttempt = c.now().Add(catalogRetryBackoff)
		kept := len(c.products)
		c.mu.Unlock()
		logger.ErrorLogger.Printf("⚠️ Katalog yangilanmadi, oxirgi nusxa qoldi (%d ta mahsulot): %v", kept, err)
		return err
	}

	parser := NewTextParser(products, c.parserOpts...)
	byName := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}

	c.mu.Lock()
	c.parser = parser
	c.products = products
	c.byName = byName
	c.loadedAt = c.now()
	c.nextAttempt = time.Time{}
	c.invalidated = false
	c.mu.Unlock()

	logger.InfoLogger.Printf("✅ Katalog yuklandi: %d ta mahsulot, %d ta alias", len(products), parser.index.Len())
	return nil
}
