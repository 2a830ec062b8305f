package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/pkg/logger"
	"gorm.io/gorm"
)

// Options storage tanlovi uchun sozlamalar
type Options struct {
	PostgresDSN string
	RedisURL    string
	SessionTTL  time.Duration
}

// Stores ilova ishlatadigan barcha repositorylar
type Stores struct {
	Products  repository.ProductRepository
	Sessions  repository.SessionRepository
	Quotes    repository.QuoteRepository
	Customers repository.CustomerRepository

	db    *sql.DB
	gorm  *gorm.DB
	redis *redis.Client
}

// NewStores postgres/redis bo'lsa ulardan, bo'lmasa xotiradan foydalanadi.
// A backend that fails to connect falls back to memory with a log line.
func NewStores(ctx context.Context, opts Options) *Stores {
	s := &Stores{
		Products:  NewMemoryProductRepository(),
		Sessions:  NewMemorySessionRepository(),
		Quotes:    NewMemoryQuoteRepository(),
		Customers: NewMemoryCustomerRepository(),
	}

	if dsn := strings.TrimSpace(opts.PostgresDSN); dsn != "" {
		s.openPostgres(ctx, dsn)
	} else {
		logger.InfoLogger.Println("ℹ️ POSTGRES_DSN yo'q, in-memory storage ishlatiladi")
	}

	if url := strings.TrimSpace(opts.RedisURL); url != "" {
		client, err := NewRedisClient(ctx, url)
		if err != nil {
			logger.ErrorLogger.Printf("❌ Redis ulanmadi, sessiyalar boshqa storageda: %v", err)
		} else {
			s.redis = client
			// Redis TTL is a safety net; expiry itself is decided by the cart.
			s.Sessions = NewRedisSessionRepository(client, 2*opts.SessionTTL)
			logger.InfoLogger.Println("✅ Sessiyalar Redisda")
		}
	}
	return s
}

func (s *Stores) openPostgres(ctx context.Context, dsn string) {
	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		logger.ErrorLogger.Printf("❌ Postgres ulanmadi, in-memory storage ishlatiladi: %v", err)
		return
	}
	s.db = db

	if sessions, err := NewPostgresSessionRepository(ctx, db); err != nil {
		logger.ErrorLogger.Printf("❌ quote_sessions: %v", err)
	} else {
		s.Sessions = sessions
	}
	if quotes, err := NewPostgresQuoteRepository(ctx, db); err != nil {
		logger.ErrorLogger.Printf("❌ quotes: %v", err)
	} else {
		s.Quotes = quotes
	}
	if customers, err := NewPostgresCustomerRepository(ctx, db); err != nil {
		logger.ErrorLogger.Printf("❌ customers: %v", err)
	} else {
		s.Customers = customers
	}

	gdb, err := OpenGorm(dsn)
	if err != nil {
		logger.ErrorLogger.Printf("❌ gorm ulanmadi, mahsulotlar xotirada: %v", err)
		return
	}
	s.gorm = gdb
	if products, err := NewGormProductRepository(gdb); err != nil {
		logger.ErrorLogger.Printf("❌ products: %v", err)
	} else {
		s.Products = products
	}
	logger.InfoLogger.Println("✅ Postgres storage tayyor")
}

// Close ochiq ulanishlarni yopish
func (s *Stores) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.gorm != nil {
		if sqlDB, err := s.gorm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
