package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yourusername/quote-bot/config"
	"github.com/yourusername/quote-bot/internal/delivery/telegram"
	"github.com/yourusername/quote-bot/internal/delivery/whatsapp"
	"github.com/yourusername/quote-bot/internal/delivery/worker"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/internal/infrastructure/excel"
	"github.com/yourusername/quote-bot/internal/infrastructure/gemini"
	"github.com/yourusername/quote-bot/internal/infrastructure/storage"
	"github.com/yourusername/quote-bot/internal/infrastructure/telemetry"
	wa "github.com/yourusername/quote-bot/internal/infrastructure/whatsapp"
	"github.com/yourusername/quote-bot/internal/usecase"
	"github.com/yourusername/quote-bot/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Logger ni ishga tushirish
	logger.Init()
	logger.InfoLogger.Println("🚀 Ilova ishga tushmoqda...")

	// Konfiguratsiyani yuklash
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Konfiguratsiya yuklanmadi: %v", err)
	}
	loc := loadLocation(cfg.Timezone)

	conv, err := config.LoadConversationFile(cfg.KeywordsFile)
	if err != nil {
		log.Fatalf("❌ Kalit so'zlar fayli yuklanmadi: %v", err)
	}
	keywords := conv.KeywordsOverrides()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Storage
	stores := storage.NewStores(ctx, storage.Options{
		PostgresDSN: cfg.PostgresDSN,
		RedisURL:    cfg.RedisURL,
		SessionTTL:  cfg.SessionTTL,
	})
	defer stores.Close()
	importCatalogFile(ctx, cfg.CatalogFile, stores.Products)

	// 2. Metrics
	metrics, err := telemetry.NewCounters()
	if err != nil {
		log.Fatalf("❌ Metrikalar yaratilmadi: %v", err)
	}

	// 3. Use cases
	policy, err := usecase.ParseOverlapPolicy(cfg.OverlapPolicy)
	if err != nil {
		log.Fatalf("❌ PARSER_OVERLAP_POLICY: %v", err)
	}
	catalog := usecase.NewCatalogCache(stores.Products, usecase.CatalogCacheConfig{
		TTL: cfg.CatalogTTL,
		ParserOptions: []usecase.ParserOption{
			usecase.WithOverlapPolicy(policy),
			usecase.WithFuzzyThreshold(cfg.FuzzyThreshold),
		},
	})
	if err := catalog.Refresh(ctx); err != nil {
		logger.ErrorLogger.Printf("⚠️ Katalog hali bo'sh: %v", err)
	}
	quotes := usecase.NewQuoteService(catalog)
	cart := usecase.NewCartService(stores.Sessions, usecase.CartServiceConfig{
		TTL:      cfg.SessionTTL,
		Keywords: keywords,
		Metrics:  metrics,
	})

	var fallback repository.FallbackResponder
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.ErrorLogger.Printf("❌ Gemini client yaratilmadi, fallback o'chirildi: %v", err)
		} else {
			defer client.Close()
			fallback = client
			logger.InfoLogger.Printf("✅ Gemini AI client tayyor (%s)", constants.GeminiModelName)
		}
	}

	dispatcher := usecase.NewDispatcher(usecase.DispatcherDeps{
		Catalog:   catalog,
		Quotes:    quotes,
		Cart:      cart,
		QuoteRepo: stores.Quotes,
		Customers: stores.Customers,
		Documents: excel.NewRenderer(loc),
		Fallback:  fallback,
		FAQ:       conv.FAQAnswers(),
		Keywords:  keywords,
		Metrics:   metrics,
	})
	logger.InfoLogger.Println("✅ Use cases tayyor")

	// 4. Kanallar va worker pool
	responders := worker.ChannelRouter{}
	var queue *wa.RetryQueue
	if cfg.WhatsAppEnabled() {
		client := wa.NewClient(wa.Config{
			BaseURL:       cfg.WhatsAppAPIURL,
			APIVersion:    cfg.WhatsAppAPIVersion,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
			AccessToken:   cfg.WhatsAppAccessToken,
		}, nil)
		queue = wa.NewRetryQueue(client, nil)
		go queue.Run(ctx, constants.RetryCheckInterval)
		responders[whatsapp.ChannelName] = whatsapp.NewResponder(queue, client)
	}

	pool := worker.New(dispatcher, responders, worker.Options{
		Workers: cfg.WorkerCount,
		Timeout: cfg.MessageTimeout,
		Metrics: metrics,
	})
	pool.Start(ctx)

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, pool)
		if err != nil {
			logger.ErrorLogger.Printf("❌ Telegram bot yaratilmadi: %v", err)
		} else {
			responders[telegram.ChannelName] = bot
			logger.InfoLogger.Printf("✅ Telegram bot tayyor: @%s", bot.Username())
			go func() {
				if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.ErrorLogger.Printf("❌ Bot xatosi: %v", err)
				}
			}()
		}
	}

	// 5. HTTP server
	deps := whatsapp.HandlerDeps{
		VerifyToken: cfg.WhatsAppVerifyToken,
		Submitter:   pool,
		Quotes:      quotes,
		QuoteRepo:   stores.Quotes,
		Products:    stores.Products,
		Catalog:     catalog,
		Origins:     cfg.CORSOrigins,
	}
	if queue != nil {
		deps.Queue = queue
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           whatsapp.NewHandler(deps).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.InfoLogger.Printf("🌐 HTTP server %s da tinglayapti", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ HTTP server xatosi: %v", err)
		}
	}()

	logger.InfoLogger.Println("🤖 Bot ishlayapti. To'xtatish uchun Ctrl+C ni bosing.")

	// Signal kutish
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.InfoLogger.Println("⏳ To'xtatish signali qabul qilindi...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Printf("❌ HTTP server majburan to'xtatildi: %v", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Printf("❌ Worker pool to'liq to'xtamadi: %v", err)
	}
	cancel()
	logger.InfoLogger.Println("✅ Bot to'xtatildi.")
}

// importCatalogFile CATALOG_FILE bo'lsa katalogni ombor bilan sinxronlaydi
func importCatalogFile(ctx context.Context, path string, products repository.ProductRepository) {
	if strings.TrimSpace(path) == "" {
		return
	}
	res, err := excel.ParseCatalogFile(path)
	if err != nil {
		logger.ErrorLogger.Printf("❌ Katalog fayli o'qilmadi: %v", err)
		return
	}
	for _, skipped := range res.Skipped {
		logger.ErrorLogger.Printf("⚠️ Katalog: %v", skipped)
	}
	if len(res.Products) == 0 {
		return
	}
	if err := products.SaveMany(ctx, res.Products); err != nil {
		logger.ErrorLogger.Printf("❌ Katalog saqlanmadi: %v", err)
		return
	}
	logger.InfoLogger.Printf("📦 %s dan %d ta mahsulot yuklandi", path, len(res.Products))
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.ErrorLogger.Printf("⚠️ TIMEZONE %q topilmadi, local ishlatiladi", name)
		return time.Local
	}
	return loc
}
