package whatsapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/internal/infrastructure/excel"
	wa "github.com/yourusername/quote-bot/internal/infrastructure/whatsapp"
	"github.com/yourusername/quote-bot/internal/usecase"
	"github.com/yourusername/quote-bot/pkg/logger"
)

const seenIDsCapacity = 2048

// Submitter worker pool navbati
type Submitter interface {
	Submit(msg entity.InboundMessage) error
}

// QuotePreviewer builds a quote from free text without saving it.
type QuotePreviewer interface {
	GenerateQuoteWithDetails(ctx context.Context, text, clientPhone, notes string) (*usecase.QuotePreview, error)
}

// Catalog katalog keshi
type Catalog interface {
	Products(ctx context.Context) []entity.Product
	Invalidate()
}

// RetryQueue chiquvchi xabarlar navbati
type RetryQueue interface {
	Status() wa.QueueStatus
	RetryNow(ctx context.Context) wa.RetryResult
}

// HandlerDeps Handler bog'liqliklari. Queue may be nil when the Cloud API
// is not configured.
type HandlerDeps struct {
	VerifyToken string
	Submitter   Submitter
	Quotes      QuotePreviewer
	QuoteRepo   repository.QuoteRepository
	Products    repository.ProductRepository
	Catalog     Catalog
	Queue       RetryQueue
	Origins     []string
	Now         func() time.Time
}

// Handler WhatsApp webhook va REST API
type Handler struct {
	deps HandlerDeps
	seen *seenIDs
}

// NewHandler yangi Handler
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handler{deps: deps, seen: newSeenIDs(seenIDsCapacity)}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(h.deps.Origins) > 0 {
		corsCfg.AllowOrigins = h.deps.Origins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	hook := r.Group("/webhook")
	{
		hook.GET("", h.Verify)
		hook.POST("", h.Receive)
		hook.POST("/retry", h.RetryQueue)
		hook.GET("/queue-status", h.QueueStatus)
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/quotes/generate", h.GenerateQuote)
		v1.GET("/quotes/:id", h.GetQuote)
		v1.GET("/quotes", h.ListQuotes)
		v1.GET("/products", h.ListProducts)
		v1.POST("/products/import", h.ImportProducts)
		v1.POST("/catalog/invalidate", h.InvalidateCatalog)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" {
			return
		}
		logger.InfoLogger.Printf("🌐 %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Verify GET /webhook: Meta obuna tekshiruvi
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.deps.VerifyToken != "" && token == h.deps.VerifyToken {
		logger.InfoLogger.Println("✅ Webhook tasdiqlandi")
		c.String(http.StatusOK, challenge)
		return
	}
	logger.ErrorLogger.Printf("🚫 Webhook tekshiruvi rad etildi (mode=%q)", mode)
	c.String(http.StatusForbidden, "forbidden")
}

// Receive POST /webhook. Replies 200 once the payload is parsed so Meta
// does not redeliver; the work happens in the worker pool.
func (h *Handler) Receive(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	accepted := 0
	for _, msg := range extractMessages(payload, h.deps.Now()) {
		if !h.seen.firstTime(msg.ID) {
			logger.InfoLogger.Printf("♻️ Takroriy xabar e'tiborsiz qoldirildi: %s", msg.ID)
			continue
		}
		logger.InfoLogger.Printf("📩 %s (%s): %q", msg.Phone, msg.Name, msg.Text)
		if err := h.deps.Submitter.Submit(msg); err != nil {
			logger.ErrorLogger.Printf("⚠️ Xabar navbatga qo'yilmadi %s: %v", msg.Phone, err)
			continue
		}
		accepted++
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "accepted": accepted})
}

// RetryQueue POST /webhook/retry
func (h *Handler) RetryQueue(c *gin.Context) {
	if h.deps.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "retry queue disabled"})
		return
	}
	c.JSON(http.StatusOK, h.deps.Queue.RetryNow(c.Request.Context()))
}

// QueueStatus GET /webhook/queue-status
func (h *Handler) QueueStatus(c *gin.Context) {
	if h.deps.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "retry queue disabled"})
		return
	}
	c.JSON(http.StatusOK, h.deps.Queue.Status())
}

type generateRequest struct {
	Text        string `json:"text" binding:"required"`
	ClientPhone string `json:"client_phone"`
	Notes       string `json:"notes"`
}

// GenerateQuote POST /api/v1/quotes/generate. Nothing is persisted.
func (h *Handler) GenerateQuote(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	preview, err := h.deps.Quotes.GenerateQuoteWithDetails(c.Request.Context(), req.Text, req.ClientPhone, req.Notes)
	switch {
	case errors.Is(err, entity.ErrNoItemsParsed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no products found in text"})
		return
	case err != nil:
		logger.ErrorLogger.Printf("❌ Kotirovka yaratilmadi: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build quote"})
		return
	}
	c.JSON(http.StatusOK, preview)
}

// GetQuote GET /api/v1/quotes/:id
func (h *Handler) GetQuote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return
	}
	quote, err := h.deps.QuoteRepo.GetByID(c.Request.Context(), id)
	if errors.Is(err, entity.ErrQuoteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		return
	}
	if err != nil {
		logger.ErrorLogger.Printf("❌ Kotirovka %d o'qilmadi: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load quote"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ListQuotes GET /api/v1/quotes?phone=
func (h *Handler) ListQuotes(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}
	quotes, err := h.deps.QuoteRepo.ListByPhone(c.Request.Context(), phone)
	if err != nil {
		logger.ErrorLogger.Printf("❌ %s kotirovkalari o'qilmadi: %v", phone, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load quotes"})
		return
	}
	if quotes == nil {
		quotes = []entity.Quote{}
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// ListProducts GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	products := h.deps.Catalog.Products(c.Request.Context())
	if products == nil {
		products = []entity.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

type skippedRow struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportProducts POST /api/v1/products/import, multipart "file" (.xlsx).
func (h *Handler) ImportProducts(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxFileUploadSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx files are accepted"})
		return
	}

	res, err := excel.ParseCatalog(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	skipped := make([]skippedRow, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped = append(skipped, skippedRow{Row: s.Row, Error: s.Err.Error()})
	}
	if len(res.Products) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no valid products in file", "skipped": skipped})
		return
	}

	if err := h.deps.Products.SaveMany(c.Request.Context(), res.Products); err != nil {
		logger.ErrorLogger.Printf("❌ Katalog saqlanmadi: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save products"})
		return
	}
	h.deps.Catalog.Invalidate()
	logger.InfoLogger.Printf("📦 %s: %d ta mahsulot import qilindi, %d ta qator o'tkazildi", header.Filename, len(res.Products), len(skipped))

	c.JSON(http.StatusOK, gin.H{"imported": len(res.Products), "skipped": skipped})
}

// InvalidateCatalog POST /api/v1/catalog/invalidate
func (h *Handler) InvalidateCatalog(c *gin.Context) {
	h.deps.Catalog.Invalidate()
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}
