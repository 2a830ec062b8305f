package constants

import "time"

// Session va savat konstantalari
const (
	// SessionTTL inactivity window after which a cart is discarded
	SessionTTL = 30 * time.Minute

	// SessionConflictRetries read-merge-write attempts on a version conflict
	SessionConflictRetries = 3
)

// Parser konstantalari
const (
	// QuantityLookbehind runes inspected before a mention for its quantity
	QuantityLookbehind = 30

	// NegationLookbehind runes inspected before a mention for a delete keyword
	NegationLookbehind = 25

	// MaxQuantity largest digit quantity accepted from free text
	MaxQuantity = 9999

	// DefaultFuzzyThreshold suggested acceptance score for the fuzzy pass
	DefaultFuzzyThreshold = 70

	// FuzzyMinTokenLength shorter tokens never go through the fuzzy pass
	FuzzyMinTokenLength = 4

	// GreetingMaxWords longer messages are not treated as a bare greeting
	GreetingMaxWords = 5
)

// Katalog konstantalari
const (
	// DefaultCatalogTTL catalog cache refresh interval
	DefaultCatalogTTL = 10 * time.Minute
)

// Worker pool konstantalari
const (
	DefaultWorkerCount     = 16
	WorkerQueueSize        = 64
	DefaultMessageTimeout  = 20 * time.Second
	MaxMessagesPerSecond   = 3
	RateLimiterCleanupTime = 5 * time.Minute
	RateLimiterMaxIdleTime = 10 * time.Minute
)

// Retry queue konstantalari
const (
	RetryMaxAttempts   = 5
	RetryFirstDelay    = time.Minute
	RetryCheckInterval = 30 * time.Second
)

// AI Model konstantalari
const (
	// GeminiModelName Gemini AI model nomi
	GeminiModelName = "gemini-2.5-flash"

	// AITemperature AI javob aniqlik darajasi (0.0-1.0)
	AITemperature = 0.4

	// AITopK Top-K sampling parametri
	AITopK = 20

	// AITopP Top-P sampling parametri
	AITopP = 0.9

	// AIMaxOutputTokens fallback replies stay short
	AIMaxOutputTokens = 300

	// MaxRetries AI ga so'rov yuborish uchun max urinishlar
	MaxRetries = 2

	// RetryDelay har bir urinish o'rtasidagi kutish vaqti (soniya)
	RetryDelay = 2
)

// Fayl konstantalari
const (
	// MaxFileUploadSize maksimal fayl hajmi (bayt)
	MaxFileUploadSize = 5 * 1024 * 1024 // 5MB

	XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
