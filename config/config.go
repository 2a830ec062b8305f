package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/quote-bot/internal/domain/constants"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAPIURL        string
	WhatsAppAPIVersion    string

	TelegramToken string
	GeminiAPIKey  string

	HTTPAddr    string
	PostgresDSN string
	RedisURL    string

	CatalogFile    string
	CatalogTTL     time.Duration
	SessionTTL     time.Duration
	MessageTimeout time.Duration
	WorkerCount    int

	FuzzyThreshold int
	OverlapPolicy  string
	KeywordsFile   string
	Timezone       string
	CORSOrigins    []string

	AllowEmptySecrets bool
}

// WhatsAppEnabled reports whether the Cloud API channel is configured.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsAppAccessToken != "" && c.WhatsAppPhoneNumberID != ""
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	config := &Config{
		WhatsAppAccessToken:   strings.TrimSpace(os.Getenv("WHATSAPP_ACCESS_TOKEN")),
		WhatsAppPhoneNumberID: strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID")),
		WhatsAppVerifyToken:   strings.TrimSpace(os.Getenv("WHATSAPP_VERIFY_TOKEN")),
		WhatsAppAPIURL:        getEnv("WHATSAPP_API_URL", "https://graph.facebook.com"),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v18.0"),
		TelegramToken:         strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisURL:              strings.TrimSpace(os.Getenv("REDIS_URL")),
		CatalogFile:           strings.TrimSpace(os.Getenv("CATALOG_FILE")),
		CatalogTTL:            getEnvDuration("CATALOG_TTL", constants.DefaultCatalogTTL),
		SessionTTL:            getEnvDuration("SESSION_TTL", constants.SessionTTL),
		MessageTimeout:        getEnvDuration("MESSAGE_TIMEOUT", constants.DefaultMessageTimeout),
		WorkerCount:           getEnvInt("WORKER_COUNT", constants.DefaultWorkerCount),
		FuzzyThreshold:        getEnvInt("PARSER_FUZZY_THRESHOLD", 0),
		OverlapPolicy:         strings.TrimSpace(os.Getenv("PARSER_OVERLAP_POLICY")),
		KeywordsFile:          strings.TrimSpace(os.Getenv("KEYWORDS_FILE")),
		Timezone:              strings.TrimSpace(os.Getenv("TIMEZONE")),
		CORSOrigins:           splitList(os.Getenv("CORS_ORIGINS")),
		AllowEmptySecrets:     getEnvBool("ALLOW_EMPTY_SECRETS", false),
	}
	if config.PostgresDSN == "" {
		config.PostgresDSN = buildPostgresDSNFromEnv()
	}

	if config.FuzzyThreshold < 0 || config.FuzzyThreshold > 100 {
		return nil, fmt.Errorf("PARSER_FUZZY_THRESHOLD 0..100 oralig'ida bo'lishi kerak: %d", config.FuzzyThreshold)
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = constants.DefaultWorkerCount
	}

	// Validatsiya
	if !config.AllowEmptySecrets {
		if config.WhatsAppAccessToken != "" && config.WhatsAppPhoneNumberID == "" {
			return nil, fmt.Errorf("WHATSAPP_PHONE_NUMBER_ID environment variable bo'sh")
		}
		if config.WhatsAppEnabled() && config.WhatsAppVerifyToken == "" {
			return nil, fmt.Errorf("WHATSAPP_VERIFY_TOKEN environment variable bo'sh")
		}
		if !config.WhatsAppEnabled() && config.TelegramToken == "" {
			return nil, fmt.Errorf("WHATSAPP_ACCESS_TOKEN yoki TELEGRAM_BOT_TOKEN kerak")
		}
	}

	return config, nil
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	password := os.Getenv("POSTGRES_PASSWORD")
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	sslmode := strings.TrimSpace(os.Getenv("POSTGRES_SSLMODE"))

	if host == "" || user == "" || db == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + strings.TrimPrefix(db, "/"),
	}
	if password == "" {
		u.User = url.User(user)
	} else {
		u.User = url.UserPassword(user, password)
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts "90s"/"10m" or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}
