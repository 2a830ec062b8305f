package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"github.com/yourusername/quote-bot/pkg/logger"
	"google.golang.org/api/option"
)

const blockedReply = "Disculpa, no pude responder a eso. ¿Podrías escribirlo de otra forma?"

// generator is the part of genai.GenerativeModel the client calls.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client Gemini asosidagi fallback javob beruvchi
type Client struct {
	client     *genai.Client
	model      generator
	maxRetries int
	retryDelay time.Duration
}

// NewGeminiClient yangi Gemini AI client yaratish
func NewGeminiClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(constants.GeminiModelName)
	model.SetTemperature(constants.AITemperature)
	model.SetTopK(constants.AITopK)
	model.SetTopP(constants.AITopP)
	model.SetMaxOutputTokens(constants.AIMaxOutputTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(FallbackInstruction)},
	}

	return &Client{
		client:     client,
		model:      model,
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay * time.Second,
	}, nil
}

var _ repository.FallbackResponder = (*Client)(nil)

// FallbackResponse buyurtma bo'lmagan xabarga qisqa javob
func (g *Client) FallbackResponse(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty message")
	}
	parts := []genai.Part{genai.Text(fmt.Sprintf("Cliente: %s", text))}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		logger.InfoLogger.Printf("🔄 Gemini API ga so'rov yuborish (urinish %d/%d)...", attempt, g.maxRetries)

		reply, retry, err := g.generate(ctx, parts)
		if err == nil {
			logger.InfoLogger.Printf("✅ Javob muvaffaqiyatli olindi (urinish %d)", attempt)
			return reply, nil
		}
		lastErr = err
		logger.ErrorLogger.Printf("❌ Urinish %d xato: %v", attempt, err)
		if !retry || attempt == g.maxRetries {
			break
		}
		logger.InfoLogger.Printf("⏳ %v kutib qayta urinish...", g.retryDelay)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.retryDelay):
		}
	}

	logger.ErrorLogger.Printf("❌ Gemini javob bermadi: %v", lastErr)
	return "", fmt.Errorf("AI javob berishda xatolik yuz berdi (%d urinishdan keyin): %w", g.maxRetries, lastErr)
}

// generate returns retry=true for errors worth another attempt.
func (g *Client) generate(ctx context.Context, parts []genai.Part) (string, bool, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", ctx.Err() == nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", true, fmt.Errorf("no response candidates")
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		logger.InfoLogger.Printf("🚫 Response blocked by safety filter!")
		return blockedReply, false, nil
	}
	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", true, fmt.Errorf("empty response")
	}
	return text, false, nil
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

// Close client ni yopish
func (g *Client) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
