package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/pkg/logger"
)

const maxBodyLog = 512

// Config Cloud API ulanish sozlamalari
type Config struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// Client WhatsApp Cloud API orqali xabar yuboradi
type Client struct {
	cfg  Config
	http *http.Client
}

// APIError non-2xx response from the Graph API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api: status %d: %s", e.StatusCode, e.Body)
}

// NewClient httpClient nil bo'lsa timeout bilan yangisi yaratiladi
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v18.0"
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.PhoneNumberID, path)
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type documentBody struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type outboundMessage struct {
	MessagingProduct string        `json:"messaging_product"`
	RecipientType    string        `json:"recipient_type,omitempty"`
	To               string        `json:"to,omitempty"`
	Type             string        `json:"type,omitempty"`
	Text             *textBody     `json:"text,omitempty"`
	Document         *documentBody `json:"document,omitempty"`
	Status           string        `json:"status,omitempty"`
	MessageID        string        `json:"message_id,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText matnli xabar yuborish
func (c *Client) SendText(ctx context.Context, to, text string) error {
	msg := outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: text},
	}
	var resp sendResponse
	if err := c.postJSON(ctx, c.endpoint("messages"), msg, &resp); err != nil {
		return err
	}
	logger.InfoLogger.Printf("📤 WhatsApp xabar yuborildi: to=%s id=%s", to, firstMessageID(resp))
	return nil
}

// SendDocument uploads the content as media, then sends it by id.
func (c *Client) SendDocument(ctx context.Context, to string, doc entity.Document) error {
	if len(doc.Content) == 0 {
		return fmt.Errorf("document %q has no content", doc.Filename)
	}
	mediaID, err := c.UploadMedia(ctx, doc)
	if err != nil {
		return fmt.Errorf("upload media: %w", err)
	}
	msg := outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "document",
		Document:         &documentBody{ID: mediaID, Caption: doc.Caption, Filename: doc.Filename},
	}
	var resp sendResponse
	if err := c.postJSON(ctx, c.endpoint("messages"), msg, &resp); err != nil {
		return err
	}
	logger.InfoLogger.Printf("📎 WhatsApp hujjat yuborildi: to=%s file=%s", to, doc.Filename)
	return nil
}

// UploadMedia POST /{phone_id}/media as multipart form.
func (c *Client) UploadMedia(ctx context.Context, doc entity.Document) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	mime := doc.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	if err := w.WriteField("type", mime); err != nil {
		return "", err
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(doc.Filename)))
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(doc.Content); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("media"), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("media upload returned no id")
	}
	return resp.ID, nil
}

// MarkAsRead kiruvchi xabarni o'qilgan deb belgilash
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	msg := outboundMessage{MessagingProduct: "whatsapp", Status: "read", MessageID: messageID}
	return c.postJSON(ctx, c.endpoint("messages"), msg, nil)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxBodyLog {
			snippet = snippet[:maxBodyLog]
		}
		return &APIError{StatusCode: resp.StatusCode, Body: snippet}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode whatsapp response: %w", err)
	}
	return nil
}

func firstMessageID(resp sendResponse) string {
	if len(resp.Messages) == 0 {
		return ""
	}
	return resp.Messages[0].ID
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
