package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// ChannelName InboundMessage.Channel qiymati
const ChannelName = "telegram"

// telegramTextLimit Telegram bitta xabar limiti
const telegramTextLimit = 4096

// botAPI is the part of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Submitter worker pool navbati
type Submitter interface {
	Submit(msg entity.InboundMessage) error
}

// Bot Telegram kanali: updates go to the same worker pool as WhatsApp.
type Bot struct {
	api       botAPI
	submitter Submitter
	username  string
}

// NewBot token bilan Telegram bot yaratish
func NewBot(token string, submitter Submitter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b := newBot(api, submitter)
	b.username = api.Self.UserName
	return b, nil
}

func newBot(api botAPI, submitter Submitter) *Bot {
	return &Bot{api: api, submitter: submitter}
}

// Username bot nomi
func (b *Bot) Username() string {
	return b.username
}

// Start long-polls updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := toInbound(update)
			if !ok {
				continue
			}
			if err := b.submitter.Submit(msg); err != nil {
				logger.ErrorLogger.Printf("⚠️ Telegram xabari navbatga qo'yilmadi %s: %v", msg.Phone, err)
			}
		}
	}
}

// toInbound faqat shaxsiy chatdagi matnli xabarlarni oladi
func toInbound(update tgbotapi.Update) (entity.InboundMessage, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || !m.Chat.IsPrivate() || m.From == nil {
		return entity.InboundMessage{}, false
	}
	text := strings.TrimSpace(m.Text)
	if text == "" || (m.IsCommand() && m.Command() != "start") {
		return entity.InboundMessage{}, false
	}
	if m.IsCommand() {
		text = "hola"
	}
	name := strings.TrimSpace(m.From.FirstName + " " + m.From.LastName)
	if name == "" {
		name = m.From.UserName
	}
	return entity.InboundMessage{
		ID:         strconv.Itoa(m.MessageID),
		Phone:      strconv.FormatInt(m.Chat.ID, 10),
		Name:       name,
		Text:       text,
		Channel:    ChannelName,
		ReceivedAt: time.Unix(int64(m.Date), 0),
	}, true
}

// Respond implements worker.Responder for Telegram chats.
func (b *Bot) Respond(ctx context.Context, msg entity.InboundMessage, reply *entity.Reply) error {
	if reply == nil {
		return nil
	}
	chatID, err := strconv.ParseInt(msg.Phone, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", msg.Phone, err)
	}

	for _, chunk := range splitIntoChunks(reply.Text, telegramTextLimit) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("send text: %w", err)
		}
	}
	for _, doc := range reply.Documents {
		out := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: doc.Filename, Bytes: doc.Content})
		out.Caption = doc.Caption
		if _, err := b.api.Send(out); err != nil {
			return fmt.Errorf("send document %s: %w", doc.Filename, err)
		}
		logger.InfoLogger.Printf("📎 Telegram hujjat yuborildi: chat=%d file=%s", chatID, doc.Filename)
	}
	return nil
}

// splitIntoChunks matnni Telegram limitiga mos bo'laklarga bo'ladi (runes)
func splitIntoChunks(s string, limit int) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return []string{s}
	}
	var chunks []string
	for len(runes) > 0 {
		n := limit
		if n > len(runes) {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}
