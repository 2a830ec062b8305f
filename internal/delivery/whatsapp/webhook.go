package whatsapp

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/quote-bot/internal/domain/entity"
)

// ChannelName InboundMessage.Channel qiymati
const ChannelName = "whatsapp"

// webhookPayload Meta Cloud API webhook tanasi
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string      `json:"field"`
			Value changeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type changeValue struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		WaID    string `json:"wa_id"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	} `json:"contacts"`
	Messages []struct {
		From      string `json:"from"`
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
		Text      struct {
			Body string `json:"body"`
		} `json:"text"`
	} `json:"messages"`
}

// extractMessages returns the text messages of a webhook call. Status
// updates and non-text messages are skipped.
func extractMessages(p webhookPayload, now time.Time) []entity.InboundMessage {
	var out []entity.InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, m := range change.Value.Messages {
				if m.Type != "text" || strings.TrimSpace(m.Text.Body) == "" || m.From == "" {
					continue
				}
				out = append(out, entity.InboundMessage{
					ID:         m.ID,
					Phone:      m.From,
					Name:       names[m.From],
					Text:       m.Text.Body,
					Channel:    ChannelName,
					ReceivedAt: parseTimestamp(m.Timestamp, now),
				})
			}
		}
	}
	return out
}

func parseTimestamp(raw string, fallback time.Time) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Unix(secs, 0)
}

// seenIDs Meta qayta yuborgan xabarlarni tanib olish uchun.
// Holds the last size ids in insertion order.
type seenIDs struct {
	mu    sync.Mutex
	size  int
	order []string
	set   map[string]struct{}
}

func newSeenIDs(size int) *seenIDs {
	return &seenIDs{size: size, set: make(map[string]struct{}, size)}
}

// firstTime records id and reports whether it was new.
func (s *seenIDs) firstTime(id string) bool {
	if id == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[id]; ok {
		return false
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.size {
		delete(s.set, s.order[0])
		s.order = s.order[1:]
	}
	return true
}
