package whatsapp

import (
	"context"
	"errors"

	"github.com/yourusername/quote-bot/internal/domain/entity"
	wa "github.com/yourusername/quote-bot/internal/infrastructure/whatsapp"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// ReadMarker marks an inbound message as read.
type ReadMarker interface {
	MarkAsRead(ctx context.Context, messageID string) error
}

// Responder javobni WhatsApp orqali yuboradi: text first, then documents.
// A send that landed in the retry queue is not reported as a failure.
type Responder struct {
	sender wa.Sender
	reader ReadMarker
}

// NewResponder reader may be nil.
func NewResponder(sender wa.Sender, reader ReadMarker) *Responder {
	return &Responder{sender: sender, reader: reader}
}

// Respond implements worker.Responder.
func (r *Responder) Respond(ctx context.Context, msg entity.InboundMessage, reply *entity.Reply) error {
	if reply == nil {
		return nil
	}
	if r.reader != nil && msg.ID != "" {
		if err := r.reader.MarkAsRead(ctx, msg.ID); err != nil {
			logger.ErrorLogger.Printf("⚠️ %s o'qilgan deb belgilanmadi: %v", msg.ID, err)
		}
	}

	var errs []error
	if reply.Text != "" {
		errs = append(errs, filterQueued(r.sender.SendText(ctx, msg.Phone, reply.Text)))
	}
	for _, doc := range reply.Documents {
		errs = append(errs, filterQueued(r.sender.SendDocument(ctx, msg.Phone, doc)))
	}
	return errors.Join(errs...)
}

func filterQueued(err error) error {
	if errors.Is(err, wa.ErrQueued) {
		return nil
	}
	return err
}
