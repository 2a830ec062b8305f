package worker

import (
	"context"
	"fmt"

	"github.com/yourusername/quote-bot/internal/domain/entity"
)

// ChannelRouter javobni xabar kelgan kanalga yo'naltiradi
type ChannelRouter map[string]Responder

// Respond picks the responder registered for msg.Channel.
func (r ChannelRouter) Respond(ctx context.Context, msg entity.InboundMessage, reply *entity.Reply) error {
	responder, ok := r[msg.Channel]
	if !ok {
		return fmt.Errorf("no responder for channel %q", msg.Channel)
	}
	return responder.Respond(ctx, msg, reply)
}
