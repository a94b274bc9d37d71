package bot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// requestMiddleware tags every update with a request id and logs handler errors
func (b *Bot) requestMiddleware(ctx *th.Context, update telego.Update) error {
	requestID := uuid.NewString()
	ctx = ctx.WithValue(requestIDKey{}, requestID)

	started := time.Now()
	b.log.Debug("bot: Update received", "update_id", update.UpdateID, "request_id", requestID)

	if err := ctx.Next(update); err != nil {
		b.log.Error("bot: Update handling failed", "error", err,
			"update_id", update.UpdateID, "request_id", requestID)
		return nil
	}

	b.log.Debug("bot: Update handled", "update_id", update.UpdateID, "request_id", requestID,
		"duration", time.Since(started))
	return nil
}

// titleMiddleware remembers the title of groups the bot is commanded in
func (b *Bot) titleMiddleware(ctx *th.Context, update telego.Update) error {
	msg := update.Message
	if msg != nil && chatFromMessage(*msg).IsGroup() && strings.HasPrefix(msg.Text, "/") {
		if err := b.titles.SetTitle(ctx, msg.Chat.ID, msg.Chat.Title); err != nil {
			// Not fatal for the command itself
			b.log.Warn("bot: Failed to store group title", "error", err,
				"chat_id", msg.Chat.ID, "request_id", requestIDFrom(ctx))
		}
	}

	return ctx.Next(update)
}
