package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"telegram-tag-all-bot/logging"
	"telegram-tag-all-bot/tagall"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

// TitleRecorder keeps group titles next to their configuration
type TitleRecorder interface {
	SetTitle(ctx context.Context, groupID int64, title string) error
}

type Bot struct {
	bot     *telego.Bot
	service *tagall.Service
	titles  TitleRecorder
	log     *slog.Logger
}

// NewAPI creates the Bot API client with telego logs routed to log
func NewAPI(token string, log *slog.Logger) (*telego.Bot, error) {
	return telego.NewBot(token, telego.WithLogger(logging.TelegoLogger{Logger: log}))
}

func New(api *telego.Bot, service *tagall.Service, titles TitleRecorder, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}

	return &Bot{
		bot:     api,
		service: service,
		titles:  titles,
		log:     log,
	}
}

// Start receives updates with long polling until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	botUser, err := b.bot.GetMe(ctx)
	if err != nil {
		b.log.Error("bot: Cannot retrieve api user", "error", err)
		return fmt.Errorf("%w: %w", ErrGetMe, err)
	}

	b.log.Info("bot: Running api as", "id", botUser.ID, "username", botUser.Username, "name", botUser.FirstName)

	err = b.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: botCommands()})
	if err != nil {
		b.log.Warn("bot: Failed to set command menu", "error", err)
	}

	updates, err := b.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		b.log.Error("bot: Cannot get update channel", "error", err)
		return fmt.Errorf("%w: %w", ErrUpdatesChannel, err)
	}

	bh, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		b.log.Error("bot: Cannot initialize bot handler", "error", err)
		return fmt.Errorf("%w: %w", ErrHandlerInit, err)
	}

	b.register(bh)

	go func() {
		<-ctx.Done()
		_ = bh.Stop()
	}()

	b.log.Info("bot: Handling updates")
	if err := bh.Start(); err != nil {
		return fmt.Errorf("bot handler: %w", err)
	}

	b.log.Info("bot: Stopped")
	return nil
}

func (b *Bot) register(bh *th.BotHandler) {
	bh.Use(b.requestMiddleware)
	bh.Use(b.titleMiddleware)

	bh.HandleMessage(b.aboutHandler, th.CommandEqual("about"))
	bh.HandleMessage(b.startHandler, th.CommandEqual("start"))
	bh.HandleMessage(b.tagAllHandler(tagall.ModeAnnounce),
		th.Or(th.CommandEqual("tag_all"), th.CommandEqual("tag_all_without_msg")))
	bh.HandleMessage(b.tagAllHandler(tagall.ModeSilent), th.CommandEqual("tag_all_silent"))
	bh.HandleMessage(b.setTagMessageHandler,
		th.Or(th.CommandEqual("set_tag_message"), th.CommandEqual("set_tag_msg")))
	bh.HandleMessage(b.privateMessageHandler, privateChat, th.Not(th.AnyCommand()))
}

func privateChat(_ context.Context, update telego.Update) bool {
	return update.Message != nil && update.Message.Chat.Type == telego.ChatTypePrivate
}

func (b *Bot) aboutHandler(ctx *th.Context, msg telego.Message) error {
	b.log.Info("bot: /about", "chat_id", msg.Chat.ID)
	return b.service.About(ctx, chatFromMessage(msg))
}

func (b *Bot) startHandler(ctx *th.Context, msg telego.Message) error {
	b.log.Info("bot: /start", "chat_id", msg.Chat.ID)
	return b.service.Start(ctx, chatFromMessage(msg))
}

func (b *Bot) tagAllHandler(mode tagall.Mode) th.MessageHandler {
	return func(ctx *th.Context, msg telego.Message) error {
		b.log.Info("bot: Tag all requested", "chat_id", msg.Chat.ID, "silent", mode == tagall.ModeSilent)
		return b.service.TagAll(ctx, chatFromMessage(msg), mode)
	}
}

func (b *Bot) setTagMessageHandler(ctx *th.Context, msg telego.Message) error {
	b.log.Info("bot: /set_tag_message", "chat_id", msg.Chat.ID, "reply", isRealReply(msg))
	return b.service.SetTagMessage(ctx, incomingFromMessage(msg))
}

func (b *Bot) privateMessageHandler(ctx *th.Context, msg telego.Message) error {
	return b.service.CompletePending(ctx, incomingFromMessage(msg))
}
