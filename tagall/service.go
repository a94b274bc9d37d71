package tagall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ConfigStore persists one TagConfig per group
type ConfigStore interface {
	// TagConfig returns ErrConfigNotFound when the group has no configuration
	TagConfig(ctx context.Context, groupID int64) (*TagConfig, error)
	SaveTagConfig(ctx context.Context, cfg TagConfig) error
}

// Transport delivers outbound messages. Text is always sent with HTML parse mode.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMedia(ctx context.Context, chatID int64, kind Kind, fileID string) error
	SendPrivate(ctx context.Context, userID int64, text string) error
}

// Mode selects whether tag-all sends the group announcement before the mentions
type Mode int

const (
	ModeAnnounce Mode = iota
	ModeSilent
)

type Service struct {
	fetcher   *Fetcher
	store     ConfigStore
	transport Transport
	pending   *PendingRequests
	maxLength int
	log       *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxLength overrides the chunk size limit
func WithMaxLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLength = n
		}
	}
}

func NewService(directory Directory, store ConfigStore, transport Transport, pending *PendingRequests, opts ...Option) *Service {
	s := &Service{
		store:     store,
		transport: transport,
		pending:   pending,
		maxLength: MaxMessageLength,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pending == nil {
		s.pending = NewPendingRequests()
	}
	s.fetcher = NewFetcher(directory, s.log)

	return s
}

func (s *Service) About(ctx context.Context, chat Chat) error {
	return s.reply(ctx, chat.ID, msgAbout)
}

func (s *Service) Start(ctx context.Context, chat Chat) error {
	if !chat.IsPrivate() {
		return nil
	}
	return s.reply(ctx, chat.ID, msgStart)
}

// TagAll mentions every human member of the group, optionally preceded by the announcement
func (s *Service) TagAll(ctx context.Context, chat Chat, mode Mode) error {
	if !chat.IsGroup() {
		return s.reply(ctx, chat.ID, msgGroupOnly)
	}

	if mode == ModeAnnounce {
		if err := s.announce(ctx, chat.ID); err != nil {
			s.log.Error("tagall: Failed to send announcement", "error", err, "chat_id", chat.ID)
		}
	}

	members := s.fetcher.FetchMembers(ctx, chat.ID)
	if len(members) == 0 {
		return s.reply(ctx, chat.ID, msgMembersFailed)
	}

	chunks := Pack(members, s.maxLength)
	s.log.Info("tagall: Mentioning members", "chat_id", chat.ID,
		"members", len(members), "chunks", len(chunks))

	// Sequential on purpose: chunks must arrive in roster order
	for i, chunk := range chunks {
		if err := s.transport.SendText(ctx, chat.ID, chunk); err != nil {
			s.log.Error("tagall: Failed to send mention chunk", "error", err,
				"chat_id", chat.ID, "chunk", i, "chunks", len(chunks))
			_ = s.reply(ctx, chat.ID, msgGenericFailure)
			return fmt.Errorf("send chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	return nil
}

func (s *Service) announce(ctx context.Context, chatID int64) error {
	cfg, err := s.store.TagConfig(ctx, chatID)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		// Unreadable is not absent: keep whatever is stored and fall back for this run only
		s.log.Warn("tagall: Failed to load tag config, using default", "error", err, "chat_id", chatID)
		return s.transport.SendText(ctx, chatID, DefaultAnnouncement)
	}

	if err != nil || cfg == nil || cfg.Content == "" {
		def := TagConfig{GroupID: chatID, Content: DefaultAnnouncement, Kind: KindText}
		if saveErr := s.store.SaveTagConfig(ctx, def); saveErr != nil {
			s.log.Warn("tagall: Failed to store default tag config", "error", saveErr, "chat_id", chatID)
		}
		return s.transport.SendText(ctx, chatID, DefaultAnnouncement)
	}

	return s.deliver(ctx, chatID, Content{Value: cfg.Content, Kind: cfg.Kind})
}

func (s *Service) deliver(ctx context.Context, chatID int64, content Content) error {
	if content.Kind == KindText {
		return s.transport.SendText(ctx, chatID, content.Value)
	}
	return s.transport.SendMedia(ctx, chatID, content.Kind, content.Value)
}

// SetTagMessage handles the group command. A reply to a message is resolved in place,
// otherwise the user is asked for the content in a private chat.
func (s *Service) SetTagMessage(ctx context.Context, msg Incoming) error {
	if !msg.Chat.IsGroup() {
		return s.reply(ctx, msg.Chat.ID, msgGroupOnly)
	}

	if msg.ReplyTo != nil {
		return s.updateContent(ctx, msg.Chat.ID, msg.Chat.ID, msg.ReplyTo.Payload)
	}

	s.pending.Start(msg.UserID, msg.Chat.ID)
	s.log.Debug("tagall: Awaiting tag content", "user_id", msg.UserID, "group_id", msg.Chat.ID)

	if err := s.transport.SendPrivate(ctx, msg.UserID, msgPrivatePrompt); err != nil {
		if KindOf(err) == ErrorKindConversationNotStarted {
			s.log.Info("tagall: User has no private chat with the bot", "user_id", msg.UserID)
			return s.reply(ctx, msg.Chat.ID, msgStartBotFirst)
		}

		s.log.Error("tagall: Failed to send private prompt", "error", err, "user_id", msg.UserID)
		return s.reply(ctx, msg.Chat.ID, msgGenericFailure)
	}

	return s.reply(ctx, msg.Chat.ID, msgPromptSent)
}

// CompletePending consumes the pending request of the sender of a private message
func (s *Service) CompletePending(ctx context.Context, msg Incoming) error {
	if !msg.Chat.IsPrivate() {
		return nil
	}

	// Taken before resolving: a bad follow-up ends the request
	groupID, ok := s.pending.Take(msg.UserID)
	if !ok {
		return s.reply(ctx, msg.Chat.ID, msgNoActiveRequest)
	}

	return s.updateContent(ctx, msg.Chat.ID, groupID, msg.Payload)
}

func (s *Service) updateContent(ctx context.Context, replyChatID, groupID int64, p Payload) error {
	content, err := Resolve(p)
	if err != nil {
		return s.reply(ctx, replyChatID, msgUnsupportedInput)
	}

	err = s.store.SaveTagConfig(ctx, TagConfig{GroupID: groupID, Content: content.Value, Kind: content.Kind})
	if err != nil {
		s.log.Error("tagall: Failed to save tag config", "error", err, "group_id", groupID)
		_ = s.reply(ctx, replyChatID, msgUpdateFailed)
		return err
	}

	s.log.Info("tagall: Tag config updated", "group_id", groupID, "kind", content.Kind.String())
	return s.reply(ctx, replyChatID, msgContentUpdated)
}

func (s *Service) reply(ctx context.Context, chatID int64, text string) error {
	err := s.transport.SendText(ctx, chatID, text)
	if err != nil {
		s.log.Error("tagall: Failed to send reply", "error", err, "chat_id", chatID)
	}
	return err
}
