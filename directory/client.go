// Package directory lists group participants through the MTProto API, which the Bot API lacks
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"telegram-tag-all-bot/tagall"
)

var (
	ErrNotGroup       = errors.New("chat id does not belong to a group")
	ErrUnexpectedType = errors.New("unexpected response type")
)

// participantsAPI is the part of tg.Client the directory uses
type participantsAPI interface {
	ChannelsGetParticipants(ctx context.Context, request *tg.ChannelsGetParticipantsRequest) (tg.ChannelsChannelParticipantsClass, error)
	MessagesGetFullChat(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error)
}

// botAuth is the part of auth.Client needed to log in as a bot
type botAuth interface {
	Status(ctx context.Context) (*auth.Status, error)
	Bot(ctx context.Context, token string) (*tg.AuthAuthorization, error)
}

// runner abstracts *telegram.Client for tests
type runner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
	API() participantsAPI
	Auth() botAuth
}

type prodRunner struct {
	*telegram.Client
}

func (p *prodRunner) API() participantsAPI {
	return p.Client.API()
}

func (p *prodRunner) Auth() botAuth {
	return p.Client.Auth()
}

type Config struct {
	APIID       int
	APIHash     string
	BotToken    string
	SessionPath string
}

// Client is a bot session on the MTProto API implementing tagall.Directory
type Client struct {
	runner   runner
	botToken string
	log      *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

type ClientOption func(*Client)

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(cfg Config, opts ...ClientOption) *Client {
	tgClient := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionPath},
	})

	return newClient(&prodRunner{Client: tgClient}, cfg.BotToken, opts...)
}

func newClient(r runner, botToken string, opts ...ClientOption) *Client {
	c := &Client{
		runner:   r,
		botToken: botToken,
		log:      slog.Default(),
		ready:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run connects, logs in as the bot if the stored session is not authorized,
// and keeps the connection until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	err := c.runner.Run(ctx, func(ctx context.Context) error {
		status, err := c.runner.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get auth status: %w", err)
		}

		if !status.Authorized {
			c.log.Info("directory: Session is not authorized, logging in as bot")
			if _, err := c.runner.Auth().Bot(ctx, c.botToken); err != nil {
				return fmt.Errorf("failed to authorize bot: %w", err)
			}
		}

		c.log.Info("directory: MTProto client is ready")
		c.readyOnce.Do(func() { close(c.ready) })

		<-ctx.Done()
		return ctx.Err()
	})

	if errors.Is(err, context.Canceled) {
		c.log.Info("directory: MTProto client stopped")
		return nil
	}

	return err
}

// Ready is closed once the client is authorized
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

// Participants returns one page of participants of a group identified by its Bot API chat id
func (c *Client) Participants(ctx context.Context, groupID int64, offset, limit int) (tagall.Page, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return tagall.Page{}, ctx.Err()
	}

	target, err := peerFromChatID(groupID)
	if err != nil {
		return tagall.Page{}, err
	}

	c.log.Debug("directory: Fetching participants", "group_id", groupID, "offset", offset, "limit", limit)

	if target.channel {
		return c.channelParticipants(ctx, target.id, offset, limit)
	}
	return c.chatParticipants(ctx, target.id, offset)
}

func (c *Client) channelParticipants(ctx context.Context, channelID int64, offset, limit int) (tagall.Page, error) {
	res, err := c.runner.API().ChannelsGetParticipants(ctx, &tg.ChannelsGetParticipantsRequest{
		// Bots may address channels with a zero access hash
		Channel: &tg.InputChannel{ChannelID: channelID},
		Filter:  &tg.ChannelParticipantsRecent{},
		Offset:  offset,
		Limit:   limit,
		Hash:    0,
	})
	if err != nil {
		return tagall.Page{}, fmt.Errorf("channels.getParticipants: %w", err)
	}

	participants, ok := res.(*tg.ChannelsChannelParticipants)
	if !ok {
		return tagall.Page{}, fmt.Errorf("%w: %T", ErrUnexpectedType, res)
	}

	return tagall.Page{
		Raw:     len(participants.Participants),
		Members: membersFromUsers(participants.Users),
	}, nil
}

// chatParticipants serves a basic group, whose whole roster comes in one response, as page zero
func (c *Client) chatParticipants(ctx context.Context, chatID int64, offset int) (tagall.Page, error) {
	if offset > 0 {
		return tagall.Page{}, nil
	}

	res, err := c.runner.API().MessagesGetFullChat(ctx, chatID)
	if err != nil {
		return tagall.Page{}, fmt.Errorf("messages.getFullChat: %w", err)
	}

	full, ok := res.FullChat.(*tg.ChatFull)
	if !ok {
		return tagall.Page{}, fmt.Errorf("%w: %T", ErrUnexpectedType, res.FullChat)
	}
	list, ok := full.Participants.(*tg.ChatParticipants)
	if !ok {
		// chatParticipantsForbidden: the bot cannot see the roster
		return tagall.Page{}, fmt.Errorf("%w: %T", ErrUnexpectedType, full.Participants)
	}

	users := make(map[int64]tg.UserClass, len(res.Users))
	for _, uc := range res.Users {
		if u, ok := uc.(*tg.User); ok {
			users[u.ID] = u
		}
	}

	ordered := make([]tg.UserClass, 0, len(list.Participants))
	for _, p := range list.Participants {
		if u, ok := users[participantUserID(p)]; ok {
			ordered = append(ordered, u)
		}
	}

	return tagall.Page{
		Raw:     len(list.Participants),
		Members: membersFromUsers(ordered),
	}, nil
}

func participantUserID(p tg.ChatParticipantClass) int64 {
	switch v := p.(type) {
	case *tg.ChatParticipant:
		return v.UserID
	case *tg.ChatParticipantCreator:
		return v.UserID
	case *tg.ChatParticipantAdmin:
		return v.UserID
	default:
		return 0
	}
}

func membersFromUsers(users []tg.UserClass) []tagall.Member {
	members := make([]tagall.Member, 0, len(users))
	for _, uc := range users {
		u, ok := uc.(*tg.User)
		if !ok || u.Deleted {
			continue
		}

		members = append(members, tagall.Member{
			ID:          u.ID,
			DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
			Username:    u.Username,
			IsBot:       u.Bot,
		})
	}
	return members
}

type peer struct {
	id      int64
	channel bool
}

// Bot API ids: supergroups are -100XXXXXXXXXX, basic groups are -XXXXXXXXX
const channelIDShift = 1_000_000_000_000

func peerFromChatID(chatID int64) (peer, error) {
	if chatID >= 0 {
		return peer{}, fmt.Errorf("%w: %d", ErrNotGroup, chatID)
	}
	if chatID < -channelIDShift {
		return peer{id: -chatID - channelIDShift, channel: true}, nil
	}
	return peer{id: -chatID}, nil
}
