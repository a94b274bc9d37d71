package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telegram-tag-all-bot/tagall"
)

// --- Mocks ---

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ChannelsGetParticipants(ctx context.Context, req *tg.ChannelsGetParticipantsRequest) (tg.ChannelsChannelParticipantsClass, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(tg.ChannelsChannelParticipantsClass)
	return res, args.Error(1)
}

func (m *mockAPI) MessagesGetFullChat(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error) {
	args := m.Called(ctx, chatID)
	res, _ := args.Get(0).(*tg.MessagesChatFull)
	return res, args.Error(1)
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Status(ctx context.Context) (*auth.Status, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*auth.Status)
	return res, args.Error(1)
}

func (m *mockAuth) Bot(ctx context.Context, token string) (*tg.AuthAuthorization, error) {
	args := m.Called(ctx, token)
	res, _ := args.Get(0).(*tg.AuthAuthorization)
	return res, args.Error(1)
}

// fakeRunner calls f directly, as the real client does once connected
type fakeRunner struct {
	api  *mockAPI
	auth *mockAuth
}

func (r *fakeRunner) Run(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func (r *fakeRunner) API() participantsAPI {
	return r.api
}

func (r *fakeRunner) Auth() botAuth {
	return r.auth
}

func newTestClient(t *testing.T) (*Client, *fakeRunner) {
	t.Helper()

	r := &fakeRunner{api: new(mockAPI), auth: new(mockAuth)}
	c := newClient(r, "123:token", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	return c, r
}

// readyClient returns a client that skips the connection phase
func readyClient(t *testing.T) (*Client, *fakeRunner) {
	c, r := newTestClient(t)
	c.readyOnce.Do(func() { close(c.ready) })
	return c, r
}

// --- Tests ---

func TestPeerFromChatID(t *testing.T) {
	tests := []struct {
		name    string
		chatID  int64
		want    peer
		wantErr bool
	}{
		{name: "supergroup", chatID: -1001234567890, want: peer{id: 1234567890, channel: true}},
		{name: "basic group", chatID: -123456789, want: peer{id: 123456789}},
		{name: "user", chatID: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := peerFromChatID(tt.chatID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotGroup)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ChannelParticipants(t *testing.T) {
	c, r := readyClient(t)
	ctx := context.Background()

	res := &tg.ChannelsChannelParticipants{
		Count: 3,
		Participants: []tg.ChannelParticipantClass{
			&tg.ChannelParticipant{UserID: 1},
			&tg.ChannelParticipant{UserID: 2},
			&tg.ChannelParticipantAdmin{UserID: 3},
		},
		Users: []tg.UserClass{
			&tg.User{ID: 1, FirstName: "Ivan", LastName: "Franko", Username: "ivan"},
			&tg.User{ID: 2, FirstName: "Helper", Bot: true},
			&tg.User{ID: 3, FirstName: "Lesia"},
		},
	}
	r.api.On("ChannelsGetParticipants", ctx, mock.MatchedBy(func(req *tg.ChannelsGetParticipantsRequest) bool {
		ch, ok := req.Channel.(*tg.InputChannel)
		_, recent := req.Filter.(*tg.ChannelParticipantsRecent)
		return ok && ch.ChannelID == 1234567890 && recent && req.Offset == 200 && req.Limit == 100
	})).Return(res, nil).Once()

	page, err := c.Participants(ctx, -1001234567890, 200, 100)
	require.NoError(t, err)

	assert.Equal(t, 3, page.Raw)
	assert.Equal(t, []tagall.Member{
		{ID: 1, DisplayName: "Ivan Franko", Username: "ivan"},
		{ID: 2, DisplayName: "Helper", IsBot: true},
		{ID: 3, DisplayName: "Lesia"},
	}, page.Members)
	r.api.AssertExpectations(t)
}

func TestClient_ChannelParticipants_NotModified(t *testing.T) {
	c, r := readyClient(t)
	ctx := context.Background()

	r.api.On("ChannelsGetParticipants", ctx, mock.Anything).Return(&tg.ChannelsChannelParticipantsNotModified{}, nil).Once()

	_, err := c.Participants(ctx, -1001234567890, 0, 100)
	assert.ErrorIs(t, err, ErrUnexpectedType)
}

func TestClient_ChannelParticipants_Error(t *testing.T) {
	c, r := readyClient(t)
	ctx := context.Background()

	rpcErr := errors.New("rpc error code 400: CHANNEL_INVALID")
	r.api.On("ChannelsGetParticipants", ctx, mock.Anything).Return(nil, rpcErr).Once()

	_, err := c.Participants(ctx, -1001234567890, 0, 100)
	assert.ErrorIs(t, err, rpcErr)
}

func TestClient_BasicGroupParticipants(t *testing.T) {
	c, r := readyClient(t)
	ctx := context.Background()

	res := &tg.MessagesChatFull{
		FullChat: &tg.ChatFull{
			ID: 123456789,
			Participants: &tg.ChatParticipants{
				ChatID: 123456789,
				Participants: []tg.ChatParticipantClass{
					&tg.ChatParticipantCreator{UserID: 3},
					&tg.ChatParticipant{UserID: 1},
					&tg.ChatParticipantAdmin{UserID: 2},
				},
			},
		},
		Users: []tg.UserClass{
			&tg.User{ID: 1, FirstName: "Ivan", Username: "ivan"},
			&tg.User{ID: 2, FirstName: "Bot", Bot: true},
			&tg.User{ID: 3, FirstName: "Owner"},
			&tg.User{ID: 99, FirstName: "Not a member"},
		},
	}
	r.api.On("MessagesGetFullChat", ctx, int64(123456789)).Return(res, nil).Once()

	page, err := c.Participants(ctx, -123456789, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, 3, page.Raw)
	assert.Equal(t, []tagall.Member{
		{ID: 3, DisplayName: "Owner"},
		{ID: 1, DisplayName: "Ivan", Username: "ivan"},
		{ID: 2, DisplayName: "Bot", IsBot: true},
	}, page.Members)

	// The whole roster is page zero
	next, err := c.Participants(ctx, -123456789, 100, 100)
	require.NoError(t, err)
	assert.Zero(t, next.Raw)

	r.api.AssertExpectations(t)
}

func TestClient_BasicGroupForbidden(t *testing.T) {
	c, r := readyClient(t)
	ctx := context.Background()

	res := &tg.MessagesChatFull{
		FullChat: &tg.ChatFull{Participants: &tg.ChatParticipantsForbidden{ChatID: 1}},
	}
	r.api.On("MessagesGetFullChat", ctx, int64(1)).Return(res, nil).Once()

	_, err := c.Participants(ctx, -1, 0, 100)
	assert.ErrorIs(t, err, ErrUnexpectedType)
}

func TestClient_ParticipantsWaitsForReady(t *testing.T) {
	c, _ := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Participants(ctx, -1001234567890, 0, 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Run_AuthorizesBot(t *testing.T) {
	c, r := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	r.auth.On("Status", mock.Anything).Return(&auth.Status{Authorized: false}, nil).Once()
	r.auth.On("Bot", mock.Anything, "123:token").Return(&tg.AuthAuthorization{}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-c.Ready():
	case <-time.After(time.Second):
		t.Fatal("client did not become ready")
	}

	cancel()
	require.NoError(t, <-done)
	r.auth.AssertExpectations(t)
}

func TestClient_Run_ReusesSession(t *testing.T) {
	c, r := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	r.auth.On("Status", mock.Anything).Return(&auth.Status{Authorized: true}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	<-c.Ready()
	cancel()
	require.NoError(t, <-done)
	r.auth.AssertNotCalled(t, "Bot", mock.Anything, mock.Anything)
}

func TestClient_Run_AuthFailure(t *testing.T) {
	c, r := newTestClient(t)

	r.auth.On("Status", mock.Anything).Return(&auth.Status{}, nil).Once()
	r.auth.On("Bot", mock.Anything, "123:token").Return(nil, errors.New("ACCESS_TOKEN_INVALID")).Once()

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_INVALID")

	select {
	case <-c.Ready():
		t.Fatal("client must not be ready after failed auth")
	default:
	}
}
