package tagall

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Participants(ctx context.Context, groupID int64, offset, limit int) (Page, error) {
	args := m.Called(ctx, groupID, offset, limit)
	page, _ := args.Get(0).(Page)
	return page, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) TagConfig(ctx context.Context, groupID int64) (*TagConfig, error) {
	args := m.Called(ctx, groupID)
	cfg, _ := args.Get(0).(*TagConfig)
	return cfg, args.Error(1)
}

func (m *mockStore) SaveTagConfig(ctx context.Context, cfg TagConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *mockTransport) SendMedia(ctx context.Context, chatID int64, kind Kind, fileID string) error {
	args := m.Called(ctx, chatID, kind, fileID)
	return args.Error(0)
}

func (m *mockTransport) SendPrivate(ctx context.Context, userID int64, text string) error {
	args := m.Called(ctx, userID, text)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// members builds n human members with fixed-width usernames starting at id
func members(id int64, n int) []Member {
	out := make([]Member, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Member{
			ID:          id + int64(i),
			DisplayName: "User",
			Username:    usernameFor(id + int64(i)),
		})
	}
	return out
}

func usernameFor(id int64) string {
	const digits = "0123456789"
	b := []byte("user000000")
	for i := len(b) - 1; i >= 4 && id > 0; i-- {
		b[i] = digits[id%10]
		id /= 10
	}
	return string(b)
}
