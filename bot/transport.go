package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	ta "github.com/mymmrac/telego/telegoapi"
	tu "github.com/mymmrac/telego/telegoutil"

	"telegram-tag-all-bot/tagall"
)

var ErrUnsupportedKind = errors.New("unsupported media kind")

// sender is the part of telego.Bot used to deliver messages
type sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	SendSticker(ctx context.Context, params *telego.SendStickerParams) (*telego.Message, error)
	SendAnimation(ctx context.Context, params *telego.SendAnimationParams) (*telego.Message, error)
	SendVideo(ctx context.Context, params *telego.SendVideoParams) (*telego.Message, error)
	SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error)
	SendAudio(ctx context.Context, params *telego.SendAudioParams) (*telego.Message, error)
	SendVoice(ctx context.Context, params *telego.SendVoiceParams) (*telego.Message, error)
	SendVideoNote(ctx context.Context, params *telego.SendVideoNoteParams) (*telego.Message, error)
	SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error)
}

// Transport implements tagall.Transport on top of the Bot API
type Transport struct {
	api  sender
	log  *slog.Logger
	wait func(ctx context.Context, d time.Duration) error
}

func NewTransport(api sender, log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}

	return &Transport{
		api:  api,
		log:  log,
		wait: sleep,
	}
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string) error {
	return t.do(ctx, chatID, "sendMessage", func(ctx context.Context) error {
		message := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
		_, err := t.api.SendMessage(ctx, message)
		return err
	})
}

// SendPrivate writes to the private chat with the user, which shares the user's id
func (t *Transport) SendPrivate(ctx context.Context, userID int64, text string) error {
	return t.SendText(ctx, userID, text)
}

func (t *Transport) SendMedia(ctx context.Context, chatID int64, kind tagall.Kind, fileID string) error {
	id := tu.ID(chatID)
	file := tu.FileFromID(fileID)

	var call func(ctx context.Context) error
	switch kind {
	case tagall.KindSticker:
		call = func(ctx context.Context) error {
			_, err := t.api.SendSticker(ctx, tu.Sticker(id, file))
			return err
		}
	case tagall.KindAnimation:
		call = func(ctx context.Context) error {
			_, err := t.api.SendAnimation(ctx, tu.Animation(id, file))
			return err
		}
	case tagall.KindVideo:
		call = func(ctx context.Context) error {
			_, err := t.api.SendVideo(ctx, tu.Video(id, file))
			return err
		}
	case tagall.KindPhoto:
		call = func(ctx context.Context) error {
			_, err := t.api.SendPhoto(ctx, tu.Photo(id, file))
			return err
		}
	case tagall.KindAudio:
		call = func(ctx context.Context) error {
			_, err := t.api.SendAudio(ctx, tu.Audio(id, file))
			return err
		}
	case tagall.KindVoice:
		call = func(ctx context.Context) error {
			_, err := t.api.SendVoice(ctx, tu.Voice(id, file))
			return err
		}
	case tagall.KindVideoNote:
		call = func(ctx context.Context) error {
			_, err := t.api.SendVideoNote(ctx, tu.VideoNote(id, file))
			return err
		}
	case tagall.KindDocument:
		call = func(ctx context.Context) error {
			_, err := t.api.SendDocument(ctx, tu.Document(id, file))
			return err
		}
	default:
		return &tagall.SendError{Kind: tagall.ErrorKindUnknown, Err: fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)}
	}

	return t.do(ctx, chatID, "send "+kind.String(), call)
}

// do performs the call and retries it once when Telegram asks to wait
func (t *Transport) do(ctx context.Context, chatID int64, method string, call func(ctx context.Context) error) error {
	err := call(ctx)

	if retryAfter, ok := retryAfterOf(err); ok {
		t.log.Debug("bot: API error", "error", err, "request_id", requestIDFrom(ctx))
		t.log.Info("bot: Rate limit hit, waiting", "seconds", retryAfter, "chat_id", chatID)

		if waitErr := t.wait(ctx, time.Duration(retryAfter)*time.Second); waitErr != nil {
			return classifySendError(err)
		}

		err = call(ctx)
		if err == nil {
			t.log.Info("bot: Message sent successfully after rate limit wait", "chat_id", chatID)
		}
	}

	if err != nil {
		t.log.Error("bot: Failed to send message", "error", err, "method", method,
			"chat_id", chatID, "request_id", requestIDFrom(ctx))
		return classifySendError(err)
	}

	t.log.Debug("bot: Message sent successfully", "method", method, "chat_id", chatID)
	return nil
}

// classifySendError maps a Bot API failure to the error kinds the service understands
func classifySendError(err error) *tagall.SendError {
	kind := tagall.ErrorKindUnknown

	var apiErr *ta.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.ErrorCode == 429:
			kind = tagall.ErrorKindRateLimited
		case apiErr.ErrorCode == 403 && strings.Contains(apiErr.Description, "can't initiate conversation"):
			kind = tagall.ErrorKindConversationNotStarted
		}
	}

	return &tagall.SendError{Kind: kind, Err: err}
}

func retryAfterOf(err error) (int, bool) {
	var apiErr *ta.Error
	if !errors.As(err, &apiErr) || apiErr.ErrorCode != 429 || apiErr.Parameters == nil {
		return 0, false
	}
	if apiErr.Parameters.RetryAfter <= 0 {
		return 0, false
	}
	return apiErr.Parameters.RetryAfter, true
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
