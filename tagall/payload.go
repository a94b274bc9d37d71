package tagall

import (
	"errors"
)

var ErrUnrecognized = errors.New("unrecognized message content")

// Payload is the closed set of message contents usable as an announcement.
// Values are produced once by the transport layer.
type Payload interface {
	payload()
}

// Entity is a formatting span of a text message. Offset and Length are in UTF-16 code units.
type Entity struct {
	Type          string
	Offset        int
	Length        int
	CustomEmojiID string
}

const EntityTypeCustomEmoji = "custom_emoji"

type (
	Text struct {
		Text     string
		Entities []Entity
	}
	Animation struct{ FileID string }
	Sticker   struct{ FileID string }
	Video     struct{ FileID string }
	Photo     struct{ FileID string }
	Audio     struct{ FileID string }
	Voice     struct{ FileID string }
	VideoNote struct{ FileID string }
	Document  struct{ FileID string }
)

func (Text) payload()      {}
func (Animation) payload() {}
func (Sticker) payload()   {}
func (Video) payload()     {}
func (Photo) payload()     {}
func (Audio) payload()     {}
func (Voice) payload()     {}
func (VideoNote) payload() {}
func (Document) payload()  {}

// Resolve turns a payload into announcement content
func Resolve(p Payload) (Content, error) {
	switch v := p.(type) {
	case Text:
		return Content{Value: FormatCustomEmojis(v.Text, v.Entities), Kind: KindText}, nil
	case Animation:
		return Content{Value: v.FileID, Kind: KindAnimation}, nil
	case Sticker:
		return Content{Value: v.FileID, Kind: KindSticker}, nil
	case Video:
		return Content{Value: v.FileID, Kind: KindVideo}, nil
	case Photo:
		return Content{Value: v.FileID, Kind: KindPhoto}, nil
	case Audio:
		return Content{Value: v.FileID, Kind: KindAudio}, nil
	case Voice:
		return Content{Value: v.FileID, Kind: KindVoice}, nil
	case VideoNote:
		return Content{Value: v.FileID, Kind: KindVideoNote}, nil
	case Document:
		return Content{Value: v.FileID, Kind: KindDocument}, nil
	default:
		return Content{}, ErrUnrecognized
	}
}
