package tagall

// Member is a human participant of a group at fetch time
type Member struct {
	ID          int64
	DisplayName string
	Username    string
	IsBot       bool
}

// Kind tells how the content of a tag configuration must be delivered
type Kind int

const (
	KindText Kind = iota
	KindSticker
	KindAnimation
	KindVideo
	KindPhoto
	KindAudio
	KindVoice
	KindVideoNote
	KindDocument
)

var kindNames = map[Kind]string{
	KindText:      "text",
	KindSticker:   "sticker",
	KindAnimation: "animation",
	KindVideo:     "video",
	KindPhoto:     "photo",
	KindAudio:     "audio",
	KindVoice:     "voice",
	KindVideoNote: "video_note",
	KindDocument:  "document",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind converts a persisted kind name back to Kind.
// Unknown names are reported with ok == false and KindText.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindText, false
}

// TagConfig is the announcement configured for a group
type TagConfig struct {
	GroupID int64
	Content string
	Kind    Kind
}

// Content is a resolved announcement: text or a file handle, depending on Kind
type Content struct {
	Value string
	Kind  Kind
}

// Chat identifies the chat an update came from
type Chat struct {
	ID   int64
	Type string
}

const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
)

func (c Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup || c.Type == ChatTypeSupergroup
}

func (c Chat) IsPrivate() bool {
	return c.Type == ChatTypePrivate
}

// Incoming is a message already converted at the transport boundary
type Incoming struct {
	Chat    Chat
	UserID  int64
	Payload Payload
	ReplyTo *Incoming
}
