package bot

import (
	"github.com/mymmrac/telego"

	"telegram-tag-all-bot/tagall"
)

func chatFromMessage(msg telego.Message) tagall.Chat {
	return tagall.Chat{ID: msg.Chat.ID, Type: msg.Chat.Type}
}

// incomingFromMessage converts a message and the message it replies to
func incomingFromMessage(msg telego.Message) tagall.Incoming {
	in := tagall.Incoming{
		Chat:    chatFromMessage(msg),
		Payload: payloadFromMessage(&msg),
	}
	if msg.From != nil {
		in.UserID = msg.From.ID
	}

	if isRealReply(msg) {
		reply := incomingFromMessage(*msg.ReplyToMessage)
		in.ReplyTo = &reply
	}

	return in
}

// isRealReply reports whether the message replies to another message.
// Messages in forum topics reference the topic service message, which is not a reply.
func isRealReply(msg telego.Message) bool {
	if msg.ReplyToMessage == nil {
		return false
	}
	if msg.IsTopicMessage && msg.ReplyToMessage.MessageID == msg.MessageThreadID {
		return false
	}
	return true
}

// payloadFromMessage returns nil when the message carries nothing usable as an announcement
func payloadFromMessage(msg *telego.Message) tagall.Payload {
	if msg == nil {
		return nil
	}

	switch {
	case msg.Text != "":
		return tagall.Text{Text: msg.Text, Entities: entitiesFrom(msg.Entities)}
	// Animations also carry a document, so they go first
	case msg.Animation != nil:
		return tagall.Animation{FileID: msg.Animation.FileID}
	case msg.Sticker != nil:
		return tagall.Sticker{FileID: msg.Sticker.FileID}
	case msg.Video != nil:
		return tagall.Video{FileID: msg.Video.FileID}
	case len(msg.Photo) > 0:
		// Sizes are ascending, the last one is the original
		return tagall.Photo{FileID: msg.Photo[len(msg.Photo)-1].FileID}
	case msg.Audio != nil:
		return tagall.Audio{FileID: msg.Audio.FileID}
	case msg.Voice != nil:
		return tagall.Voice{FileID: msg.Voice.FileID}
	case msg.VideoNote != nil:
		return tagall.VideoNote{FileID: msg.VideoNote.FileID}
	case msg.Document != nil:
		return tagall.Document{FileID: msg.Document.FileID}
	default:
		return nil
	}
}

func entitiesFrom(entities []telego.MessageEntity) []tagall.Entity {
	if len(entities) == 0 {
		return nil
	}

	result := make([]tagall.Entity, 0, len(entities))
	for _, e := range entities {
		result = append(result, tagall.Entity{
			Type:          e.Type,
			Offset:        e.Offset,
			Length:        e.Length,
			CustomEmojiID: e.CustomEmojiID,
		})
	}
	return result
}

func botCommands() []telego.BotCommand {
	commands := tagall.Commands()

	result := make([]telego.BotCommand, 0, len(commands))
	for _, c := range commands {
		result = append(result, telego.BotCommand{Command: c.Name, Description: c.Description})
	}
	return result
}
