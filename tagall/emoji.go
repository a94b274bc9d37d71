package tagall

import (
	"fmt"
	"sort"
	"unicode/utf16"
)

// FormatCustomEmojis wraps every custom emoji span of text into a <tg-emoji> tag,
// keeping the original emoji as the fallback content.
func FormatCustomEmojis(text string, entities []Entity) string {
	if len(entities) == 0 {
		return text
	}

	emojis := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.Type == EntityTypeCustomEmoji && e.CustomEmojiID != "" {
			emojis = append(emojis, e)
		}
	}
	if len(emojis) == 0 {
		return text
	}

	// Replace from the end so that earlier offsets stay valid
	sort.SliceStable(emojis, func(i, j int) bool {
		return emojis[i].Offset > emojis[j].Offset
	})

	original := utf16.Encode([]rune(text))
	units := original
	boundary := len(original)
	for _, e := range emojis {
		// Overlapping or out of range spans are left as is
		if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > boundary {
			continue
		}
		boundary = e.Offset

		emoji := string(utf16.Decode(original[e.Offset : e.Offset+e.Length]))
		tag := utf16.Encode([]rune(fmt.Sprintf(`<tg-emoji emoji-id="%s">%s</tg-emoji>`, e.CustomEmojiID, emoji)))

		replaced := make([]uint16, 0, len(units)+len(tag))
		replaced = append(replaced, units[:e.Offset]...)
		replaced = append(replaced, tag...)
		replaced = append(replaced, units[e.Offset+e.Length:]...)
		units = replaced
	}

	return string(utf16.Decode(units))
}
