package tagall

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf16"
)

// MaxMessageLength is the Telegram limit for one text message, in UTF-16 code units
const MaxMessageLength = 4096

// Mention renders one member as a mention fragment, trailing space included
func Mention(m Member) string {
	if m.Username != "" {
		return "@" + m.Username + " "
	}

	name := strings.TrimSpace(m.DisplayName)
	if name == "" {
		name = strconv.FormatInt(m.ID, 10)
	}

	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a> `, m.ID, html.EscapeString(name))
}

// Pack splits the mentions of members into chunks no longer than maxLength.
// Fragments are never split; a single fragment longer than maxLength becomes its own chunk.
func Pack(members []Member, maxLength int) []string {
	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	for _, m := range members {
		fragment := Mention(m)
		fragmentSize := textLength(fragment)

		if current.Len() > 0 && size+fragmentSize > maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}

		current.WriteString(fragment)
		size += fragmentSize
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
