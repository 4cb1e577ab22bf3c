package history

import (
	"time"
	"unicode/utf8"
)

const (
	RoleUser = "You"
	RoleAI   = "AI"

	TimestampLayout = "15:04:05"

	titleTopicChars = 30
)

// Entry is one history item. Label is the role for chat turns and the
// user's topic for stories and image prompts.
type Entry struct {
	Timestamp string
	Label     string
	Payload   string
}

func NewEntry(at time.Time, label, payload string) Entry {
	return Entry{
		Timestamp: at.Format(TimestampLayout),
		Label:     label,
		Payload:   payload,
	}
}

// Title is the collapsed display line, e.g. "14:02:11 - a lonely lighthouse...".
func (e Entry) Title() string {
	topic := e.Label
	if utf8.RuneCountInString(topic) > titleTopicChars {
		topic = string([]rune(topic)[:titleTopicChars])
	}
	return e.Timestamp + " - " + topic + "..."
}
