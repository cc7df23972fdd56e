package history

import (
	"strings"

	"github.com/netwave-ai/netwave/internal/core"
)

// Turn is a maximal contiguous run of messages starting at a user message
// and extending through all assistant/tool messages up to the next user
// message. Turns are kept or dropped whole during compression so that every
// tool result stays paired with the assistant message that requested it.
type Turn []core.Message

// SplitIntoTurns segments a history (without the leading system message)
// into turns. A leading run of non-user messages, such as an injected
// summary, becomes part of the first turn.
func SplitIntoTurns(messages []core.Message) []Turn {
	var turns []Turn
	var current Turn

	for _, msg := range messages {
		if msg.Role == core.RoleUser && len(current) > 0 {
			turns = append(turns, current)
			current = nil
		}
		current = append(current, msg)
	}

	if len(current) > 0 {
		turns = append(turns, current)
	}
	return turns
}

// Flatten concatenates turns back into a flat message list.
func Flatten(turns []Turn) []core.Message {
	var out []core.Message
	for _, turn := range turns {
		out = append(out, turn...)
	}
	return out
}

// RenderTranscript renders turns to plain text, one "ROLE: content" line per
// message in original order.
func RenderTranscript(turns []Turn) string {
	var lines []string
	for _, turn := range turns {
		for _, msg := range turn {
			lines = append(lines, strings.ToUpper(string(msg.Role))+": "+strings.TrimSpace(msg.Content))
		}
	}
	return strings.Join(lines, "\n")
}
