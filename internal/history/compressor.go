package history

import (
	"context"
	"log/slog"
	"strings"

	"github.com/netwave-ai/netwave/internal/core"
)

// Summarizer produces a bounded-length recap of a rendered transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string, maxTokens int) (string, error)
}

// Compressor rebases conversation history once its estimated token size
// exceeds MaxPromptTokens: older turns are replaced by a single assistant
// summary message while the most recent RecentTurns turns stay verbatim.
type Compressor struct {
	Estimator        *Estimator
	Summarizer       Summarizer
	MaxPromptTokens  int
	RecentTurns      int
	SummaryMaxTokens int
}

// MaybeCompress returns the history unchanged while it is under budget.
// When over budget it keeps the system message, summarizes all turns except
// the most recent RecentTurns, and rebuilds the history as
// [system, assistant(summary), recent turns...]. A summarization failure is
// returned to the caller; the history is never partially rebased.
func (c *Compressor) MaybeCompress(ctx context.Context, messages []core.Message) ([]core.Message, error) {
	if len(messages) == 0 {
		return messages, nil
	}

	before := c.Estimator.InMessages(messages)
	if before <= c.MaxPromptTokens {
		return messages, nil
	}

	system := messages[0]
	turns := SplitIntoTurns(messages[1:])

	var recent, older []Turn
	if c.RecentTurns > 0 {
		if c.RecentTurns < len(turns) {
			recent = turns[len(turns)-c.RecentTurns:]
			older = turns[:len(turns)-c.RecentTurns]
		} else {
			recent = turns
		}
	} else {
		older = turns
	}

	transcript := RenderTranscript(older)
	if strings.TrimSpace(transcript) == "" {
		// Nothing old enough to fold away; stay over budget rather than
		// touching the retained turns.
		return messages, nil
	}

	summary, err := c.Summarizer.Summarize(ctx, transcript, c.SummaryMaxTokens)
	if err != nil {
		return nil, err
	}
	summary = truncateRunes(strings.TrimSpace(summary), c.SummaryMaxTokens)

	rebased := make([]core.Message, 0, 2+len(messages))
	rebased = append(rebased, system)
	rebased = append(rebased, core.Message{Role: core.RoleAssistant, Content: summary})
	rebased = append(rebased, Flatten(recent)...)

	slog.Info("history compressed",
		"older_turns", len(older),
		"recent_turns", len(recent),
		"tokens_before", before,
		"tokens_after", c.Estimator.InMessages(rebased))

	return rebased, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
