package history

import (
	"strings"
	"testing"

	"github.com/netwave-ai/netwave/internal/core"
)

func userMsg(content string) core.Message {
	return core.Message{Role: core.RoleUser, Content: content}
}

func assistantMsg(content string) core.Message {
	return core.Message{Role: core.RoleAssistant, Content: content}
}

func toolMsg(id, content string) core.Message {
	return core.Message{Role: core.RoleTool, ToolCallID: id, Content: content}
}

func TestSplitIntoTurnsSegmentsAtUserMessages(t *testing.T) {
	messages := []core.Message{
		userMsg("first"),
		assistantMsg("calling a tool"),
		toolMsg("c1", "result"),
		assistantMsg("answer one"),
		userMsg("second"),
		assistantMsg("answer two"),
	}

	turns := SplitIntoTurns(messages)

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if len(turns[0]) != 4 {
		t.Errorf("first turn should carry its tool exchange, got %d messages", len(turns[0]))
	}
	if turns[1][0].Content != "second" {
		t.Errorf("second turn should start at the second user message, got %q", turns[1][0].Content)
	}
}

func TestSplitIntoTurnsLeadingNonUserRunJoinsFirstTurn(t *testing.T) {
	messages := []core.Message{
		assistantMsg("summary of earlier chat"),
		userMsg("question"),
		assistantMsg("answer"),
	}

	turns := SplitIntoTurns(messages)

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0][0].Role != core.RoleAssistant {
		t.Errorf("leading assistant run should form the head of the first turn")
	}
}

func TestSplitIntoTurnsEmpty(t *testing.T) {
	if turns := SplitIntoTurns(nil); len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	messages := []core.Message{
		userMsg("a"),
		assistantMsg("b"),
		userMsg("c"),
		assistantMsg("d"),
	}

	flat := Flatten(SplitIntoTurns(messages))

	if len(flat) != len(messages) {
		t.Fatalf("expected %d messages, got %d", len(messages), len(flat))
	}
	for i := range messages {
		if flat[i].Content != messages[i].Content {
			t.Errorf("message %d: expected %q, got %q", i, messages[i].Content, flat[i].Content)
		}
	}
}

func TestRenderTranscript(t *testing.T) {
	turns := SplitIntoTurns([]core.Message{
		userMsg("  hello  "),
		assistantMsg("hi"),
	})

	transcript := RenderTranscript(turns)

	lines := strings.Split(transcript, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "USER: hello" {
		t.Errorf("expected trimmed upper-role line, got %q", lines[0])
	}
	if lines[1] != "ASSISTANT: hi" {
		t.Errorf("unexpected second line %q", lines[1])
	}
}
