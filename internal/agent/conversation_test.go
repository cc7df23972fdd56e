package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/netwave-ai/netwave/internal/core"
)

type scriptedLLM struct {
	responses []core.ChatResponse
	err       error
	calls     int
	seen      [][]core.Message
}

func (s *scriptedLLM) Chat(_ context.Context, messages []core.Message, _ []core.ToolDef) (core.ChatResponse, error) {
	snapshot := make([]core.Message, len(messages))
	copy(snapshot, messages)
	s.seen = append(s.seen, snapshot)

	if s.err != nil {
		return core.ChatResponse{}, s.err
	}

	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

type recordingDispatcher struct {
	calls   []string
	results map[string]any
}

func (r *recordingDispatcher) Dispatch(_ context.Context, name, _ string) any {
	r.calls = append(r.calls, name)
	if result, ok := r.results[name]; ok {
		return result
	}
	return map[string]any{"ok": true}
}

type passthroughCompressor struct {
	calls int
	err   error
}

func (p *passthroughCompressor) MaybeCompress(_ context.Context, messages []core.Message) ([]core.Message, error) {
	p.calls++
	return messages, p.err
}

func newTestConversation(llm ChatClient, dispatcher ToolDispatcher, compressor Compressor) *Conversation {
	return New("system prompt", llm, dispatcher, compressor, nil)
}

func TestProcessTurnPlainAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []core.ChatResponse{
		{Content: "All nodes are online.", Usage: core.Usage{PromptTokens: 10, CompletionTokens: 5}},
	}}
	conversation := newTestConversation(llm, &recordingDispatcher{}, &passthroughCompressor{})

	answer, err := conversation.ProcessTurn(context.Background(), "status?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "All nodes are online." {
		t.Errorf("unexpected answer %q", answer)
	}

	history := conversation.History()
	if len(history) != 3 {
		t.Fatalf("expected system+user+assistant, got %d messages", len(history))
	}
	if history[0].Role != core.RoleSystem || history[1].Role != core.RoleUser || history[2].Role != core.RoleAssistant {
		t.Errorf("unexpected history roles: %v", history)
	}
}

func TestProcessTurnDispatchesToolsInOrder(t *testing.T) {
	llm := &scriptedLLM{responses: []core.ChatResponse{
		{
			Content: "Checking the network.",
			ToolCalls: []core.ToolCall{
				{ID: "c1", Name: "get_networks", Arguments: "{}"},
				{ID: "c2", Name: "get_network_counts", Arguments: `{"network_id":"lab"}`},
			},
			Usage: core.Usage{PromptTokens: 20, CompletionTokens: 8},
		},
		{Content: "Done.", Usage: core.Usage{PromptTokens: 30, CompletionTokens: 4}},
	}}
	dispatcher := &recordingDispatcher{results: map[string]any{"get_networks": "plain string result"}}
	compressor := &passthroughCompressor{}
	conversation := newTestConversation(llm, dispatcher, compressor)

	var notified []string
	conversation.Notify = func(text string) { notified = append(notified, text) }

	answer, err := conversation.ProcessTurn(context.Background(), "how many nodes?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Done." {
		t.Errorf("unexpected answer %q", answer)
	}

	if len(dispatcher.calls) != 2 || dispatcher.calls[0] != "get_networks" || dispatcher.calls[1] != "get_network_counts" {
		t.Errorf("tools must run in request order, got %v", dispatcher.calls)
	}
	if len(notified) != 1 || notified[0] != "Checking the network." {
		t.Errorf("intermediate content should be surfaced, got %v", notified)
	}
	if compressor.calls != 2 {
		t.Errorf("history must be compressed before every model call, got %d", compressor.calls)
	}

	history := conversation.History()
	// system, user, assistant(tool calls), 2 tool results, assistant answer
	if len(history) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(history))
	}

	first := history[3]
	if first.Role != core.RoleTool || first.ToolCallID != "c1" || first.Name != "get_networks" {
		t.Errorf("unexpected first tool message %+v", first)
	}
	if first.Content != "plain string result" {
		t.Errorf("string results pass through verbatim, got %q", first.Content)
	}

	second := history[4]
	if second.ToolCallID != "c2" || second.Content != `{"ok":true}` {
		t.Errorf("map results are JSON-encoded, got %+v", second)
	}

	usage := conversation.Usage()
	if usage.PromptTokens != 50 || usage.CompletionTokens != 12 {
		t.Errorf("usage should accumulate across rounds, got %+v", usage)
	}
}

func TestProcessTurnSilentRound(t *testing.T) {
	llm := &scriptedLLM{responses: []core.ChatResponse{{Content: ""}}}
	conversation := newTestConversation(llm, &recordingDispatcher{}, &passthroughCompressor{})

	answer, err := conversation.ProcessTurn(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("a silent round is not an error: %v", err)
	}
	if answer != "" {
		t.Errorf("expected empty answer, got %q", answer)
	}

	history := conversation.History()
	if history[len(history)-1].Role != core.RoleAssistant {
		t.Errorf("the silent assistant message must still be recorded")
	}
}

func TestProcessTurnChatErrorPropagates(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("rate limited")}
	conversation := newTestConversation(llm, &recordingDispatcher{}, &passthroughCompressor{})

	if _, err := conversation.ProcessTurn(context.Background(), "hello"); err == nil {
		t.Fatal("expected chat failure to propagate")
	}
}

func TestProcessTurnCompressorErrorPropagates(t *testing.T) {
	compressor := &passthroughCompressor{err: errors.New("summarizer down")}
	conversation := newTestConversation(&scriptedLLM{}, &recordingDispatcher{}, compressor)

	if _, err := conversation.ProcessTurn(context.Background(), "hello"); err == nil {
		t.Fatal("expected compression failure to propagate")
	}
}

func TestHistoryStaysOrphanFreeAcrossTurns(t *testing.T) {
	llm := &scriptedLLM{responses: []core.ChatResponse{
		{ToolCalls: []core.ToolCall{{ID: "c1", Name: "probe", Arguments: "{}"}}},
		{Content: "first answer"},
		{Content: "second answer"},
	}}
	conversation := newTestConversation(llm, &recordingDispatcher{}, &passthroughCompressor{})

	if _, err := conversation.ProcessTurn(context.Background(), "one"); err != nil {
		t.Fatalf("turn one: %v", err)
	}
	if _, err := conversation.ProcessTurn(context.Background(), "two"); err != nil {
		t.Fatalf("turn two: %v", err)
	}

	pending := map[string]bool{}
	for _, msg := range conversation.History() {
		for _, call := range msg.ToolCalls {
			pending[call.ID] = true
		}
		if msg.Role == core.RoleTool && !pending[msg.ToolCallID] {
			t.Fatalf("tool message %q has no preceding tool call", msg.ToolCallID)
		}
	}
}
