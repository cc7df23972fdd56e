package history

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/netwave-ai/netwave/internal/core"
)

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
	lastIn  string
}

func (f *fakeSummarizer) Summarize(_ context.Context, transcript string, _ int) (string, error) {
	f.calls++
	f.lastIn = transcript
	return f.summary, f.err
}

func longText(word string) string {
	return strings.Repeat(word+" ", 100)
}

// chatty builds a system message plus n turns, each heavy enough that a few
// of them blow a small token budget under any estimator.
func chatty(n int) []core.Message {
	messages := []core.Message{{Role: core.RoleSystem, Content: "you are a test subject"}}
	for i := 0; i < n; i++ {
		messages = append(messages,
			core.Message{Role: core.RoleUser, Content: longText("question")},
			core.Message{Role: core.RoleAssistant, Content: "", ToolCalls: []core.ToolCall{{ID: "c1", Name: "probe", Arguments: "{}"}}},
			core.Message{Role: core.RoleTool, ToolCallID: "c1", Name: "probe", Content: longText("result")},
			core.Message{Role: core.RoleAssistant, Content: longText("answer")},
		)
	}
	return messages
}

func newCompressor(summarizer Summarizer) *Compressor {
	return &Compressor{
		Estimator:        NewEstimator("gpt-4o-mini"),
		Summarizer:       summarizer,
		MaxPromptTokens:  50,
		RecentTurns:      2,
		SummaryMaxTokens: 500,
	}
}

func TestMaybeCompressUnderBudgetIsNoOp(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "unused"}
	compressor := newCompressor(summarizer)
	compressor.MaxPromptTokens = 1 << 20

	messages := chatty(4)
	out, err := compressor.MaybeCompress(context.Background(), messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(messages) {
		t.Errorf("under budget history must come back unchanged, got %d of %d messages", len(out), len(messages))
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer must not be consulted under budget")
	}
}

func TestMaybeCompressRebasesOlderTurns(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "Active network: lab. Earlier we inspected links."}
	compressor := newCompressor(summarizer)

	messages := chatty(5)
	out, err := compressor.MaybeCompress(context.Background(), messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0].Role != core.RoleSystem || out[0].Content != messages[0].Content {
		t.Fatalf("system message must survive compression verbatim")
	}
	if out[1].Role != core.RoleAssistant || !strings.Contains(out[1].Content, "Active network") {
		t.Fatalf("second message must be the summary, got role=%s content=%q", out[1].Role, out[1].Content)
	}

	// Two retained turns of four messages each, after system and summary.
	if expected := 2 + 2*4; len(out) != expected {
		t.Errorf("expected %d messages after rebase, got %d", expected, len(out))
	}

	before := compressor.Estimator.InMessages(messages)
	after := compressor.Estimator.InMessages(out)
	if after >= before {
		t.Errorf("compression should shrink the history: before=%d after=%d", before, after)
	}

	if !strings.Contains(summarizer.lastIn, "USER:") {
		t.Errorf("summarizer should receive a rendered transcript, got %q", summarizer.lastIn[:40])
	}
}

func TestMaybeCompressKeepsToolResultsPaired(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "recap"}
	compressor := newCompressor(summarizer)

	out, err := compressor.MaybeCompress(context.Background(), chatty(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := map[string]bool{}
	for _, msg := range out {
		for _, call := range msg.ToolCalls {
			pending[call.ID] = true
		}
		if msg.Role == core.RoleTool {
			if !pending[msg.ToolCallID] {
				t.Fatalf("tool message %q has no preceding assistant tool call", msg.ToolCallID)
			}
		}
	}
}

func TestMaybeCompressNothingOldEnough(t *testing.T) {
	summarizer := &fakeSummarizer{summary: "unused"}
	compressor := newCompressor(summarizer)
	compressor.RecentTurns = 100

	messages := chatty(3)
	out, err := compressor.MaybeCompress(context.Background(), messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(messages) {
		t.Errorf("with every turn retained the history must come back unchanged")
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer must not run when there is nothing to fold away")
	}
}

func TestMaybeCompressSummarizerErrorPropagates(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("model unavailable")}
	compressor := newCompressor(summarizer)

	if _, err := compressor.MaybeCompress(context.Background(), chatty(5)); err == nil {
		t.Fatal("expected summarization failure to propagate")
	}
}

func TestMaybeCompressTruncatesOversizedSummary(t *testing.T) {
	summarizer := &fakeSummarizer{summary: strings.Repeat("x", 2000)}
	compressor := newCompressor(summarizer)
	compressor.SummaryMaxTokens = 10

	out, err := compressor.MaybeCompress(context.Background(), chatty(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len([]rune(out[1].Content)); got > 10 {
		t.Errorf("summary should be truncated to the ceiling, got %d runes", got)
	}
}

func TestMaybeCompressEmptyHistory(t *testing.T) {
	compressor := newCompressor(&fakeSummarizer{})

	out, err := compressor.MaybeCompress(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("empty history stays empty")
	}
}
