package history

import (
	"testing"

	"github.com/netwave-ai/netwave/internal/core"
)

func TestEstimateHandlesAnyValue(t *testing.T) {
	estimator := NewEstimator("gpt-4o-mini")

	if got := estimator.Estimate(nil); got != 0 {
		t.Errorf("nil should cost 0 tokens, got %d", got)
	}
	if got := estimator.Estimate(""); got != 0 {
		t.Errorf("empty string should cost 0 tokens, got %d", got)
	}
	if got := estimator.Estimate("hello world"); got < 1 {
		t.Errorf("non-empty text should cost at least 1 token, got %d", got)
	}
	if got := estimator.Estimate(12345); got < 1 {
		t.Errorf("non-string values are coerced and counted, got %d", got)
	}
}

func TestEstimateGrowsWithText(t *testing.T) {
	estimator := NewEstimator("gpt-4o-mini")

	short := estimator.Estimate("one sentence of text")
	long := estimator.Estimate(repeat("one sentence of text ", 50))

	if long <= short {
		t.Errorf("longer text should cost more tokens: short=%d long=%d", short, long)
	}
}

func TestInMessagesSumsContentOnly(t *testing.T) {
	estimator := NewEstimator("gpt-4o-mini")

	messages := []core.Message{
		{Role: core.RoleSystem, Content: "prompt"},
		{Role: core.RoleUser, Content: "question"},
		{Role: core.RoleAssistant, Content: "", ToolCalls: []core.ToolCall{{ID: "c1", Name: "t", Arguments: `{"x":1}`}}},
	}

	total := estimator.InMessages(messages)
	expected := estimator.Estimate("prompt") + estimator.Estimate("question")

	if total != expected {
		t.Errorf("expected %d (content fields only), got %d", expected, total)
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
