// Package history maintains a bounded conversation history: it estimates
// token cost, segments messages into turns, and rebases older turns onto a
// model-written summary once the prompt exceeds its token budget.
package history

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/netwave-ai/netwave/internal/core"
)

const fallbackEncoding = "cl100k_base"

// Estimator estimates the token cost of text for a given model. When the
// model's tokenizer cannot be loaded it falls back to a deterministic
// characters/4 heuristic so behavior stays predictable without it.
type Estimator struct {
	model string

	mu       sync.Mutex
	encoding *tiktoken.Tiktoken
	resolved bool
}

func NewEstimator(model string) *Estimator {
	return &Estimator{model: model}
}

// Estimate returns a non-negative token count for any value. Nil counts as
// zero; non-string values are coerced to their string form first.
func (e *Estimator) Estimate(value any) int {
	if value == nil {
		return 0
	}

	text, ok := value.(string)
	if !ok {
		text = fmt.Sprint(value)
	}

	if enc := e.tokenizer(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}

	if len(text) == 0 {
		return 0
	}

	count := len(text) / 4
	if count < 1 {
		count = 1
	}
	return count
}

// InMessages sums per-message estimates over content fields only. Tool-call
// payload size is not counted toward the budget.
func (e *Estimator) InMessages(messages []core.Message) int {
	total := 0
	for _, msg := range messages {
		total += e.Estimate(msg.Content)
	}
	return total
}

func (e *Estimator) tokenizer() *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resolved {
		return e.encoding
	}
	e.resolved = true

	enc, err := tiktoken.EncodingForModel(e.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return nil
	}

	e.encoding = enc
	return e.encoding
}
