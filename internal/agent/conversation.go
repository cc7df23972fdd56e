// Package agent runs the conversation loop: user input goes in, the model
// is consulted, requested tools are dispatched, and the loop repeats until
// the model answers in plain text.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/netwave-ai/netwave/internal/core"
)

// ChatClient is the model surface the conversation drives.
type ChatClient interface {
	Chat(ctx context.Context, messages []core.Message, tools []core.ToolDef) (core.ChatResponse, error)
}

// ToolDispatcher maps a tool call to a result value. It is total: any name
// and argument blob yields a value, never an error.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name, rawArguments string) any
}

// Compressor bounds the history before each model call.
type Compressor interface {
	MaybeCompress(ctx context.Context, messages []core.Message) ([]core.Message, error)
}

// Conversation owns one chat session: its history, its token counters and
// the collaborators needed to process a turn. It is not safe for concurrent
// use; each interactive session gets its own Conversation.
type Conversation struct {
	id         string
	llm        ChatClient
	dispatcher ToolDispatcher
	compressor Compressor
	tools      []core.ToolDef
	history    []core.Message

	promptTokens     int
	completionTokens int

	// Notify receives intermediate assistant text produced alongside tool
	// calls, so the user sees progress during long tool chains. May be nil.
	Notify func(text string)
}

func New(systemPrompt string, llm ChatClient, dispatcher ToolDispatcher, compressor Compressor, tools []core.ToolDef) *Conversation {
	return &Conversation{
		id:         uuid.NewString(),
		llm:        llm,
		dispatcher: dispatcher,
		compressor: compressor,
		tools:      tools,
		history:    []core.Message{{Role: core.RoleSystem, Content: systemPrompt}},
	}
}

// ProcessTurn appends the user's input and loops model call, tool dispatch
// until the model responds without tool calls. The final plain-text answer
// is returned; an empty answer means the model chose to stay silent.
func (c *Conversation) ProcessTurn(ctx context.Context, input string) (string, error) {
	c.history = append(c.history, core.Message{Role: core.RoleUser, Content: input})

	for {
		compacted, err := c.compressor.MaybeCompress(ctx, c.history)
		if err != nil {
			return "", fmt.Errorf("compress history: %w", err)
		}
		c.history = compacted

		resp, err := c.llm.Chat(ctx, c.history, c.tools)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		c.promptTokens += resp.Usage.PromptTokens
		c.completionTokens += resp.Usage.CompletionTokens

		c.history = append(c.history, core.Message{
			Role:      core.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		if resp.Content != "" && c.Notify != nil {
			c.Notify(resp.Content)
		}

		for _, call := range resp.ToolCalls {
			slog.Debug("dispatching tool", "conversation", c.id, "tool", call.Name)
			result := c.dispatcher.Dispatch(ctx, call.Name, call.Arguments)
			c.history = append(c.history, core.Message{
				Role:       core.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    renderResult(result),
			})
		}
	}
}

// ID is this conversation's unique identifier, used to correlate log lines.
func (c *Conversation) ID() string {
	return c.id
}

// Usage reports the cumulative token counts across every model call this
// conversation has made.
func (c *Conversation) Usage() core.Usage {
	return core.Usage{
		PromptTokens:     c.promptTokens,
		CompletionTokens: c.completionTokens,
	}
}

// History returns the current messages, for inspection.
func (c *Conversation) History() []core.Message {
	out := make([]core.Message, len(c.history))
	copy(out, c.history)
	return out
}

// renderResult turns a tool result into the string form fed back to the
// model. Strings pass through as-is; everything else is JSON-encoded.
func renderResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
