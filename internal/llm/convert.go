package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/netwave-ai/netwave/internal/core"
)

func toChatMessages(messages []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		entry := openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		if msg.Role == core.RoleTool {
			entry.ToolCallID = msg.ToolCallID
			entry.Name = msg.Name
		}

		for _, call := range msg.ToolCalls {
			entry.ToolCalls = append(entry.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}

		out = append(out, entry)
	}
	return out
}

func fromToolCalls(calls []openai.ToolCall) []core.ToolCall {
	var out []core.ToolCall
	for _, call := range calls {
		if call.Function.Name == "" {
			continue
		}
		out = append(out, core.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}

func toTools(defs []core.ToolDef) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}
