// Package llm wraps the chat-completion boundary: sending the conversation
// with the static tool schema, and the dedicated summarization call used by
// history compression.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/netwave-ai/netwave/internal/core"
)

type Config struct {
	APIKey       string
	Model        string
	SummaryModel string
}

type Client struct {
	api          *openai.Client
	model        string
	summaryModel string
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	return &Client{
		api:          openai.NewClient(cfg.APIKey),
		model:        cfg.Model,
		summaryModel: cfg.SummaryModel,
	}, nil
}

// Chat sends the full message history with the tool schema list and
// automatic tool choice, returning the assistant reply and its token usage.
func (c *Client) Chat(ctx context.Context, messages []core.Message, tools []core.ToolDef) (core.ChatResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(messages),
	}

	if len(tools) > 0 {
		req.Tools = toTools(tools)
		req.ToolChoice = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return core.ChatResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.ChatResponse{}, errors.New("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message
	return core.ChatResponse{
		Content:   reply.Content,
		ToolCalls: fromToolCalls(reply.ToolCalls),
		Usage: core.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Summarize asks the summarization model for a recap of the transcript. The
// instruction pins the recap to the active network context and the token
// ceiling; the caller applies a hard truncation backstop on top.
func (c *Client) Summarize(ctx context.Context, transcript string, maxTokens int) (string, error) {
	instruction := fmt.Sprintf(
		"You are an assistant that writes concise summaries. "+
			"ALWAYS begin with: Active network: <name>. "+
			"Summarise the following chat in at most %d tokens, "+
			"highlighting key decisions, configurations and open issues.", maxTokens)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.summaryModel,
		Temperature: 0.3,
		MaxTokens:   maxTokens + 40,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("summarization returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
